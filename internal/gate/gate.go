package gate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/faqbot-platform/faqbot/internal/llm"
	"github.com/faqbot-platform/faqbot/internal/retriever"
)

const classifierSystem = "당신은 질문 분류기입니다. 주어진 질문이 스마트 스토어(판매자 등록, 상품 관리, 정산, 배송 등) FAQ 범위에 해당하면 '예', 아니면 '아니오'로만 답하세요."

// Gate decides whether a question is inside the FAQ domain. The primary
// signal is the best retrieval score against a relevance floor; questions
// scoring inside the ambiguity band can escalate to an explicit classifier
// call when one is configured.
type Gate struct {
	floor      float64
	band       float64
	classifier llm.Generator
}

// New creates a Gate with the given relevance floor. A zero band disables
// classifier escalation even when a classifier is supplied.
func New(floor, band float64, classifier llm.Generator) *Gate {
	return &Gate{floor: floor, band: band, classifier: classifier}
}

// InDomain reports whether the question belongs to the FAQ domain. Passages
// must be sorted by descending score; an empty set is out-of-domain.
func (g *Gate) InDomain(ctx context.Context, question string, passages []retriever.Passage) bool {
	if len(passages) == 0 {
		return false
	}

	best := passages[0].Score
	if best < g.floor {
		return false
	}

	// Scores near the floor are ambiguous; ask the classifier if configured.
	if g.classifier != nil && g.band > 0 && best < g.floor+g.band {
		verdict, err := g.classify(ctx, question)
		if err != nil {
			slog.Warn("topic gate: classifier call failed, keeping floor decision", "error", err)
			return true
		}
		return verdict
	}

	return true
}

func (g *Gate) classify(ctx context.Context, question string) (bool, error) {
	prompt := fmt.Sprintf("질문: %s", question)
	answer, err := g.classifier.Complete(ctx, classifierSystem, prompt)
	if err != nil {
		return false, fmt.Errorf("classifying question: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	switch {
	case strings.HasPrefix(answer, "예"), strings.HasPrefix(answer, "yes"):
		return true, nil
	default:
		return false, nil
	}
}
