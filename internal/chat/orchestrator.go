package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/faqbot-platform/faqbot/internal/llm"
	"github.com/faqbot-platform/faqbot/internal/memory"
	"github.com/faqbot-platform/faqbot/internal/metrics"
	"github.com/faqbot-platform/faqbot/internal/retriever"
)

const maxFollowUps = 3

// Orchestrator turns a question plus conversation history into a streamed
// answer and follow-up suggestions. Each Answer call is independent; the only
// cross-call state lives in Memory.
type Orchestrator struct {
	retriever      Retriever
	memory         Memory
	gate           TopicGate
	generator      llm.Generator
	declineMessage string
}

// NewOrchestrator wires the orchestrator's collaborators.
func NewOrchestrator(r Retriever, mem Memory, gate TopicGate, gen llm.Generator, declineMessage string) *Orchestrator {
	return &Orchestrator{
		retriever:      r,
		memory:         mem,
		gate:           gate,
		generator:      gen,
		declineMessage: declineMessage,
	}
}

// Answer runs the full question pipeline: memory read, retrieval, topic gate,
// streamed answer generation, follow-up generation, memory update. Chunks are
// forwarded through emit as they arrive; the returned AnswerResult is the
// terminal artifact. On any non-nil error, memory is left untouched and
// already-emitted chunks stand.
func (o *Orchestrator) Answer(ctx context.Context, req AnswerRequest, emit ChunkFunc) (*AnswerResult, error) {
	turns, err := o.memory.Recent(ctx, req.SessionID)
	if err != nil {
		// A degraded memory read loses context but not the answer.
		slog.Warn("reading conversation memory", "error", err, "session_id", req.SessionID)
		turns = nil
	}

	passages, err := o.retriever.Retrieve(ctx, req.Question, req.TopK, req.SimilarityThreshold)
	if err != nil {
		metrics.QuestionsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.RetrievedPassages.Observe(float64(len(passages)))

	if !o.gate.InDomain(ctx, req.Question, passages) {
		if err := emit(ctx, o.declineMessage); err != nil {
			return nil, err
		}
		metrics.QuestionsTotal.WithLabelValues("declined").Inc()
		slog.Info("question declined as out-of-domain", "session_id", req.SessionID)
		return &AnswerResult{
			Answer:    o.declineMessage,
			FollowUps: []string{},
			InDomain:  false,
		}, nil
	}

	answer, err := o.streamAnswer(ctx, req, turns, passages, emit)
	if err != nil {
		metrics.QuestionsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		// Caller went away between the last chunk and here; skip the
		// follow-up phase and the memory write.
		metrics.QuestionsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	followUps := o.generateFollowUps(ctx, req.Question, answer)

	if err := o.memory.Append(ctx, req.SessionID, req.Question, answer); err != nil {
		// The answer is already delivered; losing one turn of context is
		// the lesser failure.
		slog.Warn("appending conversation turn", "error", err, "session_id", req.SessionID)
	}

	metrics.QuestionsTotal.WithLabelValues("answered").Inc()

	ids := make([]string, 0, len(passages))
	for _, p := range passages {
		ids = append(ids, p.ID)
	}
	return &AnswerResult{
		Answer:     answer,
		FollowUps:  followUps,
		InDomain:   true,
		PassageIDs: ids,
	}, nil
}

func (o *Orchestrator) streamAnswer(ctx context.Context, req AnswerRequest, turns []memory.Turn, passages []retriever.Passage, emit ChunkFunc) (string, error) {
	prompt := composePrompt(req.Question, turns, passages)

	var b strings.Builder
	start := time.Now()
	err := o.generator.CompleteStreaming(ctx, answerSystemPrompt, prompt, func(ctx context.Context, chunk string) error {
		b.WriteString(chunk)
		return emit(ctx, chunk)
	})
	metrics.GenerationDuration.WithLabelValues("answer").Observe(time.Since(start).Seconds())

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if b.Len() == 0 {
			return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
		}
		return "", fmt.Errorf("%w after %d bytes: %v", ErrGenerationInterrupted, b.Len(), err)
	}
	return b.String(), nil
}

// generateFollowUps is best-effort: any failure degrades to an empty list
// and never fails the request.
func (o *Orchestrator) generateFollowUps(ctx context.Context, question, answer string) []string {
	start := time.Now()
	text, err := o.generator.Complete(ctx, followUpSystemPrompt, composeFollowUpPrompt(question, answer))
	metrics.GenerationDuration.WithLabelValues("followup").Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Warn("generating follow-up questions", "error", err)
		return []string{}
	}
	return parseFollowUps(text, maxFollowUps)
}
