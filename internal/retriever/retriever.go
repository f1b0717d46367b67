package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/faqbot-platform/faqbot/internal/index"
	"github.com/faqbot-platform/faqbot/internal/llm"
)

// ErrUnavailable marks a failure of the embedding service or the vector
// index. Callers must not answer without retrieved context when it occurs.
var ErrUnavailable = errors.New("retrieval unavailable")

// Passage is one retrieved FAQ entry with its similarity score. Passages are
// never persisted beyond the request that produced them.
type Passage struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category []string `json:"category,omitempty"`
	Score    float64  `json:"score"`
}

// Retriever embeds a query and searches the FAQ index for similar passages.
type Retriever struct {
	embedder llm.Embedder
	index    index.Searcher
}

// New creates a Retriever over the given embedding service and index.
func New(embedder llm.Embedder, idx index.Searcher) *Retriever {
	return &Retriever{embedder: embedder, index: idx}
}

// Retrieve returns at most topK passages with score >= threshold, sorted by
// descending similarity. Fewer than topK results, or none at all, is a valid
// outcome. A collaborator failure is reported as ErrUnavailable.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]Passage, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", ErrUnavailable, err)
	}

	neighbors, err := r.index.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: searching index: %v", ErrUnavailable, err)
	}

	// Neighbors arrive best-first; filtering preserves that order.
	passages := make([]Passage, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Score < threshold {
			continue
		}
		passages = append(passages, Passage{
			ID:       n.ID.String(),
			Question: n.Question,
			Answer:   n.Answer,
			Category: n.Category,
			Score:    n.Score,
		})
		if len(passages) == topK {
			break
		}
	}
	return passages, nil
}
