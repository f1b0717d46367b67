package chat

import (
	"context"

	"github.com/faqbot-platform/faqbot/internal/memory"
	"github.com/faqbot-platform/faqbot/internal/retriever"
)

// AnswerRequest carries everything one Answer call needs. TopK must be at
// least 1 and SimilarityThreshold must lie in [0,1]; the HTTP handler fills
// configured defaults before invoking the orchestrator.
type AnswerRequest struct {
	SessionID           string
	Question            string
	TopK                int
	SimilarityThreshold float64
}

// AnswerResult is the terminal artifact of one Answer call. It is immutable
// after creation.
type AnswerResult struct {
	Answer     string   `json:"answer"`
	FollowUps  []string `json:"follow_up_questions"`
	InDomain   bool     `json:"in_domain"`
	PassageIDs []string `json:"passage_ids"`
}

// ChunkFunc receives answer chunks in arrival order. Returning an error
// aborts the in-flight generation without updating memory.
type ChunkFunc func(ctx context.Context, chunk string) error

// Retriever produces relevance-filtered passages for a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]retriever.Passage, error)
}

// Memory is the conversation store the orchestrator reads and writes through.
// It never holds session storage directly.
type Memory interface {
	Append(ctx context.Context, sessionID, question, answer string) error
	Recent(ctx context.Context, sessionID string) ([]memory.Turn, error)
	Clear(ctx context.Context, sessionID string) error
}

// TopicGate decides in-domain vs out-of-domain for a question given its
// retrieved passages.
type TopicGate interface {
	InDomain(ctx context.Context, question string, passages []retriever.Passage) bool
}
