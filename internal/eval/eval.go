package eval

import (
	"context"
	"fmt"

	"github.com/faqbot-platform/faqbot/internal/retriever"
)

// Retriever is the public retrieval contract the harness consumes. It never
// reaches into conversation memory or orchestrator internals.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]retriever.Passage, error)
}

// Metrics summarizes retrieval quality for one question.
type Metrics struct {
	UsageRatio    float64 `json:"usage_ratio"`
	AvgSimilarity float64 `json:"avg_similarity"`
	UsedDocs      int     `json:"used_docs"`
	TotalDocs     int     `json:"total_docs"`
}

// Evaluate scores a raw (unfiltered) result set against the threshold a live
// request would apply: the share of passages that would be used, and the mean
// similarity over everything retrieved.
func Evaluate(passages []retriever.Passage, threshold float64, topK int) Metrics {
	if topK > 0 && topK < len(passages) {
		passages = passages[:topK]
	}
	if len(passages) == 0 {
		return Metrics{}
	}

	var sum float64
	used := 0
	for _, p := range passages {
		sum += p.Score
		if p.Score >= threshold {
			used++
		}
	}

	return Metrics{
		UsageRatio:    float64(used) / float64(len(passages)),
		AvgSimilarity: sum / float64(len(passages)),
		UsedDocs:      used,
		TotalDocs:     len(passages),
	}
}

// BatchMetrics aggregates per-question metrics over an evaluation set.
type BatchMetrics struct {
	AvgUsageRatio   float64 `json:"avg_usage_ratio"`
	AvgSimilarity   float64 `json:"avg_similarity"`
	TotalUsedDocs   int     `json:"total_used_docs"`
	TotalDocs       int     `json:"total_docs"`
	QuestionsScored int     `json:"questions_scored"`
}

// EvaluateQuestion retrieves the raw neighbor set for one question (threshold
// zero, so nothing is filtered) and scores it against the given threshold.
func EvaluateQuestion(ctx context.Context, r Retriever, question string, topK int, threshold float64) (Metrics, error) {
	passages, err := r.Retrieve(ctx, question, topK, 0)
	if err != nil {
		return Metrics{}, fmt.Errorf("retrieving for evaluation: %w", err)
	}
	return Evaluate(passages, threshold, topK), nil
}

// Batch evaluates a set of questions and averages the per-question metrics.
func Batch(ctx context.Context, r Retriever, questions []string, topK int, threshold float64) (BatchMetrics, error) {
	var agg BatchMetrics
	for _, q := range questions {
		m, err := EvaluateQuestion(ctx, r, q, topK, threshold)
		if err != nil {
			return BatchMetrics{}, fmt.Errorf("evaluating %q: %w", q, err)
		}
		agg.AvgUsageRatio += m.UsageRatio
		agg.AvgSimilarity += m.AvgSimilarity
		agg.TotalUsedDocs += m.UsedDocs
		agg.TotalDocs += m.TotalDocs
		agg.QuestionsScored++
	}

	if agg.QuestionsScored > 0 {
		agg.AvgUsageRatio /= float64(agg.QuestionsScored)
		agg.AvgSimilarity /= float64(agg.QuestionsScored)
	}
	return agg, nil
}
