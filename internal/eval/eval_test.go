package eval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faqbot-platform/faqbot/internal/retriever"
)

func scored(scores ...float64) []retriever.Passage {
	passages := make([]retriever.Passage, 0, len(scores))
	for i, s := range scores {
		passages = append(passages, retriever.Passage{ID: string(rune('a' + i)), Score: s})
	}
	return passages
}

func TestEvaluate_Empty(t *testing.T) {
	m := Evaluate(nil, 0.1, 5)
	assert.Equal(t, Metrics{}, m)
}

func TestEvaluate_CountsDocsAboveThreshold(t *testing.T) {
	m := Evaluate(scored(0.8, 0.4, 0.05), 0.1, 5)
	assert.Equal(t, 2, m.UsedDocs)
	assert.Equal(t, 3, m.TotalDocs)
	assert.InDelta(t, 2.0/3.0, m.UsageRatio, 1e-9)
	assert.InDelta(t, (0.8+0.4+0.05)/3, m.AvgSimilarity, 1e-9)
}

func TestEvaluate_AppliesTopK(t *testing.T) {
	m := Evaluate(scored(0.9, 0.8, 0.7, 0.6), 0.1, 2)
	assert.Equal(t, 2, m.TotalDocs)
	assert.Equal(t, 2, m.UsedDocs)
}

type stubRetriever struct {
	byQuestion map[string][]retriever.Passage
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]retriever.Passage, error) {
	return s.byQuestion[query], nil
}

func TestBatch_AveragesAcrossQuestions(t *testing.T) {
	r := &stubRetriever{byQuestion: map[string][]retriever.Passage{
		"q1": scored(0.8, 0.6),  // both used
		"q2": scored(0.4, 0.05), // one used
	}}

	agg, err := Batch(context.Background(), r, []string{"q1", "q2"}, 5, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.QuestionsScored)
	assert.Equal(t, 3, agg.TotalUsedDocs)
	assert.Equal(t, 4, agg.TotalDocs)
	assert.InDelta(t, (1.0+0.5)/2, agg.AvgUsageRatio, 1e-9)
}

func TestBatch_EmptyQuestionSet(t *testing.T) {
	agg, err := Batch(context.Background(), &stubRetriever{}, nil, 5, 0.1)
	require.NoError(t, err)
	assert.Equal(t, BatchMetrics{}, agg)
}
