package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faqbot-platform/faqbot/internal/llm"
	"github.com/faqbot-platform/faqbot/internal/retriever"
)

type fakeClassifier struct {
	answer string
	err    error
	called bool
}

func (f *fakeClassifier) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.called = true
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeClassifier) CompleteStreaming(ctx context.Context, system, prompt string, fn llm.StreamFunc) error {
	return errors.New("not used")
}

func passagesWithBest(score float64) []retriever.Passage {
	return []retriever.Passage{
		{ID: "1", Question: "판매회원 등록", Answer: "등록 안내", Score: score},
		{ID: "2", Question: "서류 안내", Answer: "서류 목록", Score: score - 0.05},
	}
}

func TestInDomain_EmptyPassagesIsOutOfDomain(t *testing.T) {
	g := New(0.3, 0, nil)
	assert.False(t, g.InDomain(context.Background(), "오늘 날씨 어때요?", nil))
}

func TestInDomain_BelowFloorIsOutOfDomain(t *testing.T) {
	g := New(0.3, 0, nil)
	assert.False(t, g.InDomain(context.Background(), "오늘 날씨 어때요?", passagesWithBest(0.12)))
}

func TestInDomain_AtOrAboveFloorIsInDomain(t *testing.T) {
	g := New(0.3, 0, nil)
	assert.True(t, g.InDomain(context.Background(), "미성년자도 판매회원 등록이 가능한가요?", passagesWithBest(0.3)))
	assert.True(t, g.InDomain(context.Background(), "미성년자도 판매회원 등록이 가능한가요?", passagesWithBest(0.82)))
}

func TestInDomain_EscalatesInsideBand(t *testing.T) {
	cls := &fakeClassifier{answer: "아니오"}
	g := New(0.3, 0.1, cls)

	assert.False(t, g.InDomain(context.Background(), "애매한 질문", passagesWithBest(0.35)))
	assert.True(t, cls.called)
}

func TestInDomain_EscalationConfirms(t *testing.T) {
	cls := &fakeClassifier{answer: "예"}
	g := New(0.3, 0.1, cls)

	assert.True(t, g.InDomain(context.Background(), "애매한 질문", passagesWithBest(0.35)))
}

func TestInDomain_AboveBandSkipsClassifier(t *testing.T) {
	cls := &fakeClassifier{answer: "아니오"}
	g := New(0.3, 0.1, cls)

	assert.True(t, g.InDomain(context.Background(), "명확한 질문", passagesWithBest(0.6)))
	assert.False(t, cls.called)
}

func TestInDomain_ClassifierFailureFallsBackToFloor(t *testing.T) {
	cls := &fakeClassifier{err: errors.New("service down")}
	g := New(0.3, 0.1, cls)

	assert.True(t, g.InDomain(context.Background(), "애매한 질문", passagesWithBest(0.35)))
}
