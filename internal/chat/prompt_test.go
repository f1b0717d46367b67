package chat

import (
	"strings"
	"testing"

	"github.com/faqbot-platform/faqbot/internal/memory"
	"github.com/faqbot-platform/faqbot/internal/retriever"
)

func TestComposePrompt_Ordering(t *testing.T) {
	turns := []memory.Turn{
		{Question: "첫 번째 질문", Answer: "첫 번째 답변"},
		{Question: "두 번째 질문", Answer: "두 번째 답변"},
	}
	passages := []retriever.Passage{
		{Question: "FAQ 질문", Answer: "FAQ 답변", Score: 0.7},
	}

	prompt := composePrompt("현재 질문", turns, passages)

	history := strings.Index(prompt, "이전 대화:")
	faq := strings.Index(prompt, "관련 FAQ:")
	current := strings.Index(prompt, "사용자 질문: 현재 질문")
	if history < 0 || faq < 0 || current < 0 {
		t.Fatalf("prompt missing a section:\n%s", prompt)
	}
	if !(history < faq && faq < current) {
		t.Errorf("sections out of order: history=%d faq=%d current=%d", history, faq, current)
	}

	first := strings.Index(prompt, "첫 번째 질문")
	second := strings.Index(prompt, "두 번째 질문")
	if !(first < second) {
		t.Error("turns must appear oldest first")
	}
}

func TestComposePrompt_NoHistory(t *testing.T) {
	prompt := composePrompt("질문", nil, []retriever.Passage{{Question: "Q", Answer: "A"}})
	if strings.Contains(prompt, "이전 대화:") {
		t.Error("history section must be absent for a fresh session")
	}
}

func TestComposePrompt_TruncatesLongAnswers(t *testing.T) {
	long := strings.Repeat("가", 300)
	turns := []memory.Turn{{Question: "질문", Answer: long}}

	prompt := composePrompt("현재", turns, nil)
	if strings.Contains(prompt, long) {
		t.Error("stored answer should be truncated in the prompt")
	}
	if !strings.Contains(prompt, strings.Repeat("가", turnAnswerPreview)+"...") {
		t.Error("truncated answer should end with an ellipsis")
	}
}

func TestParseFollowUps(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "plain lines",
			in:   "배송 조회는 어떻게 하나요?\n반품 절차가 궁금해요",
			want: []string{"배송 조회는 어떻게 하나요?", "반품 절차가 궁금해요"},
		},
		{
			name: "bulleted",
			in:   "- 첫 질문\n* 둘째 질문\n• 셋째 질문",
			want: []string{"첫 질문", "둘째 질문", "셋째 질문"},
		},
		{
			name: "numbered",
			in:   "1. 첫 질문\n2) 둘째 질문",
			want: []string{"첫 질문", "둘째 질문"},
		},
		{
			name: "caps at max",
			in:   "하나\n둘\n셋\n넷\n다섯",
			want: []string{"하나", "둘", "셋"},
		},
		{
			name: "skips blank lines",
			in:   "\n\n질문 하나\n\n",
			want: []string{"질문 하나"},
		},
		{
			name: "empty input",
			in:   "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFollowUps(tt.in, maxFollowUps)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("짧다", 100); got != "짧다" {
		t.Errorf("short strings pass through, got %q", got)
	}
	if got := truncateRunes(strings.Repeat("가", 5), 3); got != "가가가..." {
		t.Errorf("got %q", got)
	}
}
