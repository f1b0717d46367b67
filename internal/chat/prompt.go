package chat

import (
	"fmt"
	"strings"

	"github.com/faqbot-platform/faqbot/internal/memory"
	"github.com/faqbot-platform/faqbot/internal/retriever"
)

const answerSystemPrompt = `당신은 네이버 스마트스토어 전문 상담사입니다.
제공된 FAQ 정보만을 바탕으로 정확하고 친절하게 답변해주세요.
FAQ에 없는 내용은 지어내지 말고, 스마트스토어 범위를 벗어나는 내용은 답변하지 마세요.
사용자가 이해하기 쉽도록 명확하고 구체적으로 설명해주세요.`

const followUpSystemPrompt = `사용자의 질문과 챗봇의 답변을 보고, 사용자가 이어서 궁금해할 만한 후속 질문을 1~3개 만들어주세요.
각 질문은 짧은 한 문장으로, 한 줄에 하나씩만 출력하세요. 다른 설명은 붙이지 마세요.`

// turnAnswerPreview bounds how much of a past answer is replayed into the
// prompt.
const turnAnswerPreview = 100

// composePrompt builds the user prompt: recent turns most-recent-last,
// passages in descending score order, then the current question.
func composePrompt(question string, turns []memory.Turn, passages []retriever.Passage) string {
	var b strings.Builder

	if len(turns) > 0 {
		b.WriteString("이전 대화:\n")
		for i, turn := range turns {
			fmt.Fprintf(&b, "대화%d - 질문: %s\n", i+1, turn.Question)
			fmt.Fprintf(&b, "대화%d - 답변: %s\n", i+1, truncateRunes(turn.Answer, turnAnswerPreview))
		}
		b.WriteString("\n")
	}

	b.WriteString("관련 FAQ:\n")
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", p.Question, p.Answer)
	}

	fmt.Fprintf(&b, "\n사용자 질문: %s\n\n위 FAQ를 참고하여 답변해주세요.", question)
	return b.String()
}

func composeFollowUpPrompt(question, answer string) string {
	return fmt.Sprintf("질문: %s\n답변: %s", question, answer)
}

// parseFollowUps extracts up to max follow-up questions, one per line,
// stripping list markers the model tends to add.
func parseFollowUps(text string, max int) []string {
	followUps := make([]string, 0, max)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•")
		if i := strings.IndexAny(line, ".)"); i >= 0 && i <= 2 && isDigits(line[:i]) {
			line = line[i+1:]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		followUps = append(followUps, line)
		if len(followUps) == max {
			break
		}
	}
	return followUps
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
