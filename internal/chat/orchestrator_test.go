package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/faqbot-platform/faqbot/internal/llm"
	"github.com/faqbot-platform/faqbot/internal/memory"
	"github.com/faqbot-platform/faqbot/internal/retriever"
)

type fakeRetriever struct {
	passages []retriever.Passage
	err      error
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, _ int, _ float64) ([]retriever.Passage, error) {
	return f.passages, f.err
}

type fakeMemory struct {
	turns     []memory.Turn
	recentErr error
	appendErr error
	appended  []memory.Turn
	cleared   []string
}

func (f *fakeMemory) Append(_ context.Context, sessionID, question, answer string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, memory.Turn{Question: question, Answer: answer})
	return nil
}

func (f *fakeMemory) Recent(_ context.Context, _ string) ([]memory.Turn, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return f.turns, nil
}

func (f *fakeMemory) Clear(_ context.Context, sessionID string) error {
	f.cleared = append(f.cleared, sessionID)
	return nil
}

type fakeGate struct {
	inDomain bool
}

func (f *fakeGate) InDomain(_ context.Context, _ string, _ []retriever.Passage) bool {
	return f.inDomain
}

// fakeGenerator streams chunks and answers follow-up completions. It records
// the prompts it sees.
type fakeGenerator struct {
	chunks       []string
	streamErr    error
	errAfter     int // stream this many chunks before failing; -1 = all
	followUps    string
	completeErr  error
	lastPrompt   string
	lastFollowUp string
	cancel       context.CancelFunc // if set, called before streamErr fires
}

func (f *fakeGenerator) Complete(_ context.Context, _ string, prompt string) (string, error) {
	f.lastFollowUp = prompt
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.followUps, nil
}

func (f *fakeGenerator) CompleteStreaming(ctx context.Context, _ string, prompt string, fn llm.StreamFunc) error {
	f.lastPrompt = prompt
	n := f.errAfter
	if n < 0 || f.streamErr == nil {
		n = len(f.chunks)
	}
	for i := 0; i < n && i < len(f.chunks); i++ {
		if err := fn(ctx, f.chunks[i]); err != nil {
			return err
		}
	}
	if f.streamErr != nil {
		if f.cancel != nil {
			f.cancel()
		}
		return f.streamErr
	}
	return nil
}

func somePassages() []retriever.Passage {
	return []retriever.Passage{
		{ID: "p1", Question: "미성년자도 판매 회원 등록이 가능한가요?", Answer: "법정대리인 동의가 필요합니다.", Score: 0.62},
		{ID: "p2", Question: "판매 회원 등록 서류는 무엇인가요?", Answer: "사업자등록증 등이 필요합니다.", Score: 0.41},
	}
}

func collectChunks(buf *[]string) ChunkFunc {
	return func(_ context.Context, chunk string) error {
		*buf = append(*buf, chunk)
		return nil
	}
}

func TestAnswer_HappyPath(t *testing.T) {
	mem := &fakeMemory{}
	gen := &fakeGenerator{
		chunks:    []string{"네, ", "가능합니다. ", "법정대리인 동의가 필요해요."},
		errAfter:  -1,
		followUps: "등록에 필요한 서류는 무엇인가요?\n등록 절차는 얼마나 걸리나요?",
	}
	orc := NewOrchestrator(&fakeRetriever{passages: somePassages()}, mem, &fakeGate{inDomain: true}, gen, "decline")

	var chunks []string
	res, err := orc.Answer(context.Background(), AnswerRequest{
		SessionID: "s1",
		Question:  "미성년자도 판매 회원 등록이 가능한가요?",
		TopK:      3,
	}, collectChunks(&chunks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantAnswer := "네, 가능합니다. 법정대리인 동의가 필요해요."
	if res.Answer != wantAnswer {
		t.Errorf("answer = %q, want %q", res.Answer, wantAnswer)
	}
	if strings.Join(chunks, "") != wantAnswer {
		t.Errorf("streamed chunks = %q, want %q", strings.Join(chunks, ""), wantAnswer)
	}
	if len(chunks) != 3 {
		t.Errorf("got %d chunks, want 3", len(chunks))
	}
	if !res.InDomain {
		t.Error("expected InDomain = true")
	}
	if len(res.FollowUps) != 2 {
		t.Fatalf("got %d follow-ups, want 2: %v", len(res.FollowUps), res.FollowUps)
	}
	if got, want := res.PassageIDs, []string{"p1", "p2"}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("passage IDs = %v, want %v", got, want)
	}
	if len(mem.appended) != 1 {
		t.Fatalf("got %d memory turns, want 1", len(mem.appended))
	}
	if mem.appended[0].Answer != wantAnswer {
		t.Errorf("stored answer = %q, want %q", mem.appended[0].Answer, wantAnswer)
	}
}

func TestAnswer_OutOfDomainDeclines(t *testing.T) {
	mem := &fakeMemory{}
	gen := &fakeGenerator{chunks: []string{"should not stream"}}
	const decline = "저는 스마트 스토어 FAQ를 위한 챗봇입니다. 스마트 스토어에 대한 질문을 부탁드립니다."
	orc := NewOrchestrator(&fakeRetriever{}, mem, &fakeGate{inDomain: false}, gen, decline)

	var chunks []string
	res, err := orc.Answer(context.Background(), AnswerRequest{
		SessionID: "s1",
		Question:  "오늘 날씨 어때요?",
		TopK:      3,
	}, collectChunks(&chunks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.InDomain {
		t.Error("expected InDomain = false")
	}
	if res.Answer != decline {
		t.Errorf("answer = %q, want decline message", res.Answer)
	}
	if len(chunks) != 1 || chunks[0] != decline {
		t.Errorf("streamed %v, want exactly the decline message", chunks)
	}
	if res.FollowUps == nil || len(res.FollowUps) != 0 {
		t.Errorf("follow-ups = %v, want empty non-nil slice", res.FollowUps)
	}
	if len(mem.appended) != 0 {
		t.Errorf("declined question must not reach memory, got %d turns", len(mem.appended))
	}
	if gen.lastPrompt != "" {
		t.Error("generator must not run for a declined question")
	}
}

func TestAnswer_RetrievalFailure(t *testing.T) {
	mem := &fakeMemory{}
	orc := NewOrchestrator(
		&fakeRetriever{err: retriever.ErrUnavailable},
		mem, &fakeGate{inDomain: true}, &fakeGenerator{}, "decline",
	)

	var chunks []string
	_, err := orc.Answer(context.Background(), AnswerRequest{SessionID: "s1", Question: "q", TopK: 3}, collectChunks(&chunks))
	if !errors.Is(err, retriever.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("nothing should stream on retrieval failure, got %v", chunks)
	}
	if len(mem.appended) != 0 {
		t.Error("memory must not change on retrieval failure")
	}
}

func TestAnswer_GenerationUnavailable(t *testing.T) {
	gen := &fakeGenerator{streamErr: errors.New("api down"), errAfter: 0}
	orc := NewOrchestrator(&fakeRetriever{passages: somePassages()}, &fakeMemory{}, &fakeGate{inDomain: true}, gen, "decline")

	var chunks []string
	_, err := orc.Answer(context.Background(), AnswerRequest{SessionID: "s1", Question: "q", TopK: 3}, collectChunks(&chunks))
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
}

func TestAnswer_GenerationInterrupted(t *testing.T) {
	mem := &fakeMemory{}
	gen := &fakeGenerator{
		chunks:    []string{"부분 ", "답변"},
		streamErr: errors.New("connection reset"),
		errAfter:  2,
	}
	orc := NewOrchestrator(&fakeRetriever{passages: somePassages()}, mem, &fakeGate{inDomain: true}, gen, "decline")

	var chunks []string
	_, err := orc.Answer(context.Background(), AnswerRequest{SessionID: "s1", Question: "q", TopK: 3}, collectChunks(&chunks))
	if !errors.Is(err, ErrGenerationInterrupted) {
		t.Fatalf("expected ErrGenerationInterrupted, got %v", err)
	}
	if len(chunks) != 2 {
		t.Errorf("the partial chunks should have streamed, got %d", len(chunks))
	}
	if len(mem.appended) != 0 {
		t.Error("an interrupted answer must not be stored")
	}
}

func TestAnswer_FollowUpFailureDegrades(t *testing.T) {
	mem := &fakeMemory{}
	gen := &fakeGenerator{
		chunks:      []string{"답변입니다."},
		errAfter:    -1,
		completeErr: errors.New("followup backend down"),
	}
	orc := NewOrchestrator(&fakeRetriever{passages: somePassages()}, mem, &fakeGate{inDomain: true}, gen, "decline")

	var chunks []string
	res, err := orc.Answer(context.Background(), AnswerRequest{SessionID: "s1", Question: "q", TopK: 3}, collectChunks(&chunks))
	if err != nil {
		t.Fatalf("follow-up failure must not fail the request: %v", err)
	}
	if res.FollowUps == nil || len(res.FollowUps) != 0 {
		t.Errorf("follow-ups = %v, want empty non-nil slice", res.FollowUps)
	}
	if len(mem.appended) != 1 {
		t.Error("the answer must still be stored when follow-ups fail")
	}
}

func TestAnswer_MemoryReadFailureStillAnswers(t *testing.T) {
	mem := &fakeMemory{recentErr: errors.New("redis down")}
	gen := &fakeGenerator{chunks: []string{"답변"}, errAfter: -1, followUps: "후속 질문?"}
	orc := NewOrchestrator(&fakeRetriever{passages: somePassages()}, mem, &fakeGate{inDomain: true}, gen, "decline")

	var chunks []string
	res, err := orc.Answer(context.Background(), AnswerRequest{SessionID: "s1", Question: "q", TopK: 3}, collectChunks(&chunks))
	if err != nil {
		t.Fatalf("memory read failure must not fail the request: %v", err)
	}
	if res.Answer != "답변" {
		t.Errorf("answer = %q", res.Answer)
	}
}

func TestAnswer_PromptCarriesRecentTurns(t *testing.T) {
	mem := &fakeMemory{turns: []memory.Turn{
		{Question: "미성년자도 판매 회원 등록이 가능한가요?", Answer: "법정대리인 동의가 필요합니다."},
	}}
	gen := &fakeGenerator{chunks: []string{"네."}, errAfter: -1}
	orc := NewOrchestrator(&fakeRetriever{passages: somePassages()}, mem, &fakeGate{inDomain: true}, gen, "decline")

	var chunks []string
	_, err := orc.Answer(context.Background(), AnswerRequest{SessionID: "s1", Question: "등록에 필요한 서류 안내해 주세요.", TopK: 3}, collectChunks(&chunks))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gen.lastPrompt, "미성년자도 판매 회원 등록이 가능한가요?") {
		t.Error("prompt must contain the previous question")
	}
	if !strings.Contains(gen.lastPrompt, "등록에 필요한 서류 안내해 주세요.") {
		t.Error("prompt must contain the current question")
	}
}

func TestAnswer_CancellationDuringStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mem := &fakeMemory{}
	gen := &fakeGenerator{
		chunks:    []string{"일부 "},
		streamErr: context.Canceled,
		errAfter:  1,
		cancel:    cancel,
	}
	orc := NewOrchestrator(&fakeRetriever{passages: somePassages()}, mem, &fakeGate{inDomain: true}, gen, "decline")

	var chunks []string
	_, err := orc.Answer(ctx, AnswerRequest{SessionID: "s1", Question: "q", TopK: 3}, collectChunks(&chunks))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if gen.lastFollowUp != "" {
		t.Error("follow-ups must not run after cancellation")
	}
	if len(mem.appended) != 0 {
		t.Error("memory must not change after cancellation")
	}
}
