package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ParsesAndNormalizes(t *testing.T) {
	path := writeCorpus(t, `[
		{"question": " 미성년자도 판매회원 등록이 가능한가요? ", "answer": "만 19세 미만은 법정대리인 동의가 필요합니다.\n\n위 도움말이 도움이 되었나요?", "category": ["회원가입"]},
		{"question": "탈퇴는 어떻게 하나요?", "answer": "판매자센터에서 탈퇴할 수 있습니다."}
	]`)

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "미성년자도 판매회원 등록이 가능한가요?", entries[0].Question)
	assert.Equal(t, "만 19세 미만은 법정대리인 동의가 필요합니다.", entries[0].Answer)
	assert.Equal(t, []string{"회원가입"}, entries[0].Category)
}

func TestLoad_DropsEmptyEntries(t *testing.T) {
	path := writeCorpus(t, `[
		{"question": "", "answer": "답변만 있는 항목"},
		{"question": "질문만 있는 항목", "answer": "위 도움말이 도움이 되었나요?"},
		{"question": "유효한 질문", "answer": "유효한 답변"}
	]`)

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "유효한 질문", entries[0].Question)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeCorpus(t, `{"not": "an array"}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestCleanAnswer_StripsBoilerplate(t *testing.T) {
	got := CleanAnswer("실제 답변 내용입니다.\n\n위 도움말이 도움이 되었나요?\n도움말 닫기")
	assert.Equal(t, "실제 답변 내용입니다.", got)
}

func TestBatches(t *testing.T) {
	entries := []Entry{{Question: "a"}, {Question: "b"}, {Question: "c"}, {Question: "d"}, {Question: "e"}}

	batches := Batches(entries, 2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)

	assert.Nil(t, Batches(nil, 2))
}
