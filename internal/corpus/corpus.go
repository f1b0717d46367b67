package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one FAQ entry from the prepared corpus file.
type Entry struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category []string `json:"category,omitempty"`
	Keywords []string `json:"related_keywords,omitempty"`
}

// Answer bodies end with helpdesk boilerplate that adds nothing to retrieval
// or generation; it gets stripped during normalization.
var boilerplateMarkers = []string{
	"위 도움말이 도움이 되었나요?",
	"도움말 닫기",
}

// Load reads FAQ entries from a JSON array file and normalizes them. Entries
// left with an empty question or answer are dropped.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}

	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing corpus file: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		e.Question = strings.TrimSpace(e.Question)
		e.Answer = CleanAnswer(e.Answer)
		if e.Question == "" || e.Answer == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// CleanAnswer trims whitespace and cuts trailing helpdesk boilerplate.
func CleanAnswer(answer string) string {
	for _, marker := range boilerplateMarkers {
		if i := strings.Index(answer, marker); i >= 0 {
			answer = answer[:i]
		}
	}
	return strings.TrimSpace(answer)
}

// Batches splits entries into chunks of at most size, for batched embedding
// calls.
func Batches(entries []Entry, size int) [][]Entry {
	if size < 1 {
		size = 1
	}
	var batches [][]Entry
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		batches = append(batches, entries[start:end])
	}
	return batches
}
