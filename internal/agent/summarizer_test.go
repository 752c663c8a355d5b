package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/rahul/wakeel/internal/llm"
)

func TestDigest_SuccessfulEntriesOnly(t *testing.T) {
	long := strings.Repeat("ن", 250)
	entries := []ExecutionLogEntry{
		{Step: 1, Task: "collect news", Output: long, Success: true},
		{Step: 2, Task: "broken step", Output: "Error: timeout", Success: false},
		{Step: 3, Task: "write report", Output: "short", Success: true},
	}

	digest := Digest(entries)
	if strings.Contains(digest, "broken step") {
		t.Error("failed entries must be excluded")
	}
	want := "✅ collect news\n📋 Result: " + strings.Repeat("ن", digestOutputLimit) + "..."
	if !strings.HasPrefix(digest, want) {
		t.Errorf("expected output cut to %d characters, got %q", digestOutputLimit, digest)
	}
	if !strings.HasSuffix(digest, "✅ write report\n📋 Result: short...") {
		t.Errorf("unexpected digest tail: %q", digest)
	}
}

func TestGenerateFinalSummary_CallsEvenWithoutSuccess(t *testing.T) {
	c := &scriptedCompleter{handler: func(msgs []llm.Message) (string, error) {
		return "generic summary", nil
	}}
	s := NewSummarizer(c, nil)

	out, err := s.GenerateFinalSummary(context.Background(), "my goal", []ExecutionLogEntry{
		{Step: 1, Task: "t", Output: "Error: x", Success: false},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "generic summary" {
		t.Errorf("unexpected summary %q", out)
	}
	calls := c.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected the summary request to be made, got %d calls", len(calls))
	}
	if calls[0][0].Content != defaultSummarizerSystemPrompt || !strings.Contains(calls[0][1].Content, `Goal: "my goal"`) {
		t.Errorf("unexpected summary request: %+v", calls[0])
	}
}
