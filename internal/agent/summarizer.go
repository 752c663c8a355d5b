package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul/wakeel/internal/llm"
)

const digestOutputLimit = 200

const defaultSummarizerSystemPrompt = "You are a professional writer who specializes in comprehensive, useful summaries."

const summaryUserPrompt = `Based on the goal and the results, write a comprehensive and useful final summary.

Goal: "%s"

Results achieved:
%s

Write a final summary that answers the original goal:`

type Summarizer struct {
	LLM     llm.Completer
	Prompts *PromptManager
}

func NewSummarizer(completer llm.Completer, prompts *PromptManager) *Summarizer {
	return &Summarizer{LLM: completer, Prompts: prompts}
}

// GenerateFinalSummary asks for a synthesis of the successful steps. The
// request is made even when no step succeeded.
func (s *Summarizer) GenerateFinalSummary(ctx context.Context, goal string, log []ExecutionLogEntry) (string, error) {
	return s.LLM.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: s.Prompts.SummarizerPrompt()},
		{Role: llm.RoleUser, Content: fmt.Sprintf(summaryUserPrompt, goal, Digest(log))},
	})
}

// Digest lists each successful entry with its output cut to 200 characters.
func Digest(log []ExecutionLogEntry) string {
	var parts []string
	for _, entry := range log {
		if !entry.Success {
			continue
		}
		parts = append(parts, fmt.Sprintf("✅ %s\n📋 Result: %s...", entry.Task, truncateRunes(entry.Output, digestOutputLimit)))
	}
	return strings.Join(parts, "\n\n")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
