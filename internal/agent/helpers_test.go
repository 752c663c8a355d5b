package agent

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/rahul/wakeel/internal/llm"
	"github.com/rahul/wakeel/internal/tools"
)

// scriptedCompleter answers through a handler and records every request.
type scriptedCompleter struct {
	mu      sync.Mutex
	calls   [][]llm.Message
	handler func(msgs []llm.Message) (string, error)
}

func (c *scriptedCompleter) Complete(ctx context.Context, msgs []llm.Message) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, append([]llm.Message(nil), msgs...))
	c.mu.Unlock()
	return c.handler(msgs)
}

func (c *scriptedCompleter) Calls() [][]llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]llm.Message(nil), c.calls...)
}

// callsWithSystem returns the user content of requests whose system prompt is system.
func (c *scriptedCompleter) callsWithSystem(system string) []string {
	var out []string
	for _, msgs := range c.Calls() {
		if len(msgs) == 2 && msgs[0].Content == system {
			out = append(out, msgs[1].Content)
		}
	}
	return out
}

var taskLine = regexp.MustCompile(`Your task: "(.*)"`)

func stepTask(msgs []llm.Message) string {
	if len(msgs) < 2 {
		return ""
	}
	if m := taskLine.FindStringSubmatch(msgs[1].Content); m != nil {
		return m[1]
	}
	return ""
}

// pipelineCompleter plays planner, step worker and summarizer. Step answers
// come from step; the summary echoes the goal line of the summary request.
func pipelineCompleter(plan string, step func(task string) (string, error), summary func(prompt string) (string, error)) *scriptedCompleter {
	return &scriptedCompleter{handler: func(msgs []llm.Message) (string, error) {
		switch msgs[0].Content {
		case defaultPlannerSystemPrompt:
			return plan, nil
		case defaultSummarizerSystemPrompt:
			return summary(msgs[1].Content)
		default:
			return step(stepTask(msgs))
		}
	}}
}

func echoStep(task string) (string, error) {
	return "done: " + task, nil
}

func okSummary(prompt string) (string, error) {
	return "Final summary", nil
}

// stubTool records the raw JSON input of every call.
type stubTool struct {
	name string
	out  string
	err  error

	mu     sync.Mutex
	inputs []string
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) Description() string { return "stub " + s.name }

func (s *stubTool) Parameters() map[string]any { return map[string]any{"type": "object"} }

func (s *stubTool) Execute(ctx context.Context, input string) (string, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, input)
	s.mu.Unlock()
	return s.out, s.err
}

func (s *stubTool) Inputs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.inputs...)
}

func registryWith(ts ...tools.Tool) *tools.Registry {
	r := tools.NewRegistry()
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

func planLines(lines ...string) string {
	return "Here is the plan:\n" + strings.Join(lines, "\n") + "\nGood luck!"
}
