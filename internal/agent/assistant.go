package agent

import (
	"context"
	"strings"
)

type Reply struct {
	Tool Tool
	Text string
}

// Assistant answers a single chat message with one routed tool invocation.
// It runs outside the orchestrator and is not limited to one call at a time.
type Assistant struct {
	Router   *Router
	Executor StepExecutor
}

func NewAssistant(router *Router, executor StepExecutor) *Assistant {
	return &Assistant{Router: router, Executor: executor}
}

func (a *Assistant) Respond(ctx context.Context, message string) (Reply, error) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return Reply{}, &ValidationError{Reason: "empty"}
	}
	tool := a.Router.SelectBestAgent(msg)
	text, err := a.Executor.ExecuteStep(ctx, msg, tool, msg, nil)
	if err != nil {
		return Reply{Tool: tool}, err
	}
	return Reply{Tool: tool, Text: text}, nil
}
