package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/rahul/wakeel/internal/governance"
	"github.com/rahul/wakeel/internal/llm"
	"github.com/rahul/wakeel/internal/tools"
)

// FirstStepMarker stands in for prior context on the first step of a plan.
const FirstStepMarker = "This is the first step."

// Registry tool names used by the executor paths.
const (
	searchToolName  = "web_search"
	imageToolName   = "generate_image"
	sandboxToolName = "run_code"
	readerToolName  = "read_page"
)

const stepUserPrompt = `Original goal: "%s"

%s

Your task: "%s"
%s
Carry out this task accurately and clearly:`

var (
	urlPattern       = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)
	codeFencePattern = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\n?(.*?)```")
)

// StepExecutor runs a single step of a plan.
type StepExecutor interface {
	ExecuteStep(ctx context.Context, task string, tool Tool, goal string, prior []string) (string, error)
}

// Executor carries out a step on the path its tool's descriptor names.
// Non-completion paths go through the tool registry and the policy engine.
type Executor struct {
	LLM      llm.Completer
	Registry *tools.Registry
	Policy   governance.PolicyEngine
	Prompts  *PromptManager
}

func NewExecutor(completer llm.Completer, registry *tools.Registry, policy governance.PolicyEngine, prompts *PromptManager) *Executor {
	return &Executor{
		LLM:      completer,
		Registry: registry,
		Policy:   policy,
		Prompts:  prompts,
	}
}

func (e *Executor) ExecuteStep(ctx context.Context, task string, tool Tool, goal string, prior []string) (string, error) {
	out, err := e.execute(ctx, task, tool, goal, prior)
	if err != nil {
		return "", &StepExecutionError{Task: task, Err: err}
	}
	return out, nil
}

func (e *Executor) execute(ctx context.Context, task string, tool Tool, goal string, prior []string) (string, error) {
	switch Describe(tool).Path {
	case PathSearch:
		return e.callTool(ctx, searchToolName, "query", task, goal)
	case PathImage:
		return e.callTool(ctx, imageToolName, "prompt", task, goal)
	case PathSandbox:
		return e.callTool(ctx, sandboxToolName, "code", extractCode(task), goal)
	case PathReader:
		if pageURL := strings.TrimRight(urlPattern.FindString(task), ".,;:!?"); pageURL != "" {
			page, err := e.callTool(ctx, readerToolName, "url", pageURL, goal)
			if err != nil {
				return "", err
			}
			return e.complete(ctx, tool, goal, prior, task, page)
		}
	}
	return e.complete(ctx, tool, goal, prior, task, "")
}

func (e *Executor) callTool(ctx context.Context, name, param, value, goal string) (string, error) {
	var t tools.Tool
	if e.Registry != nil {
		t = e.Registry.Get(name)
	}
	if t == nil {
		return "", &tools.ConfigurationError{Setting: fmt.Sprintf("tool %q", name)}
	}

	if e.Policy != nil {
		res, err := e.Policy.Evaluate(ctx, governance.Request{Tool: name, Arguments: value, Goal: goal})
		if err != nil {
			return "", fmt.Errorf("policy evaluation failed: %w", err)
		}
		if !res.Allowed() {
			log.Printf("Policy denied %s: %s", name, res.Reason)
			return "", &governance.DeniedError{Tool: name, Reason: res.Reason}
		}
	}

	args, err := json.Marshal(map[string]string{param: value})
	if err != nil {
		return "", err
	}
	return t.Execute(ctx, string(args))
}

func (e *Executor) complete(ctx context.Context, tool Tool, goal string, prior []string, task, material string) (string, error) {
	priorText := FirstStepMarker
	if len(prior) > 0 {
		priorText = "Context from previous steps:\n" + strings.Join(prior, "\n\n")
	}
	if material != "" {
		material = "\nSource material:\n" + material + "\n"
	}

	return e.LLM.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: e.Prompts.SystemPrompt(tool)},
		{Role: llm.RoleUser, Content: fmt.Sprintf(stepUserPrompt, goal, priorText, task, material)},
	})
}

// extractCode returns the body of the first fenced code block, or the whole
// task when it has none.
func extractCode(task string) string {
	if m := codeFencePattern.FindStringSubmatch(task); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(task)
}
