package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rahul/wakeel/internal/llm"
)

const (
	MinGoalLength = 5
	MaxGoalLength = 500

	// MaxPlanSteps is the number of steps kept after parsing.
	MaxPlanSteps = 5
	// maxParsedSteps is the most bracketed lines a reply may contain before
	// the goal is considered too complex. Malformed lines count too.
	maxParsedSteps = 7
)

const defaultPlannerSystemPrompt = "You are an expert planner. Write a clear, specific plan."

const plannerUserPrompt = `You are an expert in task planning. Break the following goal into clear, sequential steps.

Use the following tools:
- [web_search] to look up recent information
- [data_analysis] to analyze information and data
- [content_writer] to write reports and summaries

Goal: "%s"

Write 3-5 specific, clear steps, one per line, each starting with its tool tag:`

var (
	tagPattern        = regexp.MustCompile(`\[(.*?)\]`)
	leadingTagPattern = regexp.MustCompile(`\[.*?\]\s*`)
	listMarkerPattern = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)
)

type PlanStep struct {
	Tool Tool
	Task string
}

type Plan []PlanStep

// Planner turns a goal into a bounded plan by asking the completion service
// for tagged steps and parsing its reply.
type Planner struct {
	LLM     llm.Completer
	Router  *Router
	Prompts *PromptManager
	// Strict fails the whole plan on a malformed tag instead of dropping the line.
	Strict bool
}

func NewPlanner(completer llm.Completer, router *Router, prompts *PromptManager) *Planner {
	return &Planner{LLM: completer, Router: router, Prompts: prompts}
}

// ValidateGoal checks the trimmed goal length in characters.
func ValidateGoal(goal string) error {
	trimmed := strings.TrimSpace(goal)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n == 0:
		return &ValidationError{Reason: "empty"}
	case n < MinGoalLength:
		return &ValidationError{Reason: "too short"}
	case n > MaxGoalLength:
		return &ValidationError{Reason: "too long"}
	}
	return nil
}

func (p *Planner) CreatePlan(ctx context.Context, goal string) (Plan, error) {
	if err := ValidateGoal(goal); err != nil {
		return nil, err
	}

	reply, err := p.LLM.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: p.Prompts.PlannerPrompt()},
		{Role: llm.RoleUser, Content: fmt.Sprintf(plannerUserPrompt, strings.TrimSpace(goal))},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return p.ParsePlan(reply)
}

// ParsePlan extracts tagged steps from a completion reply and bounds them.
func (p *Planner) ParsePlan(reply string) (Plan, error) {
	var plan Plan
	// complexity counts every bracketed line, usable or not
	bracketed := 0
	for _, raw := range strings.Split(reply, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.Contains(line, "[") && !strings.Contains(line, "]") {
			continue
		}
		if strings.Contains(line, "[") && strings.Contains(line, "]") {
			bracketed++
		}
		step, ok := p.parseLine(line)
		if !ok {
			if p.Strict {
				return nil, &PlanningError{Reason: fmt.Sprintf("malformed step: %s", line)}
			}
			continue
		}
		plan = append(plan, step)
	}

	if bracketed > maxParsedSteps {
		return nil, &PlanningError{Reason: "too complex"}
	}
	if len(plan) == 0 {
		return nil, &PlanningError{Reason: "no valid plan"}
	}
	if len(plan) > MaxPlanSteps {
		plan = plan[:MaxPlanSteps]
	}
	return plan, nil
}

func (p *Planner) parseLine(line string) (PlanStep, bool) {
	if !wellFormedBrackets(line) {
		return PlanStep{}, false
	}
	m := tagPattern.FindStringSubmatch(line)
	if m == nil {
		return PlanStep{}, false
	}

	task := strings.TrimSpace(removeFirstTag(line))
	task = strings.TrimSpace(listMarkerPattern.ReplaceAllString(task, ""))
	task = strings.Trim(task, "*_ ")
	if task == "" {
		return PlanStep{}, false
	}

	tool, ok := ParseTool(m[1])
	if !ok {
		tool = p.Router.SelectBestAgent(task)
	}
	return PlanStep{Tool: tool, Task: task}, true
}

func removeFirstTag(line string) string {
	loc := leadingTagPattern.FindStringIndex(line)
	if loc == nil {
		return line
	}
	return line[:loc[0]] + line[loc[1]:]
}

// wellFormedBrackets reports whether every '[' is closed before the next one
// opens and no ']' appears unopened.
func wellFormedBrackets(line string) bool {
	open := false
	for _, r := range line {
		switch r {
		case '[':
			if open {
				return false
			}
			open = true
		case ']':
			if !open {
				return false
			}
			open = false
		}
	}
	return !open
}
