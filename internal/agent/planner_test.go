package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rahul/wakeel/internal/llm"
)

func TestValidateGoal(t *testing.T) {
	tests := []struct {
		goal   string
		reason string
	}{
		{"", "empty"},
		{"   \n\t", "empty"},
		{"x", "too short"},
		{"abcd", "too short"},
		{"  abcd  ", "too short"},
		{"كتاب", "too short"},
		{"abcde", ""},
		{"ابحث عن", ""},
		{strings.Repeat("a", MaxGoalLength), ""},
		{strings.Repeat("ب", MaxGoalLength), ""},
		{strings.Repeat("a", MaxGoalLength+1), "too long"},
	}

	for _, tt := range tests {
		err := ValidateGoal(tt.goal)
		if tt.reason == "" {
			if err != nil {
				t.Errorf("ValidateGoal(%q) unexpected error: %v", tt.goal, err)
			}
			continue
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Reason != tt.reason {
			t.Errorf("ValidateGoal(%q) = %v, want %s", tt.goal, err, tt.reason)
		}
	}
}

func TestParsePlan_ExtractsTaggedLines(t *testing.T) {
	p := NewPlanner(nil, NewRouter(DefaultRules()), nil)
	plan, err := p.ParsePlan(planLines(
		"1. [web_search] find the latest figures",
		"- [data_analysis] analyze the figures",
		"**[content_writer]** write a short report",
	))
	if err != nil {
		t.Fatalf("ParsePlan failed: %v", err)
	}

	want := Plan{
		{Tool: ToolWebSearch, Task: "find the latest figures"},
		{Tool: ToolDataAnalysis, Task: "analyze the figures"},
		{Tool: ToolContentWriter, Task: "write a short report"},
	}
	if len(plan) != len(want) {
		t.Fatalf("expected %d steps, got %+v", len(want), plan)
	}
	for i := range want {
		if plan[i] != want[i] {
			t.Errorf("step %d = %+v, want %+v", i+1, plan[i], want[i])
		}
	}
}

func TestParsePlan_UnknownTagIsRouted(t *testing.T) {
	p := NewPlanner(nil, NewRouter(DefaultRules()), nil)
	plan, err := p.ParsePlan("[translation] translate the report into English")
	if err != nil {
		t.Fatal(err)
	}
	if plan[0].Tool != ToolTranslator {
		t.Errorf("expected translator, got %s", plan[0].Tool)
	}

	p.Router = nil
	plan, err = p.ParsePlan("[mystery] do something")
	if err != nil {
		t.Fatal(err)
	}
	if plan[0].Tool != ToolGeneral {
		t.Errorf("expected general without a router, got %s", plan[0].Tool)
	}
}

func TestParsePlan_NoValidPlan(t *testing.T) {
	p := NewPlanner(nil, nil, nil)
	for _, reply := range []string{"", "I cannot help with that.", "1. search\n2. write"} {
		_, err := p.ParsePlan(reply)
		var pErr *PlanningError
		if !errors.As(err, &pErr) || pErr.Reason != "no valid plan" {
			t.Errorf("ParsePlan(%q) = %v, want no valid plan", reply, err)
		}
	}
}

func numberedPlan(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("%d. [data_analysis] task %d", i+1, i+1)
	}
	return planLines(lines...)
}

func TestParsePlan_Bounds(t *testing.T) {
	p := NewPlanner(nil, nil, nil)

	for _, n := range []int{1, 5, 6, 7} {
		plan, err := p.ParsePlan(numberedPlan(n))
		if err != nil {
			t.Fatalf("%d steps: unexpected error %v", n, err)
		}
		want := n
		if want > MaxPlanSteps {
			want = MaxPlanSteps
		}
		if len(plan) != want {
			t.Errorf("%d steps: expected %d kept, got %d", n, want, len(plan))
		}
		if plan[0].Task != "task 1" {
			t.Errorf("expected plan order to be kept, got %q", plan[0].Task)
		}
	}

	for _, n := range []int{8, 12} {
		_, err := p.ParsePlan(numberedPlan(n))
		var pErr *PlanningError
		if !errors.As(err, &pErr) || pErr.Reason != "too complex" {
			t.Errorf("%d steps: expected too complex, got %v", n, err)
		}
	}
}

func TestParsePlan_TooComplexCountsMalformedLines(t *testing.T) {
	reply := planLines(
		"[web_search] step one",
		"[web_search] step two",
		"[data_analysis] step three",
		"[data_analysis] step four",
		"[content_writer] step five",
		"[content_writer] step six",
		"] reversed [ brackets",
		"[[general]] nested tag",
	)

	_, err := NewPlanner(nil, nil, nil).ParsePlan(reply)
	var pErr *PlanningError
	if !errors.As(err, &pErr) || pErr.Reason != "too complex" {
		t.Errorf("expected too complex, got %v", err)
	}

	// a lone bracket is not a step line and does not count
	plan, err := NewPlanner(nil, nil, nil).ParsePlan(planLines(
		"[web_search] step one",
		"[web_search] step two",
		"[data_analysis] step three",
		"[data_analysis] step four",
		"[content_writer] step five",
		"[content_writer] step six",
		"[general] step seven",
		"see [note",
	))
	if err != nil || len(plan) != MaxPlanSteps {
		t.Errorf("expected %d steps, got %d (%v)", MaxPlanSteps, len(plan), err)
	}
}

func TestParsePlan_MalformedBrackets(t *testing.T) {
	reply := planLines(
		"[web_search] valid search step",
		"[web_search missing close",
		"[[data_analysis]] nested tag",
		"] reversed [ brackets",
		"[content_writer]",
		"[content_writer] valid writing step",
	)

	lenient := NewPlanner(nil, nil, nil)
	plan, err := lenient.ParsePlan(reply)
	if err != nil {
		t.Fatalf("lenient ParsePlan failed: %v", err)
	}
	if len(plan) != 2 || plan[0].Task != "valid search step" || plan[1].Task != "valid writing step" {
		t.Errorf("expected malformed lines to be dropped, got %+v", plan)
	}

	strict := NewPlanner(nil, nil, nil)
	strict.Strict = true
	_, err = strict.ParsePlan(reply)
	var pErr *PlanningError
	if !errors.As(err, &pErr) || !strings.Contains(pErr.Reason, "malformed step") {
		t.Errorf("expected malformed step error, got %v", err)
	}
}

func TestCreatePlan_ValidationSkipsCompletion(t *testing.T) {
	c := &scriptedCompleter{handler: func([]llm.Message) (string, error) {
		return "[general] anything", nil
	}}
	p := NewPlanner(c, nil, nil)

	_, err := p.CreatePlan(context.Background(), "hi")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(c.Calls()) != 0 {
		t.Error("expected no completion request for an invalid goal")
	}
}

func TestCreatePlan_SendsGoalAndTools(t *testing.T) {
	c := &scriptedCompleter{handler: func([]llm.Message) (string, error) {
		return "[web_search] look it up\n[content_writer] write it up", nil
	}}
	p := NewPlanner(c, nil, nil)

	plan, err := p.CreatePlan(context.Background(), "  summarize the week in tech  ")
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan))
	}

	calls := c.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one completion request, got %d", len(calls))
	}
	msgs := calls[0]
	if msgs[0].Role != llm.RoleSystem || msgs[1].Role != llm.RoleUser {
		t.Errorf("unexpected roles: %+v", msgs)
	}
	for _, want := range []string{`Goal: "summarize the week in tech"`, "[web_search]", "[data_analysis]", "[content_writer]"} {
		if !strings.Contains(msgs[1].Content, want) {
			t.Errorf("expected %q in planner prompt", want)
		}
	}
}

func TestCreatePlan_CompletionError(t *testing.T) {
	boom := errors.New("upstream down")
	c := &scriptedCompleter{handler: func([]llm.Message) (string, error) {
		return "", boom
	}}
	_, err := NewPlanner(c, nil, nil).CreatePlan(context.Background(), "a valid goal")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped completion error, got %v", err)
	}
}
