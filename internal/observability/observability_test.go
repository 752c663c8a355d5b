package observability

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rahul/wakeel/internal/agent"
	"github.com/rahul/wakeel/internal/llm"
)

func decodeEvents(t *testing.T, buf *bytes.Buffer) []Event {
	t.Helper()
	var events []Event
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var e Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("invalid event line %q: %v", sc.Text(), err)
		}
		events = append(events, e)
	}
	return events
}

func TestRunObserver_EmitsRunEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(t.TempDir())
	logger.Out = &buf
	obs := NewRunObserver(logger)

	plan := agent.Plan{{Tool: agent.ToolWebSearch, Task: "search"}, {Tool: agent.ToolContentWriter, Task: "write"}}
	step1 := agent.ExecutionLogEntry{Step: 1, Tool: agent.ToolWebSearch, Task: "search", Success: true}
	step2 := agent.ExecutionLogEntry{Step: 2, Tool: agent.ToolContentWriter, Task: "write", Success: true}

	states := []agent.State{
		{RunID: "r1", Goal: "find news", Phase: agent.PhasePlanning, Progress: 5},
		{RunID: "r1", Goal: "find news", Phase: agent.PhaseExecuting, Plan: plan, Progress: 15},
		{RunID: "r1", Goal: "find news", Phase: agent.PhaseExecuting, Plan: plan, Progress: 45},
		{RunID: "r1", Goal: "find news", Phase: agent.PhaseExecuting, Plan: plan, Progress: 45, ExecutionLog: []agent.ExecutionLogEntry{step1}},
		{RunID: "r1", Goal: "find news", Phase: agent.PhaseExecuting, Plan: plan, Progress: 75, ExecutionLog: []agent.ExecutionLogEntry{step1, step2}},
		{RunID: "r1", Goal: "find news", Phase: agent.PhaseSummarizing, Plan: plan, Progress: 85, ExecutionLog: []agent.ExecutionLogEntry{step1, step2}},
		{RunID: "r1", Goal: "find news", Phase: agent.PhaseIdle, Plan: plan, Progress: 100, ExecutionLog: []agent.ExecutionLogEntry{step1, step2}},
	}
	for _, s := range states {
		obs.OnStateChange(s)
	}

	var types []EventType
	for _, e := range decodeEvents(t, &buf) {
		if e.RunID != "r1" {
			t.Errorf("expected run id r1, got %q", e.RunID)
		}
		types = append(types, e.Type)
	}
	want := []EventType{EventTypeGoal, EventTypePlan, EventTypeStep, EventTypeStep, EventTypeSummary}
	if len(types) != len(want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], types[i])
		}
	}
}

func TestRunObserver_Failure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(t.TempDir())
	logger.Out = &buf
	obs := NewRunObserver(logger)

	obs.OnStateChange(agent.State{RunID: "r2", Phase: agent.PhasePlanning})
	obs.OnStateChange(agent.State{RunID: "r2", Phase: agent.PhaseFailed, LastError: "planning failed: no steps"})
	obs.OnStateChange(agent.State{RunID: "r2", Phase: agent.PhaseIdle})

	events := decodeEvents(t, &buf)
	if len(events) != 2 || events[1].Type != EventTypeFailure {
		t.Fatalf("unexpected events: %+v", events)
	}
	data, _ := events[1].Data.(map[string]any)
	if data["error"] != "planning failed: no steps" {
		t.Errorf("unexpected failure data: %v", events[1].Data)
	}
}

type fixedCompleter struct {
	reply string
	err   error
}

func (f fixedCompleter) Complete(context.Context, []llm.Message) (string, error) {
	return f.reply, f.err
}

func TestLoggingCompleter_WritesLLMLog(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger := NewLogger(dir)
	logger.Out = &buf

	c := LoggingCompleter{Next: fixedCompleter{reply: "hello"}, Logger: logger}
	reply, err := c.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	if err != nil || reply != "hello" {
		t.Fatalf("unexpected result %q, %v", reply, err)
	}

	boom := errors.New("boom")
	c.Next = fixedCompleter{err: boom}
	if _, err := c.Complete(context.Background(), nil); !errors.Is(err, boom) {
		t.Errorf("expected error to pass through, got %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "llm.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 llm log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"response":"hello"`) || !strings.Contains(lines[1], `"error":"boom"`) {
		t.Errorf("unexpected llm log: %s", data)
	}
}

func TestLogger_RotatesLLMLog(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(dir)
	logger.Out = &bytes.Buffer{}
	logger.maxSize = 10

	logger.LogLLM(nil, "first response", nil)
	logger.LogLLM(nil, "second response", nil)

	old, err := os.ReadFile(filepath.Join(dir, "llm.jsonl.old"))
	if err != nil {
		t.Fatalf("expected rotated file: %v", err)
	}
	if !strings.Contains(string(old), "first response") {
		t.Errorf("unexpected rotated content: %s", old)
	}
	cur, _ := os.ReadFile(filepath.Join(dir, "llm.jsonl"))
	if !strings.Contains(string(cur), "second response") || strings.Contains(string(cur), "first response") {
		t.Errorf("unexpected current content: %s", cur)
	}
}

func TestStatusBoard(t *testing.T) {
	t.Cleanup(func() { SetStatus(agent.PhaseIdle, "", 0) })

	StatusBoard{}.OnStateChange(agent.State{Phase: agent.PhaseExecuting, CurrentTask: "⏳ Step 1/2: search", Progress: 45})
	got := GetStatus()
	if got.Phase != agent.PhaseExecuting || got.Progress != 45 || got.ActiveTask != "⏳ Step 1/2: search" {
		t.Errorf("unexpected status: %+v", got)
	}

	line := formatStatus(got, time.Minute, 12, 40)
	for _, want := range []string{"EXECUTING", " 45%", "████████▒"} {
		if !strings.Contains(line, want) {
			t.Errorf("status line missing %q: %q", want, line)
		}
	}
}
