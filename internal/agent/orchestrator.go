package agent

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is the orchestrator's position in a goal run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlanning
	PhaseExecuting
	PhaseSummarizing
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePlanning:
		return "planning"
	case PhaseExecuting:
		return "executing"
	case PhaseSummarizing:
		return "summarizing"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ExecutionLogEntry records the outcome of one plan step. Entries are never
// changed after they are appended.
type ExecutionLogEntry struct {
	Step      int
	Tool      Tool
	Task      string
	Output    string
	Timestamp time.Time
	Duration  time.Duration
	Success   bool
}

// State is a point-in-time view of the orchestrator.
type State struct {
	RunID        string
	Goal         string
	Phase        Phase
	IsProcessing bool
	CurrentTask  string
	Progress     int
	Plan         Plan
	ExecutionLog []ExecutionLogEntry
	LastError    string
}

func (s State) clone() State {
	s.Plan = append(Plan(nil), s.Plan...)
	s.ExecutionLog = append([]ExecutionLogEntry(nil), s.ExecutionLog...)
	return s
}

// Observer is notified with a copy of the state after every change.
type Observer interface {
	OnStateChange(State)
}

type ObserverFunc func(State)

func (f ObserverFunc) OnStateChange(s State) {
	f(s)
}

// Run is a finished goal run handed to a RunRecorder.
type Run struct {
	ID         string
	Goal       string
	Result     string
	Error      string
	Success    bool
	StartedAt  time.Time
	FinishedAt time.Time
	Log        []ExecutionLogEntry
}

type RunRecorder interface {
	RecordRun(ctx context.Context, run Run) error
}

const apologyFormat = "❌ Sorry, I ran into a problem: %s\n\nPlease try again with a clearer goal."

// Orchestrator runs one goal at a time through planning, step execution and
// summarization.
type Orchestrator struct {
	Planner    *Planner
	Executor   StepExecutor
	Summarizer *Summarizer
	// StepDelay paces progress updates between steps.
	StepDelay time.Duration
	Recorder  RunRecorder

	mu        sync.Mutex
	state     State
	observers []Observer
}

func NewOrchestrator(planner *Planner, executor StepExecutor, summarizer *Summarizer, stepDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		Planner:    planner,
		Executor:   executor,
		Summarizer: summarizer,
		StepDelay:  stepDelay,
	}
}

func (o *Orchestrator) Subscribe(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, obs)
}

func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// ProcessGoal plans, executes and summarizes goal. Failures are reported as
// an apology in the returned text; the only error is ErrBusy, returned
// without touching state when another goal is in flight.
func (o *Orchestrator) ProcessGoal(ctx context.Context, goal string) (string, error) {
	reply, _, err := o.RunGoal(ctx, goal)
	return reply, err
}

// RunGoal is ProcessGoal that also returns the finished run. The run is
// captured as the goal ends, so a goal submitted right after cannot leak
// into it.
func (o *Orchestrator) RunGoal(ctx context.Context, goal string) (string, Run, error) {
	o.mu.Lock()
	if o.state.Phase != PhaseIdle {
		o.mu.Unlock()
		return "", Run{}, ErrBusy
	}
	o.state = State{
		RunID:        uuid.NewString(),
		Goal:         goal,
		Phase:        PhasePlanning,
		IsProcessing: true,
		CurrentTask:  "🎯 Analyzing the goal...",
		Progress:     5,
	}
	runID := o.state.RunID
	o.mu.Unlock()
	o.publish()
	defer o.release(runID)

	started := time.Now()
	summary, err := o.run(ctx, goal)
	if err != nil {
		log.Printf("Goal %s failed: %v", runID, err)
		run := o.finish(started, summary, err, func(s *State) {
			s.Phase = PhaseFailed
			s.CurrentTask = ""
			s.Progress = 0
			s.LastError = err.Error()
		})
		o.record(ctx, run)
		return fmt.Sprintf(apologyFormat, err), run, nil
	}

	run := o.finish(started, summary, nil, func(s *State) {
		s.Phase = PhaseIdle
		s.IsProcessing = false
		s.CurrentTask = ""
		s.Progress = 100
	})
	o.record(ctx, run)
	return summary, run, nil
}

// finish applies the final state change of a run and captures the run in the
// same critical section.
func (o *Orchestrator) finish(started time.Time, result string, runErr error, fn func(s *State)) Run {
	o.mu.Lock()
	fn(&o.state)
	run := Run{
		ID:         o.state.RunID,
		Goal:       o.state.Goal,
		Result:     result,
		Success:    runErr == nil,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Log:        append([]ExecutionLogEntry(nil), o.state.ExecutionLog...),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	o.mu.Unlock()
	o.publish()
	return run
}

func (o *Orchestrator) run(ctx context.Context, goal string) (string, error) {
	plan, err := o.Planner.CreatePlan(ctx, goal)
	if err != nil {
		return "", err
	}
	o.update(func(s *State) {
		s.Phase = PhaseExecuting
		s.Plan = plan
		s.CurrentTask = fmt.Sprintf("📋 Created a plan with %d steps", len(plan))
		s.Progress = 15
	})

	var prior []string
	for i, step := range plan {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		progress := 15 + int(math.Round(float64(i+1)/float64(len(plan))*60))
		o.update(func(s *State) {
			s.CurrentTask = fmt.Sprintf("⏳ Step %d/%d: %s", i+1, len(plan), step.Task)
			s.Progress = progress
		})

		start := time.Now()
		success := true
		output, err := o.Executor.ExecuteStep(ctx, step.Task, step.Tool, goal, prior)
		if err != nil {
			success = false
			output = "Error: " + err.Error()
			log.Printf("Step %d failed: %v", i+1, err)
		}
		// failed steps are passed on as context like any other output
		prior = append(prior, output)

		entry := ExecutionLogEntry{
			Step:      i + 1,
			Tool:      step.Tool,
			Task:      step.Task,
			Output:    output,
			Timestamp: time.Now(),
			Duration:  time.Since(start),
			Success:   success,
		}
		o.update(func(s *State) {
			s.ExecutionLog = append(s.ExecutionLog, entry)
		})

		if i < len(plan)-1 {
			if err := sleep(ctx, o.StepDelay); err != nil {
				return "", err
			}
		}
	}

	var entries []ExecutionLogEntry
	o.update(func(s *State) {
		s.Phase = PhaseSummarizing
		s.CurrentTask = "📝 Writing the final report..."
		s.Progress = 85
		entries = append(entries, s.ExecutionLog...)
	})
	return o.Summarizer.GenerateFinalSummary(ctx, goal, entries)
}

// ClearLog drops the execution log of the last run.
func (o *Orchestrator) ClearLog() error {
	o.mu.Lock()
	if o.state.IsProcessing {
		o.mu.Unlock()
		return ErrBusy
	}
	o.state.ExecutionLog = nil
	o.state.Plan = nil
	o.state.Progress = 0
	o.state.LastError = ""
	o.mu.Unlock()
	o.publish()
	return nil
}

// ResetState returns the orchestrator to its initial idle state.
func (o *Orchestrator) ResetState() error {
	o.mu.Lock()
	if o.state.IsProcessing {
		o.mu.Unlock()
		return ErrBusy
	}
	o.state = State{Phase: PhaseIdle}
	o.mu.Unlock()
	o.publish()
	return nil
}

// release leaves the orchestrator idle once run runID ends. A run that has
// already started after it is left alone.
func (o *Orchestrator) release(runID string) {
	o.mu.Lock()
	if o.state.RunID != runID || (o.state.Phase == PhaseIdle && !o.state.IsProcessing) {
		o.mu.Unlock()
		return
	}
	o.state.Phase = PhaseIdle
	o.state.IsProcessing = false
	o.state.CurrentTask = ""
	o.mu.Unlock()
	o.publish()
}

func (o *Orchestrator) update(fn func(s *State)) {
	o.mu.Lock()
	fn(&o.state)
	o.mu.Unlock()
	o.publish()
}

func (o *Orchestrator) publish() {
	o.mu.Lock()
	snap := o.state.clone()
	observers := append([]Observer(nil), o.observers...)
	o.mu.Unlock()
	for _, obs := range observers {
		obs.OnStateChange(snap)
	}
}

func (o *Orchestrator) record(ctx context.Context, run Run) {
	if o.Recorder == nil {
		return
	}
	if err := o.Recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		log.Printf("Failed to record run %s: %v", run.ID, err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
