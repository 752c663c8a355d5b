package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rahul/wakeel/internal/agent"
	"github.com/rahul/wakeel/internal/llm"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeGoal      EventType = "goal"
	EventTypePlan      EventType = "plan"
	EventTypeStep      EventType = "step"
	EventTypeSummary   EventType = "summary"
	EventTypeFailure   EventType = "failure"
	EventTypeHeartbeat EventType = "heartbeat"
	EventTypeLLM       EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger writes JSON events to Out. LLM exchanges are also appended to a
// size-rotated jsonl file.
type Logger struct {
	Out io.Writer

	llmLogPath string
	maxSize    int64
	mu         sync.Mutex
}

func NewLogger(dir string) *Logger {
	if dir == "" {
		dir = "logs"
	}
	return &Logger{
		Out:        os.Stdout,
		llmLogPath: filepath.Join(dir, "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Fprintf(l.Out, "{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.Out, string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

func (l *Logger) LogGoal(runID, goal string) {
	l.Log(Event{
		Type:  EventTypeGoal,
		RunID: runID,
		Data:  map[string]string{"goal": goal},
	})
}

func (l *Logger) LogPlan(runID string, plan agent.Plan) {
	steps := make([]map[string]string, 0, len(plan))
	for _, s := range plan {
		steps = append(steps, map[string]string{"tool": string(s.Tool), "task": s.Task})
	}
	l.Log(Event{
		Type:  EventTypePlan,
		RunID: runID,
		Data:  map[string]any{"steps": steps},
	})
}

func (l *Logger) LogStep(runID string, e agent.ExecutionLogEntry) {
	l.Log(Event{
		Type:  EventTypeStep,
		RunID: runID,
		Data: map[string]any{
			"step":        e.Step,
			"tool":        e.Tool,
			"task":        e.Task,
			"success":     e.Success,
			"duration_ms": e.Duration.Milliseconds(),
		},
	})
}

func (l *Logger) LogSummary(runID string, progress int) {
	l.Log(Event{
		Type:  EventTypeSummary,
		RunID: runID,
		Data:  map[string]int{"progress": progress},
	})
}

func (l *Logger) LogFailure(runID, reason string) {
	l.Log(Event{
		Type:  EventTypeFailure,
		RunID: runID,
		Data:  map[string]string{"error": reason},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(prompt []llm.Message, response string, err error) {
	data := map[string]any{
		"prompt":   prompt,
		"response": response,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	l.Log(Event{Type: EventTypeLLM, Data: data})
}

// RunObserver turns orchestrator state changes into goal, plan, step and
// summary events.
type RunObserver struct {
	logger *Logger

	mu     sync.Mutex
	runID  string
	phase  agent.Phase
	logged int
}

func NewRunObserver(logger *Logger) *RunObserver {
	return &RunObserver{logger: logger}
}

func (o *RunObserver) OnStateChange(s agent.State) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s.RunID != o.runID {
		o.runID = s.RunID
		o.phase = agent.PhaseIdle
		o.logged = 0
		if s.RunID != "" {
			o.logger.LogGoal(s.RunID, s.Goal)
		}
	}
	if s.RunID == "" {
		return
	}

	if s.Phase != o.phase {
		switch s.Phase {
		case agent.PhaseExecuting:
			o.logger.LogPlan(s.RunID, s.Plan)
		case agent.PhaseSummarizing:
			o.logger.LogSummary(s.RunID, s.Progress)
		case agent.PhaseFailed:
			o.logger.LogFailure(s.RunID, s.LastError)
		}
		o.phase = s.Phase
	}

	for ; o.logged < len(s.ExecutionLog); o.logged++ {
		o.logger.LogStep(s.RunID, s.ExecutionLog[o.logged])
	}
}

// LoggingCompleter records every completion exchange with the Logger.
type LoggingCompleter struct {
	Next   llm.Completer
	Logger *Logger
}

func (c LoggingCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	reply, err := c.Next.Complete(ctx, messages)
	c.Logger.LogLLM(messages, reply, err)
	return reply, err
}
