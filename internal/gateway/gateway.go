package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/rahul/wakeel/internal/agent"
	"github.com/rahul/wakeel/internal/llm"
	"github.com/rahul/wakeel/internal/store"
)

// Messenger defines the interface for communication gateways.
type Messenger interface {
	// Start begins the message listening loop and returns when ctx is done
	Start(ctx context.Context) error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

type GoalRunner interface {
	RunGoal(ctx context.Context, goal string) (string, agent.Run, error)
	Snapshot() agent.State
	ClearLog() error
}

type Responder interface {
	Respond(ctx context.Context, message string) (agent.Reply, error)
}

type History interface {
	AddMessage(chatID, role, content string) error
	ClearHistory(chatID string) error
	ListRuns(ctx context.Context, chatID string, limit int) ([]store.RunSummary, error)
}

const (
	logOutputLimit = 150
	runsListLimit  = 5

	helpText = `👋 Send me any message and I will answer it with the best suited agent.

/goal <goal> - plan and carry out a multi-step goal
/status - show the goal in progress
/runs - list your recent goals
/clear - clear the execution log and chat history`
	busyText    = "⏳ I am still working on another goal, please wait for it to finish."
	troubleText = "I'm having trouble thinking right now..."
)

// Handler turns chat text into replies. It is shared by every Messenger.
type Handler struct {
	Goals     GoalRunner
	Assistant Responder
	History   History
}

// Handle processes one incoming message and returns the reply text.
func (h *Handler) Handle(ctx context.Context, chatID, text string) string {
	text = strings.TrimSpace(text)
	cmd, args := splitCommand(text)

	switch cmd {
	case "/start", "/help":
		return helpText
	case "/goal":
		return h.handleGoal(ctx, chatID, args)
	case "/status":
		return formatStatus(h.Goals.Snapshot())
	case "/runs":
		return h.handleRuns(ctx, chatID)
	case "/clear":
		if err := h.Goals.ClearLog(); errors.Is(err, agent.ErrBusy) {
			return busyText
		}
		if h.History != nil {
			if err := h.History.ClearHistory(chatID); err != nil {
				log.Printf("Failed to clear history for %s: %v", chatID, err)
			}
		}
		return "🧹 Cleared."
	}

	h.remember(chatID, llm.RoleUser, text)
	reply, err := h.Assistant.Respond(ctx, text)
	var vErr *agent.ValidationError
	switch {
	case errors.As(err, &vErr):
		return helpText
	case err != nil:
		log.Printf("Error responding to %s: %v", chatID, err)
		return troubleText
	}
	h.remember(chatID, llm.RoleAssistant, reply.Text)
	return reply.Text
}

func (h *Handler) handleGoal(ctx context.Context, chatID, goal string) string {
	if goal == "" {
		return "Usage: /goal <what you want done>"
	}
	h.remember(chatID, llm.RoleUser, goal)

	summary, run, err := h.Goals.RunGoal(store.WithChatID(ctx, chatID), goal)
	if errors.Is(err, agent.ErrBusy) {
		return busyText
	}
	if err != nil {
		log.Printf("Goal failed for %s: %v", chatID, err)
		return troubleText
	}
	h.remember(chatID, llm.RoleAssistant, summary)

	if len(run.Log) == 0 {
		return summary
	}
	return summary + "\n\n" + FormatExecutionLog(run.Log)
}

func (h *Handler) handleRuns(ctx context.Context, chatID string) string {
	if h.History == nil {
		return "No goals yet."
	}
	runs, err := h.History.ListRuns(ctx, chatID, runsListLimit)
	if err != nil {
		log.Printf("Failed to list runs for %s: %v", chatID, err)
		return troubleText
	}
	if len(runs) == 0 {
		return "No goals yet."
	}
	var b strings.Builder
	b.WriteString("🗂 Recent goals:")
	for _, r := range runs {
		icon := "✅"
		if !r.Success {
			icon = "❌"
		}
		fmt.Fprintf(&b, "\n%s %s (%d steps, %s)", icon, r.Goal, r.Steps, r.StartedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func (h *Handler) remember(chatID, role, content string) {
	if h.History == nil {
		return
	}
	if err := h.History.AddMessage(chatID, role, content); err != nil {
		log.Printf("Failed to save message for %s: %v", chatID, err)
	}
}

// FormatExecutionLog renders each step with its output cut to 150 characters.
func FormatExecutionLog(entries []agent.ExecutionLogEntry) string {
	var b strings.Builder
	b.WriteString("📒 Execution log:")
	for _, e := range entries {
		icon := "✅"
		if !e.Success {
			icon = "❌"
		}
		output := []rune(e.Output)
		if len(output) > logOutputLimit {
			output = append(output[:logOutputLimit], []rune("...")...)
		}
		fmt.Fprintf(&b, "\n\n%s Step %d: [%s] %s\nResult: %s", icon, e.Step, e.Tool, e.Task, string(output))
	}
	return b.String()
}

func formatStatus(s agent.State) string {
	if !s.IsProcessing {
		if s.LastError != "" {
			return "💤 Idle. The last goal failed: " + s.LastError
		}
		return "💤 Idle."
	}
	return fmt.Sprintf("🔄 %s (%d%%)\nGoal: %s\n%s", s.Phase, s.Progress, s.Goal, s.CurrentTask)
}

// splitCommand separates a leading /command (with any @botname suffix) from
// its arguments. Plain text yields an empty command.
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, args := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		cmd, args = text[:i], text[i:]
	}
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}
