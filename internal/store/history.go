package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/rahul/wakeel/internal/agent"
	"github.com/rahul/wakeel/internal/llm"
)

// HistoryStore persists chat messages and finished goal runs in sqlite.
type HistoryStore struct {
	DB *sql.DB
}

func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT,
			role TEXT,
			content TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			chat_id TEXT,
			goal TEXT,
			result TEXT,
			error TEXT,
			success INTEGER,
			started_at INTEGER,
			finished_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS run_steps (
			run_id TEXT,
			step INTEGER,
			tool TEXT,
			task TEXT,
			output TEXT,
			success INTEGER,
			duration_ms INTEGER,
			timestamp INTEGER,
			PRIMARY KEY (run_id, step)
		);`,
	}
	for _, q := range queries {
		_, err = db.Exec(q)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return &HistoryStore{DB: db}, nil
}

func (h *HistoryStore) Close() error {
	return h.DB.Close()
}

func (h *HistoryStore) AddMessage(chatID string, role string, content string) error {
	query := `INSERT INTO messages (chat_id, role, content) VALUES (?, ?, ?)`
	_, err := h.DB.Exec(query, chatID, role, content)
	return err
}

// GetHistory returns the last limit messages of a chat in chronological order.
func (h *HistoryStore) GetHistory(chatID string, limit int) ([]llm.Message, error) {
	query := `SELECT role, content FROM messages WHERE chat_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := h.DB.Query(query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []llm.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}
		switch role {
		case llm.RoleSystem, llm.RoleAssistant:
		default:
			role = llm.RoleUser
		}
		history = append(history, llm.Message{Role: role, Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}

	return history, nil
}

func (h *HistoryStore) ClearHistory(chatID string) error {
	_, err := h.DB.Exec(`DELETE FROM messages WHERE chat_id = ?`, chatID)
	return err
}

type chatIDKey struct{}

// WithChatID tags ctx with the chat a goal was submitted from, so RecordRun
// can link the run to it.
func WithChatID(ctx context.Context, chatID string) context.Context {
	return context.WithValue(ctx, chatIDKey{}, chatID)
}

func chatIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(chatIDKey{}).(string)
	return id
}

// RecordRun stores a finished run with its execution log.
func (h *HistoryStore) RecordRun(ctx context.Context, run agent.Run) error {
	return h.SaveRun(ctx, chatIDFrom(ctx), run)
}

// SaveRun stores a run for a chat. A run without an ID is given one.
func (h *HistoryStore) SaveRun(ctx context.Context, chatID string, run agent.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, chat_id, goal, result, error, success, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, chatID, run.Goal, run.Result, run.Error, boolInt(run.Success),
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_steps WHERE run_id = ?`, run.ID); err != nil {
		return err
	}
	for _, e := range run.Log {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_steps (run_id, step, tool, task, output, success, duration_ms, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, e.Step, string(e.Tool), e.Task, e.Output, boolInt(e.Success),
			e.Duration.Milliseconds(), e.Timestamp.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to save step %d: %w", e.Step, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first. An empty chatID lists
// runs from every chat.
func (h *HistoryStore) ListRuns(ctx context.Context, chatID string, limit int) ([]RunSummary, error) {
	query := `
		SELECT r.id, r.chat_id, r.goal, r.success, r.started_at, r.finished_at,
			(SELECT COUNT(*) FROM run_steps s WHERE s.run_id = r.id)
		FROM runs r
		WHERE ? = '' OR r.chat_id = ?
		ORDER BY r.started_at DESC
		LIMIT ?`
	rows, err := h.DB.QueryContext(ctx, query, chatID, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var success int
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.ChatID, &r.Goal, &success, &started, &finished, &r.Steps); err != nil {
			return nil, err
		}
		r.Success = success == 1
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun loads a run and its execution log.
func (h *HistoryStore) GetRun(ctx context.Context, id string) (agent.Run, error) {
	var run agent.Run
	var success int
	var started, finished int64
	err := h.DB.QueryRowContext(ctx,
		`SELECT id, goal, result, error, success, started_at, finished_at FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Goal, &run.Result, &run.Error, &success, &started, &finished)
	if err == sql.ErrNoRows {
		return agent.Run{}, ErrRunNotFound
	}
	if err != nil {
		return agent.Run{}, err
	}
	run.Success = success == 1
	run.StartedAt = time.UnixMilli(started)
	run.FinishedAt = time.UnixMilli(finished)

	rows, err := h.DB.QueryContext(ctx,
		`SELECT step, tool, task, output, success, duration_ms, timestamp FROM run_steps WHERE run_id = ? ORDER BY step`, id)
	if err != nil {
		return agent.Run{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var e agent.ExecutionLogEntry
		var tool string
		var ok int
		var durationMS, ts int64
		if err := rows.Scan(&e.Step, &tool, &e.Task, &e.Output, &ok, &durationMS, &ts); err != nil {
			return agent.Run{}, err
		}
		e.Tool = agent.Tool(tool)
		e.Success = ok == 1
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.Timestamp = time.UnixMilli(ts)
		run.Log = append(run.Log, e)
	}
	return run, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
