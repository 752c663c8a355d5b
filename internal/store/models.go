package store

import (
	"errors"
	"time"
)

var ErrRunNotFound = errors.New("run not found")

// RunSummary is a goal run without its execution log.
type RunSummary struct {
	ID         string
	ChatID     string
	Goal       string
	Success    bool
	Steps      int
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r RunSummary) Status() string {
	if r.Success {
		return "completed"
	}
	return "failed"
}
