package observability

import (
	"sync"
	"time"

	"github.com/rahul/wakeel/internal/agent"
)

type SystemStatus struct {
	mu            sync.RWMutex
	Phase         agent.Phase
	ActiveTask    string
	Progress      int
	LastHeartbeat time.Time
}

// Snapshot is a copy of SystemStatus without its lock.
type Snapshot struct {
	Phase         agent.Phase
	ActiveTask    string
	Progress      int
	LastHeartbeat time.Time
}

var globalStatus = &SystemStatus{
	Phase:         agent.PhaseIdle,
	LastHeartbeat: time.Now(),
}

// SetStatus updates the global system status.
func SetStatus(phase agent.Phase, task string, progress int) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.Phase = phase
	globalStatus.ActiveTask = task
	globalStatus.Progress = progress
}

// GetStatus retrieves a copy of the global system status.
func GetStatus() Snapshot {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return Snapshot{
		Phase:         globalStatus.Phase,
		ActiveTask:    globalStatus.ActiveTask,
		Progress:      globalStatus.Progress,
		LastHeartbeat: globalStatus.LastHeartbeat,
	}
}

// Heartbeat updates the last heartbeat time.
func Heartbeat() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.LastHeartbeat = time.Now()
}

// StatusBoard mirrors orchestrator state into the global status shown by
// PrintLiveStatus.
type StatusBoard struct{}

func (StatusBoard) OnStateChange(s agent.State) {
	SetStatus(s.Phase, s.CurrentTask, s.Progress)
}
