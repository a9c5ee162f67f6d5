package model

import "time"

// Run status constants.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
	StatusFailed    = "failed"
)

// Engine kind constants.
const (
	EngineStochastic = "stochastic"
	EngineODE        = "ode"
)

// validTransitions maps each status to the set of statuses it may transition to.
var validTransitions = map[string]map[string]bool{
	StatusPending: {
		StatusRunning: true,
		StatusFailed:  true,
		StatusStopped: true,
	},
	StatusRunning: {
		StatusCompleted: true,
		StatusFailed:    true,
		StatusStopped:   true,
	},
}

// ValidTransition reports whether transitioning from one status to another is allowed.
func ValidTransition(from, to string) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// IsTerminal reports whether no further transition is possible from status.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusStopped || status == StatusFailed
}

// Run is one simulation submitted to the platform.
type Run struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Engine     string     `json:"engine"`
	Preset     string     `json:"preset,omitempty"`
	Seed       int64      `json:"seed"`
	Params     Params     `json:"params"`
	Elapsed    int        `json:"elapsed"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
