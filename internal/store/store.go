package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

var (
	// ErrNotFound is returned when a preset or run does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a run status transition is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidName is returned for preset names that cannot be stored.
	ErrInvalidName = errors.New("invalid preset name")
)

var presetNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// ValidatePresetName rejects names that are empty, too long, or would not
// be safe as a file name.
func ValidatePresetName(name string) error {
	if !presetNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// RunStats holds aggregate run statistics.
type RunStats struct {
	Total          int            `json:"total"`
	CountByStatus  map[string]int `json:"count_by_status"`
	CountByEngine  map[string]int `json:"count_by_engine"`
	AvgElapsedDays float64        `json:"avg_elapsed_days"`
}

// PresetStore persists named parameter bundles.
type PresetStore interface {
	// SavePreset creates or overwrites the preset called name.
	SavePreset(ctx context.Context, name string, p model.Params) error
	GetPreset(ctx context.Context, name string) (model.Params, error)
	// ListPresets returns preset names in ascending order.
	ListPresets(ctx context.Context) ([]string, error)
	DeletePreset(ctx context.Context, name string) error
}

// RunStore persists runs and the snapshots they produce.
type RunStore interface {
	CreateRun(ctx context.Context, r *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*model.Run, int, error)
	// UpdateRunStatus moves a run to status, recording errMsg when non-empty.
	UpdateRunStatus(ctx context.Context, id, status, errMsg string) error
	// AppendSnapshots stores one batch of snapshots and the new elapsed day count.
	AppendSnapshots(ctx context.Context, runID string, elapsed int, snaps []model.Snapshot) error
	GetSnapshots(ctx context.Context, runID string) ([]model.Snapshot, error)
	GetRunStats(ctx context.Context) (*RunStats, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	PresetStore
	RunStore
	Close() error
}
