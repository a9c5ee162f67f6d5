package epidemic

import (
	"errors"
	"fmt"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

var (
	// ErrInvalidDays is returned when asked to advance by a non-positive number of days.
	ErrInvalidDays = errors.New("epidemic: days to advance must be positive")

	// ErrUnstable is returned when the aggregate state stops being finite.
	ErrUnstable = errors.New("epidemic: aggregate state diverged")
)

// Engine advances a population by whole days. Implementations are not safe
// for concurrent use; one engine belongs to one controller.
type Engine interface {
	// Advance simulates days consecutive days and returns one snapshot per
	// day, labelled with absolute 1-based day numbers.
	Advance(days int) ([]model.Snapshot, error)

	// Current returns the state after the last simulated day (day 0 before
	// any call to Advance).
	Current() model.Snapshot
}

// Compile-time interface satisfaction checks.
var (
	_ Engine = (*Stochastic)(nil)
	_ Engine = (*Aggregate)(nil)
)

func checkDays(days int) error {
	if days <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDays, days)
	}
	return nil
}
