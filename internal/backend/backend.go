package backend

import (
	"github.com/Kyky30/Projet-SIR/internal/epidemic"
	"github.com/Kyky30/Projet-SIR/internal/model"
)

// Backend builds engines of one kind. Each call to New returns an
// independent engine owned by the caller.
type Backend interface {
	// New constructs an engine for the given run spec. Parameters must
	// already be validated; New only rejects what its engine cannot run.
	New(spec RunSpec) (epidemic.Engine, error)

	// Capabilities reports what this engine kind provides.
	Capabilities() Capabilities
}

// RunSpec carries everything needed to build one engine.
type RunSpec struct {
	Params model.Params `json:"params"`

	// Seed drives every random draw of a stochastic engine. Deterministic
	// engines ignore it.
	Seed int64 `json:"seed"`
}

// Capabilities describes an engine kind.
type Capabilities struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Deterministic bool   `json:"deterministic"`
	IntegerCounts bool   `json:"integer_counts"`
}
