package backend

import (
	"math/rand"

	"github.com/Kyky30/Projet-SIR/internal/epidemic"
	"github.com/Kyky30/Projet-SIR/internal/model"
)

// Stochastic builds per-individual engines seeded from the run spec.
type Stochastic struct{}

func (Stochastic) New(spec RunSpec) (epidemic.Engine, error) {
	rng := rand.New(rand.NewSource(spec.Seed))
	return epidemic.NewStochastic(spec.Params, rng), nil
}

func (Stochastic) Capabilities() Capabilities {
	return Capabilities{
		Name:          model.EngineStochastic,
		Description:   "Per-individual state machine with prevalence-scaled transmission",
		IntegerCounts: true,
	}
}

// ODE builds deterministic SEIR engines.
type ODE struct {
	// StepsPerDay overrides the RK4 sub-step count when positive.
	StepsPerDay int
}

func (o ODE) New(spec RunSpec) (epidemic.Engine, error) {
	var opts []epidemic.AggregateOption
	if o.StepsPerDay > 0 {
		opts = append(opts, epidemic.WithStepsPerDay(o.StepsPerDay))
	}
	return epidemic.NewAggregate(spec.Params, opts...)
}

func (ODE) Capabilities() Capabilities {
	return Capabilities{
		Name:          model.EngineODE,
		Description:   "Deterministic SEIR compartmental model integrated with RK4",
		Deterministic: true,
	}
}
