package epidemic

import (
	"fmt"
	"math"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// State vector indices for the SEIR system.
const (
	idxS = iota
	idxE
	idxI
	idxR
	seirDim
)

// Aggregate is the deterministic SEIR engine over real-valued compartment
// masses. Deaths are not part of the differential system: D is accumulated
// as D0 plus the running sum of mu*I over the integer-day samples.
type Aggregate struct {
	y      []float64
	dead   float64
	day    int
	beta   float64
	sigma  float64
	gamma  float64
	mu     float64
	solver *RK4
}

// AggregateOption configures an Aggregate engine.
type AggregateOption func(*Aggregate)

// WithStepsPerDay sets the number of RK4 sub-steps per simulated day.
func WithStepsPerDay(n int) AggregateOption {
	return func(a *Aggregate) {
		a.solver = NewRK4(seirDim, n)
	}
}

// NewAggregate builds the ODE engine from p. beta is the transmission
// probability, sigma and gamma the inverse incubation and infection
// durations (0 for a zero duration), mu the mortality rate. An empty live
// population leaves the rate equations undefined and is rejected.
func NewAggregate(p model.Params, opts ...AggregateOption) (*Aggregate, error) {
	if p.LivePopulation() <= 0 {
		return nil, &model.ValidationError{
			Field:  "population",
			Reason: "must not be zero for the ode engine",
		}
	}
	a := &Aggregate{
		y: []float64{
			idxS: float64(p.InitialHealthy),
			idxE: float64(p.InitialExposed),
			idxI: float64(p.InitialInfected),
			idxR: float64(p.InitialRecovered),
		},
		dead:  float64(p.InitialDead),
		beta:  p.TransmissionProbability,
		sigma: p.Sigma(),
		gamma: p.Gamma(),
		mu:    p.MortalityRate,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.solver == nil {
		a.solver = NewRK4(seirDim, DefaultStepsPerDay)
	}
	return a, nil
}

// derivative evaluates the SEIR right-hand side.
func (a *Aggregate) derivative(_ float64, y, dy []float64) {
	s, e, i, r := y[idxS], y[idxE], y[idxI], y[idxR]
	n := s + e + i + r

	var force float64
	if n != 0 {
		force = a.beta * s * i / n
	}
	dy[idxS] = -force
	dy[idxE] = force - a.sigma*e
	dy[idxI] = a.sigma*e - a.gamma*i - a.mu*i
	dy[idxR] = a.gamma * i
}

// Advance integrates days whole days from the current state, sampling the
// solution at the end of each day.
func (a *Aggregate) Advance(days int) ([]model.Snapshot, error) {
	if err := checkDays(days); err != nil {
		return nil, err
	}
	snaps := make([]model.Snapshot, 0, days)
	for range days {
		a.solver.Integrate(float64(a.day), 1, a.y, a.derivative)
		a.day++
		a.dead += a.mu * a.y[idxI]

		snap := a.Current()
		if !finite(snap) {
			return snaps, fmt.Errorf("%w at day %d", ErrUnstable, a.day)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func (a *Aggregate) Current() model.Snapshot {
	return model.Snapshot{
		Day:       a.day,
		Healthy:   a.y[idxS],
		Exposed:   a.y[idxE],
		Infected:  a.y[idxI],
		Recovered: a.y[idxR],
		Dead:      a.dead,
	}
}

func finite(s model.Snapshot) bool {
	for _, c := range model.Compartments {
		v := s.Count(c)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
