package epidemic

import (
	"math/rand"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// Stochastic drives a Population with a fixed parameter set. Each simulated
// day runs PropagateInfection, Vaccinate, AdvanceDay and then counts; the
// order decides who can still be exposed that day and must not change.
type Stochastic struct {
	pop *Population
	p   model.Params
	day int
}

// NewStochastic builds the per-individual engine. Validation of p is the
// caller's job; seeding rng makes runs reproducible.
func NewStochastic(p model.Params, rng *rand.Rand) *Stochastic {
	return &Stochastic{
		pop: NewPopulation(p.InitialCounts(), rng),
		p:   p,
	}
}

// Population exposes the underlying entities for inspection.
func (s *Stochastic) Population() *Population {
	return s.pop
}

// Step simulates exactly one day and returns its snapshot.
func (s *Stochastic) Step() model.Snapshot {
	s.pop.PropagateInfection(s.p.TransmissionProbability)
	s.pop.Vaccinate(s.p.VaccinationProbability, s.p.ImmunityDuration)
	s.pop.AdvanceDay(s.p.InfectionDuration, s.p.ImmunityDuration, s.p.IncubationDuration, s.p.MortalityRate)
	s.day++
	return s.pop.Snapshot(s.day)
}

func (s *Stochastic) Advance(days int) ([]model.Snapshot, error) {
	if err := checkDays(days); err != nil {
		return nil, err
	}
	snaps := make([]model.Snapshot, 0, days)
	for range days {
		snaps = append(snaps, s.Step())
	}
	return snaps, nil
}

func (s *Stochastic) Current() model.Snapshot {
	return s.pop.Snapshot(s.day)
}
