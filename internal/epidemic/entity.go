package epidemic

import (
	"math/rand"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// Entity is one individual of the stochastic population. Each counter is
// meaningful only while the entity is in the matching compartment.
type Entity struct {
	compartment       model.Compartment
	daysInIncubation  int
	daysInInfection   int
	immunityRemaining int
}

// NewEntity returns an entity starting in compartment c with zero counters.
func NewEntity(c model.Compartment) Entity {
	return Entity{compartment: c}
}

// Compartment returns the entity's current compartment.
func (e *Entity) Compartment() model.Compartment {
	return e.compartment
}

// Expose moves a Healthy entity to Exposed when a fresh uniform draw falls
// below p. It reports whether the transition happened. Entities in any other
// compartment consume no draw.
func (e *Entity) Expose(rng *rand.Rand, p float64) bool {
	if e.compartment != model.Healthy {
		return false
	}
	if rng.Float64() < p {
		e.compartment = model.Exposed
		e.daysInIncubation = 0
		return true
	}
	return false
}

// AdvanceIncubation counts one incubation day for an Exposed entity and
// moves it to Infected once incubation days have elapsed.
func (e *Entity) AdvanceIncubation(incubation int) {
	if e.compartment != model.Exposed {
		return
	}
	e.daysInIncubation++
	if e.daysInIncubation >= incubation {
		e.compartment = model.Infected
		e.daysInInfection = 0
	}
}

// Immunize moves a Healthy entity straight to Recovered with a full
// immunity period. The caller decides whether to immunize.
func (e *Entity) Immunize(immunity int) {
	if e.compartment != model.Healthy {
		return
	}
	e.compartment = model.Recovered
	e.immunityRemaining = immunity
}

// AdvanceDay applies one day of progression for the entity's compartment.
func (e *Entity) AdvanceDay(rng *rand.Rand, infection, immunity, incubation int, mortality float64) {
	switch e.compartment {
	case model.Exposed:
		e.AdvanceIncubation(incubation)
	case model.Infected:
		e.daysInInfection++
		if e.daysInInfection < infection {
			return
		}
		if rng.Float64() < mortality {
			e.compartment = model.Dead
			return
		}
		e.compartment = model.Recovered
		e.immunityRemaining = immunity
	case model.Recovered:
		if e.immunityRemaining > 0 {
			e.immunityRemaining--
		}
		if e.immunityRemaining <= 0 {
			e.compartment = model.Healthy
			e.immunityRemaining = 0
		}
	case model.Healthy, model.Dead:
	}
}
