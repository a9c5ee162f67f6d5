package epidemic

import (
	"math/rand"
	"time"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// Population is a fixed-size, well-mixed collection of entities. Dead
// entities are kept and still count toward the population size.
type Population struct {
	entities []Entity
	rng      *rand.Rand
}

// NewPopulation materializes counts[c] entities in each compartment c, in
// compartment order. A nil rng is replaced by a time-seeded source.
func NewPopulation(counts model.Counts, rng *rand.Rand) *Population {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	entities := make([]Entity, 0, counts.Total())
	for _, c := range model.Compartments {
		for range counts[c] {
			entities = append(entities, NewEntity(c))
		}
	}
	return &Population{entities: entities, rng: rng}
}

// Size returns the number of entities, Dead included.
func (p *Population) Size() int {
	return len(p.entities)
}

// Count returns how many entities are currently in compartment c.
func (p *Population) Count(c model.Compartment) int {
	n := 0
	for i := range p.entities {
		if p.entities[i].compartment == c {
			n++
		}
	}
	return n
}

// Counts tallies every compartment in one scan.
func (p *Population) Counts() model.Counts {
	var counts model.Counts
	for i := range p.entities {
		counts[p.entities[i].compartment]++
	}
	return counts
}

// PropagateInfection exposes each Healthy entity with probability
// base * infected/size, where infected is the current Infected count. It
// does nothing while nobody is infected. It returns the number of newly
// exposed entities.
func (p *Population) PropagateInfection(base float64) int {
	infected := p.Count(model.Infected)
	if infected == 0 {
		return 0
	}
	prob := base * (float64(infected) / float64(len(p.entities)))

	exposed := 0
	for i := range p.entities {
		if p.entities[i].compartment != model.Healthy {
			continue
		}
		if p.entities[i].Expose(p.rng, prob) {
			exposed++
		}
	}
	return exposed
}

// Vaccinate immunizes each Healthy entity with probability prob. It returns
// the number of entities immunized.
func (p *Population) Vaccinate(prob float64, immunity int) int {
	vaccinated := 0
	for i := range p.entities {
		if p.entities[i].compartment != model.Healthy {
			continue
		}
		if p.rng.Float64() < prob {
			p.entities[i].Immunize(immunity)
			vaccinated++
		}
	}
	return vaccinated
}

// AdvanceDay moves every entity one day forward. Transitions read no other
// entity's state, so iteration order does not matter.
func (p *Population) AdvanceDay(infection, immunity, incubation int, mortality float64) {
	for i := range p.entities {
		p.entities[i].AdvanceDay(p.rng, infection, immunity, incubation, mortality)
	}
}

// Snapshot returns the compartment counts labelled with day.
func (p *Population) Snapshot(day int) model.Snapshot {
	return model.SnapshotFromCounts(day, p.Counts())
}
