package epidemic

import (
	"math/rand"
	"testing"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestExpose(t *testing.T) {
	rng := newRand()

	e := NewEntity(model.Healthy)
	if e.Expose(rng, 0) {
		t.Error("Expose(0) transitioned")
	}
	if e.Compartment() != model.Healthy {
		t.Errorf("compartment = %v, want healthy", e.Compartment())
	}

	if !e.Expose(rng, 1) {
		t.Error("Expose(1) did not transition")
	}
	if e.Compartment() != model.Exposed {
		t.Errorf("compartment = %v, want exposed", e.Compartment())
	}
	if e.daysInIncubation != 0 {
		t.Errorf("daysInIncubation = %d, want 0", e.daysInIncubation)
	}
}

func TestExposeOnlyHealthy(t *testing.T) {
	rng := newRand()
	for _, c := range []model.Compartment{model.Exposed, model.Infected, model.Recovered, model.Dead} {
		e := NewEntity(c)
		if e.Expose(rng, 1) {
			t.Errorf("Expose on %v transitioned", c)
		}
		if e.Compartment() != c {
			t.Errorf("Expose changed %v to %v", c, e.Compartment())
		}
	}
}

func TestAdvanceIncubation(t *testing.T) {
	e := NewEntity(model.Exposed)
	e.AdvanceIncubation(3)
	e.AdvanceIncubation(3)
	if e.Compartment() != model.Exposed {
		t.Fatalf("after 2 days compartment = %v, want exposed", e.Compartment())
	}
	e.AdvanceIncubation(3)
	if e.Compartment() != model.Infected {
		t.Fatalf("after 3 days compartment = %v, want infected", e.Compartment())
	}
	if e.daysInInfection != 0 {
		t.Errorf("daysInInfection = %d, want 0", e.daysInInfection)
	}
}

func TestDurationOneAdvancesAfterOneCall(t *testing.T) {
	rng := newRand()

	e := NewEntity(model.Exposed)
	e.AdvanceDay(rng, 1, 1, 1, 0)
	if e.Compartment() != model.Infected {
		t.Fatalf("incubation 1: compartment = %v, want infected", e.Compartment())
	}
	e.AdvanceDay(rng, 1, 1, 1, 0)
	if e.Compartment() != model.Recovered {
		t.Fatalf("infection 1: compartment = %v, want recovered", e.Compartment())
	}
	e.AdvanceDay(rng, 1, 1, 1, 0)
	if e.Compartment() != model.Healthy {
		t.Fatalf("immunity 1: compartment = %v, want healthy", e.Compartment())
	}
}

func TestAdvanceIncubationIgnoredOutsideExposed(t *testing.T) {
	e := NewEntity(model.Healthy)
	e.AdvanceIncubation(1)
	if e.Compartment() != model.Healthy {
		t.Errorf("compartment = %v, want healthy", e.Compartment())
	}
}

func TestImmunize(t *testing.T) {
	e := NewEntity(model.Healthy)
	e.Immunize(30)
	if e.Compartment() != model.Recovered {
		t.Fatalf("compartment = %v, want recovered", e.Compartment())
	}
	if e.immunityRemaining != 30 {
		t.Errorf("immunityRemaining = %d, want 30", e.immunityRemaining)
	}

	inf := NewEntity(model.Infected)
	inf.Immunize(30)
	if inf.Compartment() != model.Infected {
		t.Errorf("Immunize changed infected to %v", inf.Compartment())
	}
}

func TestInfectedOutcome(t *testing.T) {
	tests := []struct {
		name      string
		mortality float64
		want      model.Compartment
	}{
		{"survives", 0, model.Recovered},
		{"dies", 1, model.Dead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := newRand()
			e := NewEntity(model.Infected)
			for day := 1; day < 7; day++ {
				e.AdvanceDay(rng, 7, 30, 3, tt.mortality)
				if e.Compartment() != model.Infected {
					t.Fatalf("day %d: compartment = %v, want infected", day, e.Compartment())
				}
			}
			e.AdvanceDay(rng, 7, 30, 3, tt.mortality)
			if e.Compartment() != tt.want {
				t.Fatalf("day 7: compartment = %v, want %v", e.Compartment(), tt.want)
			}
			if tt.want == model.Recovered && e.immunityRemaining != 30 {
				t.Errorf("immunityRemaining = %d, want 30", e.immunityRemaining)
			}
		})
	}
}

func TestImmunityWanes(t *testing.T) {
	rng := newRand()
	e := NewEntity(model.Healthy)
	e.Immunize(3)
	for day := 1; day <= 2; day++ {
		e.AdvanceDay(rng, 7, 3, 3, 0)
		if e.Compartment() != model.Recovered {
			t.Fatalf("day %d: compartment = %v, want recovered", day, e.Compartment())
		}
	}
	e.AdvanceDay(rng, 7, 3, 3, 0)
	if e.Compartment() != model.Healthy {
		t.Fatalf("compartment = %v, want healthy", e.Compartment())
	}
}

func TestRecoveredWithoutImmunityTurnsHealthy(t *testing.T) {
	e := NewEntity(model.Recovered)
	e.AdvanceDay(newRand(), 7, 30, 3, 0)
	if e.Compartment() != model.Healthy {
		t.Errorf("compartment = %v, want healthy", e.Compartment())
	}
	if e.immunityRemaining < 0 {
		t.Errorf("immunityRemaining = %d, want >= 0", e.immunityRemaining)
	}
}

func TestDeadIsTerminal(t *testing.T) {
	rng := newRand()
	e := NewEntity(model.Dead)
	for range 100 {
		e.Expose(rng, 1)
		e.AdvanceIncubation(1)
		e.Immunize(1)
		e.AdvanceDay(rng, 1, 1, 1, 0)
		if e.Compartment() != model.Dead {
			t.Fatalf("dead entity became %v", e.Compartment())
		}
	}
}

func TestEntityInvariantsUnderRandomDays(t *testing.T) {
	rng := newRand()
	for _, start := range model.Compartments {
		e := NewEntity(start)
		for day := range 500 {
			if e.Compartment() == model.Healthy {
				e.Expose(rng, 0.3)
			}
			e.AdvanceDay(rng, 4, 5, 2, 0.01)
			if !e.Compartment().Valid() {
				t.Fatalf("start %v day %d: invalid compartment %d", start, day, e.Compartment())
			}
			if e.daysInIncubation < 0 || e.daysInInfection < 0 || e.immunityRemaining < 0 {
				t.Fatalf("start %v day %d: negative counter %+v", start, day, e)
			}
		}
	}
}
