package model

import (
	"fmt"
	"math"
	"strings"
)

// Flat preset keys. A persisted bundle is a map from these keys to scalars.
const (
	KeyInitialHealthy          = "initial_healthy"
	KeyInitialExposed          = "initial_exposed"
	KeyInitialInfected         = "initial_infected"
	KeyInitialRecovered        = "initial_recovered"
	KeyInitialDead             = "initial_dead"
	KeyTransmissionProbability = "transmission_probability"
	KeyIncubationDuration      = "incubation_duration"
	KeyInfectionDuration       = "infection_duration"
	KeyVaccinationProbability  = "vaccination_probability"
	KeyImmunityDuration        = "immunity_duration"
	KeyMortalityRate           = "mortality_rate"
	KeyHorizonDays             = "horizon_days"
	KeyDiscretization          = "discretization"
)

const (
	// DefaultDiscretization is the batch size used when a bundle omits it.
	DefaultDiscretization = 10

	// DefaultMaxPopulation is the ceiling on the total initial population.
	DefaultMaxPopulation = 10000
)

// Params is the full set of scalars that reproduces a run. Engines copy the
// values they need at construction; a Params value is never mutated by them.
type Params struct {
	InitialHealthy          int     `json:"initial_healthy" yaml:"initial_healthy"`
	InitialExposed          int     `json:"initial_exposed" yaml:"initial_exposed"`
	InitialInfected         int     `json:"initial_infected" yaml:"initial_infected"`
	InitialRecovered        int     `json:"initial_recovered" yaml:"initial_recovered"`
	InitialDead             int     `json:"initial_dead" yaml:"initial_dead"`
	TransmissionProbability float64 `json:"transmission_probability" yaml:"transmission_probability"`
	IncubationDuration      int     `json:"incubation_duration" yaml:"incubation_duration"`
	InfectionDuration       int     `json:"infection_duration" yaml:"infection_duration"`
	VaccinationProbability  float64 `json:"vaccination_probability" yaml:"vaccination_probability"`
	ImmunityDuration        int     `json:"immunity_duration" yaml:"immunity_duration"`
	MortalityRate           float64 `json:"mortality_rate" yaml:"mortality_rate"`
	HorizonDays             int     `json:"horizon_days" yaml:"horizon_days"`
	Discretization          int     `json:"discretization" yaml:"discretization"`
}

// DefaultParams returns the bundle the application starts with.
func DefaultParams() Params {
	return Params{
		InitialHealthy:          9990,
		InitialInfected:         10,
		TransmissionProbability: 0.15,
		IncubationDuration:      3,
		InfectionDuration:       7,
		VaccinationProbability:  0.05,
		ImmunityDuration:        30,
		MortalityRate:           0.02,
		HorizonDays:             100,
		Discretization:          DefaultDiscretization,
	}
}

// paramField binds a flat key to one Params field.
type paramField struct {
	key      string
	optional bool
	def      float64
	intPtr   func(p *Params) *int
	floatPtr func(p *Params) *float64
}

var paramFields = []paramField{
	{key: KeyInitialHealthy, intPtr: func(p *Params) *int { return &p.InitialHealthy }},
	{key: KeyInitialExposed, intPtr: func(p *Params) *int { return &p.InitialExposed }},
	{key: KeyInitialInfected, intPtr: func(p *Params) *int { return &p.InitialInfected }},
	{key: KeyInitialRecovered, intPtr: func(p *Params) *int { return &p.InitialRecovered }},
	{key: KeyInitialDead, optional: true, intPtr: func(p *Params) *int { return &p.InitialDead }},
	{key: KeyTransmissionProbability, floatPtr: func(p *Params) *float64 { return &p.TransmissionProbability }},
	{key: KeyIncubationDuration, intPtr: func(p *Params) *int { return &p.IncubationDuration }},
	{key: KeyInfectionDuration, intPtr: func(p *Params) *int { return &p.InfectionDuration }},
	{key: KeyVaccinationProbability, floatPtr: func(p *Params) *float64 { return &p.VaccinationProbability }},
	{key: KeyImmunityDuration, intPtr: func(p *Params) *int { return &p.ImmunityDuration }},
	{key: KeyMortalityRate, floatPtr: func(p *Params) *float64 { return &p.MortalityRate }},
	{key: KeyHorizonDays, intPtr: func(p *Params) *int { return &p.HorizonDays }},
	{key: KeyDiscretization, optional: true, def: DefaultDiscretization, intPtr: func(p *Params) *int { return &p.Discretization }},
}

// ParamKeys returns every flat key in canonical order.
func ParamKeys() []string {
	keys := make([]string, len(paramFields))
	for i, f := range paramFields {
		keys[i] = f.key
	}
	return keys
}

// ToMap flattens p into the key→scalar form presets are stored in.
func (p Params) ToMap() map[string]float64 {
	m := make(map[string]float64, len(paramFields))
	for _, f := range paramFields {
		if f.intPtr != nil {
			m[f.key] = float64(*f.intPtr(&p))
		} else {
			m[f.key] = *f.floatPtr(&p)
		}
	}
	return m
}

// ParamsFromMap rebuilds a bundle from its flat form. Every key is required
// except initial_dead and discretization, which default to 0 and 10.
// Integer fields must hold whole numbers. Unknown keys are ignored.
func ParamsFromMap(m map[string]float64) (Params, error) {
	var p Params
	for _, f := range paramFields {
		v, ok := m[f.key]
		if !ok {
			if !f.optional {
				return Params{}, invalid(f.key, "is required")
			}
			v = f.def
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Params{}, invalid(f.key, "must be a finite number")
		}
		if f.intPtr != nil {
			if v != math.Trunc(v) {
				return Params{}, invalid(f.key, "must be a whole number, got %v", v)
			}
			if v < math.MinInt || v >= -math.MinInt {
				return Params{}, invalid(f.key, "is out of range, got %v", v)
			}
			*f.intPtr(&p) = int(v)
		} else {
			*f.floatPtr(&p) = v
		}
	}
	return p, nil
}

// InitialCounts returns the starting size of each compartment.
func (p Params) InitialCounts() Counts {
	return Counts{
		Healthy:   p.InitialHealthy,
		Exposed:   p.InitialExposed,
		Infected:  p.InitialInfected,
		Recovered: p.InitialRecovered,
		Dead:      p.InitialDead,
	}
}

// TotalPopulation is the sum of all initial compartments, Dead included.
func (p Params) TotalPopulation() int {
	return p.InitialCounts().Total()
}

// LivePopulation is the initial Healthy+Exposed+Infected+Recovered mass.
func (p Params) LivePopulation() int {
	return p.TotalPopulation() - p.InitialDead
}

// Sigma is the inverse incubation time, 0 for a zero duration.
func (p Params) Sigma() float64 {
	return inverse(p.IncubationDuration)
}

// Gamma is the inverse infectious time, 0 for a zero duration.
func (p Params) Gamma() float64 {
	return inverse(p.InfectionDuration)
}

func inverse(days int) float64 {
	if days == 0 {
		return 0
	}
	return 1 / float64(days)
}

// Validate rejects bundles no engine may be built from. maxPopulation <= 0
// disables the population ceiling. Values are never clamped.
func (p Params) Validate(maxPopulation int) error {
	counts := p.InitialCounts()
	total := 0
	for _, c := range Compartments {
		n := counts[c]
		if n < 0 {
			return invalid("initial_"+c.String(), "must not be negative, got %d", n)
		}
		if n > math.MaxInt-total {
			return invalid("population", "is too large to count")
		}
		total += n
	}
	if maxPopulation > 0 && total > maxPopulation {
		return invalid("population", "must not exceed %d individuals, got %d", maxPopulation, total)
	}

	probabilities := []struct {
		key string
		v   float64
	}{
		{KeyTransmissionProbability, p.TransmissionProbability},
		{KeyVaccinationProbability, p.VaccinationProbability},
		{KeyMortalityRate, p.MortalityRate},
	}
	for _, pr := range probabilities {
		if math.IsNaN(pr.v) || pr.v < 0 || pr.v > 1 {
			return invalid(pr.key, "must be between 0 and 1, got %v", pr.v)
		}
	}

	positives := []struct {
		key string
		v   int
	}{
		{KeyIncubationDuration, p.IncubationDuration},
		{KeyInfectionDuration, p.InfectionDuration},
		{KeyImmunityDuration, p.ImmunityDuration},
		{KeyHorizonDays, p.HorizonDays},
		{KeyDiscretization, p.Discretization},
	}
	for _, pos := range positives {
		if pos.v <= 0 {
			return invalid(pos.key, "must be positive, got %d", pos.v)
		}
	}
	return nil
}

// ValidateFor runs Validate and the rules specific to one engine kind. The
// ode engine divides by the live population, so it must not be empty.
func (p Params) ValidateFor(kind string, maxPopulation int) error {
	if err := p.Validate(maxPopulation); err != nil {
		return err
	}
	if kind == EngineODE && p.LivePopulation() == 0 {
		return invalid("population", "must not be zero for the ode engine")
	}
	return nil
}

// Summary renders the parameter block shown next to the run controls.
func (p Params) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Population ---\n")
	fmt.Fprintf(&b, "Healthy: %d\n", p.InitialHealthy)
	fmt.Fprintf(&b, "Exposed: %d\n", p.InitialExposed)
	fmt.Fprintf(&b, "Infected: %d\n", p.InitialInfected)
	fmt.Fprintf(&b, "Recovered: %d\n", p.InitialRecovered)
	fmt.Fprintf(&b, "Dead: %d\n\n", p.InitialDead)
	fmt.Fprintf(&b, "--- Virus ---\n")
	fmt.Fprintf(&b, "Transmission probability (beta): %g%%\n", percent(p.TransmissionProbability))
	fmt.Fprintf(&b, "Incubation duration (1/sigma): %d days\n", p.IncubationDuration)
	fmt.Fprintf(&b, "Infection duration (1/gamma): %d days\n\n", p.InfectionDuration)
	fmt.Fprintf(&b, "--- Recovery ---\n")
	fmt.Fprintf(&b, "Vaccination probability: %g%%\n", percent(p.VaccinationProbability))
	fmt.Fprintf(&b, "Immunity duration: %d days\n\n", p.ImmunityDuration)
	fmt.Fprintf(&b, "--- Mortality ---\n")
	fmt.Fprintf(&b, "Mortality rate (mu): %g%%\n\n", percent(p.MortalityRate))
	fmt.Fprintf(&b, "Simulated days: %d\n", p.HorizonDays)
	fmt.Fprintf(&b, "Discretization: %d days\n", p.Discretization)
	return b.String()
}

// percent converts a probability to a percentage, dropping float noise.
func percent(v float64) float64 {
	return math.Round(v*100*1e6) / 1e6
}
