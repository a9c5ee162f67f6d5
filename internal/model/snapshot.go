package model

// Snapshot is one simulated day's compartment counts. Counts are whole
// numbers for the stochastic engine and real-valued for the ODE engine.
type Snapshot struct {
	Day       int     `json:"day"`
	Healthy   float64 `json:"healthy"`
	Exposed   float64 `json:"exposed"`
	Infected  float64 `json:"infected"`
	Recovered float64 `json:"recovered"`
	Dead      float64 `json:"dead"`
}

// SnapshotFromCounts builds a snapshot for the given day from integer counts.
func SnapshotFromCounts(day int, c Counts) Snapshot {
	return Snapshot{
		Day:       day,
		Healthy:   float64(c[Healthy]),
		Exposed:   float64(c[Exposed]),
		Infected:  float64(c[Infected]),
		Recovered: float64(c[Recovered]),
		Dead:      float64(c[Dead]),
	}
}

// Count returns the value recorded for compartment c.
func (s Snapshot) Count(c Compartment) float64 {
	switch c {
	case Healthy:
		return s.Healthy
	case Exposed:
		return s.Exposed
	case Infected:
		return s.Infected
	case Recovered:
		return s.Recovered
	case Dead:
		return s.Dead
	}
	return 0
}

// Live returns Healthy+Exposed+Infected+Recovered, the mass the rate
// equations treat as the population N.
func (s Snapshot) Live() float64 {
	return s.Healthy + s.Exposed + s.Infected + s.Recovered
}

// Total returns the sum over all five compartments.
func (s Snapshot) Total() float64 {
	return s.Live() + s.Dead
}

// Progress is published after every batch a run advances. Snapshots holds
// only the days added by that batch.
type Progress struct {
	RunID     string     `json:"run_id"`
	Elapsed   int        `json:"elapsed"`
	Horizon   int        `json:"horizon"`
	Snapshots []Snapshot `json:"snapshots"`
}
