package epidemic

// Derivative evaluates dy/dt at time t into dy. It must not retain y or dy.
type Derivative func(t float64, y, dy []float64)

// RK4 is a fixed-step classical Runge-Kutta integrator. The step count per
// unit of time is fixed, so integrating [a,c] in one call or as [a,b] then
// [b,c] at integer boundaries gives identical results.
type RK4 struct {
	stepsPerUnit int
	k1, k2, k3   []float64
	k4, tmp      []float64
}

// DefaultStepsPerDay is the number of RK4 sub-steps taken per simulated day.
const DefaultStepsPerDay = 24

// NewRK4 returns an integrator for systems of dimension n.
func NewRK4(n, stepsPerUnit int) *RK4 {
	if stepsPerUnit <= 0 {
		stepsPerUnit = DefaultStepsPerDay
	}
	return &RK4{
		stepsPerUnit: stepsPerUnit,
		k1:           make([]float64, n),
		k2:           make([]float64, n),
		k3:           make([]float64, n),
		k4:           make([]float64, n),
		tmp:          make([]float64, n),
	}
}

// Integrate advances y in place from t0 to t0+units.
func (r *RK4) Integrate(t0 float64, units int, y []float64, f Derivative) {
	h := 1 / float64(r.stepsPerUnit)
	steps := units * r.stepsPerUnit
	for i := range steps {
		r.step(t0+float64(i)*h, h, y, f)
	}
}

func (r *RK4) step(t, h float64, y []float64, f Derivative) {
	f(t, y, r.k1)
	for i := range y {
		r.tmp[i] = y[i] + h/2*r.k1[i]
	}
	f(t+h/2, r.tmp, r.k2)
	for i := range y {
		r.tmp[i] = y[i] + h/2*r.k2[i]
	}
	f(t+h/2, r.tmp, r.k3)
	for i := range y {
		r.tmp[i] = y[i] + h*r.k3[i]
	}
	f(t+h, r.tmp, r.k4)
	for i := range y {
		y[i] += h / 6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
	}
}
