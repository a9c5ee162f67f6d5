// Package backend defines the common interface that every simulation engine
// kind (stochastic per-individual, deterministic ODE) exposes to the step
// controller, along with the registry that resolves an engine kind by name.
package backend
