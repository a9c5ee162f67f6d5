// Package epidemic implements the propagation engines: a stochastic
// per-individual state machine with density-dependent transmission and a
// deterministic SEIR compartmental model integrated with RK4. Both advance
// a closed population by whole days and report one snapshot per day.
package epidemic
