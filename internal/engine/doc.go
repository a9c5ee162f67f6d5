// Package engine drives simulations. A Controller advances one engine in
// bounded batches and can be stopped between them; the Runner executes
// submitted runs on their own Controller, persisting every batch and
// publishing progress to subscribers.
package engine
