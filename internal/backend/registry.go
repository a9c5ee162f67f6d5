package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Kyky30/Projet-SIR/internal/model"
)

// DefaultKind is the engine kind used when a run does not name one.
const DefaultKind = model.EngineODE

// ErrUnknownEngine is returned when no backend is registered under a name.
var ErrUnknownEngine = errors.New("unknown engine")

// BackendInfo pairs a backend name with its capabilities.
type BackendInfo struct {
	Name         string       `json:"name"`
	Capabilities Capabilities `json:"capabilities"`
}

// Registry holds registered backends and resolves which one builds the
// engine for a run.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
	}
}

// DefaultRegistry returns a registry holding the stochastic and ODE engines.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(model.EngineStochastic, Stochastic{})
	r.Register(model.EngineODE, ODE{})
	return r
}

// Register adds a backend to the registry under the given name.
func (r *Registry) Register(name string, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = b
}

// Resolve returns the backend registered under kind. An empty kind resolves
// to DefaultKind.
func (r *Registry) Resolve(kind string) (Backend, error) {
	if kind == "" {
		kind = DefaultKind
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEngine, kind)
	}
	return b, nil
}

// List returns information about all registered backends, sorted by name
// for a stable API response.
func (r *Registry) List() []BackendInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]BackendInfo, 0, len(r.backends))
	for name, b := range r.backends {
		infos = append(infos, BackendInfo{
			Name:         name,
			Capabilities: b.Capabilities(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}
