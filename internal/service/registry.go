package service

import (
	"fmt"
	"sync"

	"github.com/osgard/sentinel/internal/domain"
)

// Registry is the process-wide lookup of agents by name. It is constructed
// once at startup and injected everywhere; there is no global instance.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
	order  []string // names in registration order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds an agent. A name collision is rejected so configuration
// errors fail fast instead of silently replacing an agent.
func (r *Registry) Register(a Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Name()
	if _, exists := r.agents[name]; exists {
		return fmt.Errorf("registry: agent %q: %w", name, domain.ErrConflict)
	}
	r.agents[name] = a
	r.order = append(r.order, name)
	return nil
}

// Get looks up an agent by name.
func (r *Registry) Get(name string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	return a, ok
}

// All returns the agents in registration order.
func (r *Registry) All() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Agent, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.agents[name])
	}
	return out
}

// ByCategory returns the agents in the given category, in registration
// order. The index is computed on demand, not maintained incrementally.
func (r *Registry) ByCategory(category string) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Agent
	for _, name := range r.order {
		if a := r.agents[name]; a.Category() == category {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
