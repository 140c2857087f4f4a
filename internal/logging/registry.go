package logging

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// StandardOut is the name of the built-in console sink.
const StandardOut = "StandardOut"

// ErrReservedSink is returned when a caller tries to replace StandardOut.
var ErrReservedSink = errors.New("sink name is reserved")

// Registry maps sink names to factories. StandardOut is always present.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding only StandardOut.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{
		StandardOut: newConsoleFactory,
	}}
}

// Register binds name to factory, replacing any previous binding.
func (r *Registry) Register(name string, factory Factory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("register sink: empty name")
	}
	if factory == nil {
		return fmt.Errorf("register sink %q: nil factory", name)
	}
	if name == StandardOut {
		return fmt.Errorf("register sink %q: %w", name, ErrReservedSink)
	}
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
	return nil
}

// Lookup resolves a factory by exact name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	if r == nil {
		if name == StandardOut {
			return newConsoleFactory, true
		}
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names lists registered sinks in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return []string{StandardOut}
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
