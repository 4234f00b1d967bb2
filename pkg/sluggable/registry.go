package sluggable

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Registry maps type identifiers to compiled specs. It is populated at
// startup and read concurrently afterwards.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

// Register compiles spec and stores it under spec.Type. A type that inherits
// from another must be registered after its parent.
func (r *Registry) Register(spec Spec) (*Spec, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.specs[spec.Type]; ok && spec.Type != "" {
		return nil, errors.Join(ErrDuplicateType, fmt.Errorf("type %q", spec.Type))
	}

	var parent *Spec
	if spec.Inherits != "" {
		p, ok := r.specs[spec.Inherits]
		if !ok {
			return nil, errors.Join(ErrUnknownType, fmt.Errorf("type %q inherits %q", spec.Type, spec.Inherits))
		}
		parent = p
	}

	s := spec
	if err := s.compile(parent); err != nil {
		return nil, err
	}
	r.specs[s.Type] = &s
	return &s, nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(spec Spec) *Spec {
	s, err := r.Register(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the Spec registered for typ.
func (r *Registry) Lookup(typ string) (*Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.specs[typ]
	if !ok {
		return nil, errors.Join(ErrTypeNotRegistered, fmt.Errorf("type %q", typ))
	}
	return s, nil
}

// Types returns the registered type identifiers in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.specs))
	for t := range r.specs {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
