package schema

import "fmt"

// Registry maps model names to their compiled schemas for the duration of one
// generation run. Names keep insertion order. A Registry is filled first and
// then sealed; after Seal it is read-only and safe to share.
type Registry struct {
	names  []string
	byName map[string]*Schema
	sealed bool
}

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Schema)}
}

// Add registers a model. Names are unique; adding after Seal fails.
func (r *Registry) Add(name string, s *Schema) error {
	if r.sealed {
		return fmt.Errorf("schema registry: sealed, cannot add %q", name)
	}
	if name == "" {
		return fmt.Errorf("schema registry: empty model name")
	}
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("schema registry: duplicate model %q", name)
	}
	if s == nil {
		s = &Schema{}
	}
	r.names = append(r.names, name)
	r.byName[name] = s
	return nil
}

// Seal freezes the registry.
func (r *Registry) Seal() { r.sealed = true }

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.byName[name]
	return s, ok
}

// Names returns model names in insertion order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// Schemas returns a deep copy of the registered schemas keyed by model name,
// suitable for components.schemas.
func (r *Registry) Schemas() map[string]*Schema {
	if r == nil || len(r.names) == 0 {
		return nil
	}
	out := make(map[string]*Schema, len(r.names))
	for _, n := range r.names {
		out[n] = r.byName[n].Clone()
	}
	return out
}
