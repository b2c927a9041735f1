package strategy

import (
	"fmt"
	"sort"
)

// Entry binds a strategy name to its constructor.
type Entry struct {
	Name    string
	Family  Family
	Scoring bool
	New     Constructor
}

// Registry is a read-only name -> constructor table, built once at startup.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry builds a registry. Empty or duplicate names are rejected.
func NewRegistry(entries ...Entry) (*Registry, error) {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("strategy name is required")
		}
		if e.New == nil {
			return nil, fmt.Errorf("strategy %q has no constructor", e.Name)
		}
		if _, dup := m[e.Name]; dup {
			return nil, fmt.Errorf("duplicate strategy %q", e.Name)
		}
		m[e.Name] = e
	}
	return &Registry{entries: m}, nil
}

// Resolve returns the constructor for name.
func (r *Registry) Resolve(name string) (Constructor, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.New, true
}

// Lookup returns the full entry for name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Entries returns every entry sorted by name.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered strategies.
func (r *Registry) Len() int { return len(r.entries) }
