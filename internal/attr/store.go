// Package attr mirrors typed component state onto a serialized attribute
// map. The attribute map is the single source of truth for reflected
// fields; typed getters parse it on every read and typed setters validate,
// then write it back. Writes that would not change the stored string are
// dropped before the owner is notified.
package attr

import (
	"sort"
)

// ChangeFunc is invoked after an observed attribute actually changed.
type ChangeFunc func(name string)

// Store holds the serialized attributes of one component instance.
type Store struct {
	values   map[string]string
	observed map[string]struct{}
	onChange ChangeFunc
}

// NewStore creates a store notifying onChange for the observed names.
// Unobserved attributes are kept but never trigger a notification.
func NewStore(observed []string, onChange ChangeFunc) *Store {
	s := &Store{
		values:   make(map[string]string),
		observed: make(map[string]struct{}, len(observed)),
		onChange: onChange,
	}
	for _, name := range observed {
		s.observed[name] = struct{}{}
	}
	return s
}

// Get returns the raw attribute value and whether it is present.
func (s *Store) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether the attribute is present.
func (s *Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// SetAttribute is the external mutation path. Setting the value already
// stored is a no-op.
func (s *Store) SetAttribute(name, value string) {
	if old, ok := s.values[name]; ok && old == value {
		return
	}
	s.values[name] = value
	s.notify(name)
}

// RemoveAttribute deletes an attribute. Removing an absent one is a no-op.
func (s *Store) RemoveAttribute(name string) {
	if _, ok := s.values[name]; !ok {
		return
	}
	delete(s.values, name)
	s.notify(name)
}

// Names lists the present attributes in lexical order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (s *Store) notify(name string) {
	if s.onChange == nil {
		return
	}
	if _, ok := s.observed[name]; !ok {
		return
	}
	s.onChange(name)
}
