package attr

import (
	"strconv"
	"strings"
)

// Unset is the sentinel for "no index" / "no limit".
const Unset = -1

// IntField describes a reflected integer attribute.
//
// Reads never fail: a missing attribute yields Default, and a malformed
// or out-of-range one yields Unset when the sentinel is allowed, otherwise
// Min. Writes below Min (other than the sentinel) are rejected.
type IntField struct {
	Name       string
	Default    int
	Min        int
	AllowUnset bool
}

func (f IntField) fallback() int {
	if f.AllowUnset {
		return Unset
	}
	return f.Min
}

func (f IntField) Get(s *Store) int {
	raw, ok := s.Get(f.Name)
	if !ok {
		return f.Default
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return f.fallback()
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return f.fallback()
	}
	if v == Unset && f.AllowUnset {
		return v
	}
	if v < f.Min {
		return f.fallback()
	}
	return v
}

func (f IntField) Validate(v int) error {
	if v == Unset && f.AllowUnset {
		return nil
	}
	if v < f.Min {
		reason := "must be >= " + strconv.Itoa(f.Min)
		if f.AllowUnset {
			reason += " or -1"
		}
		return &ValidationError{Field: f.Name, Value: v, Reason: reason}
	}
	return nil
}

// Set validates v and writes its serialized form. Writing the current
// value does nothing.
func (f IntField) Set(s *Store, v int) error {
	if err := f.Validate(v); err != nil {
		return err
	}
	if f.Get(s) == v {
		return nil
	}
	s.SetAttribute(f.Name, strconv.Itoa(v))
	return nil
}

// BoolField describes a reflected boolean attribute. Any value other than
// "false" reads as true, so a bare attribute switches the flag on.
type BoolField struct {
	Name    string
	Default bool
}

func (f BoolField) Get(s *Store) bool {
	raw, ok := s.Get(f.Name)
	if !ok {
		return f.Default
	}
	return strings.TrimSpace(raw) != "false"
}

func (f BoolField) Set(s *Store, v bool) {
	if f.Get(s) == v {
		return
	}
	s.SetAttribute(f.Name, strconv.FormatBool(v))
}

// EnumField describes a reflected attribute restricted to Values.
// Unknown serialized values read as Default.
type EnumField struct {
	Name    string
	Default string
	Values  []string
}

func (f EnumField) valid(v string) bool {
	for _, allowed := range f.Values {
		if v == allowed {
			return true
		}
	}
	return false
}

func (f EnumField) Get(s *Store) string {
	raw, ok := s.Get(f.Name)
	if !ok {
		return f.Default
	}
	raw = strings.ToLower(strings.TrimSpace(raw))
	if !f.valid(raw) {
		return f.Default
	}
	return raw
}

func (f EnumField) Set(s *Store, v string) error {
	if !f.valid(v) {
		return &ValidationError{
			Field:  f.Name,
			Value:  v,
			Reason: "must be one of " + strings.Join(f.Values, ", "),
		}
	}
	if f.Get(s) == v {
		return nil
	}
	s.SetAttribute(f.Name, v)
	return nil
}
