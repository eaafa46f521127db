package attr

import (
	"encoding/json"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// exportAll lets cmp descend into unexported fields of row types.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// Property holds a non-reflected typed value (slice data, rows, headers).
// Replacing a value with a deeply equal copy is a no-op. Non-nil funcs
// never compare equal, so a value carrying one always counts as changed.
type Property[T any] struct {
	value T
}

// NewProperty returns a property initialised to v.
func NewProperty[T any](v T) *Property[T] {
	return &Property[T]{value: v}
}

func (p *Property[T]) Get() T {
	return p.value
}

// Set replaces the value and reports whether it differed.
func (p *Property[T]) Set(v T) bool {
	if cmp.Equal(p.value, v, exportAll) {
		return false
	}
	p.value = v
	return true
}

// SetJSON decodes raw and stores the result. Malformed input leaves the
// current value in place and is reported to the caller, which is expected
// to swallow it.
func (p *Property[T]) SetJSON(raw string) (bool, error) {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return false, err
	}
	return p.Set(v), nil
}
