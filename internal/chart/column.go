package chart

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ColumnType selects how a column's values compare and render.
type ColumnType string

const (
	TypeString ColumnType = "string"
	TypeNumber ColumnType = "number"
)

// Domain is the [min, max] range a number column's magnitude bar spans.
type Domain [2]float64

// Accessor extracts a cell value from an opaque row: either a named field
// or a pure function. Only the field form survives serialization.
type Accessor struct {
	Field string
	Func  func(row any) any
}

// Field returns an accessor reading the named field.
func Field(name string) Accessor {
	return Accessor{Field: name}
}

// Func returns an accessor computing the value from the row.
func Func(fn func(row any) any) Accessor {
	return Accessor{Func: fn}
}

// Value extracts the cell value. Missing fields yield nil.
func (a Accessor) Value(row any) any {
	if a.Func != nil {
		return a.Func(row)
	}
	return lookupField(row, a.Field)
}

func (a Accessor) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Field)
}

func (a *Accessor) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return fmt.Errorf("column attr must be a field name: %w", err)
	}
	a.Field = name
	a.Func = nil
	return nil
}

// Column describes one table column. Name is the reconciliation key.
type Column struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Sortable bool       `json:"sortable"`
	Attr     Accessor   `json:"attr"`
	Color    string     `json:"color,omitempty"`
	Domain   *Domain    `json:"domain,omitempty"`
}

// UnmarshalJSON accepts the legacy "sortAble" spelling and defaults an
// unknown type to string.
func (c *Column) UnmarshalJSON(b []byte) error {
	type plain Column
	var aux struct {
		plain
		SortAble *bool `json:"sortAble"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = Column(aux.plain)
	if aux.SortAble != nil && !c.Sortable {
		c.Sortable = *aux.SortAble
	}
	if c.Type != TypeNumber {
		c.Type = TypeString
	}
	if c.Attr.Field == "" && c.Attr.Func == nil {
		c.Attr.Field = c.Name
	}
	return nil
}

// defaultOrder is the order a first click on the column selects: most
// first for numbers, alphabetical for strings.
func (c Column) defaultOrder() Order {
	if c.Type == TypeNumber {
		return Desc
	}
	return Asc
}

// Magnitude returns the cell's position within the column domain as a
// percentage clamped to [0,100]. ok is false when there is no usable
// domain or value.
func (c Column) Magnitude(v any) (pct float64, ok bool) {
	if c.Type != TypeNumber || c.Domain == nil {
		return 0, false
	}
	f, isNum := toFloat(v)
	if !isNum {
		return 0, false
	}
	lo, hi := c.Domain[0], c.Domain[1]
	if hi == lo {
		return 0, false
	}
	pct = (f - lo) / (hi - lo) * 100
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	return pct, true
}

func lookupField(row any, name string) any {
	if row == nil || name == "" {
		return nil
	}
	switch r := row.(type) {
	case map[string]any:
		return r[name]
	case map[string]string:
		if v, ok := r[name]; ok {
			return v
		}
		return nil
	case map[string]float64:
		if v, ok := r[name]; ok {
			return v
		}
		return nil
	}

	v := reflect.ValueOf(row)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil
		}
		return mv.Interface()
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			tag := strings.Split(f.Tag.Get("json"), ",")[0]
			if f.Name == name || tag == name {
				return v.Field(i).Interface()
			}
		}
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
