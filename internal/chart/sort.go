package chart

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

func (o Order) opposite() Order {
	if o == Asc {
		return Desc
	}
	return Asc
}

// sortedRow pairs a row with its position in the unsorted input.
type sortedRow struct {
	row   any
	index int
}

// sortRows orders rows by col. Direction only flips the value comparison;
// ties always fall back to the original index ascending, so equal rows
// keep their input order either way. A nil col keeps input order.
func sortRows(rows []any, col *Column, order Order) []sortedRow {
	out := make([]sortedRow, len(rows))
	for i, r := range rows {
		out[i] = sortedRow{row: r, index: i}
	}
	if col == nil {
		return out
	}

	values := make([]any, len(rows))
	for i, r := range rows {
		values[i] = col.Attr.Value(r)
	}

	sign := 1
	if order == Desc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b sortedRow) int {
		if c := compareValues(col.Type, values[a.index], values[b.index]) * sign; c != 0 {
			return c
		}
		return a.index - b.index
	})
	return out
}

// compareValues orders numbers numerically and everything else lexically.
// Values that are not numbers in a number column sort before all numbers.
func compareValues(t ColumnType, a, b any) int {
	if t == TypeNumber {
		fa, okA := toFloat(a)
		fb, okB := toFloat(b)
		if !okA || math.IsNaN(fa) {
			fa = math.Inf(-1)
		}
		if !okB || math.IsNaN(fb) {
			fb = math.Inf(-1)
		}
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(stringify(a), stringify(b))
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
