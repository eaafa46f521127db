package attr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingStore() (*Store, *[]string) {
	var changes []string
	s := NewStore([]string{"top", "batch", "legend", "order"}, func(name string) {
		changes = append(changes, name)
	})
	return s, &changes
}

var (
	topField   = IntField{Name: "top", Default: Unset, Min: 0, AllowUnset: true}
	batchField = IntField{Name: "batch", Default: 10, Min: 1}
	legend     = BoolField{Name: "legend", Default: true}
	order      = EnumField{Name: "order", Default: "asc", Values: []string{"asc", "desc"}}
)

func TestSetAttributeSameValueIsNoop(t *testing.T) {
	s, changes := newCountingStore()

	s.SetAttribute("top", "3")
	s.SetAttribute("top", "3")
	s.RemoveAttribute("missing")

	assert.Equal(t, []string{"top"}, *changes)
}

func TestUnobservedAttributesDoNotNotify(t *testing.T) {
	s, changes := newCountingStore()

	s.SetAttribute("id", "table")

	assert.Empty(t, *changes)
	v, ok := s.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "table", v)
	assert.Equal(t, []string{"id"}, s.Names())
}

func TestIntFieldRoundTrip(t *testing.T) {
	s, changes := newCountingStore()

	assert.Equal(t, Unset, topField.Get(s))
	require.NoError(t, topField.Set(s, 3))
	assert.Equal(t, 3, topField.Get(s))
	raw, _ := s.Get("top")
	assert.Equal(t, "3", raw)

	s.SetAttribute("top", "7")
	assert.Equal(t, 7, topField.Get(s))

	*changes = nil
	require.NoError(t, topField.Set(s, 7))
	assert.Empty(t, *changes, "writing the current value must not notify")
}

func TestIntFieldValidation(t *testing.T) {
	s, changes := newCountingStore()
	require.NoError(t, topField.Set(s, 2))
	*changes = nil

	err := topField.Set(s, -2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "top", verr.Field)
	assert.Equal(t, 2, topField.Get(s), "rejected write must leave state intact")
	assert.Empty(t, *changes)

	require.NoError(t, topField.Set(s, Unset))
	assert.Equal(t, Unset, topField.Get(s))

	assert.ErrorIs(t, batchField.Set(s, 0), ErrValidation)
	assert.ErrorIs(t, batchField.Set(s, -1), ErrValidation)
}

func TestIntFieldMalformedFallsBack(t *testing.T) {
	s, _ := newCountingStore()

	s.SetAttribute("top", "lots")
	assert.Equal(t, Unset, topField.Get(s))
	s.SetAttribute("top", "-5")
	assert.Equal(t, Unset, topField.Get(s))

	assert.Equal(t, 10, batchField.Get(s))
	s.SetAttribute("batch", "x")
	assert.Equal(t, 1, batchField.Get(s))
	s.SetAttribute("batch", "0")
	assert.Equal(t, 1, batchField.Get(s))
}

func TestBoolField(t *testing.T) {
	s, changes := newCountingStore()

	assert.True(t, legend.Get(s))
	legend.Set(s, true)
	assert.Empty(t, *changes)

	legend.Set(s, false)
	assert.False(t, legend.Get(s))
	raw, _ := s.Get("legend")
	assert.Equal(t, "false", raw)

	s.SetAttribute("legend", "")
	assert.True(t, legend.Get(s))
}

func TestEnumField(t *testing.T) {
	s, changes := newCountingStore()

	assert.Equal(t, "asc", order.Get(s))
	require.NoError(t, order.Set(s, "asc"))
	assert.Empty(t, *changes)

	require.NoError(t, order.Set(s, "desc"))
	assert.Equal(t, "desc", order.Get(s))
	assert.ErrorIs(t, order.Set(s, "sideways"), ErrValidation)
	assert.Equal(t, "desc", order.Get(s))

	s.SetAttribute("order", "bogus")
	assert.Equal(t, "asc", order.Get(s))
}

type point struct {
	Name  string
	Value float64
}

func TestPropertyEquality(t *testing.T) {
	p := NewProperty([]point{{"a", 1}})

	assert.False(t, p.Set([]point{{"a", 1}}), "identical copy is not a change")
	assert.True(t, p.Set([]point{{"a", 2}}))
	assert.Equal(t, 2.0, p.Get()[0].Value)

	changed, err := p.SetJSON(`[{"Name":"a","Value":2}]`)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = p.SetJSON(`{not json`)
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, "a", p.Get()[0].Name)
}

type scored struct {
	Name  string
	score int
}

func TestPropertySeesUnexportedFieldsAndFuncs(t *testing.T) {
	rows := NewProperty([]scored{{"a", 1}})
	assert.False(t, rows.Set([]scored{{"a", 1}}))
	assert.True(t, rows.Set([]scored{{"a", 7}}))
	assert.Equal(t, 7, rows.Get()[0].score)

	fn := NewProperty[func() int](nil)
	assert.False(t, fn.Set(nil))
	assert.True(t, fn.Set(func() int { return 1 }))
	assert.True(t, fn.Set(func() int { return 42 }))
	assert.Equal(t, 42, fn.Get()())
}
