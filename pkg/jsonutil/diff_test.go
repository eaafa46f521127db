package jsonutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiff(t *testing.T) {
	oldDoc := `{"Global": {"TotalDeaths": 50, "TotalConfirmed": 1000}, "DE": {"TotalDeaths": 10}, "FR": {"TotalDeaths": 3}}`
	newDoc := `{"Global": {"TotalDeaths": 60, "TotalConfirmed": 1000}, "DE": {"TotalDeaths": 10}, "IT": {"TotalDeaths": 40}}`

	got, err := Diff([]byte(oldDoc), []byte(newDoc))
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	want := []Change{
		{Path: "FR", Type: Deleted, OldValue: `{"TotalDeaths":3}`},
		{Path: "Global.TotalDeaths", Type: Updated, OldValue: "50", NewValue: "60"},
		{Path: "IT", Type: Added, NewValue: `{"TotalDeaths":40}`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffEmptyAndInvalid(t *testing.T) {
	got, err := Diff(nil, []byte(`{"a": 1}`))
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if len(got) != 1 || got[0].Type != Added {
		t.Errorf("expected one add, got %v", got)
	}

	if _, err := Diff([]byte(`{`), nil); err == nil {
		t.Errorf("expected error for invalid JSON")
	}
}

func TestDiffValuesIdentical(t *testing.T) {
	v := map[string]int{"a": 1, "b": 2}
	got, err := DiffValues(v, v)
	if err != nil {
		t.Fatalf("DiffValues failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no changes, got %v", got)
	}
}

func TestPretty(t *testing.T) {
	if got := Pretty(`{"a":1}`); got != "{\n  \"a\": 1\n}" {
		t.Errorf("unexpected pretty output %q", got)
	}
	if got := Pretty("not json"); got != "not json" {
		t.Errorf("invalid input should be unchanged, got %q", got)
	}
}
