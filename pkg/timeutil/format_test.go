package timeutil

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{450 * time.Millisecond, "450ms"},
		{1200 * time.Millisecond, "1.2s"},
		{2*time.Minute + 15*time.Second, "2m 15s"},
		{3*time.Hour + 5*time.Minute, "3h 05m"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{5 * time.Second, "5s ago"},
		{2 * time.Minute, "2m ago"},
		{90 * time.Minute, "1h ago"},
		{72 * time.Hour, "3d ago"},
	}
	for _, tc := range cases {
		if got := RelativeTime(now.Add(-tc.ago).UnixNano(), now); got != tc.want {
			t.Errorf("RelativeTime(-%v) = %q, want %q", tc.ago, got, tc.want)
		}
	}
}

func TestFormatFeedDate(t *testing.T) {
	if got := FormatFeedDate("2021-03-01T12:34:56.789Z"); got != "2021-03-01 12:34 UTC" {
		t.Errorf("unexpected feed date %q", got)
	}
	if got := FormatFeedDate("yesterday"); got != "yesterday" {
		t.Errorf("expected unparseable input unchanged, got %q", got)
	}
}
