// Package timeutil formats the timestamps covidash shows.
//
// Stored timestamps are Unix nanoseconds (int64); the feed carries
// RFC 3339 strings. Both end up as short, human-readable labels in the
// dashboard header and the CLI listings.
package timeutil

import (
	"fmt"
	"time"
)

// FromNano converts a Unix nanosecond timestamp to time.Time.
func FromNano(ns int64) time.Time {
	return time.Unix(0, ns)
}

// FormatTimestamp formats a Unix nanosecond timestamp as
// "2006-01-02 15:04:05" in local time.
func FormatTimestamp(ns int64) string {
	return FromNano(ns).Local().Format("2006-01-02 15:04:05")
}

// FormatFeedDate shortens a feed date ("2021-03-01T12:34:56.789Z") to
// "2021-03-01 12:34 UTC". Unparseable input is returned unchanged.
func FormatFeedDate(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return t.UTC().Format("2006-01-02 15:04") + " UTC"
}

// FormatDuration renders d compactly.
// Examples: "450ms", "1.2s", "2m 15s", "3h 05m".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		m := int(d.Minutes())
		return fmt.Sprintf("%dm %02ds", m, int(d.Seconds())-m*60)
	}
	h := int(d.Hours())
	return fmt.Sprintf("%dh %02dm", h, int(d.Minutes())-h*60)
}

// RelativeTime describes how long before now ns was.
// Examples: "just now", "5s ago", "2m ago", "1h ago", "3d ago".
func RelativeTime(ns int64, now time.Time) string {
	diff := now.Sub(FromNano(ns))

	switch {
	case diff < time.Second:
		return "just now"
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
