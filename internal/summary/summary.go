// Package summary holds the pandemic summary dataset and turns it into
// the shapes the dashboard components consume.
package summary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmpty is returned when a decoded summary carries no data at all.
var ErrEmpty = errors.New("summary has no global figures and no countries")

// StatisticEntry is one set of counters, worldwide or per country.
type StatisticEntry struct {
	NewConfirmed   float64 `json:"NewConfirmed"`
	TotalConfirmed float64 `json:"TotalConfirmed"`
	NewDeaths      float64 `json:"NewDeaths"`
	TotalDeaths    float64 `json:"TotalDeaths"`
	NewRecovered   float64 `json:"NewRecovered"`
	TotalRecovered float64 `json:"TotalRecovered"`
}

// TotalActive is confirmed cases that have neither died nor recovered.
func (s StatisticEntry) TotalActive() float64 {
	return s.TotalConfirmed - s.TotalDeaths - s.TotalRecovered
}

// CountryRecord is the per-country row of the feed.
type CountryRecord struct {
	StatisticEntry
	Country     string `json:"Country"`
	CountryCode string `json:"CountryCode"`
	Slug        string `json:"Slug"`
	Date        string `json:"Date"`
}

// Summary is one fetch of the feed.
type Summary struct {
	Global    StatisticEntry  `json:"Global"`
	Countries []CountryRecord `json:"Countries"`
	Date      string          `json:"Date,omitempty"`
}

// Decode reads a summary document.
func Decode(r io.Reader) (*Summary, error) {
	var s Summary
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding summary: %w", err)
	}
	if s.Global == (StatisticEntry{}) && len(s.Countries) == 0 {
		return nil, ErrEmpty
	}
	return &s, nil
}

// Parse is Decode for an in-memory document.
func Parse(b []byte) (*Summary, error) {
	return Decode(bytes.NewReader(b))
}

// Country looks a record up by its ISO code, case-insensitively.
func (s *Summary) Country(code string) (CountryRecord, int, bool) {
	for i, c := range s.Countries {
		if strings.EqualFold(c.CountryCode, code) {
			return c, i, true
		}
	}
	return CountryRecord{}, -1, false
}

// Keyed flattens the summary into entries keyed by country code, with the
// worldwide figures under "Global".
func (s *Summary) Keyed() map[string]StatisticEntry {
	m := make(map[string]StatisticEntry, len(s.Countries)+1)
	m["Global"] = s.Global
	for _, c := range s.Countries {
		m[c.CountryCode] = c.StatisticEntry
	}
	return m
}

// Field names a statistic of an entry.
type Field string

const (
	NewConfirmed   Field = "NewConfirmed"
	TotalConfirmed Field = "TotalConfirmed"
	NewDeaths      Field = "NewDeaths"
	TotalDeaths    Field = "TotalDeaths"
	NewRecovered   Field = "NewRecovered"
	TotalRecovered Field = "TotalRecovered"
	TotalActive    Field = "TotalActive"
)

// Fields lists every statistic in display order.
var Fields = []Field{
	NewConfirmed, TotalConfirmed, NewDeaths, TotalDeaths,
	NewRecovered, TotalRecovered, TotalActive,
}

// ParseField accepts a field name in any case.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown statistic %q", name)
}

// Value extracts the statistic from s.
func (f Field) Value(s StatisticEntry) float64 {
	switch f {
	case NewConfirmed:
		return s.NewConfirmed
	case TotalConfirmed:
		return s.TotalConfirmed
	case NewDeaths:
		return s.NewDeaths
	case TotalDeaths:
		return s.TotalDeaths
	case NewRecovered:
		return s.NewRecovered
	case TotalRecovered:
		return s.TotalRecovered
	case TotalActive:
		return s.TotalActive()
	}
	return 0
}
