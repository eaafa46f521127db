package summary

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/covidash/internal/chart"
)

const sampleDoc = `{
  "Global": {"NewConfirmed": 100, "TotalConfirmed": 1000, "NewDeaths": 5,
             "TotalDeaths": 50, "NewRecovered": 20, "TotalRecovered": 400},
  "Countries": [
    {"Country": "Germany", "CountryCode": "DE", "Slug": "germany", "Date": "2021-03-01T00:00:00Z",
     "NewConfirmed": 10, "TotalConfirmed": 300, "NewDeaths": 1, "TotalDeaths": 10,
     "NewRecovered": 5, "TotalRecovered": 200},
    {"Country": "Italy", "CountryCode": "IT", "Slug": "italy", "Date": "2021-03-01T00:00:00Z",
     "NewConfirmed": 30, "TotalConfirmed": 700, "NewDeaths": 4, "TotalDeaths": 40,
     "NewRecovered": 15, "TotalRecovered": 200}
  ]
}`

func sample(t *testing.T) *Summary {
	t.Helper()
	s, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)
	return s
}

func TestDecode(t *testing.T) {
	s := sample(t)
	assert.Equal(t, 1000.0, s.Global.TotalConfirmed)
	require.Len(t, s.Countries, 2)
	assert.Equal(t, "Germany", s.Countries[0].Country)
	assert.Equal(t, 300.0, s.Countries[0].TotalConfirmed)

	_, err := Decode(strings.NewReader(`{}`))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Decode(strings.NewReader(`{"Global":`))
	assert.Error(t, err)
}

func TestCountryLookup(t *testing.T) {
	s := sample(t)
	c, i, ok := s.Country("it")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, "Italy", c.Country)

	_, i, ok = s.Country("FR")
	assert.False(t, ok)
	assert.Equal(t, -1, i)
}

func TestPreparePieData(t *testing.T) {
	got := PreparePieData(StatisticEntry{
		NewConfirmed:   100,
		NewDeaths:      1,
		NewRecovered:   10,
		TotalConfirmed: 100,
		TotalDeaths:    10,
		TotalRecovered: 10,
	})
	want := []chart.Slice{
		{Name: "Total Deaths", Color: "black", Value: 10},
		{Name: "Total Active", Color: "red", Value: 80},
		{Name: "Total Recovered", Color: "green", Value: 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pie data mismatch (-want +got):\n%s", diff)
	}
}

func TestCountryColumns(t *testing.T) {
	s := sample(t)
	cols := CountryColumns(s.Countries)
	require.Len(t, cols, 5)

	first := s.Countries[0]
	assert.Equal(t, chart.TypeString, cols[0].Type)
	assert.Equal(t, "Country", cols[0].Name)
	assert.Equal(t, "Germany", cols[0].Attr.Value(first))

	wantValues := []float64{300, 90, 10, 200}
	for i, col := range cols[1:] {
		assert.Equal(t, chart.TypeNumber, col.Type, col.Name)
		assert.True(t, col.Sortable, col.Name)
		assert.Equal(t, wantValues[i], col.Attr.Value(first), col.Name)
		require.NotNil(t, col.Domain)
		assert.Equal(t, chart.Domain{0, 700}, *col.Domain, col.Name)
	}
}

func TestFields(t *testing.T) {
	f, err := ParseField("newconfirmed")
	require.NoError(t, err)
	assert.Equal(t, NewConfirmed, f)

	_, err = ParseField("bogus")
	assert.Error(t, err)

	s := sample(t).Global
	assert.Equal(t, 550.0, TotalActive.Value(s))
	assert.Equal(t, 5.0, NewDeaths.Value(s))
}

func TestRowsCarryCountryCodes(t *testing.T) {
	rows := Rows(sample(t).Countries)
	require.Len(t, rows, 2)
	assert.Equal(t, "DE", CountryCode(rows[0]))
	assert.Equal(t, "", CountryCode("nope"))
}

func TestKeyed(t *testing.T) {
	k := sample(t).Keyed()
	require.Len(t, k, 3)
	assert.Equal(t, 1000.0, k["Global"].TotalConfirmed)
	assert.Equal(t, 40.0, k["IT"].TotalDeaths)
}
