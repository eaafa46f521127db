package summary

import (
	"math"

	"github.com/Mr-Dark-debug/covidash/internal/chart"
)

// PreparePieData splits an entry into deaths, active cases and
// recoveries.
func PreparePieData(s StatisticEntry) []chart.Slice {
	return []chart.Slice{
		{Name: "Total Deaths", Value: s.TotalDeaths, Color: "black"},
		{Name: "Total Active", Value: s.TotalActive(), Color: "red"},
		{Name: "Total Recovered", Value: s.TotalRecovered, Color: "green"},
	}
}

// Domain spans zero to the largest TotalConfirmed, so every number column
// shares one scale and the bars are comparable across columns.
func Domain(countries []CountryRecord) chart.Domain {
	var hi float64
	for _, c := range countries {
		hi = math.Max(hi, c.TotalConfirmed)
	}
	return chart.Domain{0, hi}
}

func statColumn(name string, f Field, color string, d chart.Domain) chart.Column {
	return chart.Column{
		Name:     name,
		Type:     chart.TypeNumber,
		Sortable: true,
		Color:    color,
		Domain:   &d,
		Attr: chart.Func(func(row any) any {
			if c, ok := row.(CountryRecord); ok {
				return f.Value(c.StatisticEntry)
			}
			return nil
		}),
	}
}

// CountryColumns returns the table headers for a country list.
func CountryColumns(countries []CountryRecord) []chart.Column {
	d := Domain(countries)
	return []chart.Column{
		{Name: "Country", Type: chart.TypeString, Sortable: true, Attr: chart.Field("Country")},
		statColumn("Total Confirmed", TotalConfirmed, "blue", d),
		statColumn("Total Active Cases", TotalActive, "red", d),
		statColumn("Total Deaths", TotalDeaths, "black", d),
		statColumn("Total Recovered", TotalRecovered, "green", d),
	}
}

// Rows wraps the countries as opaque table rows.
func Rows(countries []CountryRecord) []any {
	rows := make([]any, len(countries))
	for i, c := range countries {
		rows[i] = c
	}
	return rows
}

// CountryCode returns the code of a table row produced by Rows.
func CountryCode(row any) string {
	if c, ok := row.(CountryRecord); ok {
		return c.CountryCode
	}
	return ""
}
