package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYear(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"2007", 2007, false},
		{" 2007 ", 2007, false},
		{"1000", 1000, false},
		{"9999", 9999, false},
		{"999", 0, true},
		{"10000", 0, true},
		{"07", 0, true},
		{"-2007", 0, true},
		{"", 0, true},
		{"twenty", 0, true},
		{"2007.5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseYear(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid year")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReportType(t *testing.T) {
	tests := []struct {
		in      string
		want    ReportType
		wantErr bool
	}{
		{"performance", Performance, false},
		{"Performance", Performance, false},
		{"PERFORMANCE", Performance, false},
		{" avgdelay\t", AverageDelay, false},
		{"AvgDelay", AverageDelay, false},
		{"avg delay", "", true},
		{"weekly", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReportType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown report type")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReportType_LabelAndValid(t *testing.T) {
	assert.True(t, Performance.Valid())
	assert.True(t, AverageDelay.Valid())
	assert.False(t, ReportType("Performance").Valid())

	assert.Equal(t, "Yearly airline performance report", Performance.Label())
	assert.Equal(t, "Yearly average flight delay statistics", AverageDelay.Label())
	assert.Empty(t, ReportType("weekly").Label())
	assert.Equal(t, "avgdelay", AverageDelay.String())
}

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		name        string
		year, month int
		want        bool
	}{
		{"january", 2007, 1, true},
		{"december", 2007, 12, true},
		{"month zero", 2007, 0, false},
		{"month thirteen", 2007, 13, false},
		{"negative month", 2007, -1, false},
		{"no year", 0, 5, false},
		{"negative year", -2007, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FlightRecord{Year: tt.year, Month: tt.month, Airline: "AA"}
			assert.Equal(t, tt.want, IsWellFormed(r))
		})
	}
}

func TestChartHintFor(t *testing.T) {
	tests := []struct {
		name   string
		typ    ReportType
		pos    int
		want   ChartKind
		wantOK bool
	}{
		{"performance first", Performance, 0, ChartTreemap, true},
		{"performance pie", Performance, 1, ChartPie, true},
		{"performance map", Performance, 2, ChartChoropleth, true},
		{"performance bar", Performance, 3, ChartBar, true},
		{"performance last", Performance, 4, ChartLine, true},
		{"avgdelay first", AverageDelay, 0, ChartLine, true},
		{"avgdelay last", AverageDelay, 4, ChartLine, true},
		{"negative position", Performance, -1, "", false},
		{"past the end", Performance, ReportTables, "", false},
		{"far past the end", AverageDelay, 99, "", false},
		{"unknown type", ReportType("weekly"), 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint, ok := ChartHintFor(tt.typ, tt.pos)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, hint.Kind)
			if !ok {
				assert.Equal(t, ChartHint{}, hint)
			}
		})
	}

	hint, ok := ChartHintFor(AverageDelay, 0)
	require.True(t, ok)
	assert.Equal(t, "Average late aircraft delay time (minutes) by airline", hint.Title)
}

func TestGroupKey_String(t *testing.T) {
	assert.Equal(t, "1|AA", GroupKey{"1", "AA"}.String())
	assert.Empty(t, GroupKey{}.String())
}
