package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FlightRecord is one row of the on-time performance table.
// Metric pointers are nil when the upstream cell was empty.
type FlightRecord struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Airline   string `json:"airline"`
	DestState string `json:"dest_state"`

	// NoShow and Passengers carry the renamed OriginWac / OriginStateFips
	// columns. Treat them as opaque metric names.
	NoShow            *float64 `json:"no_show,omitempty"`
	Distance          *float64 `json:"distance,omitempty"`
	Passengers        *float64 `json:"passengers,omitempty"`
	DepDelayMinutes   *float64 `json:"dep_delay_minutes,omitempty"`
	ActualElapsedTime *float64 `json:"actual_elapsed_time,omitempty"`
	LateAircraftDelay *float64 `json:"late_aircraft_delay,omitempty"`
	CarrierDelay      *float64 `json:"carrier_delay,omitempty"`
	WeatherDelay      *float64 `json:"weather_delay,omitempty"`
	NASDelay          *float64 `json:"nas_delay,omitempty"`
	SecurityDelay     *float64 `json:"security_delay,omitempty"`
}

// IsWellFormed reports whether the record has the year and month every
// report depends on.
func IsWellFormed(r FlightRecord) bool {
	return r.Year > 0 && r.Month >= 1 && r.Month <= 12
}

// Float returns a pointer to v. Handy for building records in code.
func Float(v float64) *float64 {
	return &v
}

// ReportType selects one of the two fixed metric maps.
type ReportType string

const (
	Performance  ReportType = "performance"
	AverageDelay ReportType = "avgdelay"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	return t == Performance || t == AverageDelay
}

// Label is the human readable name shown in report pickers.
func (t ReportType) Label() string {
	switch t {
	case Performance:
		return "Yearly airline performance report"
	case AverageDelay:
		return "Yearly average flight delay statistics"
	default:
		return ""
	}
}

func (t ReportType) String() string {
	return string(t)
}

// ParseReportType accepts "performance" or "avgdelay" (case-insensitive).
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown report type %q (expected performance or avgdelay)", s)
	}
	return t, nil
}

// ParseYear accepts the string form the year picker sends ("2007").
func ParseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %w", s, err)
	}
	if y < 1000 || y > 9999 {
		return 0, fmt.Errorf("invalid year %q: expected four digits", s)
	}
	return y, nil
}

// ReportRequest is the (report type, year) pair a report is built for.
type ReportRequest struct {
	Type ReportType `json:"type" yaml:"type"`
	Year int        `json:"year" yaml:"year"`
}

// Dimension is a grouping column.
type Dimension string

const (
	DimMonth     Dimension = "Month"
	DimAirline   Dimension = "Reporting_Airline"
	DimDestState Dimension = "DestState"
)

// Metric is a numeric column reduced by mean.
type Metric string

const (
	MetricNoShow            Metric = "NoShow"
	MetricDistance          Metric = "Distance"
	MetricPassengers        Metric = "Passengers"
	MetricDepDelayMinutes   Metric = "DepDelayMinutes"
	MetricActualElapsedTime Metric = "ActualElapsedTime"
	MetricLateAircraftDelay Metric = "LateAircraftDelay"
	MetricCarrierDelay      Metric = "CarrierDelay"
	MetricWeatherDelay      Metric = "WeatherDelay"
	MetricNASDelay          Metric = "NASDelay"
	MetricSecurityDelay     Metric = "SecurityDelay"
)

// GroupKey holds the dimension values of one group, in the order of the
// table's Dimensions.
type GroupKey []string

func (k GroupKey) String() string {
	return strings.Join(k, "|")
}

// AggregateRow is one group of a table and the mean of its metric.
type AggregateRow struct {
	Key   GroupKey `json:"key" yaml:"key"`
	Value float64  `json:"value" yaml:"value"`
}

// TableSpec describes one grouped mean: which dimensions and which metric.
type TableSpec struct {
	Dimensions []Dimension `json:"dimensions" yaml:"dimensions"`
	Metric     Metric      `json:"metric" yaml:"metric"`
}

// Table is the output of one grouped reduction. Rows keep the order in which
// each group was first seen.
type Table struct {
	TableSpec `yaml:",inline"`
	Rows      []AggregateRow `json:"rows" yaml:"rows"`
}

// ReportTables is the number of tables every report carries.
const ReportTables = 5

// ReportResult is the five tables of a report in their fixed order.
type ReportResult struct {
	Request ReportRequest `json:"request" yaml:"request"`
	Tables  []Table       `json:"tables" yaml:"tables"`
}
