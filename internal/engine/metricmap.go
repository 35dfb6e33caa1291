package engine

import (
	"strconv"

	"flightperf/internal/models"
)

var (
	byMonthAirline = []models.Dimension{models.DimMonth, models.DimAirline}
	byStateAirline = []models.Dimension{models.DimDestState, models.DimAirline}
)

// metricMaps lists the five grouped means of each report type in output order.
var metricMaps = map[models.ReportType][models.ReportTables]models.TableSpec{
	models.Performance: {
		{Dimensions: byMonthAirline, Metric: models.MetricNoShow},
		{Dimensions: byMonthAirline, Metric: models.MetricDistance},
		{Dimensions: byStateAirline, Metric: models.MetricPassengers},
		{Dimensions: byMonthAirline, Metric: models.MetricDepDelayMinutes},
		{Dimensions: byMonthAirline, Metric: models.MetricActualElapsedTime},
	},
	models.AverageDelay: {
		{Dimensions: byMonthAirline, Metric: models.MetricLateAircraftDelay},
		{Dimensions: byMonthAirline, Metric: models.MetricCarrierDelay},
		{Dimensions: byMonthAirline, Metric: models.MetricWeatherDelay},
		{Dimensions: byMonthAirline, Metric: models.MetricNASDelay},
		{Dimensions: byMonthAirline, Metric: models.MetricSecurityDelay},
	},
}

// MetricMap returns the table specs of a report type in output order.
func MetricMap(t models.ReportType) ([models.ReportTables]models.TableSpec, bool) {
	specs, ok := metricMaps[t]
	return specs, ok
}

// dimensionValue returns the string form of a grouping dimension, or false
// when the record has no usable value for it.
func dimensionValue(r *models.FlightRecord, d models.Dimension) (string, bool) {
	switch d {
	case models.DimMonth:
		if r.Month < 1 || r.Month > 12 {
			return "", false
		}
		return strconv.Itoa(r.Month), true
	case models.DimAirline:
		return r.Airline, r.Airline != ""
	case models.DimDestState:
		return r.DestState, r.DestState != ""
	default:
		return "", false
	}
}

func metricValue(r *models.FlightRecord, m models.Metric) *float64 {
	switch m {
	case models.MetricNoShow:
		return r.NoShow
	case models.MetricDistance:
		return r.Distance
	case models.MetricPassengers:
		return r.Passengers
	case models.MetricDepDelayMinutes:
		return r.DepDelayMinutes
	case models.MetricActualElapsedTime:
		return r.ActualElapsedTime
	case models.MetricLateAircraftDelay:
		return r.LateAircraftDelay
	case models.MetricCarrierDelay:
		return r.CarrierDelay
	case models.MetricWeatherDelay:
		return r.WeatherDelay
	case models.MetricNASDelay:
		return r.NASDelay
	case models.MetricSecurityDelay:
		return r.SecurityDelay
	default:
		return nil
	}
}
