package engine

import "flightperf/internal/models"

// FilterByYear returns the well-formed records of the given year in their
// original order. A year that is not in the data yields an empty slice.
func FilterByYear(records []models.FlightRecord, year int) []models.FlightRecord {
	out := make([]models.FlightRecord, 0)
	for i := range records {
		if records[i].Year != year || !models.IsWellFormed(records[i]) {
			continue
		}
		out = append(out, records[i])
	}
	return out
}
