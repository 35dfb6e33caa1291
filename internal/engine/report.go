package engine

import (
	"errors"
	"fmt"

	"flightperf/internal/models"
)

// ErrInvalidRequest is returned when a report is requested with a report
// type outside the known set.
var ErrInvalidRequest = errors.New("invalid report request")

// BuildReport builds the five tables of req from dataset with default options.
func BuildReport(req models.ReportRequest, dataset []models.FlightRecord) (models.ReportResult, error) {
	return defaultAggregator.BuildReport(req, dataset)
}

// BuildReport filters dataset to req.Year and aggregates it with the metric
// map of req.Type. The dataset is never modified.
func (a *Aggregator) BuildReport(req models.ReportRequest, dataset []models.FlightRecord) (models.ReportResult, error) {
	if !req.Type.Valid() {
		return models.ReportResult{}, fmt.Errorf("%w: unknown report type %q", ErrInvalidRequest, req.Type)
	}

	subset := FilterByYear(dataset, req.Year)
	tables, err := a.Aggregate(subset, req.Type)
	if err != nil {
		return models.ReportResult{}, err
	}

	return models.ReportResult{Request: req, Tables: tables}, nil
}
