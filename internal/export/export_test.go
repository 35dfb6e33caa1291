package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"flightperf/internal/models"
)

func distanceTable() models.Table {
	return models.Table{
		TableSpec: models.TableSpec{
			Dimensions: []models.Dimension{models.DimMonth, models.DimAirline},
			Metric:     models.MetricDistance,
		},
		Rows: []models.AggregateRow{
			{Key: models.GroupKey{"1", "AA"}, Value: 600},
			{Key: models.GroupKey{"2", "AA"}, Value: 312.5},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, distanceTable()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Month", "Reporting_Airline", "Distance"}, records[0])
	assert.Equal(t, []string{"1", "AA"}, records[1][:2])

	v, err := strconv.ParseFloat(records[2][2], 64)
	require.NoError(t, err)
	assert.InDelta(t, 312.5, v, 1e-9)
}

func TestFrame_PreservesRowOrder(t *testing.T) {
	df := Frame(distanceTable())
	require.NoError(t, df.Err)

	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"1", "2"}, df.Col("Month").Records())
}

func TestWriteXLSX(t *testing.T) {
	empty := models.Table{TableSpec: models.TableSpec{
		Dimensions: []models.Dimension{models.DimDestState, models.DimAirline},
		Metric:     models.MetricPassengers,
	}, Rows: []models.AggregateRow{}}

	result := models.ReportResult{
		Request: models.ReportRequest{Type: models.Performance, Year: 2007},
		Tables:  []models.Table{distanceTable(), empty},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, result))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"1_Distance", "2_Passengers"}, f.GetSheetList())

	rows, err := f.GetRows("1_Distance")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Month", "Reporting_Airline", "Distance"}, rows[0])
	assert.Equal(t, "AA", rows[1][1])
	assert.Equal(t, "600", rows[1][2])

	rows, err = f.GetRows("2_Passengers")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"DestState", "Reporting_Airline", "Passengers"}, rows[0])
}

func TestSheetName(t *testing.T) {
	table := models.Table{TableSpec: models.TableSpec{Metric: models.MetricLateAircraftDelay}}
	assert.Equal(t, "5_LateAircraftDelay", SheetName(4, table))

	long := models.Table{TableSpec: models.TableSpec{Metric: "AVeryLongMetricNameThatDoesNotFit"}}
	assert.Len(t, SheetName(0, long), 31)
}
