package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightperf/internal/models"
)

func TestFilterByYear(t *testing.T) {
	got := FilterByYear(sampleFlights(), 2007)
	require.Len(t, got, 5)
	for _, r := range got {
		assert.Equal(t, 2007, r.Year)
	}
	assert.Equal(t, "DL", got[4].Airline, "order is preserved")
}

func TestFilterByYear_AbsentYear(t *testing.T) {
	got := FilterByYear(sampleFlights(), 1999)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, FilterByYear(nil, 2007))
}

func TestFilterByYear_DropsMalformed(t *testing.T) {
	records := []models.FlightRecord{
		{Year: 2010, Month: 0, Airline: "AA"},
		{Year: 2010, Month: 4, Airline: "AA"},
	}
	got := FilterByYear(records, 2010)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Month)
}

func TestFilterByYear_PartitionsDataset(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	var records []models.FlightRecord
	for _, y := range []int{2005, 2006, 2007} {
		records = append(records, randomFlights(rng, 300, y)...)
	}

	total := 0
	for _, y := range []int{2005, 2006, 2007} {
		total += len(FilterByYear(records, y))
	}
	assert.Equal(t, len(records), total)
}

func TestFilterByYear_DoesNotModifyInput(t *testing.T) {
	records := sampleFlights()
	before := sampleFlights()

	out := FilterByYear(records, 2007)
	out[0].Airline = "ZZ"

	assert.Equal(t, before, records)
}
