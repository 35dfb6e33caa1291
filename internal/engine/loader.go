package engine

import (
	"bufio"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"flightperf/internal/models"
)

// Source column names of the BTS on-time table.
const (
	colYear              = "Year"
	colMonth             = "Month"
	colAirline           = "Reporting_Airline"
	colDestState         = "DestState"
	colOriginWac         = "OriginWac"
	colDistance          = "Distance"
	colOriginStateFips   = "OriginStateFips"
	colDepDelayMinutes   = "DepDelayMinutes"
	colActualElapsedTime = "ActualElapsedTime"
	colLateAircraftDelay = "LateAircraftDelay"
	colCarrierDelay      = "CarrierDelay"
	colWeatherDelay      = "WeatherDelay"
	colNASDelay          = "NASDelay"
	colSecurityDelay     = "SecurityDelay"
)

var requiredColumns = []string{colYear, colMonth, colAirline}

// knownColumns lists every column the loader keeps. Anything else is skipped
// by the reader.
var knownColumns = []string{
	colYear, colMonth, colAirline, colDestState,
	colOriginWac, colDistance, colOriginStateFips, colDepDelayMinutes, colActualElapsedTime,
	colLateAircraftDelay, colCarrierDelay, colWeatherDelay, colNASDelay, colSecurityDelay,
}

// Encoding names accepted by LoadOptions.
const (
	EncodingLatin1 = "iso-8859-1"
	EncodingUTF8   = "utf-8"
)

// LoadOptions configures LoadCSV.
type LoadOptions struct {
	// Encoding of the input; the public BTS extract is ISO-8859-1.
	Encoding  string
	ChunkSize int
	Logger    *slog.Logger
}

// LoadStats summarises a load.
type LoadStats struct {
	Rows      int `json:"rows"`
	Malformed int `json:"malformed"`
	// InvalidCells counts numeric cells that could not be parsed and were
	// treated as missing.
	InvalidCells int           `json:"invalid_cells"`
	Duration     time.Duration `json:"duration"`
}

// ErrMissingColumn is returned when the CSV header lacks a column every
// report needs.
var ErrMissingColumn = errors.New("missing required column")

// LoadCSV parses the flight table in r. Cells that are empty, "NA" or not a
// number become missing values. Records without a usable year or month are
// kept and counted as malformed; the year filter drops them.
func LoadCSV(ctx context.Context, r io.Reader, opts LoadOptions) ([]models.FlightRecord, LoadStats, error) {
	start := time.Now()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 8192
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	switch strings.ToLower(opts.Encoding) {
	case "", EncodingLatin1, "latin1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case EncodingUTF8, "utf8":
	default:
		return nil, LoadStats{}, fmt.Errorf("unsupported encoding %q", opts.Encoding)
	}

	br := bufio.NewReader(r)
	headerLine, err := br.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || headerLine == "") {
		return nil, LoadStats{}, fmt.Errorf("read flight csv header: %w", err)
	}
	headerLine = strings.TrimPrefix(headerLine, "\ufeff")
	include, types, err := selectColumns(headerLine)
	if err != nil {
		return nil, LoadStats{}, err
	}

	rdr := csv.NewInferringReader(io.MultiReader(strings.NewReader(headerLine), br),
		csv.WithHeader(true),
		csv.WithChunk(opts.ChunkSize),
		csv.WithNullReader(true, "", "NA"),
		csv.WithIncludeColumns(include),
		csv.WithColumnTypes(types),
		csv.WithLazyQuotes(true),
		csv.WithAllocator(memory.NewGoAllocator()),
	)
	defer rdr.Release()

	var (
		records []models.FlightRecord
		stats   LoadStats
	)
	for rdr.Next() {
		if err := ctx.Err(); err != nil {
			return nil, LoadStats{}, err
		}

		rec := rdr.Record()
		batch, invalid := decodeRecord(rec)
		stats.InvalidCells += invalid
		for i := range batch {
			if !models.IsWellFormed(batch[i]) {
				stats.Malformed++
			}
		}
		records = append(records, batch...)
	}
	if err := rdr.Err(); err != nil {
		return nil, LoadStats{}, fmt.Errorf("read flight csv: %w", err)
	}

	stats.Rows = len(records)
	stats.Duration = time.Since(start)
	opts.Logger.Info("flight data loaded",
		"rows", stats.Rows,
		"malformed", stats.Malformed,
		"invalid_cells", stats.InvalidCells,
		"duration", stats.Duration,
	)
	return records, stats, nil
}

// decodeRecord converts one arrow batch into flight records and reports how
// many numeric cells it had to drop.
func decodeRecord(rec arrow.Record) ([]models.FlightRecord, int) {
	n := int(rec.NumRows())
	out := make([]models.FlightRecord, n)

	years := column(rec, colYear)
	months := column(rec, colMonth)
	airlines := column(rec, colAirline)
	states := column(rec, colDestState)

	floats := []struct {
		col string
		set func(*models.FlightRecord, *float64)
	}{
		{colOriginWac, func(f *models.FlightRecord, v *float64) { f.NoShow = v }},
		{colDistance, func(f *models.FlightRecord, v *float64) { f.Distance = v }},
		{colOriginStateFips, func(f *models.FlightRecord, v *float64) { f.Passengers = v }},
		{colDepDelayMinutes, func(f *models.FlightRecord, v *float64) { f.DepDelayMinutes = v }},
		{colActualElapsedTime, func(f *models.FlightRecord, v *float64) { f.ActualElapsedTime = v }},
		{colLateAircraftDelay, func(f *models.FlightRecord, v *float64) { f.LateAircraftDelay = v }},
		{colCarrierDelay, func(f *models.FlightRecord, v *float64) { f.CarrierDelay = v }},
		{colWeatherDelay, func(f *models.FlightRecord, v *float64) { f.WeatherDelay = v }},
		{colNASDelay, func(f *models.FlightRecord, v *float64) { f.NASDelay = v }},
		{colSecurityDelay, func(f *models.FlightRecord, v *float64) { f.SecurityDelay = v }},
	}

	cols := make(map[string]arrow.Array, len(floats))
	for _, fc := range floats {
		cols[fc.col] = column(rec, fc.col)
	}

	invalid := 0
	for i := 0; i < n; i++ {
		f := &out[i]
		var ok bool
		if f.Year, ok = intAt(years, i); !ok {
			invalid++
		}
		if f.Month, ok = intAt(months, i); !ok {
			invalid++
		}
		f.Airline = stringAt(airlines, i)
		f.DestState = stringAt(states, i)
		for _, fc := range floats {
			v, ok := floatAt(cols[fc.col], i)
			if !ok {
				invalid++
			}
			fc.set(f, v)
		}
	}
	return out, invalid
}

// selectColumns parses the header line and returns the known columns it
// contains, in header order. Every kept column is read as text so a stray
// value fails one cell rather than the whole batch.
func selectColumns(headerLine string) ([]string, map[string]arrow.DataType, error) {
	header, err := stdcsv.NewReader(strings.NewReader(headerLine)).Read()
	if err != nil {
		return nil, nil, fmt.Errorf("parse flight csv header: %w", err)
	}
	include := make([]string, 0, len(knownColumns))
	types := make(map[string]arrow.DataType, len(knownColumns))
	for _, name := range header {
		if !slices.Contains(knownColumns, name) {
			continue
		}
		if _, dup := types[name]; dup {
			continue
		}
		include = append(include, name)
		types[name] = arrow.BinaryTypes.String
	}

	for _, name := range requiredColumns {
		if _, ok := types[name]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return include, types, nil
}

func column(rec arrow.Record, name string) arrow.Array {
	idx := rec.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil
	}
	return rec.Column(idx[0])
}

// intAt returns the integer in a text cell. A missing cell reads as 0 and is
// valid; a cell that is not a whole number reads as 0 and is not.
func intAt(arr arrow.Array, i int) (int, bool) {
	raw := stringAt(arr, i)
	if raw == "" {
		return 0, true
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v, true
	}
	// Some extracts write integer columns as "2007.0".
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int(v), true
}

func stringAt(arr arrow.Array, i int) string {
	if arr == nil || arr.IsNull(i) {
		return ""
	}
	if a, ok := arr.(*array.String); ok {
		return strings.TrimSpace(a.Value(i))
	}
	return ""
}

// floatAt returns the number in a text cell, or nil when the cell is missing
// or unparseable. The flag is false only for the unparseable case.
func floatAt(arr arrow.Array, i int) (*float64, bool) {
	raw := stringAt(arr, i)
	if raw == "" || raw == "NA" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return models.Float(v), true
}
