package engine

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"flightperf/internal/models"
)

// DefaultParallelThreshold is the filtered-subset size from which the
// aggregator splits work across goroutines.
const DefaultParallelThreshold = 50_000

// Options tunes how the aggregator spreads work. Zero values pick defaults.
type Options struct {
	Workers           int
	ParallelThreshold int
}

// Aggregator computes the grouped-mean tables of a report.
// It holds no per-call state and is safe for concurrent use.
type Aggregator struct {
	workers   int
	threshold int
}

// NewAggregator builds an Aggregator. Results depend only on the input and
// on opts, so repeated calls with the same arguments are deep-equal.
func NewAggregator(opts Options) *Aggregator {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}
	return &Aggregator{workers: opts.Workers, threshold: opts.ParallelThreshold}
}

var defaultAggregator = NewAggregator(Options{})

// Aggregate runs the metric map of t over records with default options.
func Aggregate(records []models.FlightRecord, t models.ReportType) ([]models.Table, error) {
	return defaultAggregator.Aggregate(records, t)
}

// Aggregate computes the five tables of t over the same records.
func (a *Aggregator) Aggregate(records []models.FlightRecord, t models.ReportType) ([]models.Table, error) {
	specs, ok := MetricMap(t)
	if !ok {
		return nil, fmt.Errorf("%w: unknown report type %q", ErrInvalidRequest, t)
	}

	tables := make([]models.Table, 0, len(specs))
	for _, spec := range specs {
		tables = append(tables, a.groupedMean(records, spec))
	}
	return tables, nil
}

// group accumulates one group key. count only counts present metric values.
type group struct {
	key   models.GroupKey
	sum   float64
	count int
}

// partial is the ordered group set of one chunk.
type partial struct {
	index map[string]int
	order []*group
}

func newPartial() *partial {
	return &partial{index: make(map[string]int)}
}

func (p *partial) lookup(id string, key func() models.GroupKey) *group {
	if i, ok := p.index[id]; ok {
		return p.order[i]
	}
	g := &group{key: key()}
	p.index[id] = len(p.order)
	p.order = append(p.order, g)
	return g
}

func (a *Aggregator) groupedMean(records []models.FlightRecord, spec models.TableSpec) models.Table {
	numWorkers := a.workers
	if len(records) < a.threshold || numWorkers < 2 {
		numWorkers = 1
	}
	chunkSize := (len(records) + numWorkers - 1) / numWorkers

	partials := make([]*partial, numWorkers)
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := min(start+chunkSize, len(records))
		if start >= end {
			partials[i] = newPartial()
			continue
		}

		if numWorkers == 1 {
			partials[i] = reduceChunk(records[start:end], spec)
			continue
		}

		wg.Add(1)
		go func(idx, s, e int) {
			defer wg.Done()
			partials[idx] = reduceChunk(records[s:e], spec)
		}(i, start, end)
	}
	wg.Wait()

	// Merge in chunk order so first-seen order matches a sequential pass.
	merged := partials[0]
	for _, p := range partials[1:] {
		for _, g := range p.order {
			m := merged.lookup(keyID(g.key), func() models.GroupKey { return g.key })
			m.sum += g.sum
			m.count += g.count
		}
	}

	table := models.Table{TableSpec: spec, Rows: make([]models.AggregateRow, 0, len(merged.order))}
	for _, g := range merged.order {
		if g.count == 0 {
			continue
		}
		table.Rows = append(table.Rows, models.AggregateRow{
			Key:   g.key,
			Value: g.sum / float64(g.count),
		})
	}
	return table
}

// keySep separates dimension values in a group's map key.
const keySep = '\x1f'

func keyID(k models.GroupKey) string {
	return strings.Join(k, string(keySep))
}

// reduceChunk is the single-pass group-by over one slice of records.
func reduceChunk(records []models.FlightRecord, spec models.TableSpec) *partial {
	p := newPartial()
	values := make([]string, len(spec.Dimensions))
	var sb strings.Builder

	for i := range records {
		r := &records[i]

		complete := true
		for d, dim := range spec.Dimensions {
			v, ok := dimensionValue(r, dim)
			if !ok {
				complete = false
				break
			}
			values[d] = v
		}
		if !complete {
			continue
		}

		sb.Reset()
		for d, v := range values {
			if d > 0 {
				sb.WriteByte(keySep)
			}
			sb.WriteString(v)
		}

		g := p.lookup(sb.String(), func() models.GroupKey {
			return append(models.GroupKey(nil), values...)
		})
		if v := metricValue(r, spec.Metric); v != nil {
			g.sum += *v
			g.count++
		}
	}
	return p
}
