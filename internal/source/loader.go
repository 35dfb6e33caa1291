package source

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"flightperf/internal/engine"
	"flightperf/internal/observability"
)

// Reloader refreshes the dataset. Watcher and Scheduler drive one.
type Reloader interface {
	Load(ctx context.Context) (*engine.Dataset, error)
}

// Loader fetches the dataset from a Source, parses it and installs it in the
// store. A failed load leaves the previous snapshot in place.
type Loader struct {
	src     Source
	store   *engine.Store
	opts    engine.LoadOptions
	metrics *observability.Metrics
	logger  *slog.Logger

	// mu serialises loads so a watcher event and a cron tick never race.
	mu sync.Mutex
}

// NewLoader wires a Loader. metrics may be nil.
func NewLoader(src Source, store *engine.Store, opts engine.LoadOptions, metrics *observability.Metrics, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &Loader{src: src, store: store, opts: opts, metrics: metrics, logger: logger}
}

// Load runs one fetch and parse cycle.
func (l *Loader) Load(ctx context.Context) (*engine.Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	l.logger.Info("loading dataset", "source", l.src.Name())

	ds, err := l.load(ctx)
	if err != nil {
		l.logger.Error("dataset load failed", "source", l.src.Name(), "error", err)
		if l.metrics != nil {
			l.metrics.DatasetReloads.WithLabelValues(observability.OutcomeError).Inc()
		}
		return nil, err
	}

	if l.metrics != nil {
		l.metrics.DatasetReloads.WithLabelValues(observability.OutcomeSuccess).Inc()
		l.metrics.DatasetRecords.Set(float64(ds.Stats.Rows))
		l.metrics.DatasetMalformed.Set(float64(ds.Stats.Malformed))
		l.metrics.DatasetLoadTime.Observe(time.Since(start).Seconds())
	}
	return ds, nil
}

// LoadWithRetry calls Load until it succeeds, doubling the wait between
// attempts from initial up to maxBackoff. It returns ctx.Err() once ctx is
// done.
func (l *Loader) LoadWithRetry(ctx context.Context, initial, maxBackoff time.Duration) (*engine.Dataset, error) {
	backoff := initial
	for {
		ds, err := l.Load(ctx)
		if err == nil {
			return ds, nil
		}
		l.logger.Warn("retrying dataset load", "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return nil, ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (l *Loader) load(ctx context.Context) (*engine.Dataset, error) {
	rc, err := l.src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	records, stats, err := engine.LoadCSV(ctx, rc, l.opts)
	if err != nil {
		return nil, err
	}
	return l.store.Replace(records, l.src.Name(), stats), nil
}
