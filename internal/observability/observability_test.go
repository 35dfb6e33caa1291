package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"flightperf/internal/config"
)

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level, format string
		enabled       slog.Level
		disabled      slog.Level
		handler       any
	}{
		{"debug", "json", slog.LevelDebug, slog.LevelDebug - 1, &slog.JSONHandler{}},
		{"warn", "text", slog.LevelWarn, slog.LevelInfo, &slog.TextHandler{}},
		{"ERROR", "TEXT", slog.LevelError, slog.LevelWarn, &slog.TextHandler{}},
		{"bogus", "", slog.LevelInfo, slog.LevelDebug, &slog.JSONHandler{}},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})

			assert.Same(t, logger, slog.Default())
			assert.IsType(t, tt.handler, logger.Handler())
			assert.True(t, logger.Enabled(context.Background(), tt.enabled))
			assert.False(t, logger.Enabled(context.Background(), tt.disabled))
		})
	}
}

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()

	m.ReportBuilds.WithLabelValues("performance", OutcomeSuccess).Inc()
	m.DatasetReloads.WithLabelValues(OutcomeError).Inc()
	m.DatasetRecords.Set(42)

	assert.InDelta(t, 1, testutil.ToFloat64(m.ReportBuilds.WithLabelValues("performance", OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DatasetReloads.WithLabelValues(OutcomeError)), 0)
	assert.InDelta(t, 42, testutil.ToFloat64(m.DatasetRecords), 0)

	// A second set must not collide with the first.
	assert.NotPanics(t, func() { NewMetricsForTesting() })
}
