package engine

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReadinessAndReplace(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewStore(clock)

	assert.Nil(t, store.Snapshot())
	require.Error(t, store.CheckReadiness(context.Background()))

	first := store.Replace(sampleFlights(), "file:///data/flights.csv", LoadStats{Rows: 6})
	require.NoError(t, store.CheckReadiness(context.Background()))
	assert.Same(t, first, store.Snapshot())
	assert.Equal(t, clock.Now(), first.LoadedAt)
	assert.Equal(t, 6, first.Stats.Rows)

	clock.Advance(time.Hour)
	second := store.Replace(nil, "file:///data/flights.csv", LoadStats{})
	assert.Same(t, second, store.Snapshot())
	assert.Equal(t, first.LoadedAt.Add(time.Hour), second.LoadedAt)

	// A reader holding the old snapshot still sees its records.
	assert.Len(t, first.Records, 6)
}

func TestNewStore_NilClock(t *testing.T) {
	store := NewStore(nil)
	ds := store.Replace(nil, "test", LoadStats{})
	assert.False(t, ds.LoadedAt.IsZero())
}
