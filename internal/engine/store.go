package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"flightperf/internal/models"
)

// Dataset is one loaded, read-only snapshot of the flight table.
type Dataset struct {
	Records  []models.FlightRecord
	Source   string
	Stats    LoadStats
	LoadedAt time.Time
}

// Store holds the current dataset. Readers take a snapshot and keep using it
// for the whole request; reloads swap in a new snapshot.
type Store struct {
	current atomic.Pointer[Dataset]
	clock   clockwork.Clock
}

// NewStore creates an empty store. A nil clock uses the real clock.
func NewStore(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{clock: clock}
}

// Snapshot returns the current dataset, or nil before the first load.
func (s *Store) Snapshot() *Dataset {
	return s.current.Load()
}

// Replace installs records as the current dataset and returns it.
func (s *Store) Replace(records []models.FlightRecord, source string, stats LoadStats) *Dataset {
	ds := &Dataset{
		Records:  records,
		Source:   source,
		Stats:    stats,
		LoadedAt: s.clock.Now().UTC(),
	}
	s.current.Store(ds)
	return ds
}

// CheckReadiness returns an error until a dataset has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if s.Snapshot() == nil {
		return errors.New("flight data is still loading")
	}
	return nil
}
