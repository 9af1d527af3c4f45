// Package store owns the authoritative collection of blood-pressure
// readings and keeps it flushed to a durable slot.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jinwsy/blood-pressure/internal/domain"
)

// Observer receives the outcome of every store operation.
type Observer interface {
	ObserveOperation(op string, err error)
	ObserveCount(n int)
}

// Store is the single source of truth for readings.
// Every mutation is flushed to the slot before it becomes visible in memory,
// so a failed flush leaves the previous state intact.
type Store struct {
	mu      sync.RWMutex
	slot    domain.Slot
	records []*domain.Reading // insertion order

	logger   zerolog.Logger
	loc      *time.Location
	now      func() time.Time
	newID    func() string
	observer Observer
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for warnings and mutation events
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithLocation sets the zone used to read local timestamps and format views
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides domain.NewID
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithObserver reports operations to o, e.g. a metrics collector
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// New creates an empty store backed by slot. Call Load to populate it.
func New(slot domain.Slot, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		logger: log.Logger,
		loc:    time.Local,
		now:    time.Now,
		newID:  domain.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the display zone of the store
func (s *Store) Location() *time.Location {
	return s.loc
}

// Now returns the current time from the store's clock
func (s *Store) Now() time.Time {
	return s.now()
}

// Load replaces the in-memory collection with the slot's contents.
// An empty slot yields an empty collection. A corrupt blob also yields an
// empty collection and returns an error wrapping ErrPersistenceCorrupt; the
// store stays usable either way.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	defer func() {
		if s.observer != nil {
			s.observer.ObserveCount(len(s.records))
		}
	}()

	blob, err := s.slot.Load(ctx, domain.StorageKey)
	if errors.Is(err, domain.ErrSlotEmpty) {
		s.logger.Debug().Msg("no stored readings, starting empty")
		s.observe("load", nil)
		return nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read stored readings")
		s.observe("load", err)
		return fmt.Errorf("failed to load readings: %w", err)
	}

	records, err := domain.DecodeReadings(blob)
	if err != nil {
		s.logger.Warn().Err(err).Int("bytes", len(blob)).Msg("stored readings are corrupt, starting empty")
		s.observe("load", err)
		return err
	}

	s.records = records
	s.logger.Info().Int("count", len(records)).Msg("loaded readings")
	s.observe("load", nil)
	return nil
}

// Create validates input, assigns a fresh id and persists the new reading
func (s *Store) Create(ctx context.Context, in domain.ReadingInput) (*domain.Reading, error) {
	f, err := in.Validate(s.loc, s.now())
	if err != nil {
		s.observe("create", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for s.indexOf(id) >= 0 {
		id = s.newID()
	}
	reading := domain.NewReading(id, f)

	next := append(slices.Clone(s.records), reading)
	if err := s.commit(ctx, next); err != nil {
		s.observe("create", err)
		return nil, err
	}

	s.logger.Info().
		Str("id", reading.ID).
		Int("systolic", reading.Systolic).
		Int("diastolic", reading.Diastolic).
		Str("category", reading.Category().String()).
		Msg("created reading")
	s.observe("create", nil)
	return reading.Clone(), nil
}

// Update overwrites every field of the reading with id, keeping the id
func (s *Store) Update(ctx context.Context, id string, in domain.ReadingInput) (*domain.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.observe("update", domain.ErrReadingNotFound)
		return nil, domain.ErrReadingNotFound
	}

	f, err := in.Validate(s.loc, s.now())
	if err != nil {
		s.observe("update", err)
		return nil, err
	}
	reading := domain.NewReading(id, f)

	next := slices.Clone(s.records)
	next[i] = reading
	if err := s.commit(ctx, next); err != nil {
		s.observe("update", err)
		return nil, err
	}

	s.logger.Info().Str("id", id).Msg("updated reading")
	s.observe("update", nil)
	return reading.Clone(), nil
}

// Delete removes the reading with id. Deleting a missing id is a no-op
// and reports false.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.Debug().Str("id", id).Msg("delete of missing reading ignored")
		s.observe("delete", nil)
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.records), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		s.observe("delete", err)
		return false, err
	}

	s.logger.Info().Str("id", id).Msg("deleted reading")
	s.observe("delete", nil)
	return true, nil
}

// Clear empties the collection and flushes unconditionally.
// Confirmation is the caller's responsibility.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.records)
	if err := s.commit(ctx, nil); err != nil {
		s.observe("clear", err)
		return err
	}

	s.logger.Info().Int("removed", removed).Msg("cleared readings")
	s.observe("clear", nil)
	return nil
}

// Get returns a copy of the reading with id
func (s *Store) Get(ctx context.Context, id string) (*domain.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, domain.ErrReadingNotFound
	}
	return s.records[i].Clone(), nil
}

// Count returns the number of stored readings
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// List returns copies of all readings, newest first
func (s *Store) List() []*domain.Reading {
	return domain.SortNewestFirst(s.snapshot())
}

// Stats aggregates the whole collection
func (s *Store) Stats() domain.Stats {
	return domain.ComputeStats(s.snapshot())
}

// ExportRows returns newest-first flat rows for tabular export
func (s *Store) ExportRows() []domain.ExportRow {
	return domain.BuildExportRows(s.snapshot(), s.loc)
}

// ChartSeries returns oldest-first series for the trend chart
func (s *Store) ChartSeries() domain.ChartSeries {
	return domain.BuildChartSeries(s.snapshot(), s.loc)
}

// snapshot copies the collection so views never observe later mutations
func (s *Store) snapshot() []*domain.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Reading, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// commit flushes next to the slot and, only on success, installs it.
// Callers must hold the write lock.
func (s *Store) commit(ctx context.Context, next []*domain.Reading) error {
	blob, err := domain.EncodeReadings(next)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistenceWrite, err)
	}

	if err := s.slot.Save(ctx, domain.StorageKey, blob); err != nil {
		s.logger.Error().Err(err).Int("count", len(next)).Msg("failed to persist readings")
		return fmt.Errorf("%w: %w", domain.ErrPersistenceWrite, err)
	}

	s.records = next
	if s.observer != nil {
		s.observer.ObserveCount(len(next))
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r *domain.Reading) bool { return r.ID == id })
}

func (s *Store) observe(op string, err error) {
	if s.observer != nil {
		s.observer.ObserveOperation(op, err)
	}
}
