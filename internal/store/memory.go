package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vyrodovalexey/radiodir/internal/model"
)

// MemoryStore implements Store interface with in-memory storage.
type MemoryStore struct {
	mu       sync.RWMutex
	stations map[int64]model.Station
	lastID   int64
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stations: make(map[int64]model.Station),
	}
}

// List returns all stations from the store ordered by ID.
func (s *MemoryStore) List(ctx context.Context) ([]model.Station, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list stations: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stations := make([]model.Station, 0, len(s.stations))
	for _, station := range s.stations {
		stations = append(stations, station)
	}
	sort.Slice(stations, func(i, j int) bool {
		return stations[i].ID < stations[j].ID
	})

	return stations, nil
}

// Get retrieves a station by its ID.
func (s *MemoryStore) Get(ctx context.Context, id int64) (*model.Station, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get station: %w", ctx.Err())
	default:
	}

	if id <= 0 {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	station, exists := s.stations[id]
	if !exists {
		return nil, ErrNotFound
	}

	return &station, nil
}

// Create adds a new station and returns its generated ID. IDs are never reused.
func (s *MemoryStore) Create(ctx context.Context, in *model.StationInput) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("create station: %w", ctx.Err())
	default:
	}

	if in == nil {
		return 0, ErrNilStation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	s.stations[s.lastID] = in.ToStation(s.lastID)

	return s.lastID, nil
}

// Update replaces all mutable fields of an existing station.
func (s *MemoryStore) Update(ctx context.Context, id int64, in *model.StationInput) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("update station: %w", ctx.Err())
	default:
	}

	if id <= 0 {
		return ErrInvalidID
	}

	if in == nil {
		return ErrNilStation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stations[id]; !exists {
		return ErrNotFound
	}

	s.stations[id] = in.ToStation(id)

	return nil
}

// Delete removes a station from the store by its ID.
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("delete station: %w", ctx.Err())
	default:
	}

	if id <= 0 {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stations[id]; !exists {
		return ErrNotFound
	}

	delete(s.stations, id)

	return nil
}

// Ping always succeeds for the in-memory store unless the context is done.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
