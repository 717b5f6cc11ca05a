package store

import (
	"context"
	"errors"
	"testing"

	"github.com/vyrodovalexey/radiodir/internal/model"
)

// runStoreContract exercises the behaviour every Store implementation must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	t.Run("list empty store", func(t *testing.T) {
		s := newStore(t)

		stations, err := s.List(context.Background())
		if err != nil {
			t.Fatalf("List() unexpected error: %v", err)
		}
		if stations == nil {
			t.Error("List() should return an empty slice, not nil")
		}
		if len(stations) != 0 {
			t.Errorf("List() returned %d stations, want 0", len(stations))
		}
	})

	t.Run("list after creating N stations", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		ctx := context.Background()
		const n = 5

		// Act
		for i := 0; i < n; i++ {
			if _, err := s.Create(ctx, &model.StationInput{
				Name:      "Station",
				StreamURL: "http://example.com/stream",
			}); err != nil {
				t.Fatalf("Create() unexpected error: %v", err)
			}
		}
		stations, err := s.List(ctx)

		// Assert
		if err != nil {
			t.Fatalf("List() unexpected error: %v", err)
		}
		if len(stations) != n {
			t.Fatalf("List() returned %d stations, want %d", len(stations), n)
		}
		seen := make(map[int64]bool)
		for _, st := range stations {
			if seen[st.ID] {
				t.Errorf("duplicate ID %d", st.ID)
			}
			seen[st.ID] = true
		}
	})

	t.Run("create persists optional fields as null", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		ctx := context.Background()

		// Act
		id, err := s.Create(ctx, &model.StationInput{
			Name:      "Jazz FM",
			StreamURL: "http://example.com/jazz",
		})

		// Assert
		if err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
		if id <= 0 {
			t.Fatalf("Create() id = %d, want positive", id)
		}

		got, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() unexpected error: %v", err)
		}
		if got.Name != "Jazz FM" || got.StreamURL != "http://example.com/jazz" {
			t.Errorf("Get() = %+v", got)
		}
		if got.Genre != nil || got.Country != nil {
			t.Errorf("optional fields = %v, %v, want nil", got.Genre, got.Country)
		}
	})

	t.Run("create nil input", func(t *testing.T) {
		s := newStore(t)

		if _, err := s.Create(context.Background(), nil); !errors.Is(err, ErrNilStation) {
			t.Errorf("Create(nil) error = %v, want %v", err, ErrNilStation)
		}
	})

	t.Run("update replaces all fields", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		ctx := context.Background()
		id, err := s.Create(ctx, &model.StationInput{
			Name:      "Old",
			StreamURL: "http://example.com/old",
			Genre:     model.StringPtr("pop"),
			Country:   model.StringPtr("ES"),
		})
		if err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}

		// Act
		err = s.Update(ctx, id, &model.StationInput{
			Name:      "New",
			StreamURL: "http://example.com/new",
		})

		// Assert
		if err != nil {
			t.Fatalf("Update() unexpected error: %v", err)
		}
		got, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get() unexpected error: %v", err)
		}
		if got.ID != id || got.Name != "New" || got.StreamURL != "http://example.com/new" {
			t.Errorf("Get() = %+v", got)
		}
		if got.Genre != nil || got.Country != nil {
			t.Errorf("absent fields should become null, got %v, %v", got.Genre, got.Country)
		}
	})

	t.Run("update nonexistent id leaves collection unchanged", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		ctx := context.Background()
		id, _ := s.Create(ctx, &model.StationInput{Name: "A", StreamURL: "http://a"})

		// Act
		err := s.Update(ctx, 999, &model.StationInput{Name: "B", StreamURL: "http://b"})

		// Assert
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Update() error = %v, want %v", err, ErrNotFound)
		}
		stations, _ := s.List(ctx)
		if len(stations) != 1 || stations[0].ID != id || stations[0].Name != "A" {
			t.Errorf("collection changed: %+v", stations)
		}
	})

	t.Run("delete", func(t *testing.T) {
		// Arrange
		s := newStore(t)
		ctx := context.Background()
		keep, _ := s.Create(ctx, &model.StationInput{Name: "Keep", StreamURL: "http://keep"})
		drop, _ := s.Create(ctx, &model.StationInput{Name: "Drop", StreamURL: "http://drop"})

		// Act
		first := s.Delete(ctx, drop)
		second := s.Delete(ctx, drop)

		// Assert
		if first != nil {
			t.Fatalf("first Delete() unexpected error: %v", first)
		}
		if !errors.Is(second, ErrNotFound) {
			t.Errorf("second Delete() error = %v, want %v", second, ErrNotFound)
		}
		stations, _ := s.List(ctx)
		if len(stations) != 1 || stations[0].ID != keep {
			t.Errorf("List() after delete = %+v, want only %d", stations, keep)
		}
	})

	t.Run("ids are not reused after delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		first, _ := s.Create(ctx, &model.StationInput{Name: "A", StreamURL: "http://a"})
		_ = s.Delete(ctx, first)

		second, err := s.Create(ctx, &model.StationInput{Name: "B", StreamURL: "http://b"})
		if err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
		if second == first {
			t.Errorf("ID %d was reused", second)
		}
	})

	t.Run("invalid ids", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		in := &model.StationInput{Name: "A", StreamURL: "http://a"}

		if _, err := s.Get(ctx, 0); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Get(0) error = %v, want %v", err, ErrInvalidID)
		}
		if err := s.Update(ctx, -1, in); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Update(-1) error = %v, want %v", err, ErrInvalidID)
		}
		if err := s.Delete(ctx, 0); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Delete(0) error = %v, want %v", err, ErrInvalidID)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)

		if _, err := s.Get(context.Background(), 12345); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)

		if err := s.Ping(context.Background()); err != nil {
			t.Errorf("Ping() unexpected error: %v", err)
		}
	})
}
