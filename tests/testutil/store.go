package testutil

import (
	"context"
	"testing"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestJSONStore creates a JSONStore in a fresh temporary directory.
func NewTestJSONStore(t *testing.T) *store.JSONStore {
	t.Helper()

	s, err := store.NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatalf("creating test json store: %v", err)
	}
	return s
}

// Backends returns a constructor for every store backend, keyed by name,
// for contract tests that must hold for all of them.
func Backends() map[string]func(t *testing.T) store.Store {
	return map[string]func(t *testing.T) store.Store{
		"sqlite": func(t *testing.T) store.Store { return NewTestStore(t) },
		"json":   func(t *testing.T) store.Store { return NewTestJSONStore(t) },
	}
}

// SeedTask stores task directly, bypassing the service layer, and
// returns it with its assigned ID.
func SeedTask(t *testing.T, st store.Store, task model.Task) model.Task {
	t.Helper()

	created, err := st.CreateTask(context.Background(), task)
	if err != nil {
		t.Fatalf("seeding task %q: %v", task.Title, err)
	}
	return *created
}
