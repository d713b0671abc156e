// Package helpers provides shared test fixtures.
package helpers

import (
	"testing"

	"github.com/baatcheet/server/store"
)

// NewTestStore creates an in-memory sqlite store, closed when the test ends.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
