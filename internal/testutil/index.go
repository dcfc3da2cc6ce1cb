package testutil

import (
	"testing"

	"undisorder/internal/index"
)

// NewTestStore creates an in-memory hash index with migrations applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *index.Store {
	t.Helper()

	store, err := index.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open index: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
