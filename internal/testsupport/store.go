package testsupport

import (
	"context"
	"testing"

	"podium/internal/config"
	"podium/internal/labels"
	"podium/internal/speech"
)

// MustOpenStore opens a labels.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *labels.Store {
	t.Helper()

	store, err := labels.Open(cfg.Paths.LabelsDB)
	if err != nil {
		t.Fatalf("labels.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SetCell writes one label cell for tests using the provided store.
func SetCell(t testing.TB, store *labels.Store, key speech.Key, column string, value labels.Value) {
	t.Helper()

	if err := store.SetCell(context.Background(), key, column, value); err != nil {
		t.Fatalf("store.SetCell %s/%s: %v", key, column, err)
	}
}
