package testsupport

import (
	"context"
	"testing"

	"gaffer/internal/config"
	"gaffer/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// QueueRun inserts a queued run for tests using the provided store.
func QueueRun(t testing.TB, st *store.Store, graphID, nodeID, graphJSON string) *store.Run {
	t.Helper()

	run, err := st.CreateRun(context.Background(), store.NewRunParams{
		GraphID:   graphID,
		NodeID:    nodeID,
		GraphJSON: graphJSON,
	})
	if err != nil {
		t.Fatalf("store.CreateRun: %v", err)
	}
	return run
}
