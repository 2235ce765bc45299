package testsupport

import (
	"context"
	"testing"

	"reelscribe/internal/config"
	"reelscribe/internal/store"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...store.Option) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), cfg.Store, opts...)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// MustCreateAgent creates an agent row for handle.
func MustCreateAgent(t testing.TB, st *store.Store, handle string) store.Agent {
	t.Helper()

	agent, err := st.CreateAgent(context.Background(), handle, store.AgentProfile{})
	if err != nil {
		t.Fatalf("CreateAgent: %v", err)
	}
	return agent
}
