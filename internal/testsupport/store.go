package testsupport

import (
	"context"
	"testing"

	"github.com/yu-a0/discovery-engine-suite/internal/config"
	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/reccache"
)

// MustOpenCache opens the configured reccache backend and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) reccache.Backend {
	t.Helper()

	backend, err := reccache.Open(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("reccache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = backend.Close()
	})
	return backend
}
