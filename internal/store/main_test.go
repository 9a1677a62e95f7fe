package store

import (
	"context"
	"os"
	"testing"
)

var testCfg = &Config{
	DSN:         os.Getenv("TEST_MYSQL_DSN"),
	Automigrate: true,
}

// newTestStore connects to the database named by TEST_MYSQL_DSN, applying
// migrations. Tests are skipped when the env var is unset.
func newTestStore(t *testing.T, ctx context.Context) *MYSQLStore {
	t.Helper()
	if testCfg.DSN == "" {
		t.Skip("TEST_MYSQL_DSN is not set")
	}
	store, err := New(ctx, *testCfg)
	if err != nil {
		t.Fatalf("connect test store: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}
