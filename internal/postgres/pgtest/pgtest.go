// Package pgtest opens the integration database for tests.
package pgtest

import (
	"context"
	"os"
	"testing"

	"github.com/ariefcatur/go-marketplace/internal/postgres"
	"github.com/rs/zerolog"
)

// Open connects to DATABASE_URL, migrates and truncates every table. The
// calling test is skipped when DATABASE_URL is unset.
func Open(t testing.TB) *postgres.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := postgres.Connect(ctx, dsn, postgres.Options{MaxConns: 16}, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Truncate(ctx); err != nil {
		db.Close()
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}
