// Package dbtest provides an in-memory sqlite database for package tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/necatisahhin/zeroAiBackend/internal/config"
	"github.com/necatisahhin/zeroAiBackend/internal/database"
)

// New opens a migrated in-memory database that is closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    ":memory:",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return db.Gorm
}
