// Package testdb opens a migrated in-memory SQLite database for tests.
package testdb

import (
	"testing"

	"swappay-be/internal/model"
	"swappay-be/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewInMemorySQLite()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
