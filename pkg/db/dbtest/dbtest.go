// Package dbtest opens throwaway sqlite databases carrying the full schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/angelmondragon/smartlist-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns an isolated in-memory database. The pool is pinned to one
// connection so shared-cache table locks never surface as test flakes.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

// SeedUser inserts a user with the given default critical days.
func SeedUser(t testing.TB, conn *gorm.DB, criticalDays int) *models.User {
	t.Helper()
	user := &models.User{
		Email:                uuid.NewString() + "@example.com",
		Name:                 "Test User",
		CriticalQuantityDays: criticalDays,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}
