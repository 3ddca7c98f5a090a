package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trajecta/trajecta/models"
)

// newTestDB opens a fresh in-memory store per test. MaxOpenConns(1) keeps
// every goroutine on the same connection so concurrent tests serialize at the
// pool instead of racing separate in-memory databases.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Forum{},
		&models.Post{},
		&models.Experience{},
	))
	return db
}

// seedUser inserts a user directly, bypassing reconciliation.
func seedUser(t *testing.T, db *gorm.DB, email, name string) *models.User {
	t.Helper()

	user := models.User{Email: email, Name: name}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func testCtx() context.Context {
	return context.Background()
}
