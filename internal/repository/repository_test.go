package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ashleeec/quibly/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// One shared in-memory database per test so parallel connections in
	// the pool see the same tables.
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Assignment{}, &models.Session{}, &models.Message{}, &models.Assessment{}))
	return db
}
