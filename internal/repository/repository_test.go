package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func intPtr(v int) *int              { return &v }
func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func seedNotice(t *testing.T, db *gorm.DB, n model.Notice) model.Notice {
	t.Helper()
	if n.URL == "" {
		n.URL = fmt.Sprintf("https://example.com/%s", strings.ReplaceAll(n.Title, " ", "-"))
	}
	if n.Source == "" {
		n.Source = "기업마당"
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = base
	}
	require.NoError(t, db.Create(&n).Error)
	return n
}
