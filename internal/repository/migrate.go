package repository

import (
	"github.com/fadilmartias/notice-radar/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate creates the tables this service reads and writes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Notice{},
		&model.ExcludedNotice{},
		&model.BookmarkedNotice{},
		&model.CrawlLog{},
	)
}
