package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadilmartias/notice-radar/internal/model"
	"gorm.io/gorm"
)

type CrawlLogRepository struct {
	db *gorm.DB
}

func NewCrawlLogRepository(db *gorm.DB) *CrawlLogRepository {
	return &CrawlLogRepository{db}
}

// Latest returns the most recent crawl, or nil when nothing was crawled yet.
func (r *CrawlLogRepository) Latest(ctx context.Context) (*model.CrawlLog, error) {
	var log model.CrawlLog
	err := r.db.WithContext(ctx).Order("crawled_at DESC").First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: latest crawl: %w", ErrStoreQueryFailed, err)
	}
	return &log, nil
}
