package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarkRepository stores per-user notice markers keyed by (user_id, notice_url).
// Exclusions and bookmarks share the shape and differ only in table.
type MarkRepository[T any] struct {
	db        *gorm.DB
	newRecord func(userID uuid.UUID, url string, reason *string) *T
}

func NewExclusionRepository(db *gorm.DB) *MarkRepository[model.ExcludedNotice] {
	return &MarkRepository[model.ExcludedNotice]{
		db: db,
		newRecord: func(userID uuid.UUID, url string, reason *string) *model.ExcludedNotice {
			return &model.ExcludedNotice{UserID: userID, NoticeURL: url, Reason: reason, CreatedAt: time.Now()}
		},
	}
}

func NewBookmarkRepository(db *gorm.DB) *MarkRepository[model.BookmarkedNotice] {
	return &MarkRepository[model.BookmarkedNotice]{
		db: db,
		newRecord: func(userID uuid.UUID, url string, reason *string) *model.BookmarkedNotice {
			return &model.BookmarkedNotice{UserID: userID, NoticeURL: url, Reason: reason, CreatedAt: time.Now()}
		},
	}
}

// Insert adds a marker. An existing marker for the same pair is left alone.
func (r *MarkRepository[T]) Insert(ctx context.Context, userID uuid.UUID, url string, reason *string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(r.newRecord(userID, url, reason)).Error
	if err != nil {
		return fmt.Errorf("%w: insert marker: %w", ErrStoreQueryFailed, err)
	}
	return nil
}

// Delete removes the marker for the pair; a missing marker is not an error.
func (r *MarkRepository[T]) Delete(ctx context.Context, userID uuid.UUID, url string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND notice_url = ?", userID, url).
		Delete(new(T)).Error
	if err != nil {
		return fmt.Errorf("%w: delete marker: %w", ErrStoreQueryFailed, err)
	}
	return nil
}

func (r *MarkRepository[T]) ListURLs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).
		Model(new(T)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("notice_url", &urls).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list markers: %w", ErrStoreQueryFailed, err)
	}
	return urls, nil
}
