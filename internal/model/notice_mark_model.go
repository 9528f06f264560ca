package model

import (
	"time"

	"github.com/google/uuid"
)

// ExcludedNotice hides a notice from one user's default view.
type ExcludedNotice struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_excluded_user_notice" json:"user_id"`
	NoticeURL string    `gorm:"type:varchar(500);not null;uniqueIndex:uq_excluded_user_notice;index" json:"notice_url"`
	Reason    *string   `gorm:"type:varchar(200)" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (e *ExcludedNotice) TableName() string {
	return "excluded_notices"
}

type BookmarkedNotice struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_bookmarked_user_notice" json:"user_id"`
	NoticeURL string    `gorm:"type:varchar(500);not null;uniqueIndex:uq_bookmarked_user_notice;index" json:"notice_url"`
	Reason    *string   `gorm:"type:varchar(200)" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *BookmarkedNotice) TableName() string {
	return "bookmarked_notices"
}
