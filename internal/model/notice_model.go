package model

import (
	"time"
)

type Notice struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	URL         string     `gorm:"type:varchar(500);uniqueIndex;not null" json:"url"`
	Title       string     `gorm:"type:varchar(500);not null" json:"title"`
	Agency      *string    `gorm:"type:varchar(100)" json:"agency"`
	Summary     *string    `gorm:"type:text" json:"summary"`
	Date        *string    `gorm:"type:varchar(50)" json:"date"`
	EndDate     *string    `gorm:"type:varchar(50)" json:"end_date"`
	Source      string     `gorm:"type:varchar(20);index" json:"source"`
	Category    *string    `gorm:"type:varchar(50)" json:"category"`
	Subcategory *string    `gorm:"type:varchar(50)" json:"subcategory"`
	Relevance   int        `gorm:"not null;default:0" json:"relevance"`
	LLMScore    *int       `gorm:"column:llm_score" json:"llm_score"`
	LLMReason   *string    `gorm:"column:llm_reason;type:text" json:"llm_reason"`
	CrawledAt   *time.Time `json:"crawled_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notice) TableName() string {
	return "notices"
}

// HasEvaluation reports whether an AI score has been written for the notice.
func (n *Notice) HasEvaluation() bool {
	return n.LLMScore != nil
}
