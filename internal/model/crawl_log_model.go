package model

import "time"

type CrawlLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Source     string    `gorm:"type:varchar(20);not null" json:"source"`
	TotalCount int       `gorm:"default:0" json:"total_count"`
	NewCount   int       `gorm:"default:0" json:"new_count"`
	CrawledAt  time.Time `gorm:"index" json:"crawled_at"`
}

func (c *CrawlLog) TableName() string {
	return "crawl_logs"
}
