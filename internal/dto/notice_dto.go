package dto

import (
	"time"

	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/fadilmartias/notice-radar/internal/usecase"
	"github.com/fadilmartias/notice-radar/internal/util"
)

type NoticeDTO struct {
	ID           int64      `json:"id"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Agency       *string    `json:"agency"`
	Summary      string     `json:"summary"`
	Date         *string    `json:"date"`
	EndDate      *string    `json:"end_date"`
	DDay         string     `json:"dday"`
	Source       string     `json:"source"`
	Category     *string    `json:"category"`
	Subcategory  *string    `json:"subcategory"`
	Relevance    int        `json:"relevance"`
	LLMScore     *int       `json:"llm_score"`
	LLMReason    *string    `json:"llm_reason"`
	Score        int        `json:"score"`
	AIScored     bool       `json:"ai_scored"`
	IsExcluded   bool       `json:"is_excluded"`
	IsBookmarked bool       `json:"is_bookmarked"`
	IsNew        bool       `json:"is_new"`
	CrawledAt    *time.Time `json:"crawled_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewNoticeDTO(item usecase.Item) NoticeDTO {
	return NoticeDTO{
		ID:           item.ID,
		URL:          item.URL,
		Title:        item.Title,
		Agency:       item.Agency,
		Summary:      util.StripHTML(util.Deref(item.Summary, "")),
		Date:         item.Date,
		EndDate:      item.EndDate,
		DDay:         item.DDay,
		Source:       item.Source,
		Category:     item.Category,
		Subcategory:  item.Subcategory,
		Relevance:    item.Relevance,
		LLMScore:     item.LLMScore,
		LLMReason:    item.LLMReason,
		Score:        item.Score,
		AIScored:     item.AIScored,
		IsExcluded:   item.IsExcluded,
		IsBookmarked: item.IsBookmarked,
		IsNew:        item.IsNew,
		CrawledAt:    item.CrawledAt,
		CreatedAt:    item.CreatedAt,
	}
}

func NewNoticeDTOs(items []usecase.Item) []NoticeDTO {
	out := make([]NoticeDTO, 0, len(items))
	for _, it := range items {
		out = append(out, NewNoticeDTO(it))
	}
	return out
}

type EvaluationDTO struct {
	ID     int64  `json:"id"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

func NewEvaluationDTO(id int64, result model.EvaluationResult) EvaluationDTO {
	return EvaluationDTO{ID: id, Score: result.Score, Reason: result.Reason}
}

type CrawlLogDTO struct {
	Source     string    `json:"source"`
	TotalCount int       `json:"total_count"`
	NewCount   int       `json:"new_count"`
	CrawledAt  time.Time `json:"crawled_at"`
}

// NewCrawlLogDTO returns nil when nothing was crawled yet.
func NewCrawlLogDTO(log *model.CrawlLog) *CrawlLogDTO {
	if log == nil {
		return nil
	}
	return &CrawlLogDTO{
		Source:     log.Source,
		TotalCount: log.TotalCount,
		NewCount:   log.NewCount,
		CrawledAt:  log.CrawledAt,
	}
}
