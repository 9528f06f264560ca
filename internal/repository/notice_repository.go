package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/fadilmartias/notice-radar/internal/relevance"
	"gorm.io/gorm"
)

type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortDate      SortOrder = "date"
)

// NoticeQuery is what the store can evaluate itself. A Limit of zero or less
// returns every matching row.
type NoticeQuery struct {
	Source        string
	TitleContains string
	MinScore      *int
	MaxScore      *int
	Sort          SortOrder
	Offset        int
	Limit         int
}

type NoticeRepository struct {
	db *gorm.DB
}

func NewNoticeRepository(db *gorm.DB) *NoticeRepository {
	return &NoticeRepository{db}
}

// Find returns one page of notices plus the number of rows matching q
// regardless of pagination.
func (r *NoticeRepository) Find(ctx context.Context, q NoticeQuery) ([]model.Notice, int64, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count notices: %w", ErrStoreQueryFailed, err)
	}

	tx := r.filtered(ctx, q)
	for _, o := range orderBy(q.Sort) {
		tx = tx.Order(o)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var notices []model.Notice
	if err := tx.Find(&notices).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: list notices: %w", ErrStoreQueryFailed, err)
	}
	return notices, total, nil
}

func (r *NoticeRepository) FindByID(ctx context.Context, id int64) (*model.Notice, error) {
	var n model.Notice
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("notice %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find notice %d: %w", ErrStoreQueryFailed, id, err)
	}
	return &n, nil
}

// SaveEvaluation writes llm_score and llm_reason of one notice and nothing else.
func (r *NoticeRepository) SaveEvaluation(ctx context.Context, id int64, result model.EvaluationResult) error {
	res := r.db.WithContext(ctx).
		Model(&model.Notice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"llm_score":  result.Score,
			"llm_reason": result.Reason,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: save evaluation of notice %d: %w", ErrStoreQueryFailed, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notice %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountByEffectiveScore returns how many notices sit in each score bucket.
// Every bucket from 0 to 10 is present.
func (r *NoticeRepository) CountByEffectiveScore(ctx context.Context) (map[int]int64, error) {
	type bucket struct {
		Score int
		Total int64
	}
	var rows []bucket
	err := r.db.WithContext(ctx).
		Model(&model.Notice{}).
		Select(relevance.SQLExpr + " AS score, COUNT(*) AS total").
		Group(relevance.SQLExpr).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: count score buckets: %w", ErrStoreQueryFailed, err)
	}

	counts := make(map[int]int64, relevance.MaxScore+1)
	for s := relevance.MinScore; s <= relevance.MaxScore; s++ {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[relevance.Clamp(row.Score)] += row.Total
	}
	return counts, nil
}

func (r *NoticeRepository) filtered(ctx context.Context, q NoticeQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&model.Notice{})
	if q.Source != "" {
		tx = tx.Where("source = ?", q.Source)
	}
	if s := strings.TrimSpace(q.TitleContains); s != "" {
		tx = tx.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(s))+"%")
	}
	if q.MinScore != nil {
		tx = tx.Where(relevance.SQLExpr+" >= ?", *q.MinScore)
	}
	if q.MaxScore != nil {
		tx = tx.Where(relevance.SQLExpr+" <= ?", *q.MaxScore)
	}
	return tx
}

func orderBy(sort SortOrder) []string {
	recency := []string{"crawled_at IS NULL", "crawled_at DESC", "created_at DESC", "id DESC"}
	if sort == SortDate {
		return recency
	}
	return append([]string{relevance.SQLExpr + " DESC"}, recency...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
