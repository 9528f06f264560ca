package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/notice-radar/internal/deadline"
	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/fadilmartias/notice-radar/internal/repository"
)

// NoticeStore is the part of the notice repository the pipeline needs.
type NoticeStore interface {
	Find(ctx context.Context, q repository.NoticeQuery) ([]model.Notice, int64, error)
	CountByEffectiveScore(ctx context.Context) (map[int]int64, error)
}

type Page struct {
	Items []model.Notice
	Total int64
	Page  int
	Size  int
}

// TotalPages is at least 1 so an empty result still has a first page.
func (p Page) TotalPages() int64 {
	if p.Size <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + int64(p.Size) - 1) / int64(p.Size)
}

type Pipeline struct {
	store       NoticeStore
	loc         *time.Location
	defaultSize int
	now         func() time.Time
}

func NewPipeline(store NoticeStore, loc *time.Location, defaultSize int) *Pipeline {
	if loc == nil {
		loc = time.Local
	}
	return &Pipeline{
		store:       store,
		loc:         loc,
		defaultSize: NormalizeSize(defaultSize, DefaultSize),
		now:         time.Now,
	}
}

// SetClock replaces the source of "today" for the deadline stage.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// Today is the current time in the pipeline's zone.
func (p *Pipeline) Today() time.Time {
	return p.now().In(p.loc)
}

func (p *Pipeline) Location() *time.Location {
	return p.loc
}

// Query returns one page of notices for c. Source, search, score and sort are
// evaluated by the store. A deadline filter needs every matching row, so the
// pipeline fetches them all and paginates itself.
func (p *Pipeline) Query(ctx context.Context, c Criteria) (Page, error) {
	c = c.Normalize(p.defaultSize)
	q := c.query()
	offset, addressable := c.offset()

	if !c.Deadline.Active() {
		if !addressable {
			// only the count is needed for a page past every row
			q.Limit = 1
			_, total, err := p.store.Find(ctx, q)
			if err != nil {
				return Page{}, fmt.Errorf("query notices: %w", err)
			}
			return Page{Items: []model.Notice{}, Total: total, Page: c.Page, Size: c.Size}, nil
		}
		q.Offset = offset
		q.Limit = c.Size
		items, total, err := p.store.Find(ctx, q)
		if err != nil {
			return Page{}, fmt.Errorf("query notices: %w", err)
		}
		return Page{Items: items, Total: total, Page: c.Page, Size: c.Size}, nil
	}

	all, _, err := p.store.Find(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("query notices: %w", err)
	}
	today := p.Today()
	days := c.Deadline.Days()
	kept := make([]model.Notice, 0, len(all))
	for _, n := range all {
		if n.EndDate != nil && deadline.Within(*n.EndDate, today, days) {
			kept = append(kept, n)
		}
	}

	page := Page{Total: int64(len(kept)), Page: c.Page, Size: c.Size}
	if addressable && offset < len(kept) {
		end := min(offset+c.Size, len(kept))
		page.Items = kept[offset:end]
	} else {
		page.Items = []model.Notice{}
	}
	return page, nil
}

// ScoreBucketCounts counts every notice by effective score, ignoring all
// other criteria. Keys 0 through 10 are always present.
func (p *Pipeline) ScoreBucketCounts(ctx context.Context) (map[int]int64, error) {
	counts, err := p.store.CountByEffectiveScore(ctx)
	if err != nil {
		return nil, fmt.Errorf("count score buckets: %w", err)
	}
	return counts, nil
}
