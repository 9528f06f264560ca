package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fadilmartias/notice-radar/internal/deadline"
	"github.com/fadilmartias/notice-radar/internal/filter"
	"github.com/fadilmartias/notice-radar/internal/kvstore"
	"github.com/fadilmartias/notice-radar/internal/ledger"
	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/fadilmartias/notice-radar/internal/relevance"
	"github.com/fadilmartias/notice-radar/internal/repository"
	"github.com/fadilmartias/notice-radar/internal/scoring"
	"github.com/google/uuid"
)

type NoticeStore interface {
	FindByID(ctx context.Context, id int64) (*model.Notice, error)
	SaveEvaluation(ctx context.Context, id int64, result model.EvaluationResult) error
}

type Scorer interface {
	Evaluate(ctx context.Context, req scoring.Request) (model.EvaluationResult, error)
	Summarize(ctx context.Context, req scoring.SummaryRequest) (string, error)
}

type PageReader interface {
	ReadText(ctx context.Context, url string) (string, error)
}

type CrawlLogReader interface {
	Latest(ctx context.Context) (*model.CrawlLog, error)
}

// Dependencies are shared by every session.
type Dependencies struct {
	Pipeline  *filter.Pipeline
	Notices   NoticeStore
	Scorer    Scorer
	Tracker   *scoring.Tracker
	Pages     PageReader
	CrawlLogs CrawlLogReader
	Slots     kvstore.SlotStore
}

// Item is a notice as shown to one user.
type Item struct {
	model.Notice
	Score        int
	AIScored     bool
	DDay         string
	IsExcluded   bool
	IsBookmarked bool
	IsNew        bool
}

type View struct {
	Seq         uint64
	Selection   Selection
	Items       []Item
	Total       int64
	Page        int
	Size        int
	TotalPages  int64
	RefreshedAt time.Time
}

// NoticeAggregator is one user's session over the notice list: the current
// view, the user's ledger and the evaluation entry point.
type NoticeAggregator struct {
	deps      Dependencies
	userID    uuid.UUID
	ledger    ledger.Ledger
	prevVisit *time.Time

	issued atomic.Uint64

	// mu guards the applied state; last is the selection of the applied
	// view and is rerun after evaluations.
	mu       sync.RWMutex
	last     Selection
	hasLast  bool
	page     filter.Page
	criteria filter.Criteria
	view     View
}

func NewNoticeAggregator(deps Dependencies, userID uuid.UUID, l ledger.Ledger, prevVisit *time.Time) *NoticeAggregator {
	if deps.Tracker == nil {
		deps.Tracker = scoring.NewTracker()
	}
	return &NoticeAggregator{
		deps:      deps,
		userID:    userID,
		ledger:    l,
		prevVisit: prevVisit,
	}
}

func (a *NoticeAggregator) UserID() uuid.UUID {
	return a.userID
}

// Refresh runs sel through the filter pipeline and replaces the view. If a
// newer Refresh was issued in the meantime the result is dropped and
// ErrStaleResponse returned. An invalid selection changes nothing.
func (a *NoticeAggregator) Refresh(ctx context.Context, sel Selection) (View, error) {
	crit, err := sel.Criteria()
	if err != nil {
		return View{}, err
	}
	seq := a.issued.Add(1)

	page, err := a.deps.Pipeline.Query(ctx, crit)
	if err != nil {
		if a.issued.Load() != seq {
			return View{}, ErrStaleResponse
		}
		return View{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.issued.Load() != seq {
		return View{}, ErrStaleResponse
	}
	a.page, a.criteria = page, crit
	a.last, a.hasLast = sel, true
	a.view = a.compose(seq, sel)
	return a.view, nil
}

// Current returns the last applied view.
func (a *NoticeAggregator) Current() View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view
}

func (a *NoticeAggregator) ScoreHistogram(ctx context.Context) (map[int]int64, error) {
	return a.deps.Pipeline.ScoreBucketCounts(ctx)
}

// Get returns one notice decorated for this user.
func (a *NoticeAggregator) Get(ctx context.Context, id int64) (Item, error) {
	n, err := a.notice(ctx, id)
	if err != nil {
		return Item{}, err
	}
	return a.decorate(*n, a.deps.Pipeline.Today()), nil
}

// Evaluate scores one notice with the oracle and stores the result. A notice
// that already has an AI score is only re-scored when force is set.
func (a *NoticeAggregator) Evaluate(ctx context.Context, id int64, force bool) (model.EvaluationResult, error) {
	if !a.deps.Tracker.TryAcquire(id) {
		return model.EvaluationResult{}, fmt.Errorf("notice %d: %w", id, ErrEvaluationInProgress)
	}
	defer a.deps.Tracker.Release(id)

	n, err := a.notice(ctx, id)
	if err != nil {
		return model.EvaluationResult{}, err
	}
	if n.HasEvaluation() && !force {
		return model.EvaluationResult{}, fmt.Errorf("notice %d: %w", id, ErrAlreadyEvaluated)
	}

	result, err := a.deps.Scorer.Evaluate(ctx, scoring.Request{
		NoticeID: n.ID,
		Title:    n.Title,
		Agency:   n.Agency,
		Summary:  n.Summary,
	})
	if err != nil {
		return model.EvaluationResult{}, err
	}
	if err := a.deps.Notices.SaveEvaluation(ctx, id, result); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.EvaluationResult{}, fmt.Errorf("%w: %w", ErrNoticeNotFound, err)
		}
		return model.EvaluationResult{}, err
	}

	a.rerun(ctx)
	return result, nil
}

// Summarize reads the notice page and asks the oracle for a digest. An
// unreadable page falls back to title and agency.
func (a *NoticeAggregator) Summarize(ctx context.Context, id int64) (string, error) {
	n, err := a.notice(ctx, id)
	if err != nil {
		return "", err
	}
	var content string
	if a.deps.Pages != nil {
		content, err = a.deps.Pages.ReadText(ctx, n.URL)
		if err != nil {
			log.Printf("read page of notice %d: %v", id, err)
			content = ""
		}
	}
	return a.deps.Scorer.Summarize(ctx, scoring.SummaryRequest{
		NoticeID: n.ID,
		Title:    n.Title,
		Agency:   n.Agency,
		Content:  content,
	})
}

func (a *NoticeAggregator) Exclude(ctx context.Context, id int64, reason *string) error {
	return a.mark(ctx, id, func(n model.Notice) error { return a.ledger.Exclude(ctx, n, reason) })
}

func (a *NoticeAggregator) Restore(ctx context.Context, id int64) error {
	return a.mark(ctx, id, func(n model.Notice) error { return a.ledger.Restore(ctx, n) })
}

func (a *NoticeAggregator) Bookmark(ctx context.Context, id int64) error {
	return a.mark(ctx, id, func(n model.Notice) error { return a.ledger.Bookmark(ctx, n) })
}

func (a *NoticeAggregator) Unbookmark(ctx context.Context, id int64) error {
	return a.mark(ctx, id, func(n model.Notice) error { return a.ledger.Unbookmark(ctx, n) })
}

func (a *NoticeAggregator) ListExcluded() []string {
	return a.ledger.ListExcluded()
}

func (a *NoticeAggregator) ListBookmarked() []string {
	return a.ledger.ListBookmarked()
}

// LastCrawl returns the newest crawl log entry, nil if there is none.
func (a *NoticeAggregator) LastCrawl(ctx context.Context) (*model.CrawlLog, error) {
	return a.deps.CrawlLogs.Latest(ctx)
}

func (a *NoticeAggregator) notice(ctx context.Context, id int64) (*model.Notice, error) {
	n, err := a.deps.Notices.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrNoticeNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// mark applies a ledger change and re-decorates the current view so the
// change shows without a round trip to the store.
func (a *NoticeAggregator) mark(ctx context.Context, id int64, apply func(model.Notice) error) error {
	n, err := a.notice(ctx, id)
	if err != nil {
		return err
	}
	if err := apply(*n); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.view.Seq != 0 {
		a.view = a.compose(a.view.Seq, a.view.Selection)
	}
	return nil
}

// rerun refreshes the selection of the applied view after a write.
func (a *NoticeAggregator) rerun(ctx context.Context) {
	a.mu.RLock()
	sel, ok := a.last, a.hasLast
	a.mu.RUnlock()
	if !ok {
		return
	}
	if _, err := a.Refresh(ctx, sel); err != nil && !errors.Is(err, ErrStaleResponse) {
		log.Printf("refresh after evaluation failed: %v", err)
	}
}

// compose builds a view from the stored page. Callers hold a.mu.
func (a *NoticeAggregator) compose(seq uint64, sel Selection) View {
	today := a.deps.Pipeline.Today()
	items := make([]Item, 0, len(a.page.Items))
	for _, n := range a.page.Items {
		item := a.decorate(n, today)
		if a.criteria.HideExcluded && item.IsExcluded {
			continue
		}
		if a.criteria.BookmarkOnly && !item.IsBookmarked {
			continue
		}
		items = append(items, item)
	}
	return View{
		Seq:         seq,
		Selection:   sel,
		Items:       items,
		Total:       a.page.Total,
		Page:        a.page.Page,
		Size:        a.page.Size,
		TotalPages:  a.page.TotalPages(),
		RefreshedAt: today,
	}
}

func (a *NoticeAggregator) decorate(n model.Notice, today time.Time) Item {
	item := Item{
		Notice:       n,
		Score:        relevance.Effective(n),
		AIScored:     relevance.IsAI(n),
		IsExcluded:   a.ledger.IsExcluded(n.URL),
		IsBookmarked: a.ledger.IsBookmarked(n.URL),
	}
	if n.EndDate != nil {
		item.DDay = deadline.Text(*n.EndDate, today)
	}
	if a.prevVisit != nil && n.CrawledAt != nil {
		item.IsNew = n.CrawledAt.After(*a.prevVisit)
	}
	return item
}
