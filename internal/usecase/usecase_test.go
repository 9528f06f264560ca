package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/notice-radar/internal/filter"
	"github.com/fadilmartias/notice-radar/internal/kvstore"
	"github.com/fadilmartias/notice-radar/internal/ledger"
	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/fadilmartias/notice-radar/internal/relevance"
	"github.com/fadilmartias/notice-radar/internal/repository"
	"github.com/fadilmartias/notice-radar/internal/scoring"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var kst = time.FixedZone("KST", 9*60*60)

var today = time.Date(2024, 5, 1, 10, 0, 0, 0, kst)

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

// memNotices is an in-memory notice store. A gate registered for a search
// term blocks Find calls with that term until it is closed.
type memNotices struct {
	mu      sync.Mutex
	notices map[int64]model.Notice
	gates   map[string]chan struct{}
	saved   []int64
	findErr error
}

func newMemNotices(notices ...model.Notice) *memNotices {
	m := &memNotices{notices: make(map[int64]model.Notice), gates: make(map[string]chan struct{})}
	for i, n := range notices {
		if n.ID == 0 {
			n.ID = int64(i + 1)
		}
		if n.URL == "" {
			n.URL = fmt.Sprintf("https://example.com/%d", n.ID)
		}
		m.notices[n.ID] = n
	}
	return m
}

func (m *memNotices) gate(term string) chan struct{} {
	ch := make(chan struct{})
	m.mu.Lock()
	m.gates[term] = ch
	m.mu.Unlock()
	return ch
}

func (m *memNotices) Find(ctx context.Context, q repository.NoticeQuery) ([]model.Notice, int64, error) {
	m.mu.Lock()
	gate := m.gates[q.TitleContains]
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, 0, m.findErr
	}
	var out []model.Notice
	for _, n := range m.notices {
		score := relevance.Effective(n)
		if q.MinScore != nil && score < *q.MinScore {
			continue
		}
		if q.MaxScore != nil && score > *q.MaxScore {
			continue
		}
		if q.TitleContains != "" && !strings.Contains(strings.ToLower(n.Title), strings.ToLower(q.TitleContains)) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := relevance.Effective(out[i]), relevance.Effective(out[j])
		if si != sj {
			return si > sj
		}
		return out[i].ID < out[j].ID
	})
	total := int64(len(out))
	if q.Offset > 0 {
		out = out[min(q.Offset, len(out)):]
	}
	if q.Limit > 0 {
		out = out[:min(q.Limit, len(out))]
	}
	return out, total, nil
}

func (m *memNotices) CountByEffectiveScore(context.Context) (map[int]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[int]int64)
	for s := relevance.MinScore; s <= relevance.MaxScore; s++ {
		counts[s] = 0
	}
	for _, n := range m.notices {
		counts[relevance.Effective(n)]++
	}
	return counts, nil
}

func (m *memNotices) FindByID(_ context.Context, id int64) (*model.Notice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notices[id]
	if !ok {
		return nil, fmt.Errorf("notice %d: %w", id, repository.ErrNotFound)
	}
	return &n, nil
}

func (m *memNotices) SaveEvaluation(_ context.Context, id int64, result model.EvaluationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notices[id]
	if !ok {
		return fmt.Errorf("notice %d: %w", id, repository.ErrNotFound)
	}
	score, reason := result.Score, result.Reason
	n.LLMScore, n.LLMReason = &score, &reason
	m.notices[id] = n
	m.saved = append(m.saved, id)
	return nil
}

type fakeScorer struct {
	mu       sync.Mutex
	result   model.EvaluationResult
	err      error
	started  chan struct{}
	release  chan struct{}
	calls    int
	contents []string
}

func (f *fakeScorer) Evaluate(ctx context.Context, _ scoring.Request) (model.EvaluationResult, error) {
	f.mu.Lock()
	f.calls++
	started, release := f.started, f.release
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return f.result, f.err
}

func (f *fakeScorer) Summarize(_ context.Context, req scoring.SummaryRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents = append(f.contents, req.Content)
	return "summary of " + req.Title, f.err
}

type fakePages struct {
	text string
	err  error
}

func (p fakePages) ReadText(context.Context, string) (string, error) {
	return p.text, p.err
}

type fakeCrawlLogs struct {
	latest *model.CrawlLog
}

func (f fakeCrawlLogs) Latest(context.Context) (*model.CrawlLog, error) {
	return f.latest, nil
}

type fixture struct {
	notices *memNotices
	scorer  *fakeScorer
	slots   *kvstore.FileStore
	deps    Dependencies
}

func newFixture(t *testing.T, notices ...model.Notice) *fixture {
	t.Helper()
	store := newMemNotices(notices...)
	slots, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	p := filter.NewPipeline(store, kst, filter.DefaultSize)
	p.SetClock(func() time.Time { return today })

	scorer := &fakeScorer{result: model.EvaluationResult{Score: 9, Reason: "brand identity work"}}
	return &fixture{
		notices: store,
		scorer:  scorer,
		slots:   slots,
		deps: Dependencies{
			Pipeline:  p,
			Notices:   store,
			Scorer:    scorer,
			Tracker:   scoring.NewTracker(),
			Pages:     fakePages{},
			CrawlLogs: fakeCrawlLogs{},
			Slots:     slots,
		},
	}
}

func (f *fixture) aggregator(t *testing.T) *NoticeAggregator {
	t.Helper()
	l, err := ledger.OpenLocal(context.Background(), f.slots)
	require.NoError(t, err)
	return NewNoticeAggregator(f.deps, uuid.Nil, l, nil)
}

func titles(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}
