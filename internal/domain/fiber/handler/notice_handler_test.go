package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/notice-radar/internal/filter"
	"github.com/fadilmartias/notice-radar/internal/kvstore"
	"github.com/fadilmartias/notice-radar/internal/ledger"
	"github.com/fadilmartias/notice-radar/internal/middleware"
	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/fadilmartias/notice-radar/internal/repository"
	"github.com/fadilmartias/notice-radar/internal/scoring"
	"github.com/fadilmartias/notice-radar/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var kst = time.FixedZone("KST", 9*60*60)

type stubOracle struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (o *stubOracle) Complete(context.Context, string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	return o.reply, o.err
}

type stubPages struct{}

func (stubPages) ReadText(context.Context, string) (string, error) {
	return "", errors.New("offline")
}

type env struct {
	app    *fiber.App
	db     *gorm.DB
	oracle *stubOracle
}

func newEnv(t *testing.T) *env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	slots, err := kvstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	notices := repository.NewNoticeRepository(db)
	pipeline := filter.NewPipeline(notices, kst, filter.DefaultSize)
	pipeline.SetClock(func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, kst) })

	oracle := &stubOracle{reply: `{"score": 9, "reason": "brand identity work"}`}
	sessions := usecase.NewSessions(usecase.Dependencies{
		Pipeline:  pipeline,
		Notices:   notices,
		Scorer:    scoring.NewClient(oracle),
		Tracker:   scoring.NewTracker(),
		Pages:     stubPages{},
		CrawlLogs: repository.NewCrawlLogRepository(db),
		Slots:     slots,
	}, ledger.RemoteOpener(repository.NewExclusionRepository(db), repository.NewBookmarkRepository(db)))

	app := fiber.New()
	NewNoticeHandler(sessions).RegisterRoutes(app)
	return &env{app: app, db: db, oracle: oracle}
}

func (e *env) seed(t *testing.T, notices ...model.Notice) {
	t.Helper()
	for i := range notices {
		if notices[i].Source == "" {
			notices[i].Source = "기업마당"
		}
		require.NoError(t, e.db.Create(&notices[i]).Error)
	}
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		TotalItems int64 `json:"total_items"`
		TotalPages int64 `json:"total_pages"`
		From       int64 `json:"from"`
		To         int64 `json:"to"`
	} `json:"pagination"`
}

func (e *env) do(t *testing.T, method, path string, user uuid.UUID, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != uuid.Nil {
		req.Header.Set(middleware.UserIDHeader, user.String())
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

type noticeJSON struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Score      int    `json:"score"`
	AIScored   bool   `json:"ai_scored"`
	DDay       string `json:"dday"`
	IsExcluded bool   `json:"is_excluded"`
}

func decodeNotices(t *testing.T, raw json.RawMessage) []noticeJSON {
	t.Helper()
	var out []noticeJSON
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func strPtr(s string) *string { return &s }

func TestListNotices(t *testing.T) {
	e := newEnv(t)
	e.seed(t,
		model.Notice{URL: "https://a", Title: "Brand identity", Relevance: 3, LLMScore: intPtr(9), LLMReason: strPtr("fit"),
			Summary: strPtr("<p>City <b>brand</b></p>"), EndDate: strPtr("2024-05-03")},
		model.Notice{URL: "https://b", Title: "Road paving", Relevance: 2, Source: "나라장터"},
	)
	user := uuid.New()

	code, body := e.do(t, http.MethodGet, "/notices", user, "")
	require.Equal(t, http.StatusOK, code)
	items := decodeNotices(t, body.Data)
	require.Len(t, items, 1)
	assert.Equal(t, "Brand identity", items[0].Title)
	assert.Equal(t, "City brand", items[0].Summary)
	assert.Equal(t, 9, items[0].Score)
	assert.True(t, items[0].AIScored)
	assert.Equal(t, "D-2", items[0].DDay)
	require.NotNil(t, body.Pagination)
	assert.EqualValues(t, 1, body.Pagination.TotalItems)

	code, body = e.do(t, http.MethodGet, "/notices?source=g2b&show_all=true", user, "")
	require.Equal(t, http.StatusOK, code)
	items = decodeNotices(t, body.Data)
	require.Len(t, items, 1)
	assert.Equal(t, "Road paving", items[0].Title)
}

func TestListNoticesRangeIgnoresHiddenRows(t *testing.T) {
	e := newEnv(t)
	notices := make([]model.Notice, 25)
	for i := range notices {
		notices[i] = model.Notice{URL: fmt.Sprintf("https://n/%d", i), Title: fmt.Sprintf("Brand %d", i), Relevance: 9}
	}
	e.seed(t, notices...)
	user := uuid.New()
	for _, n := range notices {
		code, _ := e.do(t, http.MethodPost, fmt.Sprintf("/notices/%d/exclude", n.ID), user, "")
		require.Equal(t, http.StatusOK, code)
	}

	code, body := e.do(t, http.MethodGet, "/notices?size=20&page=2&hide_excluded=true", user, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeNotices(t, body.Data))
	require.NotNil(t, body.Pagination)
	assert.EqualValues(t, 25, body.Pagination.TotalItems)
	assert.EqualValues(t, 21, body.Pagination.From)
	assert.EqualValues(t, 25, body.Pagination.To)
}

func TestListNoticesRejectsBadQuery(t *testing.T) {
	e := newEnv(t)

	tests := []string{"/notices?score=11", "/notices?sort=popular"}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			code, body := e.do(t, http.MethodGet, path, uuid.New(), "")
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, body.Success)
		})
	}
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	e.seed(t,
		model.Notice{URL: "https://a", Title: "a", Relevance: 8},
		model.Notice{URL: "https://b", Title: "b", Relevance: 3, LLMScore: intPtr(8), LLMReason: strPtr("x")},
	)

	code, body := e.do(t, http.MethodGet, "/notices/stats", uuid.New(), "")
	require.Equal(t, http.StatusOK, code)

	var counts map[string]int64
	require.NoError(t, json.Unmarshal(body.Data, &counts))
	assert.Len(t, counts, 11)
	assert.EqualValues(t, 2, counts["8"])
}

func TestEvaluateNotice(t *testing.T) {
	e := newEnv(t)
	e.seed(t, model.Notice{URL: "https://a", Title: "Brand identity", Relevance: 3})

	code, body := e.do(t, http.MethodPost, "/notices/1/evaluate", uuid.New(), "")
	require.Equal(t, http.StatusOK, code)

	var result struct {
		Score  int    `json:"score"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.Equal(t, 9, result.Score)
	assert.Equal(t, "brand identity work", result.Reason)

	var stored model.Notice
	require.NoError(t, e.db.First(&stored, 1).Error)
	require.NotNil(t, stored.LLMScore)
	assert.Equal(t, 9, *stored.LLMScore)
	assert.Equal(t, 3, stored.Relevance)
}

func TestEvaluateErrors(t *testing.T) {
	tests := map[string]struct {
		notice    *model.Notice
		path      string
		oracleErr error
		wantCode  int
	}{
		"unknown notice": {path: "/notices/7/evaluate", wantCode: http.StatusNotFound},
		"bad id":         {path: "/notices/abc/evaluate", wantCode: http.StatusBadRequest},
		"already scored": {
			notice:   &model.Notice{URL: "https://a", Title: "a", LLMScore: intPtr(5), LLMReason: strPtr("x")},
			path:     "/notices/1/evaluate",
			wantCode: http.StatusConflict,
		},
		"oracle down": {
			notice:    &model.Notice{URL: "https://a", Title: "a"},
			path:      "/notices/1/evaluate",
			oracleErr: errors.New("503 from upstream"),
			wantCode:  http.StatusBadGateway,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t)
			if tt.notice != nil {
				e.seed(t, *tt.notice)
			}
			e.oracle.err = tt.oracleErr

			code, body := e.do(t, http.MethodPost, tt.path, uuid.New(), "")
			assert.Equal(t, tt.wantCode, code)
			assert.False(t, body.Success)
		})
	}
}

func TestEvaluateIsRateLimited(t *testing.T) {
	e := newEnv(t)
	e.seed(t, model.Notice{URL: "https://a", Title: "a"}, model.Notice{URL: "https://b", Title: "b"})
	user := uuid.New()

	code, _ := e.do(t, http.MethodPost, "/notices/1/evaluate", user, "")
	require.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodPost, "/notices/2/evaluate", user, "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, 1, e.oracle.calls)
}

func TestExcludeAndRestore(t *testing.T) {
	e := newEnv(t)
	e.seed(t, model.Notice{URL: "https://a", Title: "Brand", Relevance: 9})
	user := uuid.New()

	code, _ := e.do(t, http.MethodPost, "/notices/1/exclude", user, `{"reason":"not our field"}`)
	require.Equal(t, http.StatusOK, code)

	var rec model.ExcludedNotice
	require.NoError(t, e.db.First(&rec, "user_id = ?", user).Error)
	assert.Equal(t, "not our field", *rec.Reason)

	code, body := e.do(t, http.MethodGet, "/exclusions", user, "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["https://a"]`, string(body.Data))

	_, body = e.do(t, http.MethodGet, "/notices?hide_excluded=true", user, "")
	assert.Empty(t, decodeNotices(t, body.Data))

	_, body = e.do(t, http.MethodGet, "/notices", uuid.New(), "")
	assert.Len(t, decodeNotices(t, body.Data), 1, "other users are unaffected")

	code, _ = e.do(t, http.MethodDelete, "/notices/1/exclude", user, "")
	require.Equal(t, http.StatusOK, code)
	_, body = e.do(t, http.MethodGet, "/exclusions", user, "")
	assert.JSONEq(t, `[]`, string(body.Data))
}

func TestExclusionsRequireIdentity(t *testing.T) {
	e := newEnv(t)
	e.seed(t, model.Notice{URL: "https://a", Title: "Brand", Relevance: 9})

	code, _ := e.do(t, http.MethodPost, "/notices/1/exclude", uuid.Nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestBookmarks(t *testing.T) {
	e := newEnv(t)
	e.seed(t,
		model.Notice{URL: "https://a", Title: "Brand", Relevance: 9},
		model.Notice{URL: "https://b", Title: "Web", Relevance: 8},
	)
	user := uuid.New()

	code, _ := e.do(t, http.MethodPost, "/notices/2/bookmark", user, "")
	require.Equal(t, http.StatusOK, code)

	_, body := e.do(t, http.MethodGet, "/notices?bookmark_only=true", user, "")
	items := decodeNotices(t, body.Data)
	require.Len(t, items, 1)
	assert.Equal(t, "Web", items[0].Title)

	_, body = e.do(t, http.MethodGet, "/bookmarks", user, "")
	assert.JSONEq(t, `["https://b"]`, string(body.Data))

	code, _ = e.do(t, http.MethodDelete, "/notices/2/bookmark", user, "")
	require.Equal(t, http.StatusOK, code)
	_, body = e.do(t, http.MethodGet, "/bookmarks", user, "")
	assert.JSONEq(t, `[]`, string(body.Data))
}

func TestSummarizeFallsBackToTitle(t *testing.T) {
	e := newEnv(t)
	e.seed(t, model.Notice{URL: "https://a", Title: "Brand", Relevance: 9})
	e.oracle.reply = "📢 Brand"

	code, body := e.do(t, http.MethodPost, "/notices/1/summarize", uuid.New(), "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":1,"summary":"📢 Brand"}`, string(body.Data))
}

func TestLatestCrawl(t *testing.T) {
	e := newEnv(t)
	user := uuid.New()

	code, body := e.do(t, http.MethodGet, "/crawl/latest", user, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, []string{"", "null"}, string(body.Data))

	at := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	require.NoError(t, e.db.Create(&model.CrawlLog{Source: "나라장터", TotalCount: 40, NewCount: 3, CrawledAt: at}).Error)

	_, body = e.do(t, http.MethodGet, "/crawl/latest", user, "")
	var got struct {
		Source   string `json:"source"`
		NewCount int    `json:"new_count"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &got))
	assert.Equal(t, "나라장터", got.Source)
	assert.Equal(t, 3, got.NewCount)
}

func TestPreferences(t *testing.T) {
	e := newEnv(t)
	user := uuid.New()

	code, body := e.do(t, http.MethodPut, "/preferences", user, `{"theme":"dark","mark_visit":true}`)
	require.Equal(t, http.StatusOK, code)

	var prefs struct {
		Theme       string     `json:"theme"`
		LastVisitAt *time.Time `json:"last_visit_at"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &prefs))
	assert.Equal(t, "dark", prefs.Theme)
	assert.NotNil(t, prefs.LastVisitAt)

	code, _ = e.do(t, http.MethodPut, "/preferences", user, `{"theme":"neon"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	_, body = e.do(t, http.MethodGet, "/preferences", user, "")
	require.NoError(t, json.Unmarshal(body.Data, &prefs))
	assert.Equal(t, "dark", prefs.Theme)
}

func TestStatusFor(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"stale":        {fmt.Errorf("x: %w", usecase.ErrStaleResponse), http.StatusConflict},
		"in progress":  {usecase.ErrEvaluationInProgress, http.StatusConflict},
		"store":        {repository.ErrStoreQueryFailed, http.StatusInternalServerError},
		"unauth":       {ledger.ErrUnauthenticated, http.StatusUnauthorized},
		"oracle":       {scoring.ErrOracleUnavailable, http.StatusBadGateway},
		"invalid selection": {usecase.ErrInvalidSelection, http.StatusBadRequest},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func intPtr(v int) *int { return &v }
