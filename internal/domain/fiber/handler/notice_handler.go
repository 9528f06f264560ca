package handler

import (
	"errors"
	"time"

	"github.com/fadilmartias/notice-radar/internal/deadline"
	"github.com/fadilmartias/notice-radar/internal/dto"
	"github.com/fadilmartias/notice-radar/internal/ledger"
	"github.com/fadilmartias/notice-radar/internal/middleware"
	"github.com/fadilmartias/notice-radar/internal/repository"
	"github.com/fadilmartias/notice-radar/internal/response"
	"github.com/fadilmartias/notice-radar/internal/scoring"
	"github.com/fadilmartias/notice-radar/internal/usecase"
	"github.com/fadilmartias/notice-radar/internal/util"
	"github.com/gofiber/fiber/v2"
)

type NoticeHandler struct {
	sessions *usecase.Sessions
}

func NewNoticeHandler(sessions *usecase.Sessions) *NoticeHandler {
	return &NoticeHandler{sessions: sessions}
}

func (h *NoticeHandler) RegisterRoutes(app *fiber.App) {
	app.Use(middleware.Identity())

	app.Get("/notices", h.List)
	app.Get("/notices/stats", h.Stats)
	app.Get("/notices/:id", h.Detail)
	app.Post("/notices/:id/evaluate", middleware.RateLimiter(1, 4*time.Second), h.Evaluate)
	app.Post("/notices/:id/summarize", middleware.RateLimiter(1, 4*time.Second), h.Summarize)
	app.Post("/notices/:id/exclude", h.Exclude)
	app.Delete("/notices/:id/exclude", h.Restore)
	app.Post("/notices/:id/bookmark", h.Bookmark)
	app.Delete("/notices/:id/bookmark", h.Unbookmark)
	app.Get("/exclusions", h.Exclusions)
	app.Get("/bookmarks", h.Bookmarks)
	app.Get("/crawl/latest", h.LatestCrawl)
	app.Get("/preferences", h.Preferences)
	app.Put("/preferences", h.UpdatePreferences)
}

func (h *NoticeHandler) List(c *fiber.Ctx) error {
	sel, err := selectionFromQuery(c)
	if err != nil {
		return fail(c, "invalid query", err)
	}
	agg, err := h.session(c)
	if err != nil {
		return fail(c, "cannot open session", err)
	}

	view, err := agg.Refresh(c.UserContext(), sel)
	if err != nil {
		return fail(c, "failed to load notices", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get notices",
		Data:       dto.NewNoticeDTOs(view.Items),
		Pagination: response.NewPagination(view.Page, view.Size, view.Total),
		Meta:       fiber.Map{"seq": view.Seq, "refreshed_at": view.RefreshedAt},
	})
}

func (h *NoticeHandler) Stats(c *fiber.Ctx) error {
	agg, err := h.session(c)
	if err != nil {
		return fail(c, "cannot open session", err)
	}
	counts, err := agg.ScoreHistogram(c.UserContext())
	if err != nil {
		return fail(c, "failed to count notices", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get score distribution",
		Data:    counts,
	})
}

func (h *NoticeHandler) Detail(c *fiber.Ctx) error {
	id, agg, err := h.target(c)
	if err != nil {
		return fail(c, "invalid request", err)
	}
	item, err := agg.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "failed to get notice", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get notice",
		Data:    dto.NewNoticeDTO(item),
	})
}

func (h *NoticeHandler) Evaluate(c *fiber.Ctx) error {
	id, agg, err := h.target(c)
	if err != nil {
		return fail(c, "invalid request", err)
	}
	result, err := agg.Evaluate(c.UserContext(), id, c.QueryBool("force", false))
	if err != nil {
		return fail(c, "failed to evaluate notice", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success evaluate notice",
		Data:    dto.NewEvaluationDTO(id, result),
	})
}

func (h *NoticeHandler) Summarize(c *fiber.Ctx) error {
	id, agg, err := h.target(c)
	if err != nil {
		return fail(c, "invalid request", err)
	}
	summary, err := agg.Summarize(c.UserContext(), id)
	if err != nil {
		return fail(c, "failed to summarize notice", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success summarize notice",
		Data:    fiber.Map{"id": id, "summary": summary},
	})
}

type excludeRequest struct {
	Reason *string `json:"reason"`
}

func (h *NoticeHandler) Exclude(c *fiber.Ctx) error {
	id, agg, err := h.target(c)
	if err != nil {
		return fail(c, "invalid request", err)
	}
	var req excludeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, "invalid request body", util.NewFormError("invalid request body", map[string]string{"body": err.Error()}))
		}
	}
	if err := agg.Exclude(c.UserContext(), id, req.Reason); err != nil {
		return fail(c, "failed to exclude notice", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success exclude notice",
		Data:    fiber.Map{"id": id, "is_excluded": true},
	})
}

func (h *NoticeHandler) Restore(c *fiber.Ctx) error {
	id, agg, err := h.target(c)
	if err != nil {
		return fail(c, "invalid request", err)
	}
	if err := agg.Restore(c.UserContext(), id); err != nil {
		return fail(c, "failed to restore notice", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success restore notice",
		Data:    fiber.Map{"id": id, "is_excluded": false},
	})
}

func (h *NoticeHandler) Bookmark(c *fiber.Ctx) error {
	id, agg, err := h.target(c)
	if err != nil {
		return fail(c, "invalid request", err)
	}
	if err := agg.Bookmark(c.UserContext(), id); err != nil {
		return fail(c, "failed to bookmark notice", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success bookmark notice",
		Data:    fiber.Map{"id": id, "is_bookmarked": true},
	})
}

func (h *NoticeHandler) Unbookmark(c *fiber.Ctx) error {
	id, agg, err := h.target(c)
	if err != nil {
		return fail(c, "invalid request", err)
	}
	if err := agg.Unbookmark(c.UserContext(), id); err != nil {
		return fail(c, "failed to remove bookmark", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success remove bookmark",
		Data:    fiber.Map{"id": id, "is_bookmarked": false},
	})
}

func (h *NoticeHandler) Exclusions(c *fiber.Ctx) error {
	agg, err := h.session(c)
	if err != nil {
		return fail(c, "cannot open session", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get exclusions",
		Data:    agg.ListExcluded(),
	})
}

func (h *NoticeHandler) Bookmarks(c *fiber.Ctx) error {
	agg, err := h.session(c)
	if err != nil {
		return fail(c, "cannot open session", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get bookmarks",
		Data:    agg.ListBookmarked(),
	})
}

func (h *NoticeHandler) LatestCrawl(c *fiber.Ctx) error {
	agg, err := h.session(c)
	if err != nil {
		return fail(c, "cannot open session", err)
	}
	latest, err := agg.LastCrawl(c.UserContext())
	if err != nil {
		return fail(c, "failed to get crawl log", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get latest crawl",
		Data:    dto.NewCrawlLogDTO(latest),
	})
}

func (h *NoticeHandler) Preferences(c *fiber.Ctx) error {
	agg, err := h.session(c)
	if err != nil {
		return fail(c, "cannot open session", err)
	}
	prefs, err := agg.Preferences(c.UserContext())
	if err != nil {
		return fail(c, "failed to load preferences", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get preferences",
		Data:    prefs,
	})
}

type preferencesRequest struct {
	Theme     *string `json:"theme"`
	MarkVisit bool    `json:"mark_visit"`
}

func (h *NoticeHandler) UpdatePreferences(c *fiber.Ctx) error {
	var req preferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, "invalid request body", util.NewFormError("invalid request body", map[string]string{"body": err.Error()}))
	}
	agg, err := h.session(c)
	if err != nil {
		return fail(c, "cannot open session", err)
	}

	ctx := c.UserContext()
	if req.Theme != nil {
		if err := agg.SetTheme(ctx, *req.Theme); err != nil {
			return fail(c, "failed to save theme", err)
		}
	}
	if req.MarkVisit {
		if _, err := agg.MarkVisit(ctx); err != nil {
			return fail(c, "failed to save visit", err)
		}
	}
	prefs, err := agg.Preferences(ctx)
	if err != nil {
		return fail(c, "failed to load preferences", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update preferences",
		Data:    prefs,
	})
}

func (h *NoticeHandler) session(c *fiber.Ctx) (*usecase.NoticeAggregator, error) {
	return h.sessions.Get(c.UserContext(), middleware.UserID(c))
}

// target resolves the :id parameter and the caller's session.
func (h *NoticeHandler) target(c *fiber.Ctx) (int64, *usecase.NoticeAggregator, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, nil, util.NewFormError("invalid notice id", map[string]string{"id": "must be a positive integer"})
	}
	agg, err := h.session(c)
	if err != nil {
		return 0, nil, err
	}
	return int64(id), agg, nil
}

func selectionFromQuery(c *fiber.Ctx) (usecase.Selection, error) {
	sel := usecase.Selection{
		Source:        c.Query("source"),
		Search:        c.Query("q"),
		Score:         c.Query("score"),
		ShowAllScores: c.QueryBool("show_all", false),
		Deadline:      deadline.ParseFilter(c.Query("deadline")),
		BookmarkOnly:  c.QueryBool("bookmark_only", false),
		HideExcluded:  c.QueryBool("hide_excluded", false),
		Page:          c.QueryInt("page", 1),
		Size:          c.QueryInt("size", 0),
	}
	switch order := c.Query("sort"); order {
	case "", string(repository.SortRelevance):
		sel.SortBy = repository.SortRelevance
	case string(repository.SortDate):
		sel.SortBy = repository.SortDate
	default:
		return usecase.Selection{}, util.NewFormError("invalid sort", map[string]string{"sort": "must be relevance or date"})
	}
	return sel, nil
}

// fail maps domain errors onto HTTP status codes.
func fail(c *fiber.Ctx, message string, err error) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    statusFor(err),
		Message: message,
	}, err)
}

func statusFor(err error) int {
	var formErr *util.FormError
	switch {
	case errors.As(err, &formErr),
		errors.Is(err, usecase.ErrInvalidSelection),
		errors.Is(err, usecase.ErrInvalidTheme),
		errors.Is(err, scoring.ErrInvalidRequest),
		errors.Is(err, ledger.ErrEmptyURL):
		return fiber.StatusBadRequest
	case errors.Is(err, ledger.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, usecase.ErrNoticeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, usecase.ErrEvaluationInProgress),
		errors.Is(err, usecase.ErrAlreadyEvaluated),
		errors.Is(err, usecase.ErrStaleResponse):
		return fiber.StatusConflict
	case errors.Is(err, scoring.ErrOracleUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
