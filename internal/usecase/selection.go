package usecase

import (
	"fmt"
	"strings"

	"github.com/fadilmartias/notice-radar/internal/deadline"
	"github.com/fadilmartias/notice-radar/internal/filter"
	"github.com/fadilmartias/notice-radar/internal/repository"
)

// Score shortcuts offered next to the exact buckets.
const (
	ScoreShortcutAll  = "all"
	ScoreShortcutHigh = "high"
	ScoreShortcutMid7 = "mid7"
	ScoreShortcutMid  = "mid"
	ScoreShortcutLow  = "low"

	DefaultScoreShortcut = ScoreShortcutMid7
)

// Selection is what the user picked on screen. Score holds a shortcut or an
// exact bucket "0".."10"; empty means the default shortcut.
type Selection struct {
	Source        string
	Search        string
	Score         string
	ShowAllScores bool
	Deadline      deadline.Filter
	BookmarkOnly  bool
	HideExcluded  bool
	SortBy        repository.SortOrder
	Page          int
	Size          int
}

func (s Selection) Criteria() (filter.Criteria, error) {
	score, err := s.scoreFilter()
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	return filter.Criteria{
		Source:       s.Source,
		Search:       s.Search,
		Score:        score,
		Deadline:     s.Deadline,
		BookmarkOnly: s.BookmarkOnly,
		HideExcluded: s.HideExcluded,
		SortBy:       s.SortBy,
		Page:         s.Page,
		Size:         s.Size,
	}, nil
}

func (s Selection) scoreFilter() (filter.ScoreFilter, error) {
	if s.ShowAllScores {
		return filter.ScoreAll(), nil
	}
	v := strings.ToLower(strings.TrimSpace(s.Score))
	if v == "" {
		v = DefaultScoreShortcut
	}
	switch v {
	case ScoreShortcutHigh:
		return filter.ScoreRange(intPtr(8), nil), nil
	case ScoreShortcutMid7:
		return filter.ScoreRange(intPtr(7), nil), nil
	case ScoreShortcutMid:
		return filter.ScoreRange(intPtr(5), intPtr(6)), nil
	}
	return filter.ParseScore(v)
}

func intPtr(v int) *int {
	return &v
}
