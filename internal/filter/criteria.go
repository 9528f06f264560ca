// Package filter turns the user's filter settings into store queries and
// applies the stages the store cannot evaluate itself.
package filter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fadilmartias/notice-radar/internal/deadline"
	"github.com/fadilmartias/notice-radar/internal/relevance"
	"github.com/fadilmartias/notice-radar/internal/repository"
)

const (
	DefaultSize = 50
	SmallSize   = 20
	LowMax      = 4
)

var ErrInvalidScore = errors.New("invalid score filter")

// sourceAliases maps the short names used in links to the stored source labels.
var sourceAliases = map[string]string{
	"bizinfo": "기업마당",
	"agency":  "기관별",
	"g2b":     "나라장터",
}

// NormalizeSource resolves aliases. Unknown values pass through and "all"
// means no source filter.
func NormalizeSource(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "all") {
		return ""
	}
	if s, ok := sourceAliases[strings.ToLower(v)]; ok {
		return s
	}
	return v
}

// ScoreFilter bounds the effective score. Nil bounds are open.
type ScoreFilter struct {
	Min *int
	Max *int
}

func ScoreAll() ScoreFilter {
	return ScoreFilter{}
}

func ScoreBucket(score int) ScoreFilter {
	s := relevance.Clamp(score)
	return ScoreFilter{Min: &s, Max: &s}
}

func ScoreLow() ScoreFilter {
	upper := LowMax
	return ScoreFilter{Max: &upper}
}

// ScoreRange builds a filter from optional bounds. Bounds are clamped and a
// reversed range is swapped.
func ScoreRange(lo, hi *int) ScoreFilter {
	var f ScoreFilter
	if lo != nil {
		v := relevance.Clamp(*lo)
		f.Min = &v
	}
	if hi != nil {
		v := relevance.Clamp(*hi)
		f.Max = &v
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		f.Min, f.Max = f.Max, f.Min
	}
	return f
}

// ParseScore accepts "all", "low" or a bucket from 0 to 10.
func ParseScore(v string) (ScoreFilter, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "", "all":
		return ScoreAll(), nil
	case "low":
		return ScoreLow(), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < relevance.MinScore || n > relevance.MaxScore {
		return ScoreFilter{}, fmt.Errorf("%w: %q", ErrInvalidScore, v)
	}
	return ScoreBucket(n), nil
}

func (f ScoreFilter) IsAll() bool {
	return f.Min == nil && f.Max == nil
}

// Matches applies the filter to an effective score.
func (f ScoreFilter) Matches(score int) bool {
	if f.Min != nil && score < *f.Min {
		return false
	}
	if f.Max != nil && score > *f.Max {
		return false
	}
	return true
}

type Criteria struct {
	Source   string
	Search   string
	Score    ScoreFilter
	Deadline deadline.Filter
	// BookmarkOnly and HideExcluded depend on the caller's ledger and are
	// applied after the page is fetched.
	BookmarkOnly bool
	HideExcluded bool
	SortBy       repository.SortOrder
	Page         int
	Size         int
}

// NormalizeSize keeps 20 and 50; anything else becomes fallback, or 50 when
// fallback is itself not allowed.
func NormalizeSize(size, fallback int) int {
	switch size {
	case SmallSize, DefaultSize:
		return size
	}
	if fallback == SmallSize {
		return SmallSize
	}
	return DefaultSize
}

// Normalize resolves aliases and fills defaults.
func (c Criteria) Normalize(defaultSize int) Criteria {
	c.Source = NormalizeSource(c.Source)
	c.Search = strings.TrimSpace(c.Search)
	if c.Page < 1 {
		c.Page = 1
	}
	c.Size = NormalizeSize(c.Size, defaultSize)
	if c.SortBy != repository.SortDate {
		c.SortBy = repository.SortRelevance
	}
	if c.Deadline == "" {
		c.Deadline = deadline.FilterAll
	}
	return c
}

// offset is the index of the first row of the page. It reports false when
// the page starts beyond any index an int can hold.
func (c Criteria) offset() (int, bool) {
	if c.Page < 1 || c.Size < 1 {
		return 0, true
	}
	if c.Page-1 > (math.MaxInt-c.Size)/c.Size {
		return 0, false
	}
	return (c.Page - 1) * c.Size, true
}

func (c Criteria) query() repository.NoticeQuery {
	return repository.NoticeQuery{
		Source:        c.Source,
		TitleContains: c.Search,
		MinScore:      c.Score.Min,
		MaxScore:      c.Score.Max,
		Sort:          c.SortBy,
	}
}
