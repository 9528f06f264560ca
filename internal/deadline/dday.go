// Package deadline parses the loosely formatted end_date strings produced by
// the crawlers and turns them into D-day values relative to a local date.
package deadline

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

const (
	TextToday  = "D-Day"
	TextClosed = "closed"
)

var (
	// 2024-01-31, 2024.01.31, 2024/1/31, 2024년 1월 31일
	separatedDate = regexp.MustCompile(`(\d{4})\s*(?:[-./]|년)\s*(\d{1,2})\s*(?:[-./]|월)\s*(\d{1,2})`)
	// 20240131, 202401311800
	compactDate = regexp.MustCompile(`\d{8,14}`)
)

// Parse extracts the deadline date from endDate. When the string holds a
// period the last date wins. The result is midnight in loc.
func Parse(endDate string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(endDate)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	if m := separatedDate.FindAllStringSubmatch(s, -1); len(m) > 0 {
		last := m[len(m)-1]
		return build(last[1], last[2], last[3], loc)
	}
	if m := compactDate.FindAllString(s, -1); len(m) > 0 {
		last := m[len(m)-1]
		return build(last[0:4], last[4:6], last[6:8], loc)
	}
	return time.Time{}, false
}

func build(y, m, d string, loc *time.Location) (time.Time, bool) {
	year, err1 := strconv.Atoi(y)
	month, err2 := strconv.Atoi(m)
	day, err3 := strconv.Atoi(d)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalises 2024-02-31 into March; treat that as garbage.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// DaysUntil returns the whole-day difference between the deadline and the
// calendar day of today. Time of day is ignored on both sides.
func DaysUntil(endDate string, today time.Time) (int, bool) {
	due, ok := Parse(endDate, today.Location())
	if !ok {
		return 0, false
	}
	start := now.With(today).BeginningOfDay()
	diff := now.With(due).BeginningOfDay().Sub(start)
	return int(math.Round(diff.Hours() / 24)), true
}

// Text renders the D-day label: "D-3", "D-Day", "closed", or "" when the
// deadline is unknown.
func Text(endDate string, today time.Time) string {
	days, ok := DaysUntil(endDate, today)
	switch {
	case !ok:
		return ""
	case days < 0:
		return TextClosed
	case days == 0:
		return TextToday
	default:
		return fmt.Sprintf("D-%d", days)
	}
}

// Within reports whether the deadline is today or at most days ahead.
// Unknown and closed deadlines never match.
func Within(endDate string, today time.Time, days int) bool {
	left, ok := DaysUntil(endDate, today)
	if !ok {
		return false
	}
	return left >= 0 && left <= days
}

type Filter string

const (
	FilterAll     Filter = "all"
	FilterWithin7 Filter = "7d"
	FilterWithin3 Filter = "3d"
)

// ParseFilter maps query values to a Filter; anything unknown means no filter.
func ParseFilter(v string) Filter {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "7d", "7", "within7":
		return FilterWithin7
	case "3d", "3", "within3":
		return FilterWithin3
	default:
		return FilterAll
	}
}

// Days is the horizon of the filter, 0 when inactive.
func (f Filter) Days() int {
	switch f {
	case FilterWithin7:
		return 7
	case FilterWithin3:
		return 3
	default:
		return 0
	}
}

func (f Filter) Active() bool {
	return f.Days() > 0
}
