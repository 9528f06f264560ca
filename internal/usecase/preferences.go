package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/notice-radar/internal/kvstore"
	"github.com/google/uuid"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Preferences struct {
	Theme       string     `json:"theme"`
	LastVisitAt *time.Time `json:"last_visit_at"`
}

// slotFor scopes a slot to a user. Anonymous sessions use the bare slot.
func slotFor(base string, userID uuid.UUID) string {
	if userID == uuid.Nil {
		return base
	}
	return base + "_" + strings.ReplaceAll(userID.String(), "-", "")
}

func loadLastVisit(ctx context.Context, slots kvstore.SlotStore, userID uuid.UUID) (*time.Time, error) {
	if slots == nil {
		return nil, nil
	}
	var at time.Time
	ok, err := slots.Get(ctx, slotFor(kvstore.SlotLastVisit, userID), &at)
	if err != nil {
		return nil, fmt.Errorf("load last visit: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &at, nil
}

func (a *NoticeAggregator) Preferences(ctx context.Context) (Preferences, error) {
	prefs := Preferences{Theme: ThemeLight}
	if a.deps.Slots == nil {
		return prefs, nil
	}
	var theme string
	ok, err := a.deps.Slots.Get(ctx, slotFor(kvstore.SlotTheme, a.userID), &theme)
	if err != nil {
		return Preferences{}, fmt.Errorf("load theme: %w", err)
	}
	if ok && (theme == ThemeLight || theme == ThemeDark) {
		prefs.Theme = theme
	}
	prefs.LastVisitAt, err = loadLastVisit(ctx, a.deps.Slots, a.userID)
	if err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

func (a *NoticeAggregator) SetTheme(ctx context.Context, theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	if a.deps.Slots == nil {
		return nil
	}
	if err := a.deps.Slots.Set(ctx, slotFor(kvstore.SlotTheme, a.userID), theme); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// MarkVisit stores the current time as the last visit. Items stay "new" for
// the rest of this session; the next session compares against this visit.
func (a *NoticeAggregator) MarkVisit(ctx context.Context) (time.Time, error) {
	at := a.deps.Pipeline.Today()
	if a.deps.Slots == nil {
		return at, nil
	}
	if err := a.deps.Slots.Set(ctx, slotFor(kvstore.SlotLastVisit, a.userID), at); err != nil {
		return time.Time{}, fmt.Errorf("save last visit: %w", err)
	}
	return at, nil
}
