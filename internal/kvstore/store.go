// Package kvstore keeps small named JSON values ("slots") such as the locally
// excluded notice URLs. Each write replaces the whole slot.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

const (
	SlotExcludedURLs   = "excluded_notice_urls"
	SlotBookmarkedURLs = "bookmarked_notice_urls"
	SlotLastVisit      = "last_visit_at"
	SlotTheme          = "theme"
)

var ErrInvalidSlot = errors.New("invalid slot name")

type SlotStore interface {
	// Get decodes the slot into dst. It reports false when the slot was never written.
	Get(ctx context.Context, slot string, dst any) (bool, error)
	Set(ctx context.Context, slot string, value any) error
}

var slotName = regexp.MustCompile(`^[a-z0-9_]+$`)

func validateSlot(slot string) error {
	if !slotName.MatchString(slot) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return nil
}
