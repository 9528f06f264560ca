package ledger

import (
	"context"
	"fmt"
	"log"

	"github.com/fadilmartias/notice-radar/internal/kvstore"
	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/google/uuid"
)

// LocalLedger is private to the device: both sets live in slots that are
// loaded once and rewritten in full after every change.
type LocalLedger struct {
	store      kvstore.SlotStore
	excluded   tracked
	bookmarked tracked
}

func OpenLocal(ctx context.Context, store kvstore.SlotStore) (*LocalLedger, error) {
	l := &LocalLedger{store: store}
	for slot, set := range map[string]*tracked{
		kvstore.SlotExcludedURLs:   &l.excluded,
		kvstore.SlotBookmarkedURLs: &l.bookmarked,
	} {
		var urls []string
		if _, err := store.Get(ctx, slot, &urls); err != nil {
			return nil, fmt.Errorf("load %s: %w", slot, err)
		}
		set.urls = newURLSet(urls)
	}
	log.Printf("local ledger loaded: %d excluded, %d bookmarked", len(l.excluded.urls), len(l.bookmarked.urls))
	return l, nil
}

// LocalOpener hands every session the same device-wide ledger.
func LocalOpener(l *LocalLedger) Opener {
	return func(context.Context, uuid.UUID) (Ledger, error) {
		return l, nil
	}
}

func (l *LocalLedger) IsExcluded(url string) bool {
	return l.excluded.has(url)
}

// Exclude records the URL only; local slots have no room for a reason.
func (l *LocalLedger) Exclude(ctx context.Context, notice model.Notice, _ *string) error {
	return l.excluded.add(notice.URL, l.save(ctx, kvstore.SlotExcludedURLs))
}

func (l *LocalLedger) Restore(ctx context.Context, notice model.Notice) error {
	return l.excluded.remove(notice.URL, l.save(ctx, kvstore.SlotExcludedURLs))
}

func (l *LocalLedger) ListExcluded() []string {
	return l.excluded.list()
}

func (l *LocalLedger) IsBookmarked(url string) bool {
	return l.bookmarked.has(url)
}

func (l *LocalLedger) Bookmark(ctx context.Context, notice model.Notice) error {
	return l.bookmarked.add(notice.URL, l.save(ctx, kvstore.SlotBookmarkedURLs))
}

func (l *LocalLedger) Unbookmark(ctx context.Context, notice model.Notice) error {
	return l.bookmarked.remove(notice.URL, l.save(ctx, kvstore.SlotBookmarkedURLs))
}

func (l *LocalLedger) ListBookmarked() []string {
	return l.bookmarked.list()
}

func (l *LocalLedger) save(ctx context.Context, slot string) func(urlSet) error {
	return func(next urlSet) error {
		if err := l.store.Set(ctx, slot, next.sorted()); err != nil {
			return fmt.Errorf("save %s: %w", slot, err)
		}
		return nil
	}
}
