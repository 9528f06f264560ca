package ledger

import (
	"context"
	"fmt"

	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/google/uuid"
)

// MarkStore is the server-side record store for one kind of marker.
type MarkStore interface {
	Insert(ctx context.Context, userID uuid.UUID, url string, reason *string) error
	Delete(ctx context.Context, userID uuid.UUID, url string) error
	ListURLs(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// RemoteLedger mirrors one user's server records in memory. Writes reach the
// server first and the mirror only after they succeed.
type RemoteLedger struct {
	userID     uuid.UUID
	exclusions MarkStore
	bookmarks  MarkStore
	excluded   tracked
	bookmarked tracked
}

func OpenRemote(ctx context.Context, userID uuid.UUID, exclusions, bookmarks MarkStore) (*RemoteLedger, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	excluded, err := exclusions.ListURLs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}
	bookmarked, err := bookmarks.ListURLs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}

	l := &RemoteLedger{
		userID:     userID,
		exclusions: exclusions,
		bookmarks:  bookmarks,
	}
	l.excluded.urls = newURLSet(excluded)
	l.bookmarked.urls = newURLSet(bookmarked)
	return l, nil
}

func RemoteOpener(exclusions, bookmarks MarkStore) Opener {
	return func(ctx context.Context, userID uuid.UUID) (Ledger, error) {
		return OpenRemote(ctx, userID, exclusions, bookmarks)
	}
}

func (l *RemoteLedger) UserID() uuid.UUID {
	return l.userID
}

func (l *RemoteLedger) IsExcluded(url string) bool {
	return l.excluded.has(url)
}

func (l *RemoteLedger) Exclude(ctx context.Context, notice model.Notice, reason *string) error {
	return l.excluded.add(notice.URL, func(urlSet) error {
		return l.exclusions.Insert(ctx, l.userID, notice.URL, reason)
	})
}

func (l *RemoteLedger) Restore(ctx context.Context, notice model.Notice) error {
	return l.excluded.remove(notice.URL, func(urlSet) error {
		return l.exclusions.Delete(ctx, l.userID, notice.URL)
	})
}

func (l *RemoteLedger) ListExcluded() []string {
	return l.excluded.list()
}

func (l *RemoteLedger) IsBookmarked(url string) bool {
	return l.bookmarked.has(url)
}

func (l *RemoteLedger) Bookmark(ctx context.Context, notice model.Notice) error {
	return l.bookmarked.add(notice.URL, func(urlSet) error {
		return l.bookmarks.Insert(ctx, l.userID, notice.URL, nil)
	})
}

func (l *RemoteLedger) Unbookmark(ctx context.Context, notice model.Notice) error {
	return l.bookmarked.remove(notice.URL, func(urlSet) error {
		return l.bookmarks.Delete(ctx, l.userID, notice.URL)
	})
}

func (l *RemoteLedger) ListBookmarked() []string {
	return l.bookmarked.list()
}
