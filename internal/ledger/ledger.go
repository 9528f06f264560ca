// Package ledger tracks which notices a user has excluded or bookmarked.
// LocalLedger keeps the sets in client-side slots; RemoteLedger keeps them in
// per-user server records. Callers pick one at startup and use Ledger only.
package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/google/uuid"
)

var (
	// ErrUnauthenticated is returned when remote exclusion state is requested
	// without a user identity. There is no fallback to local state.
	ErrUnauthenticated = errors.New("exclusion access requires an authenticated user")
	ErrEmptyURL        = errors.New("notice has no url")
)

// Ledger is keyed by notice URL. Adding a present URL and removing an absent
// one are no-ops, and every mutation is visible to the next read.
type Ledger interface {
	IsExcluded(url string) bool
	Exclude(ctx context.Context, notice model.Notice, reason *string) error
	Restore(ctx context.Context, notice model.Notice) error
	ListExcluded() []string

	IsBookmarked(url string) bool
	Bookmark(ctx context.Context, notice model.Notice) error
	Unbookmark(ctx context.Context, notice model.Notice) error
	ListBookmarked() []string
}

// Opener returns the ledger of a session. userID is uuid.Nil for anonymous callers.
type Opener func(ctx context.Context, userID uuid.UUID) (Ledger, error)

type urlSet map[string]struct{}

func newURLSet(urls []string) urlSet {
	s := make(urlSet, len(urls))
	for _, u := range urls {
		if u != "" {
			s[u] = struct{}{}
		}
	}
	return s
}

func (s urlSet) with(url string) urlSet {
	next := make(urlSet, len(s)+1)
	for u := range s {
		next[u] = struct{}{}
	}
	next[url] = struct{}{}
	return next
}

func (s urlSet) without(url string) urlSet {
	next := make(urlSet, len(s))
	for u := range s {
		if u != url {
			next[u] = struct{}{}
		}
	}
	return next
}

func (s urlSet) sorted() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// tracked is one URL set whose changes are committed to a backing store
// before they become visible. A failed commit leaves the set as it was.
type tracked struct {
	mu   sync.RWMutex
	urls urlSet
}

func (t *tracked) has(url string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.urls[url]
	return ok
}

func (t *tracked) list() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.urls.sorted()
}

func (t *tracked) add(url string, commit func(next urlSet) error) error {
	if url == "" {
		return ErrEmptyURL
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.urls[url]; ok {
		return nil
	}
	next := t.urls.with(url)
	if err := commit(next); err != nil {
		return err
	}
	t.urls = next
	return nil
}

func (t *tracked) remove(url string, commit func(next urlSet) error) error {
	if url == "" {
		return ErrEmptyURL
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.urls[url]; !ok {
		return nil
	}
	next := t.urls.without(url)
	if err := commit(next); err != nil {
		return err
	}
	t.urls = next
	return nil
}
