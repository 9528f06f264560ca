package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fadilmartias/notice-radar/internal/ledger"
	"github.com/fadilmartias/notice-radar/internal/scoring"
	"github.com/google/uuid"
)

const (
	DefaultMaxSessions = 1024
	DefaultSessionTTL  = 2 * time.Hour
)

type session struct {
	agg      *NoticeAggregator
	lastUsed time.Time
}

// Sessions hands out one NoticeAggregator per identity. The ledger strategy
// is fixed by the opener chosen at startup. Sessions idle for longer than
// the TTL are dropped, and the least recently used one is evicted once the
// cache is full.
type Sessions struct {
	deps Dependencies
	open ledger.Opener

	maxSessions int
	ttl         time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

func NewSessions(deps Dependencies, open ledger.Opener) *Sessions {
	if deps.Tracker == nil {
		deps.Tracker = scoring.NewTracker()
	}
	return &Sessions{
		deps:        deps,
		open:        open,
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultSessionTTL,
		now:         time.Now,
		sessions:    make(map[uuid.UUID]*session),
	}
}

// SetLimits overrides the cache bounds. Non-positive values keep the current
// setting.
func (s *Sessions) SetLimits(maxSessions int, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if maxSessions > 0 {
		s.maxSessions = maxSessions
	}
	if ttl > 0 {
		s.ttl = ttl
	}
}

// SetClock replaces the clock used for idle tracking.
func (s *Sessions) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Get returns the session of userID, opening it on first use. The ledger is
// opened without holding the cache lock; when two callers race for the same
// identity the first one stored wins.
func (s *Sessions) Get(ctx context.Context, userID uuid.UUID) (*NoticeAggregator, error) {
	if agg := s.lookup(userID); agg != nil {
		return agg, nil
	}

	l, err := s.open(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	prevVisit, err := loadLastVisit(ctx, s.deps.Slots, userID)
	if err != nil {
		return nil, err
	}
	agg := NewNoticeAggregator(s.deps, userID, l, prevVisit)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if existing, ok := s.sessions[userID]; ok {
		existing.lastUsed = now
		return existing.agg, nil
	}
	s.evictLocked(now)
	s.sessions[userID] = &session{agg: agg, lastUsed: now}
	log.Printf("session opened for %s", userID)
	return agg, nil
}

func (s *Sessions) lookup(userID uuid.UUID) *NoticeAggregator {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	now := s.now()
	if now.Sub(sess.lastUsed) > s.ttl {
		delete(s.sessions, userID)
		return nil
	}
	sess.lastUsed = now
	return sess.agg
}

// evictLocked makes room for one more session.
func (s *Sessions) evictLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.ttl {
			delete(s.sessions, id)
		}
	}
	for len(s.sessions) >= s.maxSessions {
		var (
			oldest   uuid.UUID
			oldestAt time.Time
			found    bool
		)
		for id, sess := range s.sessions {
			if !found || sess.lastUsed.Before(oldestAt) {
				oldest, oldestAt, found = id, sess.lastUsed, true
			}
		}
		delete(s.sessions, oldest)
		log.Printf("session evicted for %s", oldest)
	}
}

// Len reports the number of cached sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Drop forgets the session of userID. The next Get reloads its ledger.
func (s *Sessions) Drop(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}
