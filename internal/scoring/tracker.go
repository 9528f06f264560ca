package scoring

import (
	"sort"
	"sync"
)

// Tracker records which notices have an evaluation in flight so the same
// notice is never sent to the oracle twice at once.
type Tracker struct {
	mu      sync.Mutex
	pending map[int64]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{pending: make(map[int64]struct{})}
}

// TryAcquire marks id as in flight. It returns false if it already was.
func (t *Tracker) TryAcquire(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.pending[id]; busy {
		return false
	}
	t.pending[id] = struct{}{}
	return true
}

func (t *Tracker) Release(id int64) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

func (t *Tracker) InFlight(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, busy := t.pending[id]
	return busy
}

// Pending lists in-flight notice ids in ascending order.
func (t *Tracker) Pending() []int64 {
	t.mu.Lock()
	ids := make([]int64, 0, len(t.pending))
	for id := range t.pending {
		ids = append(ids, id)
	}
	t.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
