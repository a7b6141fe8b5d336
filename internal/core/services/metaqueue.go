package services

import (
	"sync"

	"github.com/fathom-search/fathom-cli/internal/core/domain"
)

// SheetMetaQueue serialises merges into the shared sheet publication
// status map. Load workers run concurrently, but every merge goes
// through a single ordered queue: each update reads the latest
// snapshot, merges, and publishes before the next queued update
// proceeds. Single-writer discipline instead of optimistic retries.
type SheetMetaQueue struct {
	updates chan metaUpdate
	done    chan struct{}
	closed  sync.Once

	mu    sync.RWMutex
	state map[string]domain.SheetStatus
}

type metaUpdate struct {
	statuses map[string]domain.SheetStatus
	applied  chan struct{}
}

// NewSheetMetaQueue creates the queue and starts its writer goroutine.
func NewSheetMetaQueue() *SheetMetaQueue {
	q := &SheetMetaQueue{
		updates: make(chan metaUpdate),
		done:    make(chan struct{}),
		state:   make(map[string]domain.SheetStatus),
	}
	go q.run()
	return q
}

// run is the single writer. It applies updates strictly in arrival
// order and acknowledges each one only after publishing.
func (q *SheetMetaQueue) run() {
	for {
		select {
		case u := <-q.updates:
			q.mu.Lock()
			for id, status := range u.statuses {
				q.state[id] = status
			}
			q.mu.Unlock()
			close(u.applied)
		case <-q.done:
			return
		}
	}
}

// Merge enqueues the statuses and blocks until they are published.
func (q *SheetMetaQueue) Merge(statuses map[string]domain.SheetStatus) {
	if len(statuses) == 0 {
		return
	}
	u := metaUpdate{statuses: statuses, applied: make(chan struct{})}
	select {
	case q.updates <- u:
		<-u.applied
	case <-q.done:
	}
}

// Status returns one sheet's merged publication state.
func (q *SheetMetaQueue) Status(sheetID string) (domain.SheetStatus, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	s, ok := q.state[sheetID]
	return s, ok
}

// Snapshot returns a copy of the full merged state.
func (q *SheetMetaQueue) Snapshot() map[string]domain.SheetStatus {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make(map[string]domain.SheetStatus, len(q.state))
	for id, s := range q.state {
		out[id] = s
	}
	return out
}

// Reset clears the merged state. Used on full refresh.
func (q *SheetMetaQueue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.state = make(map[string]domain.SheetStatus)
}

// Close stops the writer goroutine.
func (q *SheetMetaQueue) Close() {
	q.closed.Do(func() { close(q.done) })
}
