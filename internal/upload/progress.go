package upload

import (
	"sync"

	"github.com/google/uuid"
)

// State is the upload pipeline stage for a single upload
type State string

// Pipeline states
const (
	StateReceiving  State = "receiving"
	StateValidating State = "validating"
	StatePersisting State = "persisting-metadata"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Status is a point-in-time view of one upload
type Status struct {
	State   State `json:"state"`
	Percent int   `json:"percent"`
}

// tracker records per-upload state and byte progress. Percent is
// monotonically increasing: a late or duplicate report never lowers it.
type tracker struct {
	mu      sync.RWMutex
	uploads map[uuid.UUID]*Status
}

func newTracker() *tracker {
	return &tracker{uploads: make(map[uuid.UUID]*Status)}
}

func (t *tracker) begin(id uuid.UUID) {
	t.mu.Lock()
	t.uploads[id] = &Status{State: StateReceiving}
	t.mu.Unlock()
}

func (t *tracker) setState(id uuid.UUID, state State) {
	t.mu.Lock()
	if s, ok := t.uploads[id]; ok {
		s.State = state
		if state == StateDone {
			s.Percent = 100
		}
	}
	t.mu.Unlock()
}

func (t *tracker) reportBytes(id uuid.UUID, received, total int64) {
	if total <= 0 {
		return
	}
	pct := int(received * 100 / total)
	if pct > 100 {
		pct = 100
	}

	t.mu.Lock()
	if s, ok := t.uploads[id]; ok && pct > s.Percent {
		s.Percent = pct
	}
	t.mu.Unlock()
}

func (t *tracker) status(id uuid.UUID) (Status, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.uploads[id]
	if !ok {
		return Status{}, false
	}
	return *s, true
}

func (t *tracker) forget(id uuid.UUID) {
	t.mu.Lock()
	delete(t.uploads, id)
	t.mu.Unlock()
}
