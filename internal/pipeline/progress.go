package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Step names a point in the search state machine.
type Step string

const (
	StepCreated             Step = "created"
	StepBusinessesFetched   Step = "businesses_fetched"
	StepBusinessesPersisted Step = "businesses_persisted"
	StepReviewsPersisted    Step = "reviews_persisted"
	StepAnalyzing           Step = "analyzing"
	StepFinalizing          Step = "finalizing"
	StepCompleted           Step = "completed"
)

// Progress is UI feedback only; nothing downstream depends on it.
type Progress struct {
	Step      Step      `json:"step"`
	Percent   int       `json:"progress"`
	Analyzed  int       `json:"analyzed"`
	Total     int       `json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}

const progressRetention = time.Hour

// Tracker records the latest progress of every running search.
type Tracker struct {
	mu       sync.Mutex
	runs     map[uuid.UUID]Progress
	onUpdate func(uuid.UUID, Progress)
	now      func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{runs: make(map[uuid.UUID]Progress), now: time.Now}
}

// OnUpdate registers a callback invoked after every accepted update. It runs
// under the tracker lock and must not call back into the tracker.
func (t *Tracker) OnUpdate(fn func(uuid.UUID, Progress)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUpdate = fn
}

// Get returns the last recorded progress for a search.
func (t *Tracker) Get(id uuid.UUID) (Progress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.runs[id]
	return p, ok
}

func (t *Tracker) set(id uuid.UUID, step Step, percent int) {
	t.update(id, func(p *Progress) {
		p.Step = step
		p.Percent = percent
	})
}

// analyzed moves linearly from 40% to 90% as analyses finish.
func (t *Tracker) analyzed(id uuid.UUID, done, total int) {
	t.update(id, func(p *Progress) {
		p.Step = StepAnalyzing
		p.Analyzed, p.Total = done, total
		pct := 90
		if total > 0 {
			pct = 40 + 50*done/total
		}
		if pct > 90 {
			pct = 90
		}
		p.Percent = pct
	})
}

// update applies fn and keeps the percentage from ever going backwards.
func (t *Tracker) update(id uuid.UUID, fn func(*Progress)) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	prev := t.runs[id]
	next := prev
	fn(&next)
	if next.Percent < prev.Percent {
		next.Percent = prev.Percent
	}
	next.UpdatedAt = now
	t.runs[id] = next

	for k, p := range t.runs {
		if now.Sub(p.UpdatedAt) > progressRetention {
			delete(t.runs, k)
		}
	}
	if t.onUpdate != nil {
		t.onUpdate(id, next)
	}
}
