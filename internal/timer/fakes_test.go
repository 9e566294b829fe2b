package timer

import (
	"sync"
	"time"

	"pomodoro/timer/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeEntry struct {
	repeat    bool
	fn        func()
	cancelled bool
}

func (e *fakeEntry) Cancel() { e.cancelled = true }

// fakeScheduler only runs callbacks when the test asks it to.
type fakeScheduler struct {
	entries []*fakeEntry
}

func (s *fakeScheduler) Every(_ time.Duration, fn func()) Token {
	e := &fakeEntry{repeat: true, fn: fn}
	s.entries = append(s.entries, e)
	return e
}

func (s *fakeScheduler) After(_ time.Duration, fn func()) Token {
	e := &fakeEntry{fn: fn}
	s.entries = append(s.entries, e)
	return e
}

func (s *fakeScheduler) active(repeat bool) []*fakeEntry {
	var out []*fakeEntry
	for _, e := range s.entries {
		if !e.cancelled && e.repeat == repeat {
			out = append(out, e)
		}
	}
	return out
}

func (s *fakeScheduler) activeTickers() int { return len(s.active(true)) }

func (s *fakeScheduler) pendingRestarts() int { return len(s.active(false)) }

// runPending fires every live one-shot callback once.
func (s *fakeScheduler) runPending() {
	for _, e := range s.active(false) {
		e.cancelled = true
		e.fn()
	}
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []model.SessionRecord
}

func (r *memoryRecorder) Submit(record model.SessionRecord) *Pending {
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	return Resolved("rec", nil)
}

func (r *memoryRecorder) all() []model.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SessionRecord(nil), r.records...)
}

type inertToken struct{}

func (inertToken) Cancel() {}

// inertScheduler never fires and is safe for concurrent use.
type inertScheduler struct{}

func (inertScheduler) Every(time.Duration, func()) Token { return inertToken{} }
func (inertScheduler) After(time.Duration, func()) Token { return inertToken{} }
