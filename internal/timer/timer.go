// Package timer implements the Pomodoro phase state machine: a one-second
// countdown cycling through the fixed schedule, with every second of running
// time accounted for in the live counter or a persisted session fragment.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/schedule"
)

var (
	ErrInvalidMode  = errors.New("invalid timer mode")
	ErrInvalidPhase = errors.New("invalid phase type")
)

const (
	tickInterval     = time.Second
	autoRestartDelay = 0
)

// Totals are counted for the lifetime of the process only.
type Totals struct {
	TotalSec int `json:"totalSec"`
	WorkSec  int `json:"workSec"`
	RestSec  int `json:"restSec"`
}

// State is a read-only snapshot handed to observers.
type State struct {
	Mode             model.TimerMode `json:"mode"`
	IndividualMode   model.PhaseType `json:"individualMode"`
	OrderIndex       int             `json:"orderIndex"`
	Phase            model.PhaseType `json:"phase"`
	RemainingSeconds int             `json:"remainingSeconds"`
	IsRunning        bool            `json:"isRunning"`
	SessionGroupID   string          `json:"sessionGroupId,omitempty"`
	Totals           Totals          `json:"totals"`
	Version          uint64          `json:"version"`
}

type Options struct {
	Clock     Clock
	Scheduler Scheduler
	Recorder  Recorder
}

type Timer struct {
	clock    Clock
	sched    Scheduler
	recorder Recorder

	mu sync.Mutex
	// notifyMu is taken before mu is released, so listeners see snapshots in
	// version order.
	notifyMu sync.Mutex

	mode           model.TimerMode
	individualMode model.PhaseType
	orderIndex     int
	remaining      int
	running        bool

	// Open phase instance. phaseType is empty when no instance is open;
	// phaseStartAt is zero while the instance is paused.
	phaseType     model.PhaseType
	phaseGroupID  string
	phaseStartAt  time.Time
	phasePlanned  int
	phaseRecorded int

	totals  Totals
	version uint64

	// At most one live token: the tick loop or a pending auto-restart.
	token Token
	epoch uint64

	closed bool

	listeners    map[int]func(State)
	nextListener int
}

func New(opts Options) *Timer {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler
	}
	return &Timer{
		clock:          opts.Clock,
		sched:          opts.Scheduler,
		recorder:       opts.Recorder,
		mode:           model.ModeInfinite,
		individualMode: model.PhaseWork,
		remaining:      schedule.SecondsForOrderIndex(0),
		listeners:      make(map[int]func(State)),
	}
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Subscribe registers fn to receive a snapshot after every change, in version
// order. fn runs on the goroutine that made the change; it must not block or
// call back into the timer.
func (t *Timer) Subscribe(fn func(State)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextListener
	t.nextListener++
	t.listeners[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.listeners, id)
			t.mu.Unlock()
		})
	}
}

func (t *Timer) Start() {
	t.mutate(t.startLocked)
}

func (t *Timer) Stop() {
	t.mutate(t.stopLocked)
}

func (t *Timer) Reset() {
	t.mutate(func() bool {
		t.stopLocked()
		if t.mode == model.ModeInfinite {
			t.orderIndex = 0
		}
		t.remaining = schedule.PlannedSeconds(t.mode, t.individualMode, t.orderIndex)
		t.clearPhaseLocked()
		return true
	})
}

func (t *Timer) SetMode(mode model.TimerMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	t.mutate(func() bool {
		t.stopLocked()
		t.mode = mode
		if mode == model.ModeInfinite {
			t.orderIndex = 0
		}
		t.remaining = schedule.PlannedSeconds(t.mode, t.individualMode, t.orderIndex)
		t.clearPhaseLocked()
		return true
	})
	return nil
}

// SetIndividualMode pins the timer to phase, switching to individual mode.
func (t *Timer) SetIndividualMode(phase model.PhaseType) error {
	if !phase.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, phase)
	}
	t.mutate(func() bool {
		t.stopLocked()
		t.individualMode = phase
		t.mode = model.ModeIndividually
		t.remaining = schedule.SecondsForPhase(phase)
		t.clearPhaseLocked()
		return true
	})
	return nil
}

// EmergencyFlush hands the in-flight fragment to save synchronously, for use
// when the process may die before the async writer catches up. A successful
// save freezes the timer: the countdown stops, nothing records that fragment
// again, and later starts are ignored.
func (t *Timer) EmergencyFlush(save func(model.SessionRecord) error) bool {
	flushed := false
	t.mutate(func() bool {
		if t.closed {
			return false
		}
		record, ok := t.pendingRecordLocked(t.clock.Now())
		if !ok {
			return false
		}
		if err := save(record); err != nil {
			log.Warn().
				Err(err).
				Str("sessionGroupId", record.SessionGroupID).
				Msg("Emergency flush failed, falling back to regular shutdown")
			return false
		}
		t.cancelTokenLocked()
		t.phaseRecorded += record.Duration
		t.phaseStartAt = time.Time{}
		t.running = false
		t.closed = true
		flushed = true
		log.Info().
			Str("sessionGroupId", record.SessionGroupID).
			Int("duration", record.Duration).
			Msg("In-flight phase saved to recovery slot")
		return true
	})
	return flushed
}

// Close stops the countdown for good, persisting the open fragment.
func (t *Timer) Close() {
	t.mutate(func() bool {
		if t.closed {
			return false
		}
		t.stopLocked()
		t.closed = true
		return true
	})
}

func (t *Timer) mutate(fn func() bool) {
	t.mu.Lock()
	if !fn() {
		t.mu.Unlock()
		return
	}
	t.version++
	state := t.stateLocked()
	listeners := make([]func(State), 0, len(t.listeners))
	for _, listener := range t.listeners {
		listeners = append(listeners, listener)
	}
	t.notifyMu.Lock()
	t.mu.Unlock()
	defer t.notifyMu.Unlock()

	for _, listener := range listeners {
		listener(state)
	}
}

func (t *Timer) startLocked() bool {
	if t.closed || t.running || t.remaining <= 0 {
		return false
	}

	now := t.clock.Now()
	if t.phaseType == "" {
		t.phaseType = t.currentPhaseLocked()
		t.phaseGroupID = uuid.NewString()
		t.phasePlanned = t.remaining
		t.phaseRecorded = 0
		t.phaseStartAt = now
		log.Debug().
			Str("sessionGroupId", t.phaseGroupID).
			Str("type", string(t.phaseType)).
			Int("planned", t.phasePlanned).
			Msg("Phase started")
	} else if t.phaseStartAt.IsZero() {
		t.phaseStartAt = now
	}

	t.replaceTokenLocked(func(epoch uint64) Token {
		return t.sched.Every(tickInterval, func() { t.tick(epoch) })
	})
	t.running = true
	return true
}

// stopLocked halts the countdown and records the running fragment. A
// completed phase closes its instance; an interrupted one keeps it open so the
// next start continues the same group.
func (t *Timer) stopLocked() bool {
	changed := t.cancelTokenLocked()
	if !t.running {
		return changed
	}

	if record, ok := t.pendingRecordLocked(t.clock.Now()); ok {
		if t.recorder != nil {
			t.recorder.Submit(record)
		}
		t.phaseRecorded += record.Duration
		if record.Completed {
			log.Debug().
				Str("sessionGroupId", record.SessionGroupID).
				Str("type", string(record.Type)).
				Msg("Phase completed")
			t.clearPhaseLocked()
		}
	}
	t.phaseStartAt = time.Time{}
	t.running = false
	return true
}

func (t *Timer) tick(epoch uint64) {
	t.mutate(func() bool {
		if epoch != t.epoch || !t.running {
			return false
		}

		phase := t.phaseType
		if phase == "" {
			phase = t.currentPhaseLocked()
		}
		t.totals.TotalSec++
		if phase.IsWork() {
			t.totals.WorkSec++
		} else {
			t.totals.RestSec++
		}

		t.remaining--
		if t.remaining > 0 {
			return true
		}
		t.remaining = 0
		t.completeLocked()
		return true
	})
}

func (t *Timer) completeLocked() {
	t.stopLocked()
	if t.mode == model.ModeInfinite {
		t.orderIndex = schedule.NextOrderIndex(t.orderIndex)
		t.remaining = schedule.SecondsForOrderIndex(t.orderIndex)
		t.replaceTokenLocked(func(epoch uint64) Token {
			return t.sched.After(autoRestartDelay, func() { t.restart(epoch) })
		})
		return
	}
	t.remaining = schedule.SecondsForPhase(t.individualMode)
}

func (t *Timer) restart(epoch uint64) {
	t.mutate(func() bool {
		if epoch != t.epoch {
			return false
		}
		t.token = nil
		return t.startLocked()
	})
}

// pendingRecordLocked computes the fragment a stop at now would persist.
// Durations are capped at the part of the plan not yet recorded, so the
// fragments of a group never add up to more than the plan.
func (t *Timer) pendingRecordLocked(now time.Time) (model.SessionRecord, bool) {
	if !t.running || t.phaseType == "" || t.phaseStartAt.IsZero() {
		return model.SessionRecord{}, false
	}

	completed := t.remaining <= 1
	budget := t.phasePlanned - t.phaseRecorded
	if budget < 0 {
		budget = 0
	}

	var duration int
	if completed && t.phasePlanned > 0 {
		duration = budget
	} else {
		duration = int(now.Sub(t.phaseStartAt) / time.Second)
		if duration < 0 {
			duration = 0
		}
		if t.phasePlanned > 0 && duration > budget {
			duration = budget
		}
	}

	return model.SessionRecord{
		SessionGroupID: t.phaseGroupID,
		Type:           t.phaseType,
		StartedAt:      t.phaseStartAt,
		EndedAt:        now,
		Duration:       duration,
		Completed:      completed,
	}, true
}

func (t *Timer) replaceTokenLocked(create func(epoch uint64) Token) {
	t.cancelTokenLocked()
	t.token = create(t.epoch)
}

func (t *Timer) cancelTokenLocked() bool {
	t.epoch++
	if t.token == nil {
		return false
	}
	t.token.Cancel()
	t.token = nil
	return true
}

func (t *Timer) clearPhaseLocked() {
	t.phaseType = ""
	t.phaseGroupID = ""
	t.phaseStartAt = time.Time{}
	t.phasePlanned = 0
	t.phaseRecorded = 0
}

func (t *Timer) currentPhaseLocked() model.PhaseType {
	return schedule.CurrentPhase(t.mode, t.individualMode, t.orderIndex)
}

func (t *Timer) stateLocked() State {
	phase := t.phaseType
	if phase == "" {
		phase = t.currentPhaseLocked()
	}
	remaining := t.remaining
	if remaining < 0 {
		remaining = 0
	}
	return State{
		Mode:             t.mode,
		IndividualMode:   t.individualMode,
		OrderIndex:       t.orderIndex,
		Phase:            phase,
		RemainingSeconds: remaining,
		IsRunning:        t.running,
		SessionGroupID:   t.phaseGroupID,
		Totals:           t.totals,
		Version:          t.version,
	}
}
