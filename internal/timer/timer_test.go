package timer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"pomodoro/timer/internal/model"
)

type TimerSuite struct {
	suite.Suite
	clock    *fakeClock
	sched    *fakeScheduler
	recorder *memoryRecorder
	timer    *Timer
}

func (s *TimerSuite) SetupTest() {
	s.clock = newFakeClock()
	s.sched = &fakeScheduler{}
	s.recorder = &memoryRecorder{}
	s.timer = New(Options{Clock: s.clock, Scheduler: s.sched, Recorder: s.recorder})
}

func TestTimerSuite(t *testing.T) {
	suite.Run(t, new(TimerSuite))
}

// tick advances the clock and fires the live tick loop n times.
func (s *TimerSuite) tick(n int) {
	for i := 0; i < n; i++ {
		tickers := s.sched.active(true)
		s.Require().Len(tickers, 1, "tick %d without a running loop", i)
		s.clock.Advance(time.Second)
		tickers[0].fn()
	}
}

func (s *TimerSuite) TestInitialState() {
	state := s.timer.State()
	s.Equal(model.ModeInfinite, state.Mode)
	s.Equal(model.PhaseWork, state.IndividualMode)
	s.Equal(model.PhaseWork, state.Phase)
	s.Equal(1500, state.RemainingSeconds)
	s.False(state.IsRunning)
	s.Empty(state.SessionGroupID)
}

func (s *TimerSuite) TestFullWorkPhaseAdvancesCycle() {
	s.timer.Start()
	s.tick(1500)

	records := s.recorder.all()
	s.Require().Len(records, 1)
	s.Equal(model.PhaseWork, records[0].Type)
	s.Equal(1500, records[0].Duration)
	s.True(records[0].Completed)
	s.NotEmpty(records[0].SessionGroupID)

	state := s.timer.State()
	s.Equal(1, state.OrderIndex)
	s.Equal(300, state.RemainingSeconds)
	s.Equal(model.PhaseBreak, state.Phase)
	s.False(state.IsRunning)
	s.Equal(1, s.sched.pendingRestarts())
	s.Equal(0, s.sched.activeTickers())

	s.sched.runPending()
	state = s.timer.State()
	s.True(state.IsRunning)
	s.NotEqual(records[0].SessionGroupID, state.SessionGroupID)
	s.Equal(1, s.sched.activeTickers())
}

func (s *TimerSuite) TestManualPauseResumeSharesGroup() {
	s.Require().NoError(s.timer.SetIndividualMode(model.PhaseWork))

	s.timer.Start()
	s.tick(100)
	s.timer.Stop()

	s.timer.Start()
	s.tick(50)
	s.timer.Stop()

	records := s.recorder.all()
	s.Require().Len(records, 2)
	s.Equal(100, records[0].Duration)
	s.False(records[0].Completed)
	s.Equal(50, records[1].Duration)
	s.False(records[1].Completed)
	s.Equal(records[0].SessionGroupID, records[1].SessionGroupID)
	s.Equal(1350, s.timer.State().RemainingSeconds)
}

func (s *TimerSuite) TestModeSwitchFlushesFragment() {
	s.timer.Start()
	s.tick(10)
	s.Require().NoError(s.timer.SetIndividualMode(model.PhaseBreak))

	records := s.recorder.all()
	s.Require().Len(records, 1)
	s.Equal(10, records[0].Duration)
	s.False(records[0].Completed)
	s.Equal(model.PhaseWork, records[0].Type)

	state := s.timer.State()
	s.Equal(300, state.RemainingSeconds)
	s.Equal(model.ModeIndividually, state.Mode)
	s.False(state.IsRunning)
	s.Empty(state.SessionGroupID)
}

func (s *TimerSuite) TestStopIsIdempotent() {
	s.timer.Start()
	s.tick(5)
	s.timer.Stop()
	s.timer.Stop()
	s.Len(s.recorder.all(), 1)

	// Stopping a timer that never ran records nothing.
	s.SetupTest()
	s.timer.Stop()
	s.Empty(s.recorder.all())
}

func (s *TimerSuite) TestStartWhileRunningIsNoop() {
	s.timer.Start()
	group := s.timer.State().SessionGroupID
	s.timer.Start()
	s.Equal(1, s.sched.activeTickers())
	s.Equal(group, s.timer.State().SessionGroupID)
}

func (s *TimerSuite) TestDurationConservationAcrossPauses() {
	s.Require().NoError(s.timer.SetIndividualMode(model.PhaseBreak))

	for i := 0; i < 3; i++ {
		s.timer.Start()
		s.tick(40)
		s.timer.Stop()
	}
	s.timer.Start()
	s.tick(300 - 120)

	records := s.recorder.all()
	s.Require().Len(records, 4)
	sum := 0
	for _, record := range records {
		s.Equal(records[0].SessionGroupID, record.SessionGroupID)
		s.LessOrEqual(record.Duration, 300)
		sum += record.Duration
	}
	s.Equal(300, sum)
	s.True(records[3].Completed)

	// Individual mode rearms without restarting.
	state := s.timer.State()
	s.Equal(300, state.RemainingSeconds)
	s.False(state.IsRunning)
	s.Equal(0, s.sched.pendingRestarts())
}

func (s *TimerSuite) TestClockJumpIsCapped() {
	s.Require().NoError(s.timer.SetIndividualMode(model.PhaseBreak))
	s.timer.Start()
	s.tick(10)
	s.clock.Advance(5 * time.Hour)
	s.timer.Stop()

	records := s.recorder.all()
	s.Require().Len(records, 1)
	s.Equal(300, records[0].Duration)
	s.False(records[0].Completed)
}

func (s *TimerSuite) TestClockMovingBackwardsRecordsZero() {
	s.timer.Start()
	s.clock.Advance(-time.Minute)
	s.timer.Stop()

	records := s.recorder.all()
	s.Require().Len(records, 1)
	s.Equal(0, records[0].Duration)
}

func (s *TimerSuite) TestCompletionThresholdIsOneSecond() {
	s.Require().NoError(s.timer.SetIndividualMode(model.PhaseBreak))
	s.timer.Start()
	s.tick(299)
	s.timer.Stop()

	records := s.recorder.all()
	s.Require().Len(records, 1)
	s.True(records[0].Completed)
	s.Equal(300, records[0].Duration)
	s.Empty(s.timer.State().SessionGroupID)
}

func (s *TimerSuite) TestRemainingNeverNegative() {
	var observed []int
	unsubscribe := s.timer.Subscribe(func(state State) {
		observed = append(observed, state.RemainingSeconds)
	})
	defer unsubscribe()

	s.Require().NoError(s.timer.SetIndividualMode(model.PhaseBreak))
	s.timer.Start()
	s.tick(300)

	for _, remaining := range observed {
		s.GreaterOrEqual(remaining, 0)
	}
	s.Len(s.recorder.all(), 1)
}

func (s *TimerSuite) TestStaleTickAfterCompletionIsIgnored() {
	s.Require().NoError(s.timer.SetIndividualMode(model.PhaseBreak))
	s.timer.Start()
	ticker := s.sched.active(true)[0]
	s.tick(300)

	ticker.fn()
	s.Len(s.recorder.all(), 1)
	s.Equal(300, s.timer.State().RemainingSeconds)
}

func (s *TimerSuite) TestStopCancelsPendingRestart() {
	s.timer.Start()
	s.tick(1500)
	s.Require().Equal(1, s.sched.pendingRestarts())

	restart := s.sched.active(false)[0]
	s.timer.Stop()
	s.Equal(0, s.sched.pendingRestarts())

	// A callback that slipped through must not act on the new state.
	restart.fn()
	s.False(s.timer.State().IsRunning)
	s.Len(s.recorder.all(), 1)
}

func (s *TimerSuite) TestSetModeDuringRestartWindow() {
	s.timer.Start()
	s.tick(1500)
	restart := s.sched.active(false)[0]

	s.Require().NoError(s.timer.SetMode(model.ModeInfinite))
	restart.fn()

	state := s.timer.State()
	s.False(state.IsRunning)
	s.Equal(0, state.OrderIndex)
	s.Equal(1500, state.RemainingSeconds)
}

func (s *TimerSuite) TestResetReturnsToCycleStart() {
	s.timer.Start()
	s.tick(1500)
	s.sched.runPending()
	s.tick(20)
	s.timer.Reset()

	records := s.recorder.all()
	s.Require().Len(records, 2)
	s.Equal(model.PhaseBreak, records[1].Type)
	s.Equal(20, records[1].Duration)

	state := s.timer.State()
	s.Equal(0, state.OrderIndex)
	s.Equal(1500, state.RemainingSeconds)
	s.Equal(model.ModeInfinite, state.Mode)
	s.False(state.IsRunning)
}

func (s *TimerSuite) TestResetDropsPausedGroup() {
	s.timer.Start()
	s.tick(10)
	s.timer.Stop()
	paused := s.timer.State().SessionGroupID
	s.NotEmpty(paused)

	s.timer.Reset()
	s.timer.Start()
	s.NotEqual(paused, s.timer.State().SessionGroupID)
}

func (s *TimerSuite) TestInvalidArgumentsFailClosed() {
	s.timer.Start()
	s.tick(3)

	err := s.timer.SetMode("forever")
	s.True(errors.Is(err, ErrInvalidMode))
	err = s.timer.SetIndividualMode("nap")
	s.True(errors.Is(err, ErrInvalidPhase))

	state := s.timer.State()
	s.True(state.IsRunning)
	s.Equal(1497, state.RemainingSeconds)
	s.Empty(s.recorder.all())
}

func (s *TimerSuite) TestTotalsByCategory() {
	s.timer.Start()
	s.tick(1500)
	s.sched.runPending()
	s.tick(30)

	totals := s.timer.State().Totals
	s.Equal(1530, totals.TotalSec)
	s.Equal(1500, totals.WorkSec)
	s.Equal(30, totals.RestSec)
}

func (s *TimerSuite) TestSubscribeAndUnsubscribe() {
	var versions []uint64
	unsubscribe := s.timer.Subscribe(func(state State) {
		versions = append(versions, state.Version)
	})

	s.timer.Start()
	s.tick(2)
	unsubscribe()
	unsubscribe()
	s.tick(2)

	s.Equal([]uint64{1, 2, 3}, versions)
}

func (s *TimerSuite) TestEmergencyFlushPreventsDuplicateOnClose() {
	s.timer.Start()
	s.tick(42)

	var saved []model.SessionRecord
	ok := s.timer.EmergencyFlush(func(record model.SessionRecord) error {
		saved = append(saved, record)
		return nil
	})
	s.True(ok)
	s.Require().Len(saved, 1)
	s.Equal(42, saved[0].Duration)
	s.False(saved[0].Completed)

	s.timer.Close()
	s.Empty(s.recorder.all())
	s.False(s.timer.State().IsRunning)
	s.Equal(0, s.sched.activeTickers())

	s.timer.Start()
	s.False(s.timer.State().IsRunning)
}

func (s *TimerSuite) TestEmergencyFlushFreezesTimer() {
	s.timer.Start()
	s.tick(42)
	ticker := s.sched.active(true)[0]

	var saved []model.SessionRecord
	save := func(record model.SessionRecord) error {
		saved = append(saved, record)
		return nil
	}
	s.True(s.timer.EmergencyFlush(save))
	s.Require().Len(saved, 1)
	s.False(s.timer.State().IsRunning)
	s.Equal(0, s.sched.activeTickers())

	// Nothing that runs between the flush and Close records the fragment again.
	ticker.fn()
	s.timer.Stop()
	s.Require().NoError(s.timer.SetIndividualMode(model.PhaseBreak))
	s.timer.Start()
	s.False(s.timer.EmergencyFlush(save))
	s.timer.Close()

	s.Len(saved, 1)
	s.Empty(s.recorder.all())
	s.False(s.timer.State().IsRunning)
}

func (s *TimerSuite) TestEmergencyFlushWhilePausedDoesNothing() {
	s.timer.Start()
	s.tick(5)
	s.timer.Stop()

	called := false
	ok := s.timer.EmergencyFlush(func(model.SessionRecord) error {
		called = true
		return nil
	})
	s.False(ok)
	s.False(called)
}

func (s *TimerSuite) TestFailedEmergencyFlushFallsBackToClose() {
	s.timer.Start()
	s.tick(7)

	ok := s.timer.EmergencyFlush(func(model.SessionRecord) error {
		return errors.New("disk full")
	})
	s.False(ok)

	s.timer.Close()
	records := s.recorder.all()
	s.Require().Len(records, 1)
	s.Equal(7, records[0].Duration)
}

func TestCloseWithoutRecorder(t *testing.T) {
	clock := newFakeClock()
	tm := New(Options{Clock: clock, Scheduler: &fakeScheduler{}})
	tm.Start()
	clock.Advance(3 * time.Second)
	require.NotPanics(t, tm.Close)
	assert.False(t, tm.State().IsRunning)
}

func TestListenersSeeVersionsInOrder(t *testing.T) {
	tm := New(Options{Clock: newFakeClock(), Scheduler: inertScheduler{}})

	var mu sync.Mutex
	var versions []uint64
	unsubscribe := tm.Subscribe(func(state State) {
		mu.Lock()
		versions = append(versions, state.Version)
		mu.Unlock()
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				tm.Start()
				tm.Stop()
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, versions)
	assert.Equal(t, uint64(1), versions[0])
	for i := 1; i < len(versions); i++ {
		require.Equal(t, versions[i-1]+1, versions[i], "delivery %d out of order", i)
	}
	assert.Equal(t, tm.State().Version, versions[len(versions)-1])
}
