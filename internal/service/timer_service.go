package service

import (
	"errors"
	"time"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/timer"
)

// TimerService exposes the process timer to the API.
type TimerService struct {
	timer *timer.Timer
}

type StateView struct {
	timer.State
	ServerTime time.Time `json:"serverTime"`
}

func NewTimerService(t *timer.Timer) *TimerService {
	return &TimerService{timer: t}
}

func (s *TimerService) GetState() StateView {
	return toStateView(s.timer.State())
}

func (s *TimerService) Start() StateView {
	s.timer.Start()
	return s.GetState()
}

func (s *TimerService) Stop() StateView {
	s.timer.Stop()
	return s.GetState()
}

func (s *TimerService) Reset() StateView {
	s.timer.Reset()
	return s.GetState()
}

func (s *TimerService) SetMode(mode string) (StateView, *apperrors.APIError) {
	if err := s.timer.SetMode(model.TimerMode(mode)); err != nil {
		return StateView{}, mapTimerError(err)
	}
	return s.GetState(), nil
}

func (s *TimerService) SetPhase(phase string) (StateView, *apperrors.APIError) {
	if err := s.timer.SetIndividualMode(model.PhaseType(phase)); err != nil {
		return StateView{}, mapTimerError(err)
	}
	return s.GetState(), nil
}

// Subscribe forwards every state change as a view until unsubscribe is called.
func (s *TimerService) Subscribe(fn func(StateView)) (unsubscribe func()) {
	return s.timer.Subscribe(func(state timer.State) {
		fn(toStateView(state))
	})
}

func toStateView(state timer.State) StateView {
	return StateView{State: state, ServerTime: time.Now().UTC()}
}

func mapTimerError(err error) *apperrors.APIError {
	switch {
	case errors.Is(err, timer.ErrInvalidMode):
		return apperrors.BadRequest("invalid_mode", "mode must be infinite or individually")
	case errors.Is(err, timer.ErrInvalidPhase):
		return apperrors.BadRequest("invalid_phase", "phase must be work, break or longBreak")
	default:
		return apperrors.Internal("")
	}
}
