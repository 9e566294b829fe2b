package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "pomodoro/timer/internal/errors"
	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/repository"
	"pomodoro/timer/internal/stats"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

type SessionService struct {
	repo *repository.SessionRepository
	loc  *time.Location
	now  func() time.Time
}

func NewSessionService(repo *repository.SessionRepository, loc *time.Location) *SessionService {
	if loc == nil {
		loc = time.Local
	}
	return &SessionService{repo: repo, loc: loc, now: time.Now}
}

type StatsView struct {
	Days         []stats.Day        `json:"days"`
	Insights     stats.Insights     `json:"insights"`
	Achievements stats.Achievements `json:"achievements"`
}

func (s *SessionService) History(ctx context.Context, limit int) ([]model.SessionRecord, *apperrors.APIError) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	records, err := s.repo.ListRecentSessions(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list sessions")
		return nil, apperrors.Internal("failed to list sessions")
	}
	return records, nil
}

func (s *SessionService) Group(ctx context.Context, groupID string) ([]model.SessionRecord, *apperrors.APIError) {
	records, err := s.repo.ListSessionGroup(ctx, groupID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("group_not_found", "session group not found")
	}
	if err != nil {
		log.Error().Err(err).Str("sessionGroupId", groupID).Msg("Failed to list session group")
		return nil, apperrors.Internal("failed to list session group")
	}
	return records, nil
}

func (s *SessionService) Stats(ctx context.Context) (*StatsView, *apperrors.APIError) {
	records, err := s.repo.ListSessions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load sessions for stats")
		return nil, apperrors.Internal("failed to compute stats")
	}

	days := stats.Daily(records, s.loc)
	insights := stats.ComputeInsights(days, s.now().In(s.loc))
	return &StatsView{
		Days:         days,
		Insights:     insights,
		Achievements: stats.ComputeAchievements(records, insights.Streak),
	}, nil
}
