package model

import "time"

type TimerMode string

const (
	ModeInfinite     TimerMode = "infinite"
	ModeIndividually TimerMode = "individually"
)

func (m TimerMode) Valid() bool {
	return m == ModeInfinite || m == ModeIndividually
}

type PhaseType string

const (
	PhaseWork      PhaseType = "work"
	PhaseBreak     PhaseType = "break"
	PhaseLongBreak PhaseType = "longBreak"
)

func (p PhaseType) Valid() bool {
	return p == PhaseWork || p == PhaseBreak || p == PhaseLongBreak
}

// IsWork reports whether time spent in the phase counts as focus time.
func (p PhaseType) IsWork() bool {
	return p == PhaseWork
}

// SessionRecord is one persisted fragment of a phase instance. Fragments of the
// same instance share SessionGroupID. Records are append-only.
type SessionRecord struct {
	ID             string    `json:"id"`
	SessionGroupID string    `json:"sessionGroupId"`
	Type           PhaseType `json:"type"`
	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt"`
	Duration       int       `json:"duration"`
	Completed      bool      `json:"completed"`
}
