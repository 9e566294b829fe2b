// Package schedule holds the fixed Pomodoro cycle and the per-phase durations.
package schedule

import "pomodoro/timer/internal/model"

const (
	WorkSeconds      = 25 * 60
	BreakSeconds     = 5 * 60
	LongBreakSeconds = 30 * 60
)

// CycleLength is the number of slots in the infinite-mode cycle.
const CycleLength = 8

var cycle = [CycleLength]model.PhaseType{
	model.PhaseWork,
	model.PhaseBreak,
	model.PhaseWork,
	model.PhaseBreak,
	model.PhaseWork,
	model.PhaseBreak,
	model.PhaseWork,
	model.PhaseLongBreak,
}

func normalize(orderIndex int) int {
	return ((orderIndex % CycleLength) + CycleLength) % CycleLength
}

// PhaseTypeForOrderIndex returns the phase type of a cycle slot. Out-of-range
// indexes wrap around the cycle.
func PhaseTypeForOrderIndex(orderIndex int) model.PhaseType {
	return cycle[normalize(orderIndex)]
}

// SecondsForPhase returns the planned duration of a manually selected phase.
func SecondsForPhase(phase model.PhaseType) int {
	switch phase {
	case model.PhaseBreak:
		return BreakSeconds
	case model.PhaseLongBreak:
		return LongBreakSeconds
	default:
		return WorkSeconds
	}
}

func SecondsForOrderIndex(orderIndex int) int {
	return SecondsForPhase(PhaseTypeForOrderIndex(orderIndex))
}

func NextOrderIndex(orderIndex int) int {
	return normalize(orderIndex + 1)
}

// PlannedSeconds returns the duration of the phase selected by the timer
// configuration: the cycle slot in infinite mode, the pinned phase otherwise.
func PlannedSeconds(mode model.TimerMode, individualMode model.PhaseType, orderIndex int) int {
	if mode == model.ModeIndividually {
		return SecondsForPhase(individualMode)
	}
	return SecondsForOrderIndex(orderIndex)
}

// CurrentPhase mirrors PlannedSeconds for the phase type.
func CurrentPhase(mode model.TimerMode, individualMode model.PhaseType, orderIndex int) model.PhaseType {
	if mode == model.ModeIndividually {
		return individualMode
	}
	return PhaseTypeForOrderIndex(orderIndex)
}
