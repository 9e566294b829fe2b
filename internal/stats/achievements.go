package stats

import "pomodoro/timer/internal/model"

type Milestone struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Threshold   int     `json:"threshold"`
	Earned      bool    `json:"earned"`
	ProgressPct float64 `json:"progressPct"`
	Remaining   int     `json:"remaining"`
}

type milestoneDef struct {
	id        string
	title     string
	threshold int
}

// Focus thresholds are seconds of recorded work.
var focusDefs = []milestoneDef{
	{"getting-started", "Getting started", 25 * 60},
	{"warming-up", "Warming up", 2 * 60 * 60},
	{"focused-learner", "Focused learner", 10 * 60 * 60},
	{"consistency-master", "Consistency master", 25 * 60 * 60},
	{"zen-mode", "Zen mode", 50 * 60 * 60},
	{"elite-worker", "Elite worker", 100 * 60 * 60},
}

var pomodoroDefs = []milestoneDef{
	{"pomo-1", "First pomodoro", 1},
	{"pomo-10", "Double digits", 10},
	{"pomo-25", "Pomodoro apprentice", 25},
	{"pomo-50", "Focused worker", 50},
	{"pomo-100", "Centurion", 100},
	{"pomo-250", "Deep work devotee", 250},
	{"pomo-500", "Time alchemist", 500},
	{"pomo-1000", "Pomodoro legend", 1000},
}

var streakDefs = []milestoneDef{
	{"streak-2", "Building momentum", 2},
	{"streak-5", "Consistent performer", 5},
	{"streak-7", "One week streak", 7},
	{"streak-14", "Two strong weeks", 14},
	{"streak-30", "Habit master", 30},
}

type Totals struct {
	TotalWorkSec       int `json:"totalWorkSec"`
	CompletedPomodoros int `json:"completedPomodoros"`
	StreakDays         int `json:"streakDays"`
}

type Achievements struct {
	Totals     Totals      `json:"totals"`
	Focus      []Milestone `json:"focus"`
	Pomodoro   []Milestone `json:"pomodoro"`
	Streak     []Milestone `json:"streak"`
	NextStreak *Milestone  `json:"nextStreak"`
}

func ComputeAchievements(records []model.SessionRecord, streakDays int) Achievements {
	totals := Totals{StreakDays: streakDays}
	for _, record := range records {
		if !record.Type.IsWork() {
			continue
		}
		totals.TotalWorkSec += record.Duration
		if record.Completed {
			totals.CompletedPomodoros++
		}
	}

	out := Achievements{
		Totals:   totals,
		Focus:    milestones(focusDefs, totals.TotalWorkSec),
		Pomodoro: milestones(pomodoroDefs, totals.CompletedPomodoros),
		Streak:   milestones(streakDefs, streakDays),
	}
	for i := range out.Streak {
		if !out.Streak[i].Earned {
			next := out.Streak[i]
			out.NextStreak = &next
			break
		}
	}
	return out
}

func milestones(defs []milestoneDef, value int) []Milestone {
	out := make([]Milestone, 0, len(defs))
	for _, def := range defs {
		out = append(out, Milestone{
			ID:          def.id,
			Title:       def.title,
			Threshold:   def.threshold,
			Earned:      value >= def.threshold,
			ProgressPct: min(100, float64(value)/float64(def.threshold)*100),
			Remaining:   max(0, def.threshold-value),
		})
	}
	return out
}
