package stats

import (
	"time"

	"github.com/jinzhu/now"
)

// MaxStreak bounds the streak walk to ten years and a day.
const MaxStreak = 3651

type Insights struct {
	Streak            int     `json:"streak"`
	StreakAtRisk      bool    `json:"streakAtRisk"`
	WeekWork          int     `json:"weekWork"`
	WeekRest          int     `json:"weekRest"`
	WeekTotal         int     `json:"weekTotal"`
	WeekWorkPct       float64 `json:"weekWorkPct"`
	WeekWorkChange    int     `json:"weekWorkChange"`
	WeekWorkChangePct float64 `json:"weekWorkChangePct"`
	PrevWeekWork      int     `json:"prevWeekWork"`
	BestDay           string  `json:"bestDay,omitempty"`
	BestDayCompleted  int     `json:"bestDayCompleted"`
}

var isoWeek = &now.Config{WeekStartDay: time.Monday}

// ComputeInsights summarises the ISO week containing today and the streak of
// consecutive days with at least one completed work phase. Days are matched by
// calendar date in the location of today.
func ComputeInsights(daily []Day, today time.Time) Insights {
	if len(daily) == 0 {
		return Insights{}
	}

	weekStart := isoWeek.With(today).BeginningOfWeek()
	weekStartKey := weekStart.Format(dateKeyLayout)
	nextWeekKey := weekStart.AddDate(0, 0, 7).Format(dateKeyLayout)
	prevWeekKey := weekStart.AddDate(0, 0, -7).Format(dateKeyLayout)

	var out Insights
	worked := make(map[string]bool)
	for _, day := range daily {
		if day.Completed > 0 {
			worked[day.Key] = true
		}
		switch {
		case day.Key >= weekStartKey && day.Key < nextWeekKey:
			if day.Completed > out.BestDayCompleted {
				out.BestDayCompleted = day.Completed
				out.BestDay = day.Key
			}
			out.WeekWork += day.Work
			out.WeekRest += day.Rest
		case day.Key >= prevWeekKey && day.Key < weekStartKey:
			out.PrevWeekWork += day.Work
		}
	}

	// Noon keeps AddDate clear of DST gaps at midnight.
	y, m, d := today.Date()
	cursor := time.Date(y, m, d, 12, 0, 0, 0, today.Location())
	workedToday := worked[cursor.Format(dateKeyLayout)]
	if !workedToday {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for out.Streak < MaxStreak && worked[cursor.Format(dateKeyLayout)] {
		out.Streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	out.StreakAtRisk = !workedToday && out.Streak > 0

	out.WeekTotal = out.WeekWork + out.WeekRest
	if out.WeekTotal > 0 {
		out.WeekWorkPct = float64(out.WeekWork) / float64(out.WeekTotal) * 100
	}
	out.WeekWorkChange = out.WeekWork - out.PrevWeekWork
	switch {
	case out.PrevWeekWork > 0:
		out.WeekWorkChangePct = float64(out.WeekWorkChange) / float64(out.PrevWeekWork) * 100
	case out.WeekWork > 0:
		out.WeekWorkChangePct = 100
	}
	return out
}
