// Package stats derives daily aggregates, weekly insights and achievements
// from stored session records. Everything here is pure.
package stats

import (
	"sort"
	"time"

	"pomodoro/timer/internal/model"
)

const DaySeconds = 24 * 60 * 60

const dateKeyLayout = "2006-01-02"

type Day struct {
	Key            string    `json:"dateKey"`
	Date           time.Time `json:"date"`
	Work           int       `json:"work"`
	Rest           int       `json:"rest"`
	Recorded       int       `json:"recorded"`
	Idle           int       `json:"idle"`
	Completed      int       `json:"completed"`
	WorkPercentage float64   `json:"workPercentage"`
}

// Daily buckets records by the local calendar day they started on and
// returns the days in chronological order.
func Daily(records []model.SessionRecord, loc *time.Location) []Day {
	if loc == nil {
		loc = time.Local
	}
	byKey := make(map[string]*Day)
	for _, record := range records {
		started := record.StartedAt.In(loc)
		key := started.Format(dateKeyLayout)
		day, ok := byKey[key]
		if !ok {
			y, m, d := started.Date()
			day = &Day{Key: key, Date: time.Date(y, m, d, 0, 0, 0, 0, loc)}
			byKey[key] = day
		}
		if record.Type.IsWork() {
			day.Work += record.Duration
			if record.Completed {
				day.Completed++
			}
		} else {
			day.Rest += record.Duration
		}
	}

	days := make([]Day, 0, len(byKey))
	for _, day := range byKey {
		day.Recorded = day.Work + day.Rest
		day.Idle = max(0, DaySeconds-day.Recorded)
		day.WorkPercentage = float64(day.Work) / DaySeconds * 100
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Key < days[j].Key })
	return days
}
