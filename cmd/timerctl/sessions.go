package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"pomodoro/timer/internal/stats"
)

func historyCmd(newClient clientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recent session fragments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			sessions, err := newClient().History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded yet.")
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Started", "Type", "Duration", "Completed", "Group"})
			table.SetBorder(false)
			for _, s := range sessions {
				group := s.SessionGroupID
				if len(group) > 8 {
					group = group[:8]
				}
				table.Append([]string{
					s.StartedAt.Local().Format(time.DateTime),
					string(s.Type),
					stats.FormatSeconds(s.Duration),
					strconv.FormatBool(s.Completed),
					group,
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of fragments")
	return cmd
}

func statsCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show weekly insights, streak and achievements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := newClient().Stats(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			in := view.Insights

			fmt.Fprintf(w, "This week:  %s work, %s rest (%s work)\n",
				stats.FormatSeconds(in.WeekWork), stats.FormatSeconds(in.WeekRest), stats.FormatPercentage(in.WeekWorkPct))
			fmt.Fprintf(w, "Last week:  %s work (change %s)\n",
				stats.FormatSeconds(in.PrevWeekWork), stats.FormatPercentage(in.WeekWorkChangePct))
			if in.BestDay != "" {
				fmt.Fprintf(w, "Best day:   %s with %d pomodoros\n", in.BestDay, in.BestDayCompleted)
			}
			streak := fmt.Sprintf("%d days", in.Streak)
			if in.StreakAtRisk {
				streak += " (finish a pomodoro today to keep it)"
			}
			fmt.Fprintf(w, "Streak:     %s\n", streak)

			totals := view.Achievements.Totals
			fmt.Fprintf(w, "\nTotal focus %s, %d pomodoros completed\n",
				stats.FormatSeconds(totals.TotalWorkSec), totals.CompletedPomodoros)

			table := tablewriter.NewWriter(w)
			table.SetHeader([]string{"Achievement", "Progress", "Earned"})
			table.SetBorder(false)
			groups := [][]stats.Milestone{view.Achievements.Focus, view.Achievements.Pomodoro, view.Achievements.Streak}
			for _, group := range groups {
				for _, m := range group {
					table.Append([]string{m.Title, stats.FormatPercentage(m.ProgressPct), strconv.FormatBool(m.Earned)})
				}
			}
			table.Render()

			if next := view.Achievements.NextStreak; next != nil {
				fmt.Fprintf(w, "Next streak milestone: %s in %d days\n", next.Title, next.Remaining)
			}
			return nil
		},
	}
}
