package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pomodoro/timer/internal/client"
	"pomodoro/timer/internal/model"
	"pomodoro/timer/internal/schedule"
	"pomodoro/timer/internal/service"
	"pomodoro/timer/internal/stats"
)

type clientFactory func() *client.Client

func statusCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current phase and remaining time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := newClient().State(cmd.Context())
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func startCmd(newClient clientFactory) *cobra.Command {
	return stateAction("start", "Start or resume the current phase", (*client.Client).Start, newClient)
}

func stopCmd(newClient clientFactory) *cobra.Command {
	return stateAction("stop", "Pause the current phase", (*client.Client).Stop, newClient)
}

func resetCmd(newClient clientFactory) *cobra.Command {
	return stateAction("reset", "Return to the first work phase of the cycle", (*client.Client).Reset, newClient)
}

func modeCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:       "mode <infinite|individually>",
		Short:     "Switch between cycling and single-phase mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"infinite", "individually"},
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := newClient().SetMode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func phaseCmd(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:       "phase <work|break|longBreak>",
		Short:     "Select a single phase to run on its own",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"work", "break", "longBreak"},
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := newClient().SetPhase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

type stateFunc func(*client.Client, context.Context) (*service.StateView, error)

func stateAction(use, short string, action stateFunc, newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := action(newClient(), cmd.Context())
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func printState(w io.Writer, state *service.StateView) {
	status := "paused"
	if state.IsRunning {
		status = "running"
	}
	remaining := fmt.Sprintf("%02d:%02d", state.RemainingSeconds/60, state.RemainingSeconds%60)
	fmt.Fprintf(w, "%-10s %s  %s\n", state.Phase, remaining, status)
	if state.Mode == model.ModeInfinite {
		fmt.Fprintf(w, "mode:      infinite (phase %d of %d)\n", state.OrderIndex+1, schedule.CycleLength)
	} else {
		fmt.Fprintf(w, "mode:      individually\n")
	}
	fmt.Fprintf(w, "uptime:    %s work, %s rest\n",
		stats.FormatSeconds(state.Totals.WorkSec), stats.FormatSeconds(state.Totals.RestSec))
}
