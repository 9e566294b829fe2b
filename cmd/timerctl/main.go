package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pomodoro/timer/internal/client"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetDefault("server", "http://localhost:8080")
	_ = v.BindEnv("server", "TIMER_SERVER")
	_ = v.BindEnv("token", "TIMER_TOKEN")

	rootCmd := &cobra.Command{
		Use:           "timerctl",
		Short:         "Control the pomodoro timer daemon",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("server", "", "Daemon base URL (env TIMER_SERVER)")
	rootCmd.PersistentFlags().String("token", "", "Bearer token (env TIMER_TOKEN)")
	_ = v.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = v.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))

	newClient := func() *client.Client {
		return client.New(v.GetString("server"), v.GetString("token"))
	}

	rootCmd.AddCommand(
		statusCmd(newClient),
		startCmd(newClient),
		stopCmd(newClient),
		resetCmd(newClient),
		modeCmd(newClient),
		phaseCmd(newClient),
		historyCmd(newClient),
		statsCmd(newClient),
		tasksCmd(newClient),
		loginCmd(newClient),
		hashPasswordCmd(),
	)
	return rootCmd
}
