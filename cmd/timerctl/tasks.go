package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pomodoro/timer/internal/model"
)

func tasksCmd(newClient clientFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage the task list",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks with their subtasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := newClient().Tasks(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(w, "No tasks.")
				return nil
			}
			for _, group := range groups {
				fmt.Fprintf(w, "%s %s  %s\n", statusMark(group.Status), group.Name, group.ID)
				for _, sub := range group.Subtasks {
					fmt.Fprintf(w, "    %s %s  %s\n", statusMark(sub.Status), sub.Name, sub.ID)
				}
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <name...>",
		Short: "Add a task, optionally under a parent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parentID *string
			if parent, _ := cmd.Flags().GetString("parent"); parent != "" {
				parentID = &parent
			}
			task, err := newClient().CreateTask(cmd.Context(), strings.Join(args, " "), parentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", task.ID)
			return nil
		},
	}
	add.Flags().StringP("parent", "p", "", "Parent task id")

	advance := &cobra.Command{
		Use:   "advance <id>",
		Short: "Move a task to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := newClient().AdvanceTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", task.Name, task.Status)
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> <name...>",
		Short: "Rename a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := newClient().RenameTask(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", task.Name)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its subtasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}

	cmd.AddCommand(list, add, advance, rename, rm)
	return cmd
}

func statusMark(status model.TaskStatus) string {
	switch status {
	case model.TaskDoing:
		return "[~]"
	case model.TaskDone:
		return "[x]"
	default:
		return "[ ]"
	}
}
