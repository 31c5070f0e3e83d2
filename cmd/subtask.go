package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jiralite/jl/internal/output"
)

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage subtasks",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <issue-id> <title>",
	Short: "Add a subtask to an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		issueID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid issue id %q", args[0])
		}

		if err := a.coord.RefreshIssues(cmd.Context(), 0); err != nil {
			return fmt.Errorf("fetch issues: %w", err)
		}
		if err := <-a.coord.CreateSubtask(cmd.Context(), issueID, args[1]); err != nil {
			return fmt.Errorf("add subtask: %w", err)
		}
		output.Success("Added subtask to issue #%d", issueID)
		return nil
	},
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle <issue-id> <subtask-id>",
	Short: "Toggle a subtask's completion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		issueID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid issue id %q", args[0])
		}
		subtaskID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid subtask id %q", args[1])
		}

		if err := a.coord.RefreshIssues(cmd.Context(), 0); err != nil {
			return fmt.Errorf("fetch issues: %w", err)
		}
		if err := <-a.coord.ToggleSubtask(cmd.Context(), issueID, subtaskID); err != nil {
			return fmt.Errorf("toggle subtask: %w", err)
		}

		issue, ok := a.coord.Store().Issue(issueID)
		if ok {
			output.Success("Issue #%d: %s", issueID, output.Progress(issue.Subtasks))
		} else {
			output.Success("Toggled subtask %d", subtaskID)
		}
		return nil
	},
}

func init() {
	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskToggleCmd)
	rootCmd.AddCommand(subtaskCmd)
}
