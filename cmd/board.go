package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jiralite/jl/pkg/board"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive kanban board",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		var projectID int64
		if arg, _ := cmd.Flags().GetString("project"); arg != "" {
			projectID, err = resolveProject(cmd.Context(), a, arg)
			if err != nil {
				return err
			}
		}

		if err := a.coord.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("refresh: %w", err)
		}

		program := tea.NewProgram(board.New(a.coord, projectID), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("board: %w", err)
		}
		return nil
	},
}

func init() {
	boardCmd.Flags().String("project", "", "Project id or name to scope the board")
	rootCmd.AddCommand(boardCmd)
}
