package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jiralite/jl/internal/models"
	"github.com/jiralite/jl/internal/projector"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show issue counts and completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		projectID, _ := cmd.Flags().GetInt64("project")
		offline, _ := cmd.Flags().GetBool("offline")
		if err := loadIssues(a, cmd, projectID, offline); err != nil {
			return err
		}

		spec := projector.FilterSpec{ProjectID: projectID}
		spec = spec.WithProjects(a.coord.Store().Projects(nil))
		view := projector.Dashboard(a.coord.Store().Issues(nil), spec)

		fmt.Printf("Issues: %d\n\n", view.Total)
		fmt.Println("By status")
		for _, status := range models.AllStatuses() {
			fmt.Printf("  %-12s %d\n", models.StatusLabel(status), view.ByStatus[status])
		}
		fmt.Println("\nBy priority")
		for _, p := range []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
			fmt.Printf("  %-12s %d\n", p, view.ByPriority[p])
		}
		fmt.Printf("\nCompletion: %.0f%%\n", view.CompletionRatio*100)
		return nil
	},
}

func init() {
	dashboardCmd.Flags().Int64("project", 0, "Only issues of this project")
	dashboardCmd.Flags().Bool("offline", false, "Read the cached snapshot instead of the server")
	rootCmd.AddCommand(dashboardCmd)
}
