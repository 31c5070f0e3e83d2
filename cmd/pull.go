package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jiralite/jl/internal/output"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch everything and snapshot it for offline use",
	Long: `Fetches teams, projects, issues and notifications into the local
store and writes the snapshot cache that --offline listings read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		if err := a.coord.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("refresh: %w", err)
		}

		c, err := a.openCache()
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer c.Close()
		if err := c.Snapshot(a.coord.Store()); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}

		st := a.coord.Store()
		output.Success("Pulled %d teams, %d projects, %d issues, %d notifications",
			len(st.Teams()), len(st.Projects(nil)), len(st.Issues(nil)), len(st.Notifications()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
