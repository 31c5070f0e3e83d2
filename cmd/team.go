package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jiralite/jl/internal/output"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams",
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		teams, err := a.gw.ListTeams(cmd.Context())
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		if len(teams) == 0 {
			fmt.Println("No teams.")
			return nil
		}
		fmt.Printf("%-6s  %-24s  %s\n", "ID", "NAME", "CREATED")
		for _, team := range teams {
			fmt.Printf("%-6d  %-24s  %s\n", team.ID, team.Name, team.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var teamCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		_, out := a.coord.CreateTeam(cmd.Context(), args[0])
		res := <-out
		if res.Err != nil {
			return fmt.Errorf("create team: %w", res.Err)
		}
		output.Success("Created team %s (id %d)", res.Team.Name, res.Team.ID)
		return nil
	},
}

var teamShowCmd = &cobra.Command{
	Use:   "show <team-id>",
	Short: "Show a team and its members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid team id %q", args[0])
		}

		detail, err := a.gw.GetTeam(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetch team: %w", err)
		}

		fmt.Printf("%s (id %d)\n", detail.Name, detail.ID)
		if len(detail.Members) == 0 {
			output.Muted("no members")
			return nil
		}
		fmt.Printf("%-6s  %-24s  %s\n", "ID", "NAME", "ROLE")
		for _, m := range detail.Members {
			fmt.Printf("%-6d  %-24s  %s\n", m.UserID, m.UserName, m.Role)
		}
		return nil
	},
}

func init() {
	teamCmd.AddCommand(teamListCmd)
	teamCmd.AddCommand(teamCreateCmd)
	teamCmd.AddCommand(teamShowCmd)
	rootCmd.AddCommand(teamCmd)
}
