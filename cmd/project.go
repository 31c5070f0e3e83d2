package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jiralite/jl/internal/gateway"
	"github.com/jiralite/jl/internal/models"
	"github.com/jiralite/jl/internal/output"
	"github.com/jiralite/jl/internal/suggest"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		teamID, _ := cmd.Flags().GetInt64("team")
		archived, _ := cmd.Flags().GetBool("archived")
		favorites, _ := cmd.Flags().GetBool("favorites")

		projects, err := a.gw.ListProjects(cmd.Context(), teamID)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}

		shown := 0
		fmt.Printf("%-6s  %-24s  %-6s  %s\n", "ID", "NAME", "TEAM", "FLAGS")
		for _, p := range projects {
			if p.IsArchived != archived {
				continue
			}
			if favorites && !p.IsFavorite {
				continue
			}
			flags := ""
			if p.IsFavorite {
				flags += "★"
			}
			if p.IsArchived {
				flags += " archived"
			}
			fmt.Printf("%-6d  %-24s  %-6d  %s\n", p.ID, p.Name, p.TeamID, flags)
			shown++
		}
		if shown == 0 {
			output.Muted("no matching projects")
		}
		return nil
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		teamID, _ := cmd.Flags().GetInt64("team")
		description, _ := cmd.Flags().GetString("description")

		_, out := a.coord.CreateProject(cmd.Context(), gateway.ProjectCreate{
			Name:        args[0],
			Description: description,
			TeamID:      teamID,
		})
		res := <-out
		if res.Err != nil {
			return fmt.Errorf("create project: %w", res.Err)
		}
		output.Success("Created project %s (id %d)", res.Project.Name, res.Project.ID)
		return nil
	},
}

// projectFlagCmd builds the archive/unarchive/favorite/unfavorite
// commands, which differ only in verb and coordinator call.
func projectFlagCmd(use, short, done string, op func(*app, context.Context, int64) <-chan error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project-id>",
		Short: short,
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
				return fmt.Errorf("invalid project id %q", args[0])
			}
			if err := a.coord.RefreshProjects(cmd.Context(), 0); err != nil {
				return fmt.Errorf("fetch projects: %w", err)
			}
			if err := <-op(a, cmd.Context(), id); err != nil {
				return fmt.Errorf("%s project: %w", use, err)
			}
			output.Success("%s project %d", done, id)
			return nil
		},
	}
}

// resolveProject maps a user-supplied project argument (decimal id or
// name, possibly misspelled) to a project id.
func resolveProject(ctx context.Context, a *app, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}
	projects, err := a.gw.ListProjects(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}
	candidates := make([]suggest.Candidate, 0, len(projects))
	for _, p := range projects {
		candidates = append(candidates, suggest.Candidate{ID: p.ID, Name: p.Name})
	}
	match, err := suggest.Resolve(arg, "project", candidates)
	if err != nil {
		return 0, err
	}
	return match.ID, nil
}

// resolveAssignee maps an assignee argument (id or name) to a user id,
// matching against the members of the project's team.
func resolveAssignee(ctx context.Context, a *app, projectID int64, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}
	projects, err := a.gw.ListProjects(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}
	var project *models.Project
	for i := range projects {
		if projects[i].ID == projectID {
			project = &projects[i]
			break
		}
	}
	if project == nil {
		return 0, fmt.Errorf("project %d not found", projectID)
	}
	detail, err := a.gw.GetTeam(ctx, project.TeamID)
	if err != nil {
		return 0, fmt.Errorf("fetch team: %w", err)
	}
	candidates := make([]suggest.Candidate, 0, len(detail.Members))
	for _, m := range detail.Members {
		candidates = append(candidates, suggest.Candidate{ID: m.UserID, Name: m.UserName})
	}
	match, err := suggest.Resolve(arg, "assignee", candidates)
	if err != nil {
		return 0, err
	}
	return match.ID, nil
}

func init() {
	projectListCmd.Flags().Int64("team", 0, "Only projects of this team")
	projectListCmd.Flags().Bool("archived", false, "Show archived projects instead of active ones")
	projectListCmd.Flags().Bool("favorites", false, "Only favorite projects")
	projectCreateCmd.Flags().Int64("team", 0, "Team owning the project")
	projectCreateCmd.Flags().String("description", "", "Project description")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectFlagCmd("archive", "Archive a project", "Archived",
		func(a *app, ctx context.Context, id int64) <-chan error { return a.coord.ArchiveProject(ctx, id) }))
	projectCmd.AddCommand(projectFlagCmd("unarchive", "Unarchive a project", "Unarchived",
		func(a *app, ctx context.Context, id int64) <-chan error { return a.coord.UnarchiveProject(ctx, id) }))
	projectCmd.AddCommand(projectFlagCmd("favorite", "Mark a project as favorite", "Favorited",
		func(a *app, ctx context.Context, id int64) <-chan error { return a.coord.FavoriteProject(ctx, id) }))
	projectCmd.AddCommand(projectFlagCmd("unfavorite", "Remove a project from favorites", "Unfavorited",
		func(a *app, ctx context.Context, id int64) <-chan error { return a.coord.UnfavoriteProject(ctx, id) }))
	rootCmd.AddCommand(projectCmd)
}
