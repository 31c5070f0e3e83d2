package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jiralite/jl/internal/gateway"
	"github.com/jiralite/jl/internal/models"
	"github.com/jiralite/jl/internal/output"
	"github.com/jiralite/jl/internal/projector"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage issues",
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues",
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

		status, _ := cmd.Flags().GetString("status")
		priority, _ := cmd.Flags().GetString("priority")
		assigneeID, _ := cmd.Flags().GetInt64("assignee")
		query, _ := cmd.Flags().GetString("query")

		spec := projector.FilterSpec{
			Query:      query,
			AssigneeID: assigneeID,
			Status:     models.Status(status),
			Priority:   models.Priority(priority),
			ProjectID:  projectID,
		}
		spec = spec.WithProjects(a.coord.Store().Projects(nil))
		view := projector.List(a.coord.Store().Issues(nil), spec)

		if len(view.Issues) == 0 {
			output.Muted("no matching issues")
			return nil
		}
		fmt.Printf("%-6s  %-40s  %-12s  %-7s  %s\n", "ID", "TITLE", "STATUS", "PRIO", "SUBTASKS")
		for _, issue := range view.Issues {
			fmt.Printf("%-6d  %-40s  %-12s  %-7s  %s\n",
				issue.ID, truncate(issue.Title, 40), issue.Status, issue.Priority,
				output.Progress(issue.Subtasks))
		}
		return nil
	},
}

// loadIssues fills the store, from the remote or from the snapshot
// cache. An unreachable remote falls back to the cache with a warning.
func loadIssues(a *app, cmd *cobra.Command, projectID int64, offline bool) error {
	if offline {
		return loadFromCache(a)
	}
	err := a.coord.Refresh(cmd.Context())
	if err == nil {
		return nil
	}
	if gateway.IsRetryable(err) {
		output.Warn("remote unreachable, using cached snapshot")
		return loadFromCache(a)
	}
	return fmt.Errorf("refresh: %w", err)
}

func loadFromCache(a *app) error {
	c, err := a.openCache()
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer c.Close()
	if err := c.Load(a.coord.Store()); err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	if when, err := c.SavedAt(); err == nil && !when.IsZero() {
		output.Muted("snapshot from %s", when.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

var issueCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create an issue",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		payload := gateway.IssueCreate{}
		if len(args) == 1 {
			payload.Title = args[0]
		}
		projectArg, _ := cmd.Flags().GetString("project")
		payload.Description, _ = cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		payload.Priority = models.Priority(priority)
		payload.DueDate, _ = cmd.Flags().GetString("due")
		assigneeArg, _ := cmd.Flags().GetString("assignee")

		if projectArg != "" {
			payload.ProjectID, err = resolveProject(cmd.Context(), a, projectArg)
			if err != nil {
				return err
			}
		}

		if payload.Title == "" || payload.ProjectID == 0 {
			if err := runIssueForm(a, cmd, &payload); err != nil {
				return err
			}
		}

		if assigneeArg != "" {
			payload.AssigneeID, err = resolveAssignee(cmd.Context(), a, payload.ProjectID, assigneeArg)
			if err != nil {
				return err
			}
		}

		_, out := a.coord.CreateIssue(cmd.Context(), payload)
		res := <-out
		if res.Err != nil {
			return fmt.Errorf("create issue: %w", res.Err)
		}
		output.Success("Created issue #%d %s", res.Issue.ID, res.Issue.Title)
		return nil
	},
}

// runIssueForm fills the missing creation fields interactively.
func runIssueForm(a *app, cmd *cobra.Command, payload *gateway.IssueCreate) error {
	projects, err := a.gw.ListProjects(cmd.Context(), 0)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	var projectOpts []huh.Option[int64]
	for _, p := range projects {
		if !p.IsArchived {
			projectOpts = append(projectOpts, huh.NewOption(p.Name, p.ID))
		}
	}
	if len(projectOpts) == 0 {
		return fmt.Errorf("no active projects; create one first")
	}

	priority := string(payload.Priority)
	if priority == "" {
		priority = string(models.PriorityMedium)
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Title").Value(&payload.Title),
		huh.NewText().Title("Description").Value(&payload.Description),
		huh.NewSelect[int64]().Title("Project").Options(projectOpts...).Value(&payload.ProjectID),
		huh.NewSelect[string]().Title("Priority").
			Options(
				huh.NewOption("High", string(models.PriorityHigh)),
				huh.NewOption("Medium", string(models.PriorityMedium)),
				huh.NewOption("Low", string(models.PriorityLow)),
			).Value(&priority),
	))
	if err := form.Run(); err != nil {
		return err
	}
	payload.Priority = models.Priority(priority)
	return nil
}

var issueShowCmd = &cobra.Command{
	Use:   "show <issue-id>",
	Short: "Show an issue with its subtasks and comments",
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
			return fmt.Errorf("invalid issue id %q", args[0])
		}

		if err := a.coord.RefreshIssues(cmd.Context(), 0); err != nil {
			return fmt.Errorf("fetch issues: %w", err)
		}
		issue, ok := a.coord.Store().Issue(id)
		if !ok {
			return fmt.Errorf("issue %d not found", id)
		}

		fmt.Printf("#%d %s\n", issue.ID, issue.Title)
		fmt.Printf("%s · %s", issue.Status, issue.Priority)
		if issue.AssigneeName != "" {
			fmt.Printf(" · %s", issue.AssigneeName)
		}
		if issue.DueDate != nil {
			fmt.Printf(" · due %s", issue.DueDate.Format("2006-01-02"))
		}
		fmt.Println()

		if issue.Description != "" {
			rendered, err := glamour.Render(issue.Description, "dark")
			if err != nil {
				fmt.Println("\n" + issue.Description)
			} else {
				fmt.Print(rendered)
			}
		}

		if len(issue.Subtasks) > 0 {
			fmt.Printf("\nSubtasks (%s)\n", output.Progress(issue.Subtasks))
			fmt.Println(output.Checklist(issue.Subtasks))
		}

		comments, err := a.gw.ListComments(cmd.Context(), id)
		if err != nil {
			output.Warn("fetch comments: %v", err)
			return nil
		}
		if len(comments) > 0 {
			fmt.Printf("\nComments (%d)\n", len(comments))
			for _, c := range comments {
				author := c.AuthorName
				if author == "" {
					author = fmt.Sprintf("user %d", c.AuthorID)
				}
				fmt.Printf("  %s · %s\n  %s\n", author, c.CreatedAt.Format("2006-01-02 15:04"), c.Content)
			}
		}
		return nil
	},
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <issue-id>",
	Short: "Update issue fields",
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
			return fmt.Errorf("invalid issue id %q", args[0])
		}

		var payload gateway.IssueUpdate
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			payload.Title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			payload.Description = &v
		}
		if cmd.Flags().Changed("priority") {
			v, _ := cmd.Flags().GetString("priority")
			p := models.Priority(v)
			payload.Priority = &p
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			s := models.Status(v)
			payload.Status = &s
		}
		if cmd.Flags().Changed("due") {
			v, _ := cmd.Flags().GetString("due")
			payload.DueDate = &v
		}
		if cmd.Flags().Changed("assignee") {
			v, _ := cmd.Flags().GetString("assignee")
			if err := a.coord.RefreshIssues(cmd.Context(), 0); err != nil {
				return fmt.Errorf("fetch issues: %w", err)
			}
			issue, ok := a.coord.Store().Issue(id)
			if !ok {
				return fmt.Errorf("issue %d not found", id)
			}
			assigneeID, err := resolveAssignee(cmd.Context(), a, issue.ProjectID, v)
			if err != nil {
				return err
			}
			payload.AssigneeID = &assigneeID
		}

		if payload.Title == nil && payload.Description == nil && payload.AssigneeID == nil &&
			payload.DueDate == nil && payload.Status == nil && payload.Priority == nil {
			return fmt.Errorf("nothing to update; pass at least one field flag")
		}

		if _, ok := a.coord.Store().Issue(id); !ok {
			if err := a.coord.RefreshIssues(cmd.Context(), 0); err != nil {
				return fmt.Errorf("fetch issues: %w", err)
			}
		}
		if err := <-a.coord.UpdateIssue(cmd.Context(), id, payload); err != nil {
			return fmt.Errorf("update issue: %w", err)
		}
		output.Success("Updated issue #%d", id)
		return nil
	},
}

var issueStatusCmd = &cobra.Command{
	Use:   "status <issue-id> <status>",
	Short: "Move an issue to a status column",
	Args:  cobra.ExactArgs(2),
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
			return fmt.Errorf("invalid issue id %q", args[0])
		}
		status := models.Status(strings.ToUpper(args[1]))
		if !models.IsValidStatus(status) {
			return fmt.Errorf("unknown status %q (one of BACKLOG, IN_PROGRESS, REVIEW, DONE)", args[1])
		}

		if err := a.coord.RefreshIssues(cmd.Context(), 0); err != nil {
			return fmt.Errorf("fetch issues: %w", err)
		}
		if err := <-a.coord.UpdateIssueStatus(cmd.Context(), id, status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		output.Success("Moved issue #%d to %s", id, status)
		return nil
	},
}

var issueDeleteCmd = &cobra.Command{
	Use:   "delete <issue-id>",
	Short: "Delete an issue",
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
			return fmt.Errorf("invalid issue id %q", args[0])
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			confirm := false
			form := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().Title(fmt.Sprintf("Delete issue #%d?", id)).Value(&confirm),
			))
			if err := form.Run(); err != nil {
				return err
			}
			if !confirm {
				output.Muted("aborted")
				return nil
			}
		}

		if err := a.coord.RefreshIssues(cmd.Context(), 0); err != nil {
			return fmt.Errorf("fetch issues: %w", err)
		}
		if err := <-a.coord.DeleteIssue(cmd.Context(), id); err != nil {
			return fmt.Errorf("delete issue: %w", err)
		}
		output.Success("Deleted issue #%d", id)
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func init() {
	issueListCmd.Flags().Int64("project", 0, "Only issues of this project")
	issueListCmd.Flags().String("status", "", "Only issues with this status")
	issueListCmd.Flags().String("priority", "", "Only issues with this priority")
	issueListCmd.Flags().Int64("assignee", 0, "Only issues assigned to this user id")
	issueListCmd.Flags().String("query", "", "Filter by title substring or id")
	issueListCmd.Flags().Bool("offline", false, "Read the cached snapshot instead of the server")

	issueCreateCmd.Flags().String("project", "", "Project id or name")
	issueCreateCmd.Flags().String("description", "", "Issue description (markdown)")
	issueCreateCmd.Flags().String("priority", "", "HIGH, MEDIUM or LOW")
	issueCreateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	issueCreateCmd.Flags().String("assignee", "", "Assignee id or name")

	issueUpdateCmd.Flags().String("title", "", "New title")
	issueUpdateCmd.Flags().String("description", "", "New description")
	issueUpdateCmd.Flags().String("priority", "", "New priority")
	issueUpdateCmd.Flags().String("status", "", "New status")
	issueUpdateCmd.Flags().String("due", "", "New due date (YYYY-MM-DD, empty clears)")
	issueUpdateCmd.Flags().String("assignee", "", "New assignee id or name")

	issueDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueUpdateCmd)
	issueCmd.AddCommand(issueStatusCmd)
	issueCmd.AddCommand(issueDeleteCmd)
	rootCmd.AddCommand(issueCmd)
}
