package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jiralite/jl/internal/output"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Manage issue comments",
}

var commentListCmd = &cobra.Command{
	Use:   "list <issue-id>",
	Short: "List an issue's comments",
	Args:  cobra.ExactArgs(1),
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

		comments, err := a.gw.ListComments(cmd.Context(), issueID)
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		if len(comments) == 0 {
			output.Muted("no comments")
			return nil
		}
		for _, c := range comments {
			author := c.AuthorName
			if author == "" {
				author = fmt.Sprintf("user %d", c.AuthorID)
			}
			fmt.Printf("%s · %s\n%s\n\n", author, c.CreatedAt.Format("2006-01-02 15:04"), c.Content)
		}
		return nil
	},
}

var commentAddCmd = &cobra.Command{
	Use:   "add <issue-id> <content...>",
	Short: "Comment on an issue",
	Args:  cobra.MinimumNArgs(2),
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
		content := strings.Join(args[1:], " ")

		if err := <-a.coord.AddComment(cmd.Context(), issueID, content); err != nil {
			return fmt.Errorf("add comment: %w", err)
		}
		output.Success("Commented on issue #%d", issueID)
		return nil
	},
}

func init() {
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentAddCmd)
	rootCmd.AddCommand(commentCmd)
}
