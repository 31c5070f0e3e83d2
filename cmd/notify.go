package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jiralite/jl/internal/notify"
	"github.com/jiralite/jl/internal/output"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Manage notifications",
}

func newCenter(a *app) *notify.Center {
	return notify.New(a.coord, a.gw)
}

var notifyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		center := newCenter(a)
		if err := center.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("fetch notifications: %w", err)
		}

		unreadOnly, _ := cmd.Flags().GetBool("unread")
		notifications := center.All()
		if unreadOnly {
			notifications = center.Unread()
		}
		if len(notifications) == 0 {
			output.Muted("no notifications")
			return nil
		}
		for _, n := range notifications {
			mark := " "
			if !n.IsRead {
				mark = "●"
			}
			fmt.Printf("%s %-6d %s  %s\n", mark, n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Title)
			if n.Content != "" {
				output.Muted("         %s", n.Content)
			}
		}
		return nil
	},
}

var notifyCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the unread notification count",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		count, err := newCenter(a).RemoteUnreadCount(cmd.Context())
		if err != nil {
			return fmt.Errorf("unread count: %w", err)
		}
		fmt.Println(count)
		return nil
	},
}

var notifyReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
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
			return fmt.Errorf("invalid notification id %q", args[0])
		}

		center := newCenter(a)
		if err := center.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("fetch notifications: %w", err)
		}
		if err := <-center.MarkRead(cmd.Context(), id); err != nil {
			return fmt.Errorf("mark read: %w", err)
		}
		output.Success("Marked notification %d read", id)
		return nil
	},
}

var notifyReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.requireAuth(); err != nil {
			return err
		}

		center := newCenter(a)
		if err := center.Refresh(cmd.Context()); err != nil {
			return fmt.Errorf("fetch notifications: %w", err)
		}
		unread := center.UnreadCount()
		if err := <-center.MarkAllRead(cmd.Context()); err != nil {
			return fmt.Errorf("mark all read: %w", err)
		}
		output.Success("Marked %d notifications read", unread)
		return nil
	},
}

func init() {
	notifyListCmd.Flags().Bool("unread", false, "Only unread notifications")

	notifyCmd.AddCommand(notifyListCmd)
	notifyCmd.AddCommand(notifyCountCmd)
	notifyCmd.AddCommand(notifyReadCmd)
	notifyCmd.AddCommand(notifyReadAllCmd)
	rootCmd.AddCommand(notifyCmd)
}
