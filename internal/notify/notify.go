// Package notify is the read-state surface for notifications: local
// listings and unread counts from the store, read flags flipped
// through the coordinator's optimistic path.
package notify

import (
	"context"

	"github.com/jiralite/jl/internal/coordinator"
	"github.com/jiralite/jl/internal/gateway"
	"github.com/jiralite/jl/internal/models"
)

// Center exposes notification reads and mutations.
type Center struct {
	coord *coordinator.Coordinator
	gw    gateway.Gateway
}

// New builds a center over the coordinator and gateway.
func New(coord *coordinator.Coordinator, gw gateway.Gateway) *Center {
	return &Center{coord: coord, gw: gw}
}

// All returns the locally held notifications, newest first.
func (c *Center) All() []models.Notification {
	return c.coord.Store().Notifications()
}

// Unread returns the locally held unread notifications, newest first.
func (c *Center) Unread() []models.Notification {
	return c.coord.Store().UnreadNotifications()
}

// UnreadCount is the local unread tally.
func (c *Center) UnreadCount() int {
	return len(c.coord.Store().UnreadNotifications())
}

// RemoteUnreadCount asks the server for the authoritative unread tally.
func (c *Center) RemoteUnreadCount(ctx context.Context) (int, error) {
	return c.gw.UnreadCount(ctx)
}

// MarkRead flips one notification to read. Optimistic; a failed
// confirmation restores the unread flag.
func (c *Center) MarkRead(ctx context.Context, id int64) <-chan error {
	return c.coord.MarkNotificationRead(ctx, id)
}

// MarkAllRead flips every unread notification at once. The batch is
// all-or-nothing: one failure rolls every flag back.
func (c *Center) MarkAllRead(ctx context.Context) <-chan error {
	return c.coord.MarkAllNotificationsRead(ctx)
}

// Refresh replaces the local notifications with the remote listing.
func (c *Center) Refresh(ctx context.Context) error {
	return c.coord.RefreshNotifications(ctx)
}
