package coordinator

import (
	"context"

	"github.com/jiralite/jl/internal/models"
	"github.com/jiralite/jl/internal/store"
)

// MarkNotificationRead flips a notification to read optimistically.
// Marking an already-read notification is a no-op: is_read only ever
// transitions false to true.
func (c *Coordinator) MarkNotificationRead(ctx context.Context, id int64) <-chan error {
	if n, ok := c.store.Notification(id); ok && n.IsRead {
		return immediate(nil)
	}

	var snapshot models.Notification
	m := &pending{
		op:  "notifications.read",
		key: entityKey{store.KindNotification, id},
		ctx: ctx,
		apply: func() error {
			cur, ok := c.store.Notification(id)
			if !ok {
				return &NotInStoreError{Kind: "notification", ID: id}
			}
			snapshot = cur
			cur.IsRead = true
			return c.store.Upsert(store.KindNotification, cur)
		},
		confirm: func(ctx context.Context) (func(), error) {
			if err := c.gw.MarkNotificationRead(ctx, id); err != nil {
				return nil, err
			}
			return nil, nil
		},
		rollback: func() {
			c.store.Upsert(store.KindNotification, snapshot)
		},
		vanished: func() {
			c.store.Remove(store.KindNotification, id)
		},
	}
	return c.dispatch(m)
}

// MarkAllNotificationsRead flips every unread notification at once and
// confirms with a single batch call. The batch is all-or-nothing: one
// failure rolls every flag back to unread, never a partial state.
func (c *Coordinator) MarkAllNotificationsRead(ctx context.Context) <-chan error {
	var snapshots []models.Notification
	m := &pending{
		op: "notifications.readall",
		// The batch serializes on a sentinel key of its own; the
		// all-or-nothing contract covers the whole collection.
		key: entityKey{store.KindNotification, 0},
		ctx: ctx,
		apply: func() error {
			snapshots = c.store.UnreadNotifications()
			for _, n := range snapshots {
				n.IsRead = true
				if err := c.store.Upsert(store.KindNotification, n); err != nil {
					return err
				}
			}
			return nil
		},
		confirm: func(ctx context.Context) (func(), error) {
			if len(snapshots) == 0 {
				return nil, nil
			}
			if err := c.gw.MarkAllNotificationsRead(ctx); err != nil {
				return nil, err
			}
			return nil, nil
		},
		rollback: func() {
			for _, n := range snapshots {
				c.store.Upsert(store.KindNotification, n)
			}
		},
	}
	return c.dispatch(m)
}
