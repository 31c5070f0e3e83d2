package coordinator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jiralite/jl/internal/gateway"
	"github.com/jiralite/jl/internal/store"
)

// Refresh pulls the authoritative listings for every collection and
// swaps them into the store. The four fetches run concurrently; any
// failure aborts the whole refresh and leaves the store untouched for
// the collections that had not been swapped yet.
func (c *Coordinator) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := c.gw.ListTeams(ctx)
		if err != nil {
			return err
		}
		return c.store.ReplaceAll(store.KindTeam, anySlice(teams))
	})
	g.Go(func() error {
		projects, err := c.gw.ListProjects(ctx, 0)
		if err != nil {
			return err
		}
		return c.store.ReplaceAll(store.KindProject, anySlice(projects))
	})
	g.Go(func() error {
		issues, err := c.gw.ListIssues(ctx, gateway.IssueFilters{})
		if err != nil {
			return err
		}
		return c.store.ReplaceAll(store.KindIssue, anySlice(issues))
	})
	g.Go(func() error {
		notifications, err := c.gw.ListNotifications(ctx)
		if err != nil {
			return err
		}
		return c.store.ReplaceAll(store.KindNotification, anySlice(notifications))
	})

	return g.Wait()
}

// RefreshIssues replaces the issue collection with a remote listing,
// optionally narrowed to one project.
func (c *Coordinator) RefreshIssues(ctx context.Context, projectID int64) error {
	issues, err := c.gw.ListIssues(ctx, gateway.IssueFilters{ProjectID: projectID})
	if err != nil {
		return err
	}
	if projectID == 0 {
		return c.store.ReplaceAll(store.KindIssue, anySlice(issues))
	}
	// A scoped fetch only refreshes that project's records.
	for _, stale := range c.store.Issues(nil) {
		if stale.ProjectID == projectID {
			c.store.Remove(store.KindIssue, stale.ID)
		}
	}
	for _, issue := range issues {
		if err := c.store.Upsert(store.KindIssue, issue); err != nil {
			return err
		}
	}
	return nil
}

// RefreshProjects replaces the project collection with a remote
// listing, optionally narrowed to one team.
func (c *Coordinator) RefreshProjects(ctx context.Context, teamID int64) error {
	projects, err := c.gw.ListProjects(ctx, teamID)
	if err != nil {
		return err
	}
	if teamID == 0 {
		return c.store.ReplaceAll(store.KindProject, anySlice(projects))
	}
	for _, stale := range c.store.Projects(nil) {
		if stale.TeamID == teamID {
			c.store.Remove(store.KindProject, stale.ID)
		}
	}
	for _, project := range projects {
		if err := c.store.Upsert(store.KindProject, project); err != nil {
			return err
		}
	}
	return nil
}

// RefreshNotifications replaces the notification collection.
func (c *Coordinator) RefreshNotifications(ctx context.Context) error {
	notifications, err := c.gw.ListNotifications(ctx)
	if err != nil {
		return err
	}
	return c.store.ReplaceAll(store.KindNotification, anySlice(notifications))
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
