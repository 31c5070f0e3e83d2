package coordinator

import (
	"context"
	"strings"
	"time"

	"github.com/jiralite/jl/internal/gateway"
	"github.com/jiralite/jl/internal/models"
	"github.com/jiralite/jl/internal/store"
)

// TeamResult is the resolution of a team create.
type TeamResult struct {
	Team models.Team
	Err  error
}

// ProjectResult is the resolution of a project create.
type ProjectResult struct {
	Project models.Project
	Err     error
}

// CreateTeam inserts an optimistic team owned by the session user and
// dispatches the create.
func (c *Coordinator) CreateTeam(ctx context.Context, name string) (int64, <-chan TeamResult) {
	out := make(chan TeamResult, 1)
	if strings.TrimSpace(name) == "" {
		out <- TeamResult{Err: validationErr("create team", "name is required")}
		close(out)
		return 0, out
	}

	tempID := c.nextTempID()
	optimistic := models.Team{ID: tempID, Name: name, CreatedAt: time.Now()}
	if user, ok := c.sess.User(); ok {
		optimistic.OwnerID = user.ID
	}

	m := &pending{
		op:  "teams.create",
		key: entityKey{store.KindTeam, tempID},
		ctx: ctx,
		apply: func() error {
			return c.store.Upsert(store.KindTeam, optimistic)
		},
		confirm: func(ctx context.Context) (func(), error) {
			team, err := c.gw.CreateTeam(ctx, name)
			if err != nil {
				return nil, err
			}
			return func() {
				c.store.Remove(store.KindTeam, tempID)
				c.store.Upsert(store.KindTeam, team)
				out <- TeamResult{Team: team}
				close(out)
			}, nil
		},
		rollback: func() {
			c.store.Remove(store.KindTeam, tempID)
		},
	}

	done := c.dispatch(m)
	go func() {
		if err := <-done; err != nil {
			out <- TeamResult{Err: err}
			close(out)
		}
	}()
	return tempID, out
}

// CreateProject inserts an optimistic project under its team and
// dispatches the create.
func (c *Coordinator) CreateProject(ctx context.Context, payload gateway.ProjectCreate) (int64, <-chan ProjectResult) {
	out := make(chan ProjectResult, 1)
	if strings.TrimSpace(payload.Name) == "" {
		out <- ProjectResult{Err: validationErr("create project", "name is required")}
		close(out)
		return 0, out
	}
	if payload.TeamID == 0 {
		out <- ProjectResult{Err: validationErr("create project", "team is required")}
		close(out)
		return 0, out
	}

	tempID := c.nextTempID()
	optimistic := models.Project{
		ID:          tempID,
		Name:        payload.Name,
		Description: payload.Description,
		TeamID:      payload.TeamID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if user, ok := c.sess.User(); ok {
		optimistic.OwnerID = user.ID
	}

	m := &pending{
		op:  "projects.create",
		key: entityKey{store.KindProject, tempID},
		ctx: ctx,
		apply: func() error {
			return c.store.Upsert(store.KindProject, optimistic)
		},
		confirm: func(ctx context.Context) (func(), error) {
			project, err := c.gw.CreateProject(ctx, payload)
			if err != nil {
				return nil, err
			}
			return func() {
				c.store.Remove(store.KindProject, tempID)
				c.store.Upsert(store.KindProject, project)
				out <- ProjectResult{Project: project}
				close(out)
			}, nil
		},
		rollback: func() {
			c.store.Remove(store.KindProject, tempID)
		},
	}

	done := c.dispatch(m)
	go func() {
		if err := <-done; err != nil {
			out <- ProjectResult{Err: err}
			close(out)
		}
	}()
	return tempID, out
}

// setProjectFlag is the shared optimistic boolean-flip used by the
// archive and favorite operations.
func (c *Coordinator) setProjectFlag(ctx context.Context, op string, id int64, mutate func(*models.Project), call func(context.Context, int64) error) <-chan error {
	var snapshot models.Project
	m := &pending{
		op:  op,
		key: entityKey{store.KindProject, id},
		ctx: ctx,
		apply: func() error {
			cur, ok := c.store.Project(id)
			if !ok {
				return &NotInStoreError{Kind: "project", ID: id}
			}
			snapshot = cur
			mutate(&cur)
			cur.UpdatedAt = time.Now()
			return c.store.Upsert(store.KindProject, cur)
		},
		confirm: func(ctx context.Context) (func(), error) {
			if err := call(ctx, id); err != nil {
				return nil, err
			}
			return nil, nil
		},
		rollback: func() {
			c.store.Upsert(store.KindProject, snapshot)
		},
		vanished: func() {
			c.store.Remove(store.KindProject, id)
		},
	}
	return c.dispatch(m)
}

// ArchiveProject hides the project from active listings.
func (c *Coordinator) ArchiveProject(ctx context.Context, id int64) <-chan error {
	return c.setProjectFlag(ctx, "projects.archive", id,
		func(p *models.Project) { p.IsArchived = true }, c.gw.ArchiveProject)
}

// UnarchiveProject reverses ArchiveProject.
func (c *Coordinator) UnarchiveProject(ctx context.Context, id int64) <-chan error {
	return c.setProjectFlag(ctx, "projects.unarchive", id,
		func(p *models.Project) { p.IsArchived = false }, c.gw.UnarchiveProject)
}

// FavoriteProject marks the project as a favorite.
func (c *Coordinator) FavoriteProject(ctx context.Context, id int64) <-chan error {
	return c.setProjectFlag(ctx, "projects.favorite", id,
		func(p *models.Project) { p.IsFavorite = true }, c.gw.FavoriteProject)
}

// UnfavoriteProject reverses FavoriteProject.
func (c *Coordinator) UnfavoriteProject(ctx context.Context, id int64) <-chan error {
	return c.setProjectFlag(ctx, "projects.unfavorite", id,
		func(p *models.Project) { p.IsFavorite = false }, c.gw.UnfavoriteProject)
}
