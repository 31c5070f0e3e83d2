// Package store holds the normalized in-memory collections of every
// entity the client knows about. The store has no network awareness:
// it is written only by the mutation coordinator and read by
// projections and UI code.
package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jiralite/jl/internal/models"
)

// Kind names an entity collection.
type Kind string

const (
	KindUser         Kind = "user"
	KindTeam         Kind = "team"
	KindProject      Kind = "project"
	KindIssue        Kind = "issue"
	KindComment      Kind = "comment"
	KindNotification Kind = "notification"
)

// IsValidKind reports whether k names a known collection.
func IsValidKind(k Kind) bool {
	switch k {
	case KindUser, KindTeam, KindProject, KindIssue, KindComment, KindNotification:
		return true
	}
	return false
}

// Store is the canonical entity state. All reads and writes copy
// records so callers can never alias store-owned memory; a successful
// List always reflects every Upsert/Remove applied before it.
type Store struct {
	mu            sync.RWMutex
	users         map[int64]models.User
	teams         map[int64]models.Team
	projects      map[int64]models.Project
	issues        map[int64]models.Issue
	comments      map[int64]models.Comment
	notifications map[int64]models.Notification
	rev           uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:         make(map[int64]models.User),
		teams:         make(map[int64]models.Team),
		projects:      make(map[int64]models.Project),
		issues:        make(map[int64]models.Issue),
		comments:      make(map[int64]models.Comment),
		notifications: make(map[int64]models.Notification),
	}
}

// Rev returns a counter that increases on every mutation. Pollers use
// it to detect that projections need recomputing.
func (s *Store) Rev() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// Upsert inserts or replaces a record keyed by its id. Replaying the
// same record is a no-op with respect to observable state. The record
// type must match the kind.
func (s *Store) Upsert(kind Kind, record any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case KindUser:
		u, ok := record.(models.User)
		if !ok {
			return typeMismatch(kind, record)
		}
		s.users[u.ID] = u
	case KindTeam:
		t, ok := record.(models.Team)
		if !ok {
			return typeMismatch(kind, record)
		}
		s.teams[t.ID] = t
	case KindProject:
		p, ok := record.(models.Project)
		if !ok {
			return typeMismatch(kind, record)
		}
		s.projects[p.ID] = p
	case KindIssue:
		i, ok := record.(models.Issue)
		if !ok {
			return typeMismatch(kind, record)
		}
		s.issues[i.ID] = i.Clone()
	case KindComment:
		c, ok := record.(models.Comment)
		if !ok {
			return typeMismatch(kind, record)
		}
		s.comments[c.ID] = c
	case KindNotification:
		n, ok := record.(models.Notification)
		if !ok {
			return typeMismatch(kind, record)
		}
		s.notifications[n.ID] = n
	default:
		return fmt.Errorf("upsert: unknown entity kind %q", kind)
	}

	s.rev++
	return nil
}

// Remove deletes a record by id. Removing a missing id is a no-op.
func (s *Store) Remove(kind Kind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case KindUser:
		delete(s.users, id)
	case KindTeam:
		delete(s.teams, id)
	case KindProject:
		delete(s.projects, id)
	case KindIssue:
		delete(s.issues, id)
	case KindComment:
		delete(s.comments, id)
	case KindNotification:
		delete(s.notifications, id)
	default:
		return fmt.Errorf("remove: unknown entity kind %q", kind)
	}

	s.rev++
	return nil
}

func typeMismatch(kind Kind, record any) error {
	return fmt.Errorf("upsert: record type %T does not match kind %q", record, kind)
}

// Get returns the record with the given id from a collection. Issue
// records are returned as copies.
func (s *Store) Get(kind Kind, id int64) (any, bool) {
	switch kind {
	case KindUser:
		return lookup(s, s.users, id)
	case KindTeam:
		return lookup(s, s.teams, id)
	case KindProject:
		return lookup(s, s.projects, id)
	case KindIssue:
		i, ok := s.Issue(id)
		return i, ok
	case KindComment:
		return lookup(s, s.comments, id)
	case KindNotification:
		return lookup(s, s.notifications, id)
	}
	return nil, false
}

// List returns every record in a collection that keep accepts, id
// ascending. A nil keep accepts everything.
func (s *Store) List(kind Kind, keep func(any) bool) []any {
	var out []any
	switch kind {
	case KindUser:
		for _, u := range s.Users() {
			out = append(out, u)
		}
	case KindTeam:
		for _, t := range s.Teams() {
			out = append(out, t)
		}
	case KindProject:
		for _, p := range s.Projects(nil) {
			out = append(out, p)
		}
	case KindIssue:
		for _, i := range s.Issues(nil) {
			out = append(out, i)
		}
	case KindComment:
		s.mu.RLock()
		cs := make([]models.Comment, 0, len(s.comments))
		for _, c := range s.comments {
			cs = append(cs, c)
		}
		s.mu.RUnlock()
		sort.Slice(cs, func(a, b int) bool { return cs[a].ID < cs[b].ID })
		for _, c := range cs {
			out = append(out, c)
		}
	case KindNotification:
		s.mu.RLock()
		ns := make([]models.Notification, 0, len(s.notifications))
		for _, n := range s.notifications {
			ns = append(ns, n)
		}
		s.mu.RUnlock()
		sort.Slice(ns, func(a, b int) bool { return ns[a].ID < ns[b].ID })
		for _, n := range ns {
			out = append(out, n)
		}
	default:
		return nil
	}

	if keep == nil {
		return out
	}
	kept := out[:0]
	for _, r := range out {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

func lookup[T any](s *Store, m map[int64]T, id int64) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := m[id]
	if !ok {
		return nil, false
	}
	return v, true
}

// User returns the user with the given id.
func (s *Store) User(id int64) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// Team returns the team with the given id.
func (s *Store) Team(id int64) (models.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	return t, ok
}

// Project returns the project with the given id.
func (s *Store) Project(id int64) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	return p, ok
}

// Issue returns a copy of the issue with the given id.
func (s *Store) Issue(id int64) (models.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.issues[id]
	if !ok {
		return models.Issue{}, false
	}
	return i.Clone(), true
}

// Comment returns the comment with the given id.
func (s *Store) Comment(id int64) (models.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	return c, ok
}

// Notification returns the notification with the given id.
func (s *Store) Notification(id int64) (models.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	return n, ok
}

// Users lists all users, id ascending.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Teams lists all teams, id ascending.
func (s *Store) Teams() []models.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Projects lists all projects, id ascending. keep may be nil.
func (s *Store) Projects(keep func(models.Project) bool) []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Issues lists copies of all issues, id ascending. keep may be nil.
func (s *Store) Issues(keep func(models.Issue) bool) []models.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Issue, 0, len(s.issues))
	for _, i := range s.issues {
		if keep == nil || keep(i) {
			out = append(out, i.Clone())
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// CommentsForIssue lists an issue's comments, oldest first.
func (s *Store) CommentsForIssue(issueID int64) []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Comment
	for _, c := range s.comments {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID < out[b].ID
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	return out
}

// Notifications lists all notifications, newest first.
func (s *Store) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID > out[b].ID
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

// UnreadNotifications lists unread notifications, newest first.
func (s *Store) UnreadNotifications() []models.Notification {
	all := s.Notifications()
	out := all[:0]
	for _, n := range all {
		if !n.IsRead {
			out = append(out, n)
		}
	}
	return out
}

// ReplaceAll swaps the contents of a collection wholesale. Used by
// full fetches, where the remote listing is the authoritative set.
// The swap is a single mutation: readers never observe a partially
// filled collection.
func (s *Store) ReplaceAll(kind Kind, records []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case KindUser:
		next := make(map[int64]models.User, len(records))
		for _, r := range records {
			u, ok := r.(models.User)
			if !ok {
				return typeMismatch(kind, r)
			}
			next[u.ID] = u
		}
		s.users = next
	case KindTeam:
		next := make(map[int64]models.Team, len(records))
		for _, r := range records {
			t, ok := r.(models.Team)
			if !ok {
				return typeMismatch(kind, r)
			}
			next[t.ID] = t
		}
		s.teams = next
	case KindProject:
		next := make(map[int64]models.Project, len(records))
		for _, r := range records {
			p, ok := r.(models.Project)
			if !ok {
				return typeMismatch(kind, r)
			}
			next[p.ID] = p
		}
		s.projects = next
	case KindIssue:
		next := make(map[int64]models.Issue, len(records))
		for _, r := range records {
			i, ok := r.(models.Issue)
			if !ok {
				return typeMismatch(kind, r)
			}
			next[i.ID] = i.Clone()
		}
		s.issues = next
	case KindComment:
		next := make(map[int64]models.Comment, len(records))
		for _, r := range records {
			c, ok := r.(models.Comment)
			if !ok {
				return typeMismatch(kind, r)
			}
			next[c.ID] = c
		}
		s.comments = next
	case KindNotification:
		next := make(map[int64]models.Notification, len(records))
		for _, r := range records {
			n, ok := r.(models.Notification)
			if !ok {
				return typeMismatch(kind, r)
			}
			next[n.ID] = n
		}
		s.notifications = next
	default:
		return fmt.Errorf("replace: unknown entity kind %q", kind)
	}

	s.rev++
	return nil
}

// RemoveCommentsForIssue drops every comment belonging to the issue
// and returns the removed records so a failed issue delete can restore
// them verbatim.
func (s *Store) RemoveCommentsForIssue(issueID int64) []models.Comment {
	removed := s.CommentsForIssue(issueID)
	s.mu.Lock()
	for _, c := range removed {
		delete(s.comments, c.ID)
	}
	if len(removed) > 0 {
		s.rev++
	}
	s.mu.Unlock()
	return removed
}
