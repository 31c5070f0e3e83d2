// Package coordinator orchestrates every user-initiated change. Each
// mutation is a two-phase record: an optimistic apply against the
// store paired with a pending gateway confirmation, resolved by an
// explicit commit or rollback. The coordinator is the only writer to
// the entity store.
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jiralite/jl/internal/gateway"
	"github.com/jiralite/jl/internal/session"
	"github.com/jiralite/jl/internal/store"
)

// entityKey identifies the serialization domain of a mutation.
// Mutations sharing a key resolve in dispatch order; mutations on
// different keys are free to be in flight concurrently.
type entityKey struct {
	kind store.Kind
	id   int64
}

// pending is the two-phase record for one mutation: the optimistic
// apply plus whatever is needed to commit or reverse it once the
// remote authority answers.
type pending struct {
	op  string
	key entityKey
	ctx context.Context

	// apply performs the optimistic store change and captures the
	// snapshot that rollback restores. Nil for operations with no
	// optimistic phase (the comment refetch model).
	apply func() error

	// confirm performs the gateway call. On success it returns the
	// commit function that replaces the optimistic record with the
	// authoritative one.
	confirm func(ctx context.Context) (commit func(), err error)

	// rollback restores the pre-mutation snapshot.
	rollback func()

	// vanished replaces rollback when the authority reports the
	// target gone: there is nothing to restore, the record is removed.
	vanished func()

	done chan error
}

type opQueue struct {
	items   []*pending
	running bool
}

// Coordinator applies optimistic mutations and reconciles them with
// the gateway's authoritative answers.
type Coordinator struct {
	store *store.Store
	gw    gateway.Gateway
	sess  *session.Session
	log   *slog.Logger

	mu     sync.Mutex
	queues map[entityKey]*opQueue
	wg     sync.WaitGroup

	tempID atomic.Int64
}

// New builds a coordinator over the given store and gateway. The
// session is held for the lifetime of the coordinator; it is never
// looked up ambiently.
func New(st *store.Store, gw gateway.Gateway, sess *session.Session, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		store:  st,
		gw:     gw,
		sess:   sess,
		log:    log,
		queues: make(map[entityKey]*opQueue),
	}
}

// Store exposes the entity store for read-only consumers.
func (c *Coordinator) Store() *store.Store {
	return c.store
}

// Session returns the session this coordinator was built with.
func (c *Coordinator) Session() *session.Session {
	return c.sess
}

// Wait blocks until every in-flight mutation has resolved. Intended
// for tests and for process shutdown.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// nextTempID returns a fresh placeholder id for optimistic creates.
// Placeholder ids are negative so they can never collide with
// server-assigned ids.
func (c *Coordinator) nextTempID() int64 {
	return -c.tempID.Add(1)
}

// dispatch runs the mutation, honoring per-key ordering. When the key
// is idle the optimistic apply happens synchronously, so the caller
// observes the optimistic state as soon as dispatch returns; the
// confirmation then proceeds in the background. When an earlier
// mutation on the same key is still unresolved, the whole record is
// queued behind it so a late rollback can never clobber a newer
// optimistic value.
func (c *Coordinator) dispatch(m *pending) <-chan error {
	m.done = make(chan error, 1)

	c.mu.Lock()
	q, ok := c.queues[m.key]
	if !ok {
		q = &opQueue{}
		c.queues[m.key] = q
	}
	if q.running {
		q.items = append(q.items, m)
		c.mu.Unlock()
		return m.done
	}
	q.running = true
	c.mu.Unlock()

	if !c.applyPhase(m) {
		c.advance(m.key)
		return m.done
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.resolve(m)
		c.drain(m.key)
	}()
	return m.done
}

// applyPhase runs the optimistic apply. It reports whether the
// mutation should proceed to confirmation.
func (c *Coordinator) applyPhase(m *pending) bool {
	if m.apply == nil {
		return true
	}
	if err := m.apply(); err != nil {
		c.log.Warn("mutation rejected before dispatch", "op", m.op, "err", err)
		m.done <- err
		close(m.done)
		return false
	}
	return true
}

// resolve performs the confirmation and commits or rolls back.
func (c *Coordinator) resolve(m *pending) {
	commit, err := m.confirm(m.ctx)
	if err == nil {
		if commit != nil {
			commit()
		}
		m.done <- nil
		close(m.done)
		return
	}

	switch {
	case gateway.IsNotFound(err) && m.vanished != nil:
		c.log.Warn("target vanished server-side", "op", m.op, "err", err)
		m.vanished()
	case m.rollback != nil:
		c.log.Warn("mutation failed, rolling back", "op", m.op, "err", err)
		m.rollback()
	default:
		c.log.Warn("mutation failed", "op", m.op, "err", err)
	}

	m.done <- err
	close(m.done)
}

// drain processes queued mutations for a key in FIFO order on the
// current goroutine, then marks the key idle.
func (c *Coordinator) drain(key entityKey) {
	for {
		c.mu.Lock()
		q := c.queues[key]
		if len(q.items) == 0 {
			q.running = false
			c.mu.Unlock()
			return
		}
		m := q.items[0]
		q.items = q.items[1:]
		c.mu.Unlock()

		if c.applyPhase(m) {
			c.resolve(m)
		}
	}
}

// advance releases the key after a mutation that never reached
// confirmation, running any queued successors.
func (c *Coordinator) advance(key entityKey) {
	c.mu.Lock()
	q := c.queues[key]
	if len(q.items) == 0 {
		q.running = false
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.drain(key)
	}()
}

// immediate returns a resolved result channel for mutations rejected
// before any phase ran.
func immediate(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	close(ch)
	return ch
}
