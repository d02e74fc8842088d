// Package sync owns the single in-memory AppState and keeps it mirrored
// to the active persistence target: local storage for guest sessions,
// the remote per-user document once an identity is present.
package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiflow/studiflow/internal/assistant"
	"github.com/studiflow/studiflow/internal/model"
	"github.com/studiflow/studiflow/internal/state"
	"github.com/studiflow/studiflow/internal/store"
)

const remoteWriteTimeout = 10 * time.Second

// Controller is a two-state machine: Local, or Remote(userID). It is the
// only component permitted to replace the state wholesale, which it does
// on every remote subscription delivery (last writer wins).
type Controller struct {
	// ctx is the service root context; remote subscriptions live on it so
	// delivery outlasts the request that opened them.
	ctx context.Context

	mu       stdsync.Mutex
	st       *model.AppState
	userID   string // empty means Local mode
	unsub    func()
	onChange func(*model.AppState)

	local  store.LocalStore
	remote store.RemoteStore // nil when no remote backend is configured
	log    zerolog.Logger

	// Serializes assistant calls: one in-flight chat at a time.
	chatMu stdsync.Mutex
}

// New loads the initial snapshot from local persistence (seed state when
// absent or unreadable) and starts in Local mode. ctx bounds the lifetime
// of every remote subscription the controller opens.
func New(ctx context.Context, local store.LocalStore, remote store.RemoteStore, log zerolog.Logger) *Controller {
	return &Controller{
		ctx:    ctx,
		st:     store.LoadOrDefault(local, log),
		local:  local,
		remote: remote,
		log:    log,
	}
}

// State returns the current snapshot. Snapshots are never mutated after
// publication, so callers may read without holding any lock.
func (c *Controller) State() *model.AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// Identity returns the active remote user id, empty in Local mode.
func (c *Controller) Identity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// SetOnChange registers a hook invoked with every new snapshot, whether
// it came from a local mutation or a remote push.
func (c *Controller) SetOnChange(fn func(*model.AppState)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Apply runs a pure transform on the current state, publishes the result
// and mirrors it to the active persistence target.
func (c *Controller) Apply(fn func(*model.AppState) *model.AppState) *model.AppState {
	c.mu.Lock()
	next := fn(c.st)
	c.st = next
	userID := c.userID
	c.mu.Unlock()

	c.persist(userID, next)
	c.notify(next)
	return next
}

// Actor returns the id new records should be owned by.
func (c *Controller) Actor() string { return c.Identity() }

// persist mirrors a snapshot. Remote writes are detached fire-and-forget
// tasks: failure is logged, never retried, never surfaced; the in-memory
// state stays the source of truth for this session.
func (c *Controller) persist(userID string, st *model.AppState) {
	if userID != "" && c.remote != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), remoteWriteTimeout)
			defer cancel()
			if err := c.remote.Save(ctx, userID, st); err != nil {
				c.log.Error().Err(err).Str("user", userID).Msg("remote save failed")
			}
		}()
		return
	}
	if err := c.local.Save(st); err != nil {
		c.log.Error().Err(err).Msg("local save failed")
	}
}

// SetIdentity transitions Local -> Remote(userID). The remote document
// subscription replaces the in-memory state in full on every delivery;
// the most recent push always wins over local changes from the same tick.
// The subscription runs on the controller's root context, so it keeps
// delivering long after the caller has returned.
func (c *Controller) SetIdentity(userID string) {
	if userID == "" || c.remote == nil {
		return
	}

	c.mu.Lock()
	if c.userID == userID {
		c.mu.Unlock()
		return
	}
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.userID = userID
	snapshot := c.st
	c.mu.Unlock()

	unsub, err := c.remote.Subscribe(c.ctx, userID, func(remote *model.AppState) {
		c.mu.Lock()
		if c.userID != userID {
			// Stale delivery after a mode switch.
			c.mu.Unlock()
			return
		}
		c.st = remote
		c.mu.Unlock()
		c.notify(remote)
	})
	if err != nil {
		// Stay in Remote mode so writes still mirror; pushes from other
		// sessions are simply not received.
		c.log.Error().Err(err).Str("user", userID).Msg("remote subscribe failed")
	} else {
		c.mu.Lock()
		c.unsub = unsub
		c.mu.Unlock()
	}

	// Seed the remote document with the session snapshot. If a document
	// already exists its subscription delivery overwrites this state.
	c.persist(userID, snapshot)
}

// ClearIdentity transitions Remote -> Local: cancels the subscription and
// reloads from local persistence. An in-flight remote write from the
// previous identity is not cancelled.
func (c *Controller) ClearIdentity() {
	c.mu.Lock()
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.userID = ""
	c.st = store.LoadOrDefault(c.local, c.log)
	snapshot := c.st
	c.mu.Unlock()
	c.notify(snapshot)
}

// ResetLocal erases the locally persisted state. In Local mode the
// in-memory snapshot is replaced with the seed state; in Remote mode the
// snapshot and the remote document are untouched, only the local copy is
// deleted.
func (c *Controller) ResetLocal() (*model.AppState, error) {
	if err := c.local.Clear(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.userID != "" {
		snapshot := c.st
		c.mu.Unlock()
		return snapshot, nil
	}
	c.st = model.DefaultState()
	snapshot := c.st
	c.mu.Unlock()
	c.notify(snapshot)
	return snapshot, nil
}

// RunAssistant executes one chat turn: interpret the prompt against the
// current snapshot, apply every resulting command, return the reply.
// Calls are serialized; a second concurrent chat waits for the first.
func (c *Controller) RunAssistant(ctx context.Context, interp *assistant.Interpreter, prompt string) string {
	c.chatMu.Lock()
	defer c.chatMu.Unlock()

	reply, cmds := interp.Chat(ctx, prompt, c.State())
	for _, cmd := range cmds {
		switch cmd.Kind {
		case assistant.CommandLog:
			log := cmd.Log
			c.Apply(func(st *model.AppState) *model.AppState {
				return state.AddLog(st, c.Actor(), log)
			})
		case assistant.CommandSchedule:
			item := cmd.Schedule
			c.Apply(func(st *model.AppState) *model.AppState {
				return state.AddSchedule(st, c.Actor(), item)
			})
		}
	}
	return reply
}

func (c *Controller) notify(st *model.AppState) {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}
