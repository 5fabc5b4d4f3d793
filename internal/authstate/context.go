// Package authstate holds the client-side authentication state machine: the Context that
// tracks who is signed in and what they may do, and the Guard that gates privileged views.
package authstate

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	domainauth "github.com/hostelhub/hostel-api/internal/domain/auth"
	"github.com/hostelhub/hostel-api/internal/ports"
)

// State is a snapshot of the derived session state.
// While IsLoading is true, IsAdmin and Profile are stale.
type State struct {
	User      *domainauth.User
	Session   *domainauth.Session
	IsLoading bool
	IsAdmin   bool
	Profile   *domainauth.Profile
}

// Authenticated reports whether a principal is signed in.
func (s State) Authenticated() bool { return s.User != nil }

// refresher is implemented by resolvers that can bypass cached role assignments.
type refresher interface {
	Refresh(ctx context.Context, principalID string) (domainauth.Resolution, error)
}

// ErrClosed is returned by operations on a closed Context.
var ErrClosed = errors.New("auth context closed")

// Options groups dependencies for Context.
type Options struct {
	Sessions ports.SessionStore
	Resolver ports.IdentityResolver
	Logger   *slog.Logger
}

// Context is the single owner of the derived session state. Construct it once with New,
// call Start to subscribe to the session store, and Close on shutdown.
type Context struct {
	sessions ports.SessionStore
	resolver ports.IdentityResolver
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	seq      uint64
	target   string // principal whose resolution is pending or complete
	changed  chan struct{}
	watchers map[chan State]struct{}
	started  bool
	closed   bool
	unsub    func()

	queueMu sync.Mutex
	queue   []func()
	wake    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Context in the initial loading state.
func New(opts Options) *Context {
	if opts.Sessions == nil {
		panic("SessionStore is required")
	}
	if opts.Resolver == nil {
		panic("IdentityResolver is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Context{
		sessions: opts.Sessions,
		resolver: opts.Resolver,
		logger:   logger.With("component", "auth_context"),
		state:    State{IsLoading: true},
		changed:  make(chan struct{}),
		watchers: make(map[chan State]struct{}),
		wake:     make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start subscribes to session changes and then performs the initial session check.
// The subscription is attached before the check so no change between the two is missed.
func (c *Context) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return errors.New("auth context already started")
	}
	c.started = true
	c.mu.Unlock()

	go c.run()

	unsub := c.sessions.OnSessionChange(c.handleSessionChange)
	c.mu.Lock()
	c.unsub = unsub
	c.mu.Unlock()

	sess, err := c.sessions.GetCurrentSession(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "initial session check failed", "error", err)
		c.clear()
		return err
	}
	c.handleSessionChange(domainauth.SessionEvent{Kind: domainauth.SessionInitial, Session: sess})
	return nil
}

// Close unsubscribes from the session store and stops the resolution loop.
func (c *Context) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsub := c.unsub
	started := c.started
	for ch := range c.watchers {
		close(ch)
		delete(c.watchers, ch)
	}
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	c.cancel()
	if started {
		<-c.done
	}
}

// State returns the current snapshot.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Watch returns a channel that receives the latest snapshot after every change, starting with
// the current one. Slow readers only see the newest snapshot. The channel closes when ctx ends
// or the Context is closed.
func (c *Context) Watch(ctx context.Context) <-chan State {
	ch := make(chan State, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch
	}
	ch <- c.state
	c.watchers[ch] = struct{}{}
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-c.ctx.Done():
		}
		c.mu.Lock()
		if _, ok := c.watchers[ch]; ok {
			delete(c.watchers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}()
	return ch
}

// WaitSettled blocks until IsLoading is false and returns that snapshot.
func (c *Context) WaitSettled(ctx context.Context) (State, error) {
	for {
		c.mu.Lock()
		st, changed, closed := c.state, c.changed, c.closed
		c.mu.Unlock()
		if !st.IsLoading {
			return st, nil
		}
		if closed {
			return st, ErrClosed
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return st, ctx.Err()
		case <-c.ctx.Done():
			return st, ErrClosed
		}
	}
}

// SignUp registers a principal. It does not touch local state; the resulting session
// notification, if any, does.
func (c *Context) SignUp(ctx context.Context, in domainauth.SignUpInput) error {
	return c.sessions.SignUp(ctx, in)
}

// SignIn authenticates and resolves privileges before returning, so the returned snapshot
// already carries the resolved admin flag and profile.
func (c *Context) SignIn(ctx context.Context, email, password string) (State, error) {
	sess, err := c.sessions.SignInWithPassword(ctx, email, password)
	if err != nil {
		return c.State(), err
	}
	if sess == nil {
		return c.State(), errors.New("session store returned no session")
	}

	user := sess.User()
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.target = user.ID
	c.state = State{User: &user, Session: sess, IsLoading: true}
	c.publishLocked()
	c.mu.Unlock()

	res := c.resolve(ctx, user.ID, false)
	c.apply(seq, user.ID, res)
	return c.State(), nil
}

// SignOut signs out at the store and clears local state without waiting for the notification.
// Local state is cleared even when the store call fails.
func (c *Context) SignOut(ctx context.Context) error {
	err := c.sessions.SignOut(ctx)
	c.clear()
	return err
}

// RefreshUserData re-resolves the current principal. It is a no-op when nobody is signed in.
// Resolution failures fail closed and are not returned.
func (c *Context) RefreshUserData(ctx context.Context) error {
	c.mu.Lock()
	if c.state.User == nil {
		c.mu.Unlock()
		return nil
	}
	id := c.state.User.ID
	c.seq++
	seq := c.seq
	c.target = id
	c.state.IsLoading = true
	c.publishLocked()
	c.mu.Unlock()

	res := c.resolve(ctx, id, true)
	c.apply(seq, id, res)
	return ctx.Err()
}

// handleSessionChange runs on the session store's notification path. It publishes the
// session synchronously and posts resolution to the task loop.
func (c *Context) handleSessionChange(ev domainauth.SessionEvent) {
	if ev.Session == nil {
		c.clear()
		return
	}

	sess := *ev.Session
	user := sess.User()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	samePrincipal := c.target == user.ID && c.state.User != nil && c.state.User.ID == user.ID
	c.state.User = &user
	c.state.Session = &sess
	if samePrincipal && ev.Kind != domainauth.SessionUpdated {
		c.publishLocked()
		c.mu.Unlock()
		c.logger.Debug("session change coalesced", "event", string(ev.Kind), "principal_id", user.ID)
		return
	}
	c.seq++
	seq := c.seq
	c.target = user.ID
	c.state.IsLoading = true
	c.state.IsAdmin = false
	c.state.Profile = nil
	c.publishLocked()
	c.mu.Unlock()

	c.post(func() {
		res := c.resolve(c.ctx, user.ID, false)
		c.apply(seq, user.ID, res)
	})
}

func (c *Context) resolve(ctx context.Context, principalID string, fresh bool) domainauth.Resolution {
	var (
		res domainauth.Resolution
		err error
	)
	if r, ok := c.resolver.(refresher); ok && fresh {
		res, err = r.Refresh(ctx, principalID)
	} else {
		res, err = c.resolver.Resolve(ctx, principalID)
	}
	if err != nil {
		c.logger.Debug("resolution failed closed", "principal_id", principalID, "error", err)
		return domainauth.Resolution{}
	}
	return res
}

// apply publishes res unless a newer resolution or a sign-out superseded it.
func (c *Context) apply(seq uint64, principalID string, res domainauth.Resolution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq || c.state.User == nil || c.state.User.ID != principalID {
		c.logger.Debug("discarding stale resolution", "principal_id", principalID)
		return
	}
	c.state.IsAdmin = res.IsAdmin
	c.state.Profile = res.Profile
	c.state.IsLoading = false
	c.publishLocked()
}

func (c *Context) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.target = ""
	c.state = State{}
	c.publishLocked()
}

// publishLocked wakes WaitSettled callers and hands the snapshot to watchers. Callers hold mu.
func (c *Context) publishLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
	for ch := range c.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- c.state
	}
}

// post queues fn for the task loop without blocking the caller.
func (c *Context) post(fn func()) {
	c.queueMu.Lock()
	c.queue = append(c.queue, fn)
	c.queueMu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Context) run() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.wake:
		}
		for {
			c.queueMu.Lock()
			if len(c.queue) == 0 {
				c.queueMu.Unlock()
				break
			}
			fn := c.queue[0]
			c.queue = c.queue[1:]
			c.queueMu.Unlock()
			fn()
		}
	}
}
