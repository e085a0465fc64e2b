// Package guard decides whether a session may open admin-only screens.
//
// A cached ADMIN role is trusted without a round-trip. Otherwise the
// token's roles are fetched from the identity endpoints. The cached role
// only shortcuts the client; the API still authorizes every admin call.
package guard

import (
	"context"
	"strings"
	"sync"

	"petcare-inventory-api/internal/auth"

	"go.uber.org/zap"
)

// State is a guard state.
type State int

const (
	StateNoToken State = iota
	StateCachedAdmin
	StateVerifying
	StateAllowed
	StateDenied
)

func (s State) String() string {
	switch s {
	case StateNoToken:
		return "no_token"
	case StateCachedAdmin:
		return "cached_admin"
	case StateVerifying:
		return "verifying"
	case StateAllowed:
		return "allowed"
	case StateDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s != StateVerifying
}

// Redirect targets.
const (
	LoginPath   = "/login"
	LandingPath = "/"
)

// Session is what the client knows about the signed-in user.
type Session struct {
	Token      string
	CachedRole string
}

// Decision is the outcome of a check.
type Decision struct {
	State    State
	Redirect string
	Roles    RoleSet
	Err      error
}

// Allowed reports whether protected content may be shown.
func (d Decision) Allowed() bool {
	return d.State == StateCachedAdmin || d.State == StateAllowed
}

// Config holds configuration for a Guard.
type Config struct {
	Verifier  Verifier
	AdminRole string

	// OnState, if set, is called for every state the check enters, in order.
	// It is never called after Unmount returns. It must not call Unmount.
	OnState func(State)

	Logger *zap.Logger
}

// Guard runs admin access checks.
type Guard struct {
	verifier  Verifier
	adminRole string
	onState   func(State)
	logger    *zap.Logger
}

// New creates a guard.
func New(cfg Config) *Guard {
	if cfg.AdminRole == "" {
		cfg.AdminRole = auth.RoleAdmin
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Guard{
		verifier:  cfg.Verifier,
		adminRole: cfg.AdminRole,
		onState:   cfg.OnState,
		logger:    cfg.Logger,
	}
}

// Check is a running access check.
type Check struct {
	cancel  context.CancelFunc
	done    chan struct{}
	onState func(State)

	mu        sync.Mutex
	unmounted bool
	decision  Decision
}

// Mount starts a check for session. NoToken and CachedAdmin resolve before
// Mount returns; otherwise the check enters Verifying and resolves in the
// background.
func (g *Guard) Mount(ctx context.Context, session Session) *Check {
	ctx, cancel := context.WithCancel(ctx)
	c := &Check{
		cancel:  cancel,
		done:    make(chan struct{}),
		onState: g.onState,
	}

	switch {
	case strings.TrimSpace(session.Token) == "":
		c.finish(decide(StateNoToken, nil, nil))
		return c
	case strings.EqualFold(strings.TrimSpace(session.CachedRole), g.adminRole):
		c.finish(decide(StateCachedAdmin, nil, nil))
		return c
	}

	c.emit(StateVerifying)
	go func() {
		roles, err := g.verify(ctx, session.Token)
		switch {
		case err != nil:
			g.logger.Debug("identity check failed", zap.Error(err))
			c.finish(decide(StateDenied, nil, err))
		case roles.Has(g.adminRole):
			c.finish(decide(StateAllowed, roles, nil))
		default:
			c.finish(decide(StateDenied, roles, nil))
		}
	}()
	return c
}

func (g *Guard) verify(ctx context.Context, token string) (RoleSet, error) {
	if g.verifier == nil {
		return nil, ErrUnauthorized
	}
	return g.verifier.Roles(ctx, token)
}

// Wait blocks until the check resolves and returns its decision. After
// Unmount the decision still resolves, usually as Denied with a context
// error.
func (c *Check) Wait() Decision {
	<-c.done
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decision
}

// Done is closed when the check resolves.
func (c *Check) Done() <-chan struct{} {
	return c.done
}

// Unmount cancels an in-flight identity request and stops state callbacks.
// It is safe to call more than once.
func (c *Check) Unmount() {
	c.mu.Lock()
	c.unmounted = true
	c.mu.Unlock()
	c.cancel()
}

func (c *Check) emit(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted || c.onState == nil {
		return
	}
	c.onState(s)
}

func (c *Check) finish(d Decision) {
	c.emit(d.State)

	c.mu.Lock()
	c.decision = d
	c.mu.Unlock()

	close(c.done)
	c.cancel()
}

func decide(s State, roles RoleSet, err error) Decision {
	d := Decision{State: s, Roles: roles, Err: err}
	switch s {
	case StateNoToken:
		d.Redirect = LoginPath
	case StateDenied:
		d.Redirect = LandingPath
	}
	return d
}
