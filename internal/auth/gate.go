package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var errMissingChecker = errors.New("auth: credential checker required")

// Session is the gate's view of who is signed in. CurrentUser is present iff authenticated.
type Session struct {
	currentUser *Identity
}

// IsAuthenticated reports whether a caller is signed in.
func (s Session) IsAuthenticated() bool {
	return s.currentUser != nil
}

// CurrentUser returns the authenticated identity, if any.
func (s Session) CurrentUser() (Identity, bool) {
	if s.currentUser == nil {
		return Identity{}, false
	}
	return *s.currentUser, true
}

// Token returns the bearer token of the current identity, if any.
func (s Session) Token() string {
	if s.currentUser == nil {
		return ""
	}
	return s.currentUser.Token
}

// SessionListener observes session transitions.
type SessionListener func(previous, current Session)

// GateConfig configures a Gate.
type GateConfig struct {
	Checker CredentialChecker
	Logger  *zap.Logger
}

// Gate tracks whether the process has an authenticated caller.
// Sessions do not expire; Logout is the only way back to unauthenticated.
type Gate struct {
	mu        sync.RWMutex
	session   Session
	checker   CredentialChecker
	logger    *zap.Logger
	listeners []SessionListener
}

// NewGate constructs an unauthenticated gate.
func NewGate(cfg GateConfig) (*Gate, error) {
	if cfg.Checker == nil {
		return nil, errMissingChecker
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		checker: cfg.Checker,
		logger:  logger,
	}, nil
}

// Authenticate checks the credential pair and opens the gate on success.
// A rejected pair leaves the previous state untouched.
func (g *Gate) Authenticate(ctx context.Context, identifier, secret string) (Session, error) {
	identity, err := g.checker.Check(ctx, identifier, secret)
	if err != nil {
		g.logger.Info("authentication rejected", zap.Error(err))
		if errors.Is(err, ErrAuthFailed) {
			return g.Session(), err
		}
		return g.Session(), fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	g.mu.Lock()
	previous := g.session
	g.session = Session{currentUser: &identity}
	current := g.session
	listeners := append([]SessionListener(nil), g.listeners...)
	g.mu.Unlock()

	g.logger.Info("session opened", zap.String("subject", identity.Subject))
	for _, listener := range listeners {
		listener(previous, current)
	}
	return current, nil
}

// Logout closes the gate.
func (g *Gate) Logout() {
	g.mu.Lock()
	previous := g.session
	g.session = Session{}
	listeners := append([]SessionListener(nil), g.listeners...)
	g.mu.Unlock()

	if !previous.IsAuthenticated() {
		return
	}
	g.logger.Info("session closed")
	for _, listener := range listeners {
		listener(previous, Session{})
	}
}

// Session returns the current session.
func (g *Gate) Session() Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// IsAuthenticated reports whether the gate is open.
func (g *Gate) IsAuthenticated() bool {
	return g.Session().IsAuthenticated()
}

// Require returns ErrNotAuthenticated while the gate is closed.
func (g *Gate) Require() error {
	if !g.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// OnChange registers a listener invoked after every transition.
func (g *Gate) OnChange(listener SessionListener) {
	if listener == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, listener)
}
