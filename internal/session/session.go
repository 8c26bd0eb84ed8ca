// Package session holds the client's view of the server session: whether it
// is authenticated and as whom.
//
// The holder starts in the initializing state and resolves after a single
// request to the current-user endpoint. Network failures during that request
// resolve to "not authenticated"; they are never surfaced as errors.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/naveenspark/estate/internal/logging"
	"github.com/naveenspark/estate/pkg/client"
	"github.com/naveenspark/estate/pkg/domain"
)

// API is the part of the backend client the session needs.
type API interface {
	GetMe(ctx context.Context) (*domain.UserProfile, error)
	Logout(ctx context.Context) error
	ClearSession() error
}

// State is a snapshot of the session.
type State struct {
	Authenticated bool
	User          *domain.UserProfile
	Initializing  bool
}

// Session is the process-wide authentication state. It is safe for
// concurrent use.
type Session struct {
	api API
	log *zap.Logger

	mu    sync.RWMutex
	state State
}

// New returns a session in the initializing state.
func New(api API, log *zap.Logger) *Session {
	return &Session{
		api:   api,
		log:   logging.OrNop(log).Named("session"),
		state: State{Initializing: true},
	}
}

// State returns a copy of the current state. The profile is copied too.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Initialize asks the backend once and resolves the session.
func (s *Session) Initialize(ctx context.Context) State {
	return s.check(ctx, "initialize")
}

// Refresh asks the backend again, e.g. after a browser sign-in. Failure means
// unauthenticated, same as Initialize.
func (s *Session) Refresh(ctx context.Context) State {
	return s.check(ctx, "refresh")
}

func (s *Session) check(ctx context.Context, op string) State {
	me, err := s.api.GetMe(ctx)
	s.mu.Lock()
	if err != nil {
		s.state = State{}
	} else {
		s.state = State{Authenticated: true, User: me}
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Debug("session check: not authenticated",
			zap.String("op", op), zap.Int("status", client.StatusCode(err)), zap.Error(err))
	} else {
		s.log.Info("session check: authenticated", zap.String("op", op), zap.String("email", me.Email))
	}
	return s.State()
}

// Login marks the session authenticated after a successful credential round
// trip and re-fetches the profile. If the fetch fails the session is still
// marked authenticated, with no profile, so the UI can proceed.
func (s *Session) Login(ctx context.Context) State {
	me, err := s.api.GetMe(ctx)
	if err != nil {
		s.log.Warn("profile fetch after login failed; continuing without profile",
			zap.Int("status", client.StatusCode(err)), zap.Error(err))
		me = nil
	}
	s.mu.Lock()
	s.state = State{Authenticated: true, User: me}
	s.mu.Unlock()
	return s.State()
}

// Logout asks the backend to end the session and clears local state no
// matter what the backend says.
func (s *Session) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn("backend logout failed", zap.Error(err))
	}
	if err := s.api.ClearSession(); err != nil {
		s.log.Warn("clear local credentials failed", zap.Error(err))
	}
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
}
