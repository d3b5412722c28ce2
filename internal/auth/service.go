package auth

import (
	"context"
	"errors"

	"github.com/notesapp/notes/pkg/client"
	"github.com/notesapp/notes/pkg/domain"
)

var errNoToken = errors.New("auth response carried no token")

// API is the subset of the notes client used for authentication.
type API interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error)
	Signup(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error)
}

// Service sequences auth requests into session transitions.
type Service struct {
	api   API
	store *Store
}

// NewService creates a Service that dispatches into st.
func NewService(api API, st *Store) *Service {
	return &Service{api: api, store: st}
}

// Login authenticates and, on success, records the session. On failure the
// session is left untouched and the client error is returned. A response
// without a token is a decode failure.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (Session, error) {
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return s.store.State(), err
	}
	return s.settle(client.OpLogin, LoginSucceeded{Token: resp.Token, User: resp.User})
}

// Signup registers and, on success, records the session.
func (s *Service) Signup(ctx context.Context, creds domain.Credentials) (Session, error) {
	resp, err := s.api.Signup(ctx, creds)
	if err != nil {
		return s.store.State(), err
	}
	return s.settle(client.OpSignup, SignupSucceeded{Token: resp.Token, User: resp.User})
}

func (s *Service) settle(op string, a Action) (Session, error) {
	next := s.store.Dispatch(a)
	if !next.Authenticated {
		return next, &client.RequestError{
			Op:      op,
			Kind:    client.KindDecode,
			Message: client.DefaultMessage(op),
			Err:     errNoToken,
		}
	}
	return next, nil
}

// Restore re-establishes a session from a persisted token.
func (s *Service) Restore(token string) Session {
	return s.store.Dispatch(LoginSucceeded{Token: token})
}

// Logout clears the session.
func (s *Service) Logout() Session {
	return s.store.Dispatch(LogoutRequested{})
}

// Token returns the current bearer token, or "" when signed out.
func (s *Service) Token() string {
	return s.store.State().Token
}

// Session returns the current session.
func (s *Service) Session() Session {
	return s.store.State()
}
