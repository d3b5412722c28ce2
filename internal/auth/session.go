// Package auth holds the authentication session and the transitions that
// change it.
package auth

import (
	"github.com/notesapp/notes/internal/store"
	"github.com/notesapp/notes/pkg/domain"
)

// Session is the current authentication state. Authenticated is true
// exactly when Token is non-empty.
type Session struct {
	Token         string
	Authenticated bool
	User          *domain.User
}

// Action is a session transition.
type Action interface {
	authAction()
}

// LoginSucceeded records the token returned by a successful login.
type LoginSucceeded struct {
	Token string
	User  *domain.User
}

// SignupSucceeded records the token returned by a successful signup.
type SignupSucceeded struct {
	Token string
	User  *domain.User
}

// LogoutRequested clears the session.
type LogoutRequested struct{}

func (LoginSucceeded) authAction()  {}
func (SignupSucceeded) authAction() {}
func (LogoutRequested) authAction() {}

// Store is the session container.
type Store = store.Store[Session, Action]

// NewStore returns an empty, unauthenticated session store.
func NewStore() *Store {
	return store.New(Session{}, Reduce)
}

// Reduce applies a session transition.
func Reduce(s Session, a Action) Session {
	switch a := a.(type) {
	case LoginSucceeded:
		return signedIn(a.Token, a.User)
	case SignupSucceeded:
		return signedIn(a.Token, a.User)
	case LogoutRequested:
		return Session{}
	}
	return s
}

// An empty token never produces an authenticated session.
func signedIn(token string, user *domain.User) Session {
	if token == "" {
		return Session{}
	}
	return Session{Token: token, Authenticated: true, User: user}
}
