// Package guard gates access to member-only commands. It decides from
// local state first and fetches the profile at most once per guard, so a
// command pipeline never triggers duplicate profile requests.
package guard

import (
	"context"
	"errors"
	"sync"
)

// ErrNotAuthenticated is returned when access is denied
var ErrNotAuthenticated = errors.New("not authenticated")

// Auth is the slice of the session the guard needs
type Auth interface {
	HasCredential() bool
	IsAuthenticated() bool
	FetchUser(ctx context.Context) error
}

// Guard checks authentication before a protected command runs. One Guard
// serves one command invocation; its profile fetch runs at most once.
type Guard struct {
	auth     Auth
	redirect func()

	once sync.Once
	err  error
}

// New creates a guard. redirect is invoked on denial (typically to print
// a login hint or open the login flow); nil is allowed.
func New(auth Auth, redirect func()) *Guard {
	return &Guard{auth: auth, redirect: redirect}
}

// Ensure verifies the caller may proceed. With no stored credential it
// denies immediately without touching the network. With a credential but
// no confirmed user it fetches the profile once; the fetch outcome is
// cached for the guard's lifetime.
func (g *Guard) Ensure(ctx context.Context) error {
	g.once.Do(func() {
		if !g.auth.HasCredential() {
			g.deny()
			return
		}

		if g.auth.IsAuthenticated() {
			return
		}

		if err := g.auth.FetchUser(ctx); err != nil {
			g.deny()
			return
		}

		if !g.auth.IsAuthenticated() {
			g.deny()
		}
	})

	return g.err
}

func (g *Guard) deny() {
	g.err = ErrNotAuthenticated
	if g.redirect != nil {
		g.redirect()
	}
}
