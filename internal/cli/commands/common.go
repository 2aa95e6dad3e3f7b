package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alumnihub-dev/alumnihub/internal/cli/client"
	"github.com/alumnihub-dev/alumnihub/internal/cli/config"
	"github.com/alumnihub-dev/alumnihub/internal/cli/credentials"
	"github.com/alumnihub-dev/alumnihub/internal/cli/guard"
	"github.com/alumnihub-dev/alumnihub/internal/cli/session"
)

// app bundles the wired-up CLI services. Every command builds one via
// newApp instead of reaching for globals.
type app struct {
	cfg     *config.Config
	tokens  credentials.Store
	api     *client.Client
	session *session.Session
}

// newApp wires config, credential store, API client and session together.
// The session-invalidated hook prints the expiry notice exactly where the
// server rejected the credential, so every command gets it for free.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	tokens := credentials.Open()

	api := client.New(cfg.APIURL, tokens,
		client.WithSessionInvalidatedHook(func() {
			fmt.Fprintln(os.Stderr, "Your session has expired. Please log in again with 'alumnihub login'.")
		}),
	)

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	sess := session.New(api, tokens,
		session.WithSnapshotPath(filepath.Join(dir, "session.json")),
	)

	return &app{
		cfg:     cfg,
		tokens:  tokens,
		api:     api,
		session: sess,
	}, nil
}

// requireAuth guards a member-only command. On denial it has already
// printed the login hint; the returned error stops the command.
func (a *app) requireAuth(ctx context.Context) error {
	g := guard.New(a.session, func() {
		fmt.Fprintln(os.Stderr, "You are not logged in. Run 'alumnihub login' first.")
	})
	return g.Ensure(ctx)
}
