// Package session is the single source of truth for "who is using the
// CLI right now". All credential and gateway interaction for auth flows
// goes through the four operations Login, Logout, FetchUser and
// SetUser/ClearAuth; nothing else may mutate session state.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alumnihub-dev/alumnihub/internal/cli/client"
	"github.com/alumnihub-dev/alumnihub/internal/cli/credentials"
)

// State is the session lifecycle state
type State int

const (
	// StateAnonymous means no user and no operation in flight
	StateAnonymous State = iota
	// StateLoading means an auth operation is in flight
	StateLoading
	// StateAuthenticated means a user is present and a credential exists
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// StalePolicy controls what happens when an operation settles after a
// newer operation has already started.
type StalePolicy int

const (
	// LastWriteWins lets every settle overwrite state, matching the
	// historical behavior where the slowest response wins
	LastWriteWins StalePolicy = iota
	// IgnoreStale drops settles from superseded operations
	IgnoreStale
)

// API is the slice of the gateway the session needs
type API interface {
	Login(ctx context.Context, identifier, password string) (*client.AuthResult, error)
	Logout(ctx context.Context) (*client.MessageResponse, error)
	GetCurrentUser(ctx context.Context) (*client.User, error)
}

// snapshot is what survives restarts. The loading flag is deliberately
// absent: a persisted "loading" would wedge the UI forever.
type snapshot struct {
	User            *client.User `json:"user"`
	IsAuthenticated bool         `json:"is_authenticated"`
}

// Session tracks the authenticated user across CLI invocations
type Session struct {
	api          API
	tokens       credentials.Store
	snapshotPath string
	policy       StalePolicy
	logger       zerolog.Logger

	mu      sync.Mutex
	user    *client.User
	state   State
	seq     uint64 // bumped per operation, used by IgnoreStale
	loading int    // operations currently in flight
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithStalePolicy selects how late-settling operations are handled
func WithStalePolicy(policy StalePolicy) Option {
	return func(s *Session) {
		s.policy = policy
	}
}

// WithSnapshotPath overrides where the session snapshot is persisted
func WithSnapshotPath(path string) Option {
	return func(s *Session) {
		s.snapshotPath = path
	}
}

// New constructs a session and rehydrates it from the persisted snapshot.
// A snapshot only counts as authenticated when the user object AND the
// credential are both still present.
func New(api API, tokens credentials.Store, opts ...Option) *Session {
	s := &Session{
		api:    api,
		tokens: tokens,
		logger: zerolog.Nop(),
		state:  StateAnonymous,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.rehydrate()

	return s
}

func (s *Session) rehydrate() {
	path, err := s.resolveSnapshotPath()
	if err != nil {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn().Err(err).Msg("discarding corrupt session snapshot")
		return
	}

	if snap.IsAuthenticated && snap.User != nil && s.tokens.HasCredential() {
		s.user = snap.User
		s.state = StateAuthenticated
	}
}

func (s *Session) resolveSnapshotPath() (string, error) {
	if s.snapshotPath != "" {
		return s.snapshotPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "alumnihub", "session.json"), nil
}

// persist writes the snapshot. Failures are logged, never surfaced; a
// missing snapshot only costs a refetch on the next run.
func (s *Session) persist(user *client.User, authenticated bool) {
	path, err := s.resolveSnapshotPath()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to resolve snapshot path")
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		s.logger.Warn().Err(err).Msg("failed to create config directory")
		return
	}

	data, err := json.Marshal(snapshot{User: user, IsAuthenticated: authenticated})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal session snapshot")
		return
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write session snapshot")
	}
}

// begin marks an operation in flight and returns its sequence number
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.loading++
	s.state = StateLoading
	return s.seq
}

// settle applies an operation's outcome. Under IgnoreStale, outcomes of
// superseded operations are dropped (their loading accounting still runs).
func (s *Session) settle(op uint64, user *client.User, authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading--

	if s.policy == IgnoreStale && op != s.seq {
		if s.loading == 0 && s.state == StateLoading {
			// Nothing newer is in flight; fall back to what we know
			if s.user != nil {
				s.state = StateAuthenticated
			} else {
				s.state = StateAnonymous
			}
		}
		return
	}

	s.user = user
	if authenticated {
		s.state = StateAuthenticated
	} else {
		s.state = StateAnonymous
	}

	s.persist(user, authenticated)
}

// Login authenticates and populates the session. On failure the session
// resets to anonymous and the error is returned so the UI can show it.
func (s *Session) Login(ctx context.Context, identifier, password string) error {
	op := s.begin()

	result, err := s.api.Login(ctx, identifier, password)
	if err != nil {
		s.settle(op, nil, false)
		return err
	}

	s.settle(op, result.User, true)
	return nil
}

// Logout clears local state unconditionally. The server call is best
// effort: a failure is logged, never returned, because a member asking to
// log out must always end up logged out locally.
func (s *Session) Logout(ctx context.Context) {
	op := s.begin()

	if _, err := s.api.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
	}

	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear credential")
	}

	s.settle(op, nil, false)
}

// FetchUser refreshes the profile using the stored credential. With no
// credential present it settles to anonymous without any network call.
// On failure the credential is cleared and the error returned; the caller
// decides whether to redirect.
func (s *Session) FetchUser(ctx context.Context) error {
	if !s.tokens.HasCredential() {
		op := s.begin()
		s.settle(op, nil, false)
		return nil
	}

	op := s.begin()

	user, err := s.api.GetCurrentUser(ctx)
	if err != nil {
		// The gateway already clears the credential on 401; clear here
		// too so non-401 failures don't leave a half-valid session
		if clearErr := s.tokens.Clear(); clearErr != nil {
			s.logger.Warn().Err(clearErr).Msg("failed to clear credential")
		}
		s.settle(op, nil, false)
		return err
	}

	s.settle(op, user, true)
	return nil
}

// SetUser installs a profile obtained outside Login (registration,
// profile update). The credential must already be stored.
func (s *Session) SetUser(user *client.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	if user != nil && s.tokens.HasCredential() {
		s.state = StateAuthenticated
		s.persist(user, true)
	} else {
		s.state = StateAnonymous
		s.persist(nil, false)
	}
}

// ClearAuth drops the session and credential without a server call
func (s *Session) ClearAuth() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear credential")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.state = StateAnonymous
	s.persist(nil, false)
}

// CurrentUser returns the session's user, nil when anonymous
func (s *Session) CurrentUser() *client.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a user is present and a credential exists
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	user := s.user
	state := s.state
	s.mu.Unlock()
	return state == StateAuthenticated && user != nil && s.tokens.HasCredential()
}

// IsLoading reports whether any auth operation is in flight
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateLoading
}

// HasCredential reports whether a credential is stored
func (s *Session) HasCredential() bool {
	return s.tokens.HasCredential()
}
