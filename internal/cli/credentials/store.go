// Package credentials persists the single bearer token that proves an
// authenticated session. Exactly one credential exists per user profile;
// it is written on login or registration and removed on logout or when
// the server rejects it.
package credentials

import (
	"errors"
	"os"
)

// ErrNotFound is returned by Get when no credential is stored
var ErrNotFound = errors.New("no credential stored")

// Store is the interface all token backends implement.
// Clear is idempotent: clearing an empty store is a no-op, not an error.
type Store interface {
	Set(token string) error
	Get() (string, error)
	Clear() error
	HasCredential() bool
}

// Open returns the default store for this machine: the OS keyring, or the
// file-backed store when ALUMNIHUB_NO_KEYRING is set (headless hosts, CI).
func Open() Store {
	if os.Getenv("ALUMNIHUB_NO_KEYRING") != "" {
		return NewFileStore("")
	}
	return NewKeyringStore()
}
