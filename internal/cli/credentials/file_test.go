package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return &FileStore{path: filepath.Join(t.TempDir(), "token")}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestFileStore(t)

	if store.HasCredential() {
		t.Fatal("empty store should not report a credential")
	}
	if _, err := store.Get(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set("tok-123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	token, err := store.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if token != "tok-123" {
		t.Fatalf("expected tok-123, got %q", token)
	}
	if !store.HasCredential() {
		t.Fatal("store should report a credential after Set")
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	store := newTestFileStore(t)

	if err := store.Set("first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("second"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	token, err := store.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if token != "second" {
		t.Fatalf("expected second, got %q", token)
	}
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	store := newTestFileStore(t)

	if err := store.Set("tok"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("first Clear failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}

	if store.HasCredential() {
		t.Fatal("store should be empty after Clear")
	}
	if _, err := store.Get(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStorePermissions(t *testing.T) {
	store := newTestFileStore(t)

	if err := store.Set("secret"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(store.path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}

func TestFileStoreEmptyFileIsNotFound(t *testing.T) {
	store := newTestFileStore(t)

	if err := os.WriteFile(store.path, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	if _, err := store.Get(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank file, got %v", err)
	}
	if store.HasCredential() {
		t.Fatal("blank file should not count as a credential")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Get(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set("tok"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	token, err := store.Get()
	if err != nil || token != "tok" {
		t.Fatalf("Get returned %q, %v", token, err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.HasCredential() {
		t.Fatal("store should be empty after Clear")
	}
}
