package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the token in a 0600 file under the user config dir.
// Used where no OS keyring is available.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed token store. An empty path uses
// ~/.config/alumnihub/token.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) tokenPath() (string, error) {
	if s.path != "" {
		return s.path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "alumnihub", "token"), nil
}

func (s *FileStore) Set(token string) error {
	path, err := s.tokenPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write to a temp file then rename so a crash never leaves a torn token
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

func (s *FileStore) Get() (string, error) {
	path, err := s.tokenPath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotFound
	}

	return token, nil
}

func (s *FileStore) Clear() error {
	path, err := s.tokenPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func (s *FileStore) HasCredential() bool {
	_, err := s.Get()
	return err == nil
}
