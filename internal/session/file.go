package session

import (
	"os"
	"strings"
	"sync"

	apperrors "github.com/counterdesk/counterdesk/internal/errors"
)

// FileStore persists the token to a 0600 file so a login survives terminal
// restarts. The token is cached in memory; the file is read once at
// construction, never polled afterwards.
type FileStore struct {
	notifier

	path string

	mu    sync.RWMutex
	token string
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}

		return nil, apperrors.InternalError("Failed to read session file").WithError(err)
	}

	s.token = strings.TrimSpace(string(data))

	return s, nil
}

func (s *FileStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.token != ""
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()

	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		s.mu.Unlock()

		return apperrors.InternalError("Failed to write session file").WithError(err)
	}

	s.token = token
	s.mu.Unlock()

	s.notify(EventLogin)

	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.mu.Unlock()

		return apperrors.InternalError("Failed to remove session file").WithError(err)
	}

	had := s.token != ""
	s.token = ""
	s.mu.Unlock()

	if had {
		s.notify(EventLogout)
	}

	return nil
}
