package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PlainFileStore keeps credentials as unencrypted JSON, relying on file
// permissions alone. It is the fallback for environments without a
// device secret to derive an encryption key from; prefer
// EncryptedFileStore wherever one is available.
type PlainFileStore struct {
	path string
}

// NewPlainFileStore creates a store writing to path.
func NewPlainFileStore(path string) *PlainFileStore {
	return &PlainFileStore{path: path}
}

func (s *PlainFileStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode credentials: %w", err)
	}
	return &creds, nil
}

func (s *PlainFileStore) Save(creds *Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

func (s *PlainFileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}
