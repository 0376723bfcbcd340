package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/skillsenselab/authbridge/encryption"
	"github.com/skillsenselab/authbridge/errors"
	"github.com/skillsenselab/authbridge/identity"
)

// FileStore persists token records in a single JSON document.
// Writes replace the file atomically (temp file + rename) with 0600
// permissions. An optional Encryptor seals the document at rest.
type FileStore struct {
	mu        sync.Mutex
	path      string
	encryptor encryption.Encryptor
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithEncryptor seals the persisted document with the given encryptor.
func WithEncryptor(enc encryption.Encryptor) FileOption {
	return func(s *FileStore) { s.encryptor = enc }
}

// NewFileStore creates a file-backed token store at path.
// The parent directory is created if needed.
func NewFileStore(path string, opts ...FileOption) (*FileStore, error) {
	if path == "" {
		return nil, errors.MissingField("path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.StorageError(err)
	}
	s := &FileStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load retrieves a provider's record. Returns (nil, nil) if absent.
func (s *FileStore) Load(_ context.Context, p identity.Provider) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, err
	}
	rec, ok := records[Key(p)]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

// Save persists a provider's record.
func (s *FileStore) Save(_ context.Context, p identity.Provider, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	records[Key(p)] = *rec
	return s.write(records)
}

// Delete removes a provider's record.
func (s *FileStore) Delete(_ context.Context, p identity.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := records[Key(p)]; !ok {
		return nil
	}
	delete(records, Key(p))
	return s.write(records)
}

func (s *FileStore) read() (map[string]Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]Record), nil
	}
	if err != nil {
		return nil, errors.StorageError(err)
	}
	if len(data) == 0 {
		return make(map[string]Record), nil
	}

	if s.encryptor != nil {
		data, err = s.encryptor.Decrypt(string(data))
		if err != nil {
			return nil, errors.StorageError(fmt.Errorf("unseal token file: %w", err))
		}
	}

	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.StorageError(fmt.Errorf("parse token file: %w", err))
	}
	return records, nil
}

func (s *FileStore) write(records map[string]Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return errors.StorageError(err)
	}

	if s.encryptor != nil {
		sealed, err := s.encryptor.Encrypt(data)
		if err != nil {
			return errors.StorageError(fmt.Errorf("seal token file: %w", err))
		}
		data = []byte(sealed)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.StorageError(err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.StorageError(err)
	}
	return nil
}

// compile-time interface check
var _ Store = (*FileStore)(nil)
