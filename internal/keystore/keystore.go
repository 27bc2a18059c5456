// Package keystore owns the single symmetric key used to encrypt secrets at
// rest. The key lives in one file at an operator-configured path; it is
// generated once, on first startup, and loaded on every startup after that.
package keystore

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/yurizz-crypto/passvault/internal/crypto"
)

// ErrKeyUnavailable indicates the key file exists but cannot be read or does
// not decode to a key of the required length. This is fatal: serving traffic
// with a fresh key would orphan every existing ciphertext, so the store never
// replaces a malformed key file on its own.
var ErrKeyUnavailable = errors.New("encryption key unavailable")

// KeyStore loads or generates the process-wide encryption key. The first call
// to Load performs the file I/O exactly once; afterwards Key returns the
// cached value with no I/O and is safe for concurrent use.
type KeyStore struct {
	path string

	once sync.Once
	key  []byte
	err  error
}

// New creates a KeyStore for the key file at path. No I/O happens until Load.
func New(path string) *KeyStore {
	return &KeyStore{path: path}
}

// Load reads the key file, or generates and persists a new key if the file
// does not exist. Idempotent: concurrent and repeated calls resolve to the
// single outcome of the first.
func (s *KeyStore) Load() error {
	s.once.Do(func() {
		s.key, s.err = s.loadOrGenerate()
	})
	return s.err
}

// Key returns the cached key. Load must have succeeded first.
func (s *KeyStore) Key() []byte {
	if s.key == nil {
		panic("keystore: Key called before successful Load")
	}
	return s.key
}

func (s *KeyStore) loadOrGenerate() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		return decodeKey(data, s.path)
	case errors.Is(err, fs.ErrNotExist):
		return s.generate()
	default:
		return nil, fmt.Errorf("%w: read %s: %w", ErrKeyUnavailable, s.path, err)
	}
}

// decodeKey validates the stored form: base64 text of exactly KeySize raw
// bytes. Trailing newlines from manual file edits are tolerated.
func decodeKey(data []byte, path string) ([]byte, error) {
	trimmed := string(data)
	for len(trimmed) > 0 && (trimmed[len(trimmed)-1] == '\n' || trimmed[len(trimmed)-1] == '\r') {
		trimmed = trimmed[:len(trimmed)-1]
	}

	key, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64: %w", ErrKeyUnavailable, path, err)
	}
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("%w: %s decodes to %d bytes, want %d", ErrKeyUnavailable, path, len(key), crypto.KeySize)
	}

	return key, nil
}

// generate creates a fresh random key and persists it before returning it.
// The write goes through a temp file and rename so a crash mid-write cannot
// leave a truncated key file behind.
func (s *KeyStore) generate() ([]byte, error) {
	key := make([]byte, crypto.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create key directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp key file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoded := base64.StdEncoding.EncodeToString(key)
	if _, err := tmp.WriteString(encoded + "\n"); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write key file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("chmod key file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close key file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return nil, fmt.Errorf("persist key file %s: %w", s.path, err)
	}

	return key, nil
}
