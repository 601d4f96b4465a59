// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"filippo.io/age"
	"filippo.io/age/armor"
	"golang.org/x/sys/unix"
)

// ErrNoCredential is returned by TokenStore.Load when nothing is stored.
var ErrNoCredential = errors.New("session: no stored credential")

// Credential is the persisted bearer token.
type Credential struct {
	Token string `json:"token"`

	// Server is the release service URL the token was issued by.
	Server string `json:"server"`

	SavedAt time.Time `json:"saved_at"`
}

// TokenStore persists the operator's credential between invocations.
type TokenStore interface {
	// Load returns the stored credential, or ErrNoCredential.
	Load() (Credential, error)

	// Save replaces the stored credential.
	Save(Credential) error

	// Clear removes the stored credential. Clearing an empty store is
	// not an error.
	Clear() error
}

// MemoryTokenStore keeps the credential in process memory.
type MemoryTokenStore struct {
	mu         sync.Mutex
	credential *Credential
}

// NewMemoryTokenStore returns a store holding initial, or an empty
// store when initial.Token is empty.
func NewMemoryTokenStore(initial Credential) *MemoryTokenStore {
	store := &MemoryTokenStore{}
	if initial.Token != "" {
		store.credential = &initial
	}
	return store
}

func (s *MemoryTokenStore) Load() (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credential == nil {
		return Credential{}, ErrNoCredential
	}
	return *s.credential, nil
}

func (s *MemoryTokenStore) Save(credential Credential) error {
	s.mu.Lock()
	s.credential = &credential
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	s.credential = nil
	s.mu.Unlock()
	return nil
}

// FileTokenStore keeps the credential in a JSON file, optionally
// encrypted to an age X25519 identity. Concurrent processes coordinate
// through an advisory lock on a sibling ".lock" file.
type FileTokenStore struct {
	path     string
	identity *age.X25519Identity
}

// NewFileTokenStore returns a store at path. When identity is non-nil
// the file is written as armored age ciphertext readable only with that
// identity.
func NewFileTokenStore(path string, identity *age.X25519Identity) *FileTokenStore {
	return &FileTokenStore{path: path, identity: identity}
}

// Path returns the credential file path.
func (s *FileTokenStore) Path() string { return s.path }

func (s *FileTokenStore) Load() (Credential, error) {
	var credential Credential
	err := s.withLock(unix.LOCK_SH, func() error {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return ErrNoCredential
			}
			return fmt.Errorf("session: reading %s: %w", s.path, err)
		}
		data, err = s.open(data)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &credential); err != nil {
			return fmt.Errorf("session: parsing %s: %w", s.path, err)
		}
		if credential.Token == "" {
			return ErrNoCredential
		}
		return nil
	})
	return credential, err
}

func (s *FileTokenStore) Save(credential Credential) error {
	data, err := json.MarshalIndent(credential, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshaling credential: %w", err)
	}
	data = append(data, '\n')
	data, err = s.seal(data)
	if err != nil {
		return err
	}

	return s.withLock(unix.LOCK_EX, func() error {
		temporaryPath := s.path + ".tmp"
		if err := os.WriteFile(temporaryPath, data, 0600); err != nil {
			return fmt.Errorf("session: writing %s: %w", temporaryPath, err)
		}
		if err := os.Rename(temporaryPath, s.path); err != nil {
			os.Remove(temporaryPath)
			return fmt.Errorf("session: renaming credential into place: %w", err)
		}
		return nil
	})
}

func (s *FileTokenStore) Clear() error {
	return s.withLock(unix.LOCK_EX, func() error {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("session: removing %s: %w", s.path, err)
		}
		return nil
	})
}

// withLock runs fn holding an flock of the given mode on path+".lock".
// The parent directory is created (0700) if missing.
func (s *FileTokenStore) withLock(mode int, fn func() error) error {
	directory := filepath.Dir(s.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("session: creating directory %s: %w", directory, err)
	}
	lockFile, err := os.OpenFile(s.path+".lock", os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("session: opening lock file: %w", err)
	}
	defer lockFile.Close()

	for {
		err = unix.Flock(int(lockFile.Fd()), mode)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("session: locking %s: %w", s.path, err)
	}
	defer unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)

	return fn()
}

func (s *FileTokenStore) seal(plaintext []byte) ([]byte, error) {
	if s.identity == nil {
		return plaintext, nil
	}
	var buffer bytes.Buffer
	armorWriter := armor.NewWriter(&buffer)
	writer, err := age.Encrypt(armorWriter, s.identity.Recipient())
	if err != nil {
		return nil, fmt.Errorf("session: creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("session: encrypting credential: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("session: finalizing age encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("session: finalizing age armor: %w", err)
	}
	return buffer.Bytes(), nil
}

// open decrypts data if it is age ciphertext. Plaintext files are
// accepted even when an identity is configured so that enabling
// encryption does not invalidate an existing login.
func (s *FileTokenStore) open(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte(armor.Header)) {
		return data, nil
	}
	if s.identity == nil {
		return nil, fmt.Errorf("session: %s is encrypted but no identity file is configured", s.path)
	}
	reader, err := age.Decrypt(armor.NewReader(bytes.NewReader(data)), s.identity)
	if err != nil {
		return nil, fmt.Errorf("session: decrypting %s: %w", s.path, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("session: reading decrypted credential: %w", err)
	}
	return plaintext, nil
}

// LoadIdentity reads the first X25519 identity from an age identity
// file. When create is true and the file does not exist, a new identity
// is generated and written there with mode 0600.
func LoadIdentity(path string, create bool) (*age.X25519Identity, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && create {
		identity, err := age.GenerateX25519Identity()
		if err != nil {
			return nil, fmt.Errorf("session: generating age identity: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("session: creating identity directory: %w", err)
		}
		content := fmt.Sprintf("# created: %s\n# public key: %s\n%s\n",
			time.Now().UTC().Format(time.RFC3339), identity.Recipient(), identity)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			return nil, fmt.Errorf("session: writing identity file: %w", err)
		}
		return identity, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: reading identity file %s: %w", path, err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("session: parsing identity file %s: %w", path, err)
	}
	for _, identity := range identities {
		if x25519, ok := identity.(*age.X25519Identity); ok {
			return x25519, nil
		}
	}
	return nil, fmt.Errorf("session: identity file %s contains no X25519 identity", path)
}

// SessionFilePath returns the credential file path: $SPREAD_SESSION_FILE
// if set, else $XDG_CONFIG_HOME/spread/session.json, else
// ~/.config/spread/session.json.
func SessionFilePath() string {
	if envPath := os.Getenv("SPREAD_SESSION_FILE"); envPath != "" {
		return envPath
	}
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "spread-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "spread", "session.json")
}
