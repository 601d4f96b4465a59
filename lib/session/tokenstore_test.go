// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filippo.io/age"
	"filippo.io/age/armor"
)

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spread", "session.json")
	store := NewFileTokenStore(path, nil)

	if _, err := store.Load(); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("Load on empty store: %v, want ErrNoCredential", err)
	}

	saved := Credential{Token: "tok-1", Server: "https://releases.test", SavedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %o, want 0600", info.Mode().Perm())
	}
	directoryInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if directoryInfo.Mode().Perm() != 0700 {
		t.Errorf("directory mode = %o, want 0700", directoryInfo.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"token": "tok-1"`) {
		t.Errorf("file content = %s, want plaintext JSON", data)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Token != saved.Token || loaded.Server != saved.Server || !loaded.SavedAt.Equal(saved.SavedAt) {
		t.Errorf("loaded = %+v, want %+v", loaded, saved)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoCredential) {
		t.Errorf("Load after Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestFileTokenStoreEncrypted(t *testing.T) {
	directory := t.TempDir()
	identity, err := LoadIdentity(filepath.Join(directory, "identity.txt"), true)
	if err != nil {
		t.Fatalf("LoadIdentity(create): %v", err)
	}

	path := filepath.Join(directory, "session.json")
	store := NewFileTokenStore(path, identity)
	if err := store.Save(Credential{Token: "secret-token"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, _ := os.ReadFile(path)
	if bytes.Contains(data, []byte("secret-token")) {
		t.Fatal("token visible in encrypted file")
	}
	if !bytes.HasPrefix(data, []byte(armor.Header)) {
		t.Errorf("file does not start with the age armor header")
	}

	reloaded, err := LoadIdentity(filepath.Join(directory, "identity.txt"), false)
	if err != nil {
		t.Fatalf("LoadIdentity: %v", err)
	}
	if reloaded.Recipient().String() != identity.Recipient().String() {
		t.Error("reloaded identity differs from generated identity")
	}

	loaded, err := NewFileTokenStore(path, reloaded).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Token != "secret-token" {
		t.Errorf("token = %q", loaded.Token)
	}

	if _, err := NewFileTokenStore(path, nil).Load(); err == nil {
		t.Error("Load of encrypted file without identity succeeded")
	}

	other, _ := age.GenerateX25519Identity()
	if _, err := NewFileTokenStore(path, other).Load(); err == nil {
		t.Error("Load with the wrong identity succeeded")
	}
}

func TestFileTokenStoreReadsPlaintextWithIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := NewFileTokenStore(path, nil).Save(Credential{Token: "legacy"}); err != nil {
		t.Fatal(err)
	}
	identity, _ := age.GenerateX25519Identity()
	loaded, err := NewFileTokenStore(path, identity).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Token != "legacy" {
		t.Errorf("token = %q", loaded.Token)
	}
}

func TestLoadIdentityMissing(t *testing.T) {
	if _, err := LoadIdentity(filepath.Join(t.TempDir(), "absent.txt"), false); err == nil {
		t.Error("LoadIdentity on a missing file without create succeeded")
	}
}

func TestSessionFilePath(t *testing.T) {
	t.Run("explicit override", func(t *testing.T) {
		t.Setenv("SPREAD_SESSION_FILE", "/tmp/custom.json")
		if got := SessionFilePath(); got != "/tmp/custom.json" {
			t.Errorf("SessionFilePath = %q", got)
		}
	})
	t.Run("xdg config home", func(t *testing.T) {
		t.Setenv("SPREAD_SESSION_FILE", "")
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		if got := SessionFilePath(); got != "/tmp/xdg/spread/session.json" {
			t.Errorf("SessionFilePath = %q", got)
		}
	})
}
