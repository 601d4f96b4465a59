// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
	"github.com/bureau-foundation/spread/lib/coordinator"
	"github.com/bureau-foundation/spread/lib/entitycache"
	"github.com/bureau-foundation/spread/lib/schema/release"
	"github.com/bureau-foundation/spread/lib/session"
)

// walkCommands visits every command in the tree with its full path.
func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := append(append([]string(nil), path...), command.Name)
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}

func TestCommandTree(t *testing.T) {
	walkCommands(Root(), nil, func(command *cli.Command, path []string) {
		name := strings.Join(path, " ")
		if len(path) > 1 && command.Summary == "" {
			t.Errorf("%s: missing Summary", name)
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: neither Run nor Subcommands", name)
		}
		seen := make(map[string]bool)
		for _, sub := range command.Subcommands {
			if seen[sub.Name] {
				t.Errorf("%s: duplicate subcommand %q", name, sub.Name)
			}
			seen[sub.Name] = true
		}
		// FlagsFromParams panics on a malformed params struct.
		if command.Flags != nil {
			command.Flags()
		}
	})
}

// fakeService is an in-memory release service holding one app, one
// environment, one version and two bundles.
type fakeService struct {
	mu        sync.Mutex
	current   string
	valid     map[string]bool
	calls     []string
	rollbacks []release.RollbackRequest
}

func newFakeService() *fakeService {
	return &fakeService{current: "b2", valid: map[string]bool{"b1": true, "b2": true}}
}

// snapshot returns copies of the recorded calls, rollbacks and enabled
// flags under the service lock.
func (f *fakeService) snapshot() (calls []string, rollbacks []release.RollbackRequest, valid map[string]bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	valid = make(map[string]bool, len(f.valid))
	for id, value := range f.valid {
		valid[id] = value
	}
	return append([]string(nil), f.calls...), append([]release.RollbackRequest(nil), f.rollbacks...), valid
}

func (f *fakeService) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, request.Method+" "+request.URL.Path)

	reply := func(data any) {
		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(map[string]any{"success": true, "data": data})
	}
	if request.Header.Get("Authorization") != "Bearer good" {
		writer.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(writer).Encode(map[string]any{"success": false, "error": "unauthorized"})
		return
	}

	switch path := request.URL.Path; {
	case path == "/core/user":
		reply(release.User{ID: "u1", Username: "admin"})
	case path == "/core/app":
		reply([]release.App{{ID: "a1", Name: "shop", OS: release.OSiOS}})
	case path == "/core/environment/a1":
		reply([]release.Environment{{ID: "e1", Name: "production", AccessKey: "key-1"}})
	case path == "/core/version":
		reply([]release.Version{{ID: "v1", EnvironmentID: "e1", AppVersion: "1.0.0", CurrentBundleID: f.current}})
	case path == "/core/version/v1":
		reply(release.Version{ID: "v1", EnvironmentID: "e1", AppVersion: "1.0.0", CurrentBundleID: f.current})
	case path == "/core/version/bundle/v1":
		reply([]release.Bundle{
			{ID: "b2", VersionID: "v1", SequenceID: 2, IsValid: f.valid["b2"]},
			{ID: "b1", VersionID: "v1", SequenceID: 1, IsValid: f.valid["b1"]},
		})
	case path == "/core/version/bundle/b1/active":
		f.current = "b1"
		reply(nil)
	case path == "/core/version/bundle/b1/valid":
		var body release.EnabledRequest
		json.NewDecoder(request.Body).Decode(&body)
		f.valid["b1"] = body.IsValid
		reply(nil)
	case path == "/core/rollback":
		var body release.RollbackRequest
		json.NewDecoder(request.Body).Decode(&body)
		f.rollbacks = append(f.rollbacks, body)
		f.current = "b1"
		reply(nil)
	default:
		writer.WriteHeader(http.StatusNotFound)
		json.NewEncoder(writer).Encode(map[string]any{"success": false, "error": "not found"})
	}
}

// signedIn isolates configuration paths, stores a valid credential for
// server, and returns the snapshot path.
func signedIn(t *testing.T, server string) string {
	t.Helper()
	directory := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(directory, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(directory, "cache"))
	t.Setenv("SPREAD_CONFIG", "")
	t.Setenv("SPREAD_SESSION_FILE", "")
	t.Setenv("SPREAD_SERVER", server)

	store := session.NewFileTokenStore(session.SessionFilePath(), nil)
	if err := store.Save(session.Credential{Token: "good", Server: server}); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(directory, "cache", "spread", "cache.snapshot")
}

// execute runs the command line and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	saved := os.Stdout
	os.Stdout = writer
	defer func() { os.Stdout = saved }()

	output := make(chan string)
	go func() {
		var buffer bytes.Buffer
		io.Copy(&buffer, reader)
		output <- buffer.String()
	}()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runErr := Root().Execute(context.Background(), args, logger)
	writer.Close()
	return <-output, runErr
}

func TestBundleActivateEndToEnd(t *testing.T) {
	service := newFakeService()
	server := httptest.NewServer(service)
	t.Cleanup(server.Close)
	snapshotPath := signedIn(t, server.URL)

	stdout, err := execute(t, "bundle", "activate", "v1", "b1", "--json")
	if err != nil {
		t.Fatalf("bundle activate: %v", err)
	}

	var view coordinator.VersionView
	if err := json.Unmarshal([]byte(stdout), &view); err != nil {
		t.Fatalf("decoding output %q: %v", stdout, err)
	}
	if view.Active == nil || view.Active.ID != "b1" {
		t.Errorf("active bundle = %+v, want b1", view.Active)
	}

	snapshot, err := entitycache.LoadFile(snapshotPath)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if snapshot.Server != server.URL || len(snapshot.Bundles) != 2 {
		t.Errorf("snapshot = server %q, %d bundles", snapshot.Server, len(snapshot.Bundles))
	}
}

func TestBundleActivateDisabledIsRefusedLocally(t *testing.T) {
	service := newFakeService()
	service.valid["b1"] = false
	server := httptest.NewServer(service)
	t.Cleanup(server.Close)
	signedIn(t, server.URL)

	_, err := execute(t, "bundle", "activate", "v1", "b1")
	if !errors.Is(err, coordinator.ErrBundleDisabled) {
		t.Fatalf("err = %v, want ErrBundleDisabled", err)
	}
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Errorf("category = %q, want validation", cli.CategoryOf(err))
	}
	calls, _, _ := service.snapshot()
	for _, call := range calls {
		if strings.HasSuffix(call, "/active") {
			t.Errorf("activation reached the service: %s", call)
		}
	}
}

func TestBundleDisableEndToEnd(t *testing.T) {
	service := newFakeService()
	server := httptest.NewServer(service)
	t.Cleanup(server.Close)
	signedIn(t, server.URL)

	stdout, err := execute(t, "bundle", "disable", "v1", "b1", "--json")
	if err != nil {
		t.Fatalf("bundle disable: %v", err)
	}
	var bundle release.Bundle
	if err := json.Unmarshal([]byte(stdout), &bundle); err != nil {
		t.Fatalf("decoding output %q: %v", stdout, err)
	}
	_, _, valid := service.snapshot()
	if bundle.IsValid || valid["b1"] {
		t.Errorf("bundle still enabled: output %v, service %v", bundle.IsValid, valid["b1"])
	}
}

func TestRollbackResolvesNames(t *testing.T) {
	service := newFakeService()
	server := httptest.NewServer(service)
	t.Cleanup(server.Close)
	signedIn(t, server.URL)

	if _, err := execute(t, "rollback", "v1", "--app", "shop", "--env", "prod", "--json"); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	_, rollbacks, _ := service.snapshot()
	if len(rollbacks) != 1 {
		t.Fatalf("rollbacks = %d, want 1", len(rollbacks))
	}
	want := release.RollbackRequest{AppID: "a1", EnvironmentID: "e1", VersionID: "v1"}
	if rollbacks[0] != want {
		t.Errorf("rollback request = %+v, want %+v", rollbacks[0], want)
	}
}

func TestExpiredSessionClearsState(t *testing.T) {
	service := newFakeService()
	server := httptest.NewServer(service)
	t.Cleanup(server.Close)
	snapshotPath := signedIn(t, server.URL)
	if err := session.NewFileTokenStore(session.SessionFilePath(), nil).Save(
		session.Credential{Token: "revoked", Server: server.URL}); err != nil {
		t.Fatal(err)
	}
	if err := entitycache.SaveFile(snapshotPath, &entitycache.Snapshot{Server: server.URL}, entitycache.CompressionNone); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "app", "list")
	if cli.CategoryOf(err) != cli.CategoryForbidden {
		t.Fatalf("category = %q, want forbidden (err: %v)", cli.CategoryOf(err), err)
	}
	if _, statErr := os.Stat(session.SessionFilePath()); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("session file survived: %v", statErr)
	}
	if _, statErr := os.Stat(snapshotPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("snapshot survived: %v", statErr)
	}
}

func TestUnknownCommandSuggestion(t *testing.T) {
	_, err := execute(t, "rolback")
	if err == nil || !strings.Contains(err.Error(), `did you mean "rollback"`) {
		t.Errorf("err = %v, want a rollback suggestion", err)
	}
}
