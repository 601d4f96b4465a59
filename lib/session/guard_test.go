// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/spread/gateway"
	"github.com/bureau-foundation/spread/lib/coordinator"
	"github.com/bureau-foundation/spread/lib/entitycache"
	"github.com/bureau-foundation/spread/lib/navigation"
	"github.com/bureau-foundation/spread/lib/schema/release"
)

type fakeAuthenticator struct {
	loginToken string
	loginErr   error

	userCalls atomic.Int32
	userErr   error
	user      release.User
	// unblock, when non-nil, blocks CurrentUser until closed.
	unblock chan struct{}
}

func (f *fakeAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	return f.loginToken, f.loginErr
}

func (f *fakeAuthenticator) CurrentUser(ctx context.Context) (release.User, error) {
	f.userCalls.Add(1)
	if f.unblock != nil {
		<-f.unblock
	}
	return f.user, f.userErr
}

// recorder logs side effects from the store, cache hook, and navigator
// into one ordered list.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type recordingStore struct {
	*MemoryTokenStore
	recorder *recorder
}

func (s recordingStore) Clear() error {
	s.recorder.add("clear credential")
	return s.MemoryTokenStore.Clear()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type guardFixture struct {
	guard    *Guard
	remote   *fakeAuthenticator
	store    *MemoryTokenStore
	cache    *entitycache.Cache
	recorder *recorder
}

func newFixture(t *testing.T, storedToken string) *guardFixture {
	t.Helper()
	events := &recorder{}
	memory := NewMemoryTokenStore(Credential{Token: storedToken, Server: "https://releases.test"})
	cache := entitycache.New()
	cache.Apps.ReplaceAll([]release.App{{ID: "a1", Name: "shop"}})
	remote := &fakeAuthenticator{user: release.User{ID: "u1", Username: "admin"}}

	guard, err := NewGuard(Config{
		Remote: remote,
		Store:  recordingStore{MemoryTokenStore: memory, recorder: events},
		Cache:  cache,
		Navigator: navigation.Func(func(route navigation.Route) {
			if cache.Apps.Len() != 0 {
				t.Error("navigation observed cached data from the ended session")
			}
			events.add("navigate " + string(route))
		}),
		Server: "https://releases.test",
		OnCacheCleared: func() {
			if cache.Apps.Len() != 0 {
				t.Error("OnCacheCleared ran before the cache was reset")
			}
			events.add("clear cache")
		},
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	return &guardFixture{guard: guard, remote: remote, store: memory, cache: cache, recorder: events}
}

func TestInitialState(t *testing.T) {
	if state := newFixture(t, "tok").guard.State(); state != StateValidating {
		t.Errorf("with stored token: state = %v, want validating", state)
	}
	if state := newFixture(t, "").guard.State(); state != StateUnauthenticated {
		t.Errorf("without stored token: state = %v, want unauthenticated", state)
	}
}

func TestInitialStateIgnoresOtherServer(t *testing.T) {
	guard, err := NewGuard(Config{
		Remote: &fakeAuthenticator{},
		Store:  NewMemoryTokenStore(Credential{Token: "tok", Server: "https://elsewhere.test"}),
		Cache:  entitycache.New(),
		Server: "https://releases.test",
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if guard.State() != StateUnauthenticated || guard.Token() != "" {
		t.Errorf("state = %v token = %q, want unauthenticated with no token", guard.State(), guard.Token())
	}
}

func TestValidateSuccess(t *testing.T) {
	fixture := newFixture(t, "tok")
	if err := fixture.guard.Validate(context.Background()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if fixture.guard.State() != StateAuthenticated {
		t.Errorf("state = %v, want authenticated", fixture.guard.State())
	}
	user, ok := fixture.guard.User()
	if !ok || user.Username != "admin" {
		t.Errorf("User() = %+v, %v", user, ok)
	}
	if err := fixture.guard.Require(); err != nil {
		t.Errorf("Require: %v", err)
	}

	// Idempotent.
	if err := fixture.guard.Validate(context.Background()); err != nil {
		t.Fatalf("second Validate: %v", err)
	}
	if fixture.guard.State() != StateAuthenticated {
		t.Errorf("state after second Validate = %v", fixture.guard.State())
	}
}

func TestValidateWithoutToken(t *testing.T) {
	fixture := newFixture(t, "")
	if err := fixture.guard.Validate(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("Validate = %v, want ErrUnauthenticated", err)
	}
	if fixture.remote.userCalls.Load() != 0 {
		t.Error("Validate without a token called the remote")
	}
	if err := fixture.guard.Require(); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Require = %v", err)
	}
}

func TestValidateRejected(t *testing.T) {
	fixture := newFixture(t, "expired")
	fixture.remote.userErr = &gateway.Error{Kind: gateway.KindDomain, Status: 403, Message: "token revoked"}

	if err := fixture.guard.Validate(context.Background()); err == nil {
		t.Fatal("Validate succeeded with a rejected token")
	}
	if fixture.guard.State() != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", fixture.guard.State())
	}
	if fixture.guard.Token() != "" {
		t.Error("token kept after rejection")
	}
	if _, err := fixture.store.Load(); !errors.Is(err, ErrNoCredential) {
		t.Errorf("stored credential survived rejection: %v", err)
	}
	if fixture.cache.Apps.Len() != 0 {
		t.Error("cache survived rejection")
	}
	for _, event := range fixture.recorder.list() {
		if event == "navigate /login" {
			t.Error("Validate navigated; only logout and 401 redirect")
		}
	}
}

func TestValidateTransportFailureKeepsCredential(t *testing.T) {
	fixture := newFixture(t, "tok")
	fixture.remote.userErr = &gateway.Error{Kind: gateway.KindTransport, Message: "unable to reach the release service"}

	if err := fixture.guard.Validate(context.Background()); err == nil {
		t.Fatal("Validate succeeded during an outage")
	}
	if fixture.guard.State() != StateValidating {
		t.Errorf("state = %v, want validating", fixture.guard.State())
	}
	if fixture.guard.Token() != "tok" {
		t.Error("transport failure discarded the token")
	}
	if fixture.cache.Apps.Len() != 1 {
		t.Error("transport failure cleared the cache")
	}
}

func TestValidateConcurrentCallsShareOneRequest(t *testing.T) {
	fixture := newFixture(t, "tok")
	fixture.remote.unblock = make(chan struct{})

	const callers = 8
	var group sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		group.Add(1)
		go func() {
			defer group.Done()
			errs <- fixture.guard.Validate(context.Background())
		}()
	}

	deadline := time.Now().Add(5 * time.Second)
	for fixture.remote.userCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	// Let stragglers join the in-flight call before it completes.
	time.Sleep(20 * time.Millisecond)
	close(fixture.remote.unblock)
	group.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Validate: %v", err)
		}
	}
	if calls := fixture.remote.userCalls.Load(); calls != 1 {
		t.Errorf("CurrentUser called %d times, want 1", calls)
	}
}

func TestLogoutOrdering(t *testing.T) {
	fixture := newFixture(t, "tok")
	if err := fixture.guard.Validate(context.Background()); err != nil {
		t.Fatal(err)
	}

	fixture.guard.Logout()

	want := []string{"clear credential", "clear cache", "navigate /login"}
	got := fixture.recorder.list()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
	if fixture.guard.State() != StateUnauthenticated {
		t.Errorf("state = %v", fixture.guard.State())
	}
	if _, ok := fixture.guard.User(); ok {
		t.Error("user survived logout")
	}
}

func TestLogoutWhenAlreadyLoggedOut(t *testing.T) {
	fixture := newFixture(t, "")
	fixture.guard.Logout()
	events := fixture.recorder.list()
	if len(events) == 0 || events[len(events)-1] != "navigate /login" {
		t.Errorf("events = %v, want logout to still navigate", events)
	}
}

func TestHandleUnauthorizedMatchesLogout(t *testing.T) {
	fixture := newFixture(t, "tok")
	fixture.guard.HandleUnauthorized("tok")

	want := []string{"clear credential", "clear cache", "navigate /login"}
	got := fixture.recorder.list()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHandleUnauthorizedEndsSessionOnce(t *testing.T) {
	fixture := newFixture(t, "tok")

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fixture.guard.HandleUnauthorized("tok")
		}()
	}
	wg.Wait()

	want := []string{"clear credential", "clear cache", "navigate /login"}
	got := fixture.recorder.list()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want one teardown %v", got, want)
	}
	if fixture.guard.State() != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", fixture.guard.State())
	}
}

func TestHandleUnauthorizedIgnoresReplacedToken(t *testing.T) {
	fixture := newFixture(t, "")
	fixture.remote.loginToken = "fresh"
	if err := fixture.guard.Login(context.Background(), "admin", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	fixture.guard.HandleUnauthorized("old")
	fixture.guard.HandleUnauthorized("")

	if state := fixture.guard.State(); state != StateAuthenticated {
		t.Errorf("state = %v, want authenticated", state)
	}
	if token := fixture.guard.Token(); token != "fresh" {
		t.Errorf("token = %q, want fresh", token)
	}
	if events := fixture.recorder.list(); len(events) != 0 {
		t.Errorf("events = %v, want none", events)
	}
}

// Both halves of a version load are rejected with 401 through a real
// gateway: the session ends once and the reset cache stays clean.
func TestExpiredSessionDuringLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(writer).Encode(map[string]any{"success": false, "error": "expired"})
	}))
	t.Cleanup(server.Close)

	var guard *Guard
	client, err := gateway.NewClient(gateway.Config{
		BaseURL: server.URL,
		Logger:  discardLogger(),
		Tokens:  gateway.TokenFunc(func() string { return guard.Token() }),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	cache := entitycache.New()
	var navigations, cacheClears atomic.Int32
	guard, err = NewGuard(Config{
		Remote:         client,
		Store:          NewMemoryTokenStore(Credential{Token: "tok"}),
		Cache:          cache,
		Navigator:      navigation.Func(func(navigation.Route) { navigations.Add(1) }),
		OnCacheCleared: func() { cacheClears.Add(1) },
		Logger:         discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	client.SetUnauthorizedHandler(guard.HandleUnauthorized)

	releases := coordinator.New(client, cache, discardLogger())
	if _, err := releases.LoadVersionAndBundles(context.Background(), "v1"); !gateway.IsKind(err, gateway.KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}

	if navigations.Load() != 1 || cacheClears.Load() != 1 {
		t.Errorf("navigations = %d, cache clears = %d, want 1 each", navigations.Load(), cacheClears.Load())
	}
	if guard.State() != StateUnauthenticated {
		t.Errorf("state = %v, want unauthenticated", guard.State())
	}
	for _, kind := range entitycache.Kinds {
		if status := cache.Status(kind); status.Error != "" || status.Loading {
			t.Errorf("%s status = %+v, want clean after reset", kind, status)
		}
	}
}

func TestLogin(t *testing.T) {
	fixture := newFixture(t, "")
	fixture.remote.loginToken = "fresh"

	if err := fixture.guard.Login(context.Background(), "admin", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if fixture.guard.State() != StateAuthenticated {
		t.Errorf("state = %v", fixture.guard.State())
	}
	if fixture.guard.Token() != "fresh" {
		t.Errorf("token = %q", fixture.guard.Token())
	}
	stored, err := fixture.store.Load()
	if err != nil || stored.Token != "fresh" || stored.Server != "https://releases.test" {
		t.Errorf("stored = %+v, %v", stored, err)
	}
	if fixture.cache.Apps.Len() != 0 {
		t.Error("login kept cache data from before")
	}
}

func TestLoginFailureLeavesState(t *testing.T) {
	fixture := newFixture(t, "")
	fixture.remote.loginErr = &gateway.Error{Kind: gateway.KindDomain, Status: 401, Message: "invalid credentials"}

	err := fixture.guard.Login(context.Background(), "admin", "wrong")
	if !gateway.IsKind(err, gateway.KindDomain) {
		t.Fatalf("Login = %v, want domain error", err)
	}
	if fixture.guard.State() != StateUnauthenticated {
		t.Errorf("state = %v", fixture.guard.State())
	}
	if fixture.cache.Apps.Len() != 1 {
		t.Error("failed login cleared the cache")
	}
}

func TestGuardAsTokenSource(t *testing.T) {
	var source gateway.TokenSource = newFixture(t, "tok").guard
	if source.Token() != "tok" {
		t.Errorf("Token() = %q", source.Token())
	}
}
