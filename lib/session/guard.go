// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bureau-foundation/spread/gateway"
	"github.com/bureau-foundation/spread/lib/entitycache"
	"github.com/bureau-foundation/spread/lib/navigation"
	"github.com/bureau-foundation/spread/lib/schema/release"
)

// ErrUnauthenticated is returned by Require, and by Validate when no
// credential is stored.
var ErrUnauthenticated = errors.New("session: not authenticated")

// State is the guard's authentication state.
type State int

const (
	StateUnauthenticated State = iota
	StateValidating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateValidating:
		return "validating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Authenticator is the part of the release service the guard talks to.
// Satisfied by *gateway.Client.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	CurrentUser(ctx context.Context) (release.User, error)
}

// Config holds the collaborators of a Guard.
type Config struct {
	// Remote resolves credentials. Required.
	Remote Authenticator

	// Store persists the credential. If nil, a MemoryTokenStore is used.
	Store TokenStore

	// Cache is reset whenever the session ends. Required.
	Cache *entitycache.Cache

	// Navigator receives the login redirect on logout and session
	// expiry. If nil, no navigation happens.
	Navigator navigation.Navigator

	// Server is recorded alongside saved credentials.
	Server string

	// OnCacheCleared runs right after the cache is reset, before
	// navigation. The CLI uses it to delete the cache snapshot file.
	OnCacheCleared func()

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Guard is the session state machine. It is safe for concurrent use.
type Guard struct {
	remote         Authenticator
	store          TokenStore
	cache          *entitycache.Cache
	navigator      navigation.Navigator
	server         string
	onCacheCleared func()
	logger         *slog.Logger

	validation singleflight.Group

	mu    sync.RWMutex
	state State
	token string
	user  *release.User
}

// NewGuard creates a guard and loads any stored credential. A store
// that fails to load (unreadable or undecryptable file) is logged and
// treated as empty.
func NewGuard(config Config) (*Guard, error) {
	if config.Remote == nil {
		return nil, fmt.Errorf("session: Remote is required")
	}
	if config.Cache == nil {
		return nil, fmt.Errorf("session: Cache is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := config.Store
	if store == nil {
		store = NewMemoryTokenStore(Credential{})
	}

	guard := &Guard{
		remote:         config.Remote,
		store:          store,
		cache:          config.Cache,
		navigator:      config.Navigator,
		server:         config.Server,
		onCacheCleared: config.OnCacheCleared,
		logger:         logger,
		state:          StateUnauthenticated,
	}

	credential, err := store.Load()
	switch {
	case err == nil:
		if credential.Server != "" && config.Server != "" && credential.Server != config.Server {
			logger.Info("stored credential belongs to a different server, ignoring it",
				"credential_server", credential.Server, "server", config.Server)
			break
		}
		guard.token = credential.Token
		guard.state = StateValidating
	case errors.Is(err, ErrNoCredential):
	default:
		logger.Warn("could not load stored credential", "error", err)
	}
	return guard, nil
}

// Token returns the current bearer credential, or "" when there is
// none. Satisfies gateway.TokenSource.
func (g *Guard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// User returns the identity resolved by the last successful Validate.
func (g *Guard) User() (release.User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.user == nil {
		return release.User{}, false
	}
	return *g.user, true
}

// Require gates protected operations: it returns ErrUnauthenticated
// unless the guard is in StateAuthenticated.
func (g *Guard) Require() error {
	if g.State() != StateAuthenticated {
		return ErrUnauthenticated
	}
	return nil
}

// Validate resolves the identity behind the stored credential.
// Concurrent calls share one remote request. A credential the service
// rejects is removed along with the cache. A transport failure leaves
// the credential in place and the guard in StateValidating, since
// nothing was learned about the credential.
func (g *Guard) Validate(ctx context.Context) error {
	_, err, _ := g.validation.Do("validate", func() (any, error) {
		return nil, g.validate(ctx)
	})
	return err
}

func (g *Guard) validate(ctx context.Context) error {
	g.mu.Lock()
	token := g.token
	if token == "" {
		g.state = StateUnauthenticated
		g.user = nil
		g.mu.Unlock()
		return ErrUnauthenticated
	}
	g.state = StateValidating
	g.mu.Unlock()

	user, err := g.remote.CurrentUser(ctx)
	if err != nil {
		if gateway.IsKind(err, gateway.KindTransport) {
			g.logger.Warn("could not validate credential", "error", err)
			return fmt.Errorf("session: validating credential: %w", err)
		}
		g.logger.Info("stored credential rejected", "error", err)
		g.end(token, false)
		return fmt.Errorf("session: credential rejected: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token != token {
		return ErrUnauthenticated
	}
	g.state = StateAuthenticated
	g.user = &user
	return nil
}

// Login exchanges username and password for a credential, stores it,
// and validates it. The cache is cleared first so nothing from a
// previous identity survives.
func (g *Guard) Login(ctx context.Context, username, password string) error {
	token, err := g.remote.Login(ctx, username, password)
	if err != nil {
		return err
	}

	g.cache.Reset()
	g.mu.Lock()
	g.token = token
	g.user = nil
	g.state = StateValidating
	g.mu.Unlock()

	if err := g.store.Save(Credential{Token: token, Server: g.server, SavedAt: time.Now().UTC()}); err != nil {
		g.logger.Warn("could not persist credential", "error", err)
	}
	return g.Validate(ctx)
}

// Logout ends the session: credential, then cache, then navigation to
// the login route. It always succeeds; a failure to delete the stored
// credential is logged.
func (g *Guard) Logout() {
	g.mu.RLock()
	token := g.token
	g.mu.RUnlock()
	g.end(token, true)
}

// HandleUnauthorized is installed as the gateway's unauthorized
// handler. It ends the session exactly like Logout, but only when
// rejectedToken is still the current credential: a 401 for a token that
// was already cleared or replaced by a newer login changes nothing.
func (g *Guard) HandleUnauthorized(rejectedToken string) {
	if rejectedToken == "" || !g.release(rejectedToken) {
		g.logger.Debug("ignoring unauthorized response for a credential no longer in use")
		return
	}
	g.logger.Warn("session expired or revoked, logging out")
	g.teardown(true)
}

// end tears the session down if it still belongs to token. A session
// that was already replaced by a newer login is left alone.
func (g *Guard) end(token string, navigate bool) {
	if !g.release(token) {
		return
	}
	g.teardown(navigate)
}

// release forgets the in-memory session if it still belongs to token.
func (g *Guard) release(token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token != token {
		return false
	}
	g.token = ""
	g.user = nil
	g.state = StateUnauthenticated
	return true
}

// teardown removes the stored credential, then resets the cache, then
// navigates to the login route.
func (g *Guard) teardown(navigate bool) {
	if err := g.store.Clear(); err != nil {
		g.logger.Warn("could not remove stored credential", "error", err)
	}
	g.cache.Reset()
	if g.onCacheCleared != nil {
		g.onCacheCleared()
	}
	if navigate && g.navigator != nil {
		g.navigator.Navigate(navigation.RouteLogin)
	}
}
