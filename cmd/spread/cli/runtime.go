// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"filippo.io/age"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/gateway"
	"github.com/bureau-foundation/spread/lib/config"
	"github.com/bureau-foundation/spread/lib/coordinator"
	"github.com/bureau-foundation/spread/lib/entitycache"
	"github.com/bureau-foundation/spread/lib/navigation"
	"github.com/bureau-foundation/spread/lib/session"
	"github.com/bureau-foundation/spread/lib/version"
)

// ConnectionParams holds the flags shared by every command that talks
// to the release service. Embed it in a params struct; it binds its own
// flags through [FlagBinder].
type ConnectionParams struct {
	ConfigPath string
	Server     string
	Verbose    bool
}

// AddFlags registers --config, --server and --verbose.
func (p *ConnectionParams) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.ConfigPath, "config", "", "configuration file (default $SPREAD_CONFIG, then ~/.config/spread/config.yaml)")
	flagSet.StringVar(&p.Server, "server", "", "release service URL, overriding the configuration")
	flagSet.BoolVarP(&p.Verbose, "verbose", "v", false, "log at debug level")
}

// OpenOptions adjusts how [Open] assembles a runtime.
type OpenOptions struct {
	// CreateIdentity generates the configured age identity file if it
	// does not exist yet. Only login sets it.
	CreateIdentity bool

	// HTTPClient overrides the client used for the release service.
	HTTPClient *http.Client

	// Stderr receives operator notices. Default: os.Stderr.
	Stderr io.Writer
}

// Runtime is everything one command invocation needs: configuration,
// the release service client, the entity cache, the session guard, and
// the release coordinator, wired together.
type Runtime struct {
	Config      *config.Config
	Client      *gateway.Client
	Cache       *entitycache.Cache
	Guard       *session.Guard
	Coordinator *coordinator.Coordinator
	Navigator   *navigation.Service
	Logger      *slog.Logger
	Stderr      io.Writer

	// SessionPath is the credential file.
	SessionPath string

	// SnapshotPath is the cache snapshot file, or "" when persistence
	// is disabled.
	SnapshotPath string

	compression entitycache.Compression
}

// Open loads configuration and assembles a runtime. It does no network
// I/O; call [Runtime.RequireSession] before protected operations.
func Open(params ConnectionParams, logger *slog.Logger, options OpenOptions) (*Runtime, error) {
	SetVerbose(params.Verbose)
	if logger == nil {
		logger = slog.Default()
	}
	stderr := options.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	configuration, err := config.Load(params.ConfigPath)
	if err != nil {
		return nil, &ToolError{Category: CategoryValidation, Err: err}
	}
	if params.Server != "" {
		configuration.Server.URL = params.Server
		if err := configuration.Validate(); err != nil {
			return nil, &ToolError{Category: CategoryValidation, Err: err}
		}
	}
	if configuration.Path() != "" {
		logger.Debug("configuration loaded", "path", configuration.Path())
	}

	compression, err := entitycache.ParseCompression(configuration.Cache.Compression)
	if err != nil {
		return nil, &ToolError{Category: CategoryValidation, Err: err}
	}

	runtime := &Runtime{
		Config:      configuration,
		Cache:       entitycache.New(),
		Navigator:   navigation.NewService(logger),
		Logger:      logger,
		Stderr:      stderr,
		SessionPath: configuration.Session.File,
		compression: compression,
	}
	if runtime.SessionPath == "" {
		runtime.SessionPath = session.SessionFilePath()
	}
	if !configuration.Cache.Disabled {
		runtime.SnapshotPath = configuration.Cache.SnapshotFile
		if runtime.SnapshotPath == "" {
			runtime.SnapshotPath, err = entitycache.DefaultSnapshotPath()
			if err != nil {
				logger.Warn("cache snapshot disabled", "error", err)
			}
		}
	}

	runtime.Navigator.SetNavigate(func(route navigation.Route) {
		if route == navigation.RouteLogin {
			fmt.Fprintln(runtime.Stderr, "You have been signed out. Run 'spread login' to sign in again.")
		}
	})

	identity, err := runtime.loadIdentity(options.CreateIdentity)
	if err != nil {
		return nil, err
	}

	runtime.Client, err = gateway.NewClient(gateway.Config{
		BaseURL:       configuration.Server.URL,
		HTTPClient:    options.HTTPClient,
		Logger:        logger,
		Tokens:        gateway.TokenFunc(func() string { return runtime.Guard.Token() }),
		ActivateRoute: gateway.ActivateRoute(configuration.Server.ActivateRoute),
		UserAgent:     version.UserAgent(),
	})
	if err != nil {
		return nil, &ToolError{Category: CategoryValidation, Err: err}
	}

	runtime.Guard, err = session.NewGuard(session.Config{
		Remote:         runtime.Client,
		Store:          session.NewFileTokenStore(runtime.SessionPath, identity),
		Cache:          runtime.Cache,
		Navigator:      runtime.Navigator,
		Server:         runtime.Client.BaseURL(),
		OnCacheCleared: runtime.removeSnapshot,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	runtime.Client.SetUnauthorizedHandler(runtime.Guard.HandleUnauthorized)
	runtime.Coordinator = coordinator.New(runtime.Client, runtime.Cache, logger)

	if runtime.Guard.Token() != "" {
		runtime.restoreSnapshot()
	}
	return runtime, nil
}

// loadIdentity returns the age identity that encrypts the credential
// file, or nil when none is configured. A missing identity file without
// create means nothing was ever encrypted to it.
func (r *Runtime) loadIdentity(create bool) (*age.X25519Identity, error) {
	path := r.Config.Session.IdentityFile
	if path == "" {
		return nil, nil
	}
	identity, err := session.LoadIdentity(path, create)
	if err != nil {
		if !create && errors.Is(err, fs.ErrNotExist) {
			r.Logger.Debug("identity file does not exist yet", "path", path)
			return nil, nil
		}
		return nil, Internal("%w", err)
	}
	return identity, nil
}

// restoreSnapshot fills the cache from the snapshot file when it was
// written against the same server. A corrupt snapshot is deleted.
func (r *Runtime) restoreSnapshot() {
	if r.SnapshotPath == "" {
		return
	}
	snapshot, err := entitycache.LoadFile(r.SnapshotPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return
	case errors.Is(err, entitycache.ErrCorruptSnapshot):
		r.Logger.Warn("discarding corrupt cache snapshot", "path", r.SnapshotPath, "error", err)
		r.removeSnapshot()
		return
	default:
		r.Logger.Warn("could not read cache snapshot", "path", r.SnapshotPath, "error", err)
		return
	}
	if snapshot.Server != r.Client.BaseURL() {
		r.Logger.Debug("cache snapshot belongs to another server",
			"snapshot_server", snapshot.Server, "server", r.Client.BaseURL())
		return
	}
	r.Cache.Restore(snapshot)
	r.Logger.Debug("cache snapshot restored", "saved_at", snapshot.SavedAt,
		"apps", len(snapshot.Apps), "bundles", len(snapshot.Bundles))
}

func (r *Runtime) removeSnapshot() {
	if r.SnapshotPath == "" {
		return
	}
	if err := entitycache.RemoveFile(r.SnapshotPath); err != nil {
		r.Logger.Warn("could not remove cache snapshot", "error", err)
	}
}

// Close persists the cache while the session is authenticated and
// releases idle connections.
func (r *Runtime) Close() {
	defer r.Client.CloseIdleConnections()
	if r.SnapshotPath == "" || r.Guard.State() != session.StateAuthenticated {
		return
	}
	snapshot := r.Cache.Snapshot()
	snapshot.Server = r.Client.BaseURL()
	snapshot.SavedAt = time.Now().UTC()
	if err := entitycache.SaveFile(r.SnapshotPath, snapshot, r.compression); err != nil {
		r.Logger.Warn("could not save cache snapshot", "error", err)
	}
}

// WithTimeout bounds ctx by the configured server timeout.
func (r *Runtime) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(r.Config.Server.Timeout)
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// RequireSession validates the stored credential unless that already
// happened during this invocation.
func (r *Runtime) RequireSession(ctx context.Context) error {
	if r.Guard.Require() == nil {
		return nil
	}
	if err := r.Guard.Validate(ctx); err != nil {
		return FromGateway(err)
	}
	return nil
}
