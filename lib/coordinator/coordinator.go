// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/spread/gateway"
	"github.com/bureau-foundation/spread/lib/entitycache"
	"github.com/bureau-foundation/spread/lib/schema/release"
)

// Remote is the part of the release service the coordinator drives.
// Satisfied by *gateway.Client.
type Remote interface {
	ListApps(ctx context.Context) ([]release.App, error)
	CreateApp(ctx context.Context, request release.CreateAppRequest) (release.App, error)
	ListEnvironments(ctx context.Context, appID string) ([]release.Environment, error)
	CreateEnvironment(ctx context.Context, request release.CreateEnvironmentRequest) (release.Environment, error)
	ListVersions(ctx context.Context, environmentID string) ([]release.Version, error)
	GetVersion(ctx context.Context, versionID string) (release.Version, error)
	ListBundles(ctx context.Context, versionID string) ([]release.Bundle, error)
	ActivateBundle(ctx context.Context, versionID, bundleID string) error
	SetBundleMandatory(ctx context.Context, bundleID string, mandatory bool) error
	SetBundleEnabled(ctx context.Context, bundleID string, enabled bool) error
	Rollback(ctx context.Context, request release.RollbackRequest) error
}

// VersionView is a version with its bundles split for display.
type VersionView struct {
	Version release.Version `json:"version"`

	// Active is the bundle named by Version.CurrentBundleID, or nil
	// when that bundle is not among the loaded bundles.
	Active *release.Bundle `json:"active"`

	// History is every other bundle, most recently published first.
	History []release.Bundle `json:"history"`
}

func newVersionView(version release.Version, bundles []release.Bundle) VersionView {
	active, history := release.SplitActive(release.MarkActive(version, bundles))
	return VersionView{Version: version, Active: active, History: history}
}

// Coordinator runs release operations against a Remote and keeps a
// Cache in step with their results. Safe for concurrent use.
type Coordinator struct {
	remote Remote
	cache  *entitycache.Cache
	logger *slog.Logger
}

// New creates a coordinator. A nil logger means slog.Default().
func New(remote Remote, cache *entitycache.Cache, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{remote: remote, cache: cache, logger: logger}
}

// LoadVersionAndBundles fetches a version and its bundles concurrently
// and stores both. isActive is computed against the version fetched by
// this same call, never a cached one. If either fetch fails, its
// collection records the error and neither collection is written.
func (c *Coordinator) LoadVersionAndBundles(ctx context.Context, versionID string) (VersionView, error) {
	c.cache.SetLoading(entitycache.KindVersion, true)
	c.cache.SetLoading(entitycache.KindBundle, true)

	var (
		version                release.Version
		bundles                []release.Bundle
		versionErr, bundlesErr error
		group                  errgroup.Group
	)
	group.Go(func() error {
		version, versionErr = c.remote.GetVersion(ctx, versionID)
		return versionErr
	})
	group.Go(func() error {
		bundles, bundlesErr = c.remote.ListBundles(ctx, versionID)
		return bundlesErr
	})
	if err := group.Wait(); err != nil {
		c.settleLoad(entitycache.KindVersion, versionErr)
		c.settleLoad(entitycache.KindBundle, bundlesErr)
		c.logger.Warn("loading version failed", "version_id", versionID, "error", err)
		return VersionView{}, fmt.Errorf("coordinator: loading version %s: %w", versionID, err)
	}

	for i := range bundles {
		if bundles[i].VersionID == "" {
			bundles[i].VersionID = versionID
		}
	}
	marked := release.MarkActive(version, bundles)

	c.cache.Versions.Upsert(version)
	c.cache.Bundles.ReplaceAll(marked)
	c.cache.SetLoading(entitycache.KindVersion, false)
	c.cache.SetLoading(entitycache.KindBundle, false)

	active, history := release.SplitActive(marked)
	return VersionView{Version: version, Active: active, History: history}, nil
}

// settleLoad ends loading on a collection, recording err if non-nil.
// An unauthorized failure is not recorded: the session guard has already
// reset the cache, and the message must not leak into the next session.
func (c *Coordinator) settleLoad(kind entitycache.Kind, err error) {
	if err != nil && !gateway.IsKind(err, gateway.KindUnauthorized) {
		c.cache.SetError(kind, err.Error())
		return
	}
	c.cache.SetLoading(kind, false)
}

// View returns the cached version and its bundles without a remote
// call. The boolean is false when the version is not cached.
func (c *Coordinator) View(versionID string) (VersionView, bool) {
	version, ok := c.cache.Versions.Get(versionID)
	if !ok {
		return VersionView{}, false
	}
	return newVersionView(version, c.cache.BundlesOf(versionID)), true
}

// ActivateBundle makes bundleID the version's current bundle and
// reloads the version. Nothing is written locally before the service
// confirms; the reload decides which bundle is active. Disabled bundles
// are refused without a remote call.
func (c *Coordinator) ActivateBundle(ctx context.Context, bundleID string) (VersionView, error) {
	if !c.cache.Pending.Begin(entitycache.KindBundle, bundleID) {
		return VersionView{}, ErrMutationPending
	}
	defer c.cache.Pending.End(entitycache.KindBundle, bundleID)

	bundle, ok := c.cache.Bundles.Get(bundleID)
	if !ok {
		return VersionView{}, fmt.Errorf("%w: bundle %s", ErrNotLoaded, bundleID)
	}
	if !bundle.IsValid {
		c.logger.Warn("refusing to activate disabled bundle", "bundle_id", bundleID)
		return VersionView{}, ErrBundleDisabled
	}

	if err := c.remote.ActivateBundle(ctx, bundle.VersionID, bundleID); err != nil {
		c.logger.Warn("activating bundle failed", "bundle_id", bundleID, "version_id", bundle.VersionID, "error", err)
		return VersionView{}, fmt.Errorf("coordinator: activating bundle %s: %w", bundleID, err)
	}
	c.logger.Info("bundle activated", "bundle_id", bundleID, "version_id", bundle.VersionID)

	view, err := c.LoadVersionAndBundles(ctx, bundle.VersionID)
	if err != nil {
		return VersionView{}, fmt.Errorf("coordinator: bundle %s activated but reload failed: %w", bundleID, err)
	}
	return view, nil
}

// ToggleEnabled flips a bundle's isValid flag and returns the new value.
func (c *Coordinator) ToggleEnabled(ctx context.Context, bundleID string) (bool, error) {
	return c.setEnabled(ctx, bundleID, func(prior bool) bool { return !prior })
}

// SetEnabled sets a bundle's isValid flag to enabled.
func (c *Coordinator) SetEnabled(ctx context.Context, bundleID string, enabled bool) error {
	_, err := c.setEnabled(ctx, bundleID, func(bool) bool { return enabled })
	return err
}

// setEnabled writes next(prior) optimistically, then asks the service.
// On refusal the captured prior value is restored, not the negation of
// whatever the cache holds by then.
func (c *Coordinator) setEnabled(ctx context.Context, bundleID string, next func(prior bool) bool) (bool, error) {
	if !c.cache.Pending.Begin(entitycache.KindBundle, bundleID) {
		return false, ErrMutationPending
	}
	defer c.cache.Pending.End(entitycache.KindBundle, bundleID)

	bundle, ok := c.cache.Bundles.Get(bundleID)
	if !ok {
		return false, fmt.Errorf("%w: bundle %s", ErrNotLoaded, bundleID)
	}
	prior := bundle.IsValid
	desired := next(prior)

	c.cache.Bundles.Update(bundleID, func(bundle *release.Bundle) { bundle.IsValid = desired })

	if err := c.remote.SetBundleEnabled(ctx, bundleID, desired); err != nil {
		c.cache.Bundles.Update(bundleID, func(bundle *release.Bundle) { bundle.IsValid = prior })
		c.logger.Warn("changing bundle enabled flag failed", "bundle_id", bundleID, "enabled", desired, "error", err)
		return prior, fmt.Errorf("coordinator: setting bundle %s enabled=%t: %w", bundleID, desired, err)
	}
	c.logger.Info("bundle enabled flag changed", "bundle_id", bundleID, "enabled", desired)
	return desired, nil
}

// ToggleMandatory flips a bundle's isMandatory flag and returns the new
// value. The cache changes only after the service accepts.
func (c *Coordinator) ToggleMandatory(ctx context.Context, bundleID string) (bool, error) {
	return c.setMandatory(ctx, bundleID, func(current bool) bool { return !current })
}

// SetMandatory sets a bundle's isMandatory flag.
func (c *Coordinator) SetMandatory(ctx context.Context, bundleID string, mandatory bool) error {
	_, err := c.setMandatory(ctx, bundleID, func(bool) bool { return mandatory })
	return err
}

func (c *Coordinator) setMandatory(ctx context.Context, bundleID string, next func(current bool) bool) (bool, error) {
	if !c.cache.Pending.Begin(entitycache.KindBundle, bundleID) {
		return false, ErrMutationPending
	}
	defer c.cache.Pending.End(entitycache.KindBundle, bundleID)

	bundle, ok := c.cache.Bundles.Get(bundleID)
	if !ok {
		return false, fmt.Errorf("%w: bundle %s", ErrNotLoaded, bundleID)
	}
	current := bundle.IsMandatory
	desired := next(current)

	if err := c.remote.SetBundleMandatory(ctx, bundleID, desired); err != nil {
		c.logger.Warn("changing bundle mandatory flag failed", "bundle_id", bundleID, "mandatory", desired, "error", err)
		return current, fmt.Errorf("coordinator: setting bundle %s mandatory=%t: %w", bundleID, desired, err)
	}
	c.cache.Bundles.Update(bundleID, func(bundle *release.Bundle) { bundle.IsMandatory = desired })
	c.logger.Info("bundle mandatory flag changed", "bundle_id", bundleID, "mandatory", desired)
	return desired, nil
}

// Rollback asks the service to revert versionID to its previous bundle
// and reloads the version. On refusal nothing local changes.
func (c *Coordinator) Rollback(ctx context.Context, appID, environmentID, versionID string) (VersionView, error) {
	for _, field := range []struct{ name, value string }{
		{"app", appID}, {"environment", environmentID}, {"version", versionID},
	} {
		if strings.TrimSpace(field.value) == "" {
			return VersionView{}, &ValidationError{Field: field.name, Message: "is required"}
		}
	}
	if !c.cache.Pending.Begin(entitycache.KindVersion, versionID) {
		return VersionView{}, ErrMutationPending
	}
	defer c.cache.Pending.End(entitycache.KindVersion, versionID)

	request := release.RollbackRequest{AppID: appID, EnvironmentID: environmentID, VersionID: versionID}
	if err := c.remote.Rollback(ctx, request); err != nil {
		c.logger.Warn("rolling back version failed", "version_id", versionID, "environment_id", environmentID, "error", err)
		return VersionView{}, fmt.Errorf("coordinator: rolling back version %s: %w", versionID, err)
	}
	c.logger.Info("version rolled back", "version_id", versionID, "environment_id", environmentID)

	view, err := c.LoadVersionAndBundles(ctx, versionID)
	if err != nil {
		return VersionView{}, fmt.Errorf("coordinator: version %s rolled back but reload failed: %w", versionID, err)
	}
	return view, nil
}
