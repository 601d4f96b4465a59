// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/bureau-foundation/spread/lib/entitycache"
	"github.com/bureau-foundation/spread/lib/schema/release"
)

// LoadApps fetches every application into the cache.
func (c *Coordinator) LoadApps(ctx context.Context) ([]release.App, error) {
	c.cache.SetLoading(entitycache.KindApp, true)
	apps, err := c.remote.ListApps(ctx)
	if err != nil {
		c.settleLoad(entitycache.KindApp, err)
		return nil, fmt.Errorf("coordinator: loading apps: %w", err)
	}
	c.cache.Apps.ReplaceAll(apps)
	c.cache.SetLoading(entitycache.KindApp, false)
	return c.cache.Apps.List(), nil
}

// CreateApp registers an application and refreshes the app list. A
// failed refresh is logged; the created app is still returned.
func (c *Coordinator) CreateApp(ctx context.Context, name string, os release.OS) (release.App, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return release.App{}, &ValidationError{Field: "name", Message: "is required"}
	}
	if !os.Valid() {
		return release.App{}, &ValidationError{Field: "os", Message: fmt.Sprintf("must be %q or %q", release.OSiOS, release.OSAndroid)}
	}

	app, err := c.remote.CreateApp(ctx, release.CreateAppRequest{AppName: name, OS: os})
	if err != nil {
		c.logger.Warn("creating app failed", "app", name, "error", err)
		return release.App{}, fmt.Errorf("coordinator: creating app %q: %w", name, err)
	}
	c.logger.Info("app created", "app", name, "os", os)

	if _, err := c.LoadApps(ctx); err != nil {
		c.logger.Warn("app created but refreshing the app list failed", "error", err)
	}
	if app.ID == "" {
		for _, cached := range c.cache.Apps.List() {
			if cached.Name == name {
				return cached, nil
			}
		}
	}
	return app, nil
}

// LoadEnvironments fetches the environments of one application.
func (c *Coordinator) LoadEnvironments(ctx context.Context, appID string) ([]release.Environment, error) {
	c.cache.SetLoading(entitycache.KindEnvironment, true)
	environments, err := c.remote.ListEnvironments(ctx, appID)
	if err != nil {
		c.settleLoad(entitycache.KindEnvironment, err)
		return nil, fmt.Errorf("coordinator: loading environments of app %s: %w", appID, err)
	}
	for i := range environments {
		if environments[i].AppID == "" {
			environments[i].AppID = appID
		}
	}
	c.cache.Environments.ReplaceAll(environments)
	c.cache.SetLoading(entitycache.KindEnvironment, false)
	return c.cache.Environments.List(), nil
}

// CreateEnvironment adds an environment to the named application and
// stores it.
func (c *Coordinator) CreateEnvironment(ctx context.Context, appName, environmentName string) (release.Environment, error) {
	appName = strings.TrimSpace(appName)
	environmentName = strings.TrimSpace(environmentName)
	if appName == "" {
		return release.Environment{}, &ValidationError{Field: "app", Message: "is required"}
	}
	if environmentName == "" {
		return release.Environment{}, &ValidationError{Field: "name", Message: "is required"}
	}

	environment, err := c.remote.CreateEnvironment(ctx, release.CreateEnvironmentRequest{
		EnvironmentName: environmentName,
		AppName:         appName,
	})
	if err != nil {
		c.logger.Warn("creating environment failed", "app", appName, "environment", environmentName, "error", err)
		return release.Environment{}, fmt.Errorf("coordinator: creating environment %q: %w", environmentName, err)
	}
	if environment.ID != "" {
		c.cache.Environments.Upsert(environment)
	}
	c.logger.Info("environment created", "app", appName, "environment", environmentName)
	return environment, nil
}

// LoadVersions fetches the versions of one environment.
func (c *Coordinator) LoadVersions(ctx context.Context, environmentID string) ([]release.Version, error) {
	c.cache.SetLoading(entitycache.KindVersion, true)
	versions, err := c.remote.ListVersions(ctx, environmentID)
	if err != nil {
		c.settleLoad(entitycache.KindVersion, err)
		return nil, fmt.Errorf("coordinator: loading versions of environment %s: %w", environmentID, err)
	}
	c.cache.Versions.ReplaceAll(versions)
	c.cache.SetLoading(entitycache.KindVersion, false)
	return c.cache.Versions.List(), nil
}
