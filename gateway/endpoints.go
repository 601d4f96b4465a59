// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bureau-foundation/spread/lib/schema/release"
)

// ServiceStatus is the health document served at the service root.
type ServiceStatus struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Ping fetches the service health document. Public.
func (c *Client) Ping(ctx context.Context) (ServiceStatus, error) {
	return call[ServiceStatus](ctx, c, http.MethodGet, "/", public, nil).Result()
}

// Login exchanges credentials for a bearer token. Public: a 401 here is
// a domain error ("wrong password"), not a session failure.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" {
		return "", &Error{Kind: KindDomain, Message: "username is required"}
	}
	response, err := call[release.LoginResponse](ctx, c, http.MethodPost, "/login", public,
		release.LoginRequest{Username: username, Password: password}).Result()
	if err != nil {
		return "", err
	}
	if response.AccessToken == "" {
		return "", &Error{Kind: KindDomain, Message: "login response carried no access token"}
	}
	return response.AccessToken, nil
}

// CurrentUser returns the account behind the current credential. This
// is the call the session guard uses to validate a stored token.
func (c *Client) CurrentUser(ctx context.Context) (release.User, error) {
	return call[release.User](ctx, c, http.MethodGet, "/core/user", authenticated, nil).Result()
}

// SetupStatus reports whether the first administrator exists. Public.
func (c *Client) SetupStatus(ctx context.Context) (release.SetupStatus, error) {
	return call[release.SetupStatus](ctx, c, http.MethodGet, "/setup/status", public, nil).Result()
}

// InitUser creates the first administrator on a fresh service. Public.
func (c *Client) InitUser(ctx context.Context, request release.InitUserRequest) (release.User, error) {
	return call[release.User](ctx, c, http.MethodPost, "/init-user", public, request).Result()
}

// ListApps returns every application.
func (c *Client) ListApps(ctx context.Context) ([]release.App, error) {
	return call[[]release.App](ctx, c, http.MethodGet, "/core/app", authenticated, nil).Result()
}

// GetApp returns one application.
func (c *Client) GetApp(ctx context.Context, appID string) (release.App, error) {
	return call[release.App](ctx, c, http.MethodGet, "/core/app/"+escape(appID), authenticated, nil).Result()
}

// CreateApp registers an application.
func (c *Client) CreateApp(ctx context.Context, request release.CreateAppRequest) (release.App, error) {
	if !request.OS.Valid() {
		return release.App{}, &Error{Kind: KindDomain, Message: fmt.Sprintf("unsupported os %q", request.OS)}
	}
	return call[release.App](ctx, c, http.MethodPost, "/core/app", authenticated, request).Result()
}

// ListEnvironments returns the environments of one application.
func (c *Client) ListEnvironments(ctx context.Context, appID string) ([]release.Environment, error) {
	return call[[]release.Environment](ctx, c, http.MethodGet, "/core/environment/"+escape(appID), authenticated, nil).Result()
}

// CreateEnvironment adds an environment to an application.
func (c *Client) CreateEnvironment(ctx context.Context, request release.CreateEnvironmentRequest) (release.Environment, error) {
	return call[release.Environment](ctx, c, http.MethodPost, "/core/environment", authenticated, request).Result()
}

// ListVersions returns the versions of one environment.
func (c *Client) ListVersions(ctx context.Context, environmentID string) ([]release.Version, error) {
	path := "/core/version?" + url.Values{"environmentId": {environmentID}}.Encode()
	return call[[]release.Version](ctx, c, http.MethodGet, path, authenticated, nil).Result()
}

// GetVersion returns one version, including its current bundle pointer.
func (c *Client) GetVersion(ctx context.Context, versionID string) (release.Version, error) {
	return call[release.Version](ctx, c, http.MethodGet, "/core/version/"+escape(versionID), authenticated, nil).Result()
}

// ListBundles returns the bundles of one version. The isActive flag on
// the result is not trustworthy; see release.MarkActive.
func (c *Client) ListBundles(ctx context.Context, versionID string) ([]release.Bundle, error) {
	return call[[]release.Bundle](ctx, c, http.MethodGet, "/core/version/bundle/"+escape(versionID), authenticated, nil).Result()
}

// ActivateBundle makes bundleID the current bundle of versionID. The
// version id is only used by ActivateRouteLegacy.
func (c *Client) ActivateBundle(ctx context.Context, versionID, bundleID string) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodPut, c.activatePath(versionID, bundleID), authenticated, nil).Result()
	return err
}

func (c *Client) activatePath(versionID, bundleID string) string {
	switch c.activateRoute {
	case ActivateRouteActivate:
		return "/core/version/bundle/" + escape(bundleID) + "/activate"
	case ActivateRouteLegacy:
		return "/core/version/" + escape(versionID) + "/bundle/" + escape(bundleID) + "/activate"
	default:
		return "/core/version/bundle/" + escape(bundleID) + "/active"
	}
}

// SetBundleMandatory sets whether clients must install bundleID.
func (c *Client) SetBundleMandatory(ctx context.Context, bundleID string, mandatory bool) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodPut, "/core/version/bundle/"+escape(bundleID)+"/mandatory",
		authenticated, release.MandatoryRequest{IsMandatory: mandatory}).Result()
	return err
}

// SetBundleEnabled sets whether bundleID is eligible for distribution.
func (c *Client) SetBundleEnabled(ctx context.Context, bundleID string, enabled bool) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodPut, "/core/version/bundle/"+escape(bundleID)+"/valid",
		authenticated, release.EnabledRequest{IsValid: enabled}).Result()
	return err
}

// Rollback reverts the given version to its previous bundle.
func (c *Client) Rollback(ctx context.Context, request release.RollbackRequest) error {
	_, err := call[json.RawMessage](ctx, c, http.MethodPost, "/core/rollback", authenticated, request).Result()
	return err
}

// ListAuthKeys returns the API keys used by build pipelines.
func (c *Client) ListAuthKeys(ctx context.Context) ([]release.AuthKey, error) {
	return call[[]release.AuthKey](ctx, c, http.MethodGet, "/core/auth-keys", authenticated, nil).Result()
}

// CreateAuthKey mints an API key and returns its secret value. The
// service shows the value only once.
func (c *Client) CreateAuthKey(ctx context.Context, name string) (string, error) {
	return call[string](ctx, c, http.MethodPost, "/core/auth-key/create", authenticated,
		release.CreateAuthKeyRequest{Name: name}).Result()
}
