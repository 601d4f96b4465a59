// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// maxResponseSize bounds how much of a response body is read. Release
// service payloads are small JSON documents; a body past this size is a
// misbehaving server and is reported as a transport failure.
const maxResponseSize = 32 << 20

// TokenSource supplies the bearer credential for authenticated
// endpoints. An empty token sends the request without an Authorization
// header; the service will answer 401.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token calls f.
func (f TokenFunc) Token() string { return f() }

// ActivateRoute selects which activation endpoint shape the client
// speaks. The release service has served activation under more than one
// path over its lifetime.
type ActivateRoute string

const (
	// ActivateRouteActive is PUT /core/version/bundle/{id}/active.
	ActivateRouteActive ActivateRoute = "active"

	// ActivateRouteActivate is PUT /core/version/bundle/{id}/activate.
	ActivateRouteActivate ActivateRoute = "activate"

	// ActivateRouteLegacy is PUT /core/version/{versionId}/bundle/{id}/activate.
	ActivateRouteLegacy ActivateRoute = "legacy"
)

// ParseActivateRoute validates a route name. The empty string selects
// ActivateRouteActive.
func ParseActivateRoute(name string) (ActivateRoute, error) {
	switch route := ActivateRoute(strings.ToLower(strings.TrimSpace(name))); route {
	case "":
		return ActivateRouteActive, nil
	case ActivateRouteActive, ActivateRouteActivate, ActivateRouteLegacy:
		return route, nil
	default:
		return "", fmt.Errorf("gateway: unknown activate route %q (want active, activate, or legacy)", name)
	}
}

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the release service root (e.g., "https://releases.example.com/api").
	BaseURL string

	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Tokens supplies the bearer credential. If nil, authenticated
	// requests are sent without one.
	Tokens TokenSource

	// ActivateRoute selects the activation endpoint. Empty means
	// ActivateRouteActive.
	ActivateRoute ActivateRoute

	// UserAgent is sent with every request when set.
	UserAgent string
}

// Client talks to the release service. It is safe for concurrent use.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	logger        *slog.Logger
	tokens        TokenSource
	activateRoute ActivateRoute
	userAgent     string

	mu             sync.RWMutex
	onUnauthorized func(rejectedToken string)
}

// NewClient creates a release service client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("gateway: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("gateway: BaseURL %q must use http or https", config.BaseURL)
	}

	route, err := ParseActivateRoute(string(config.ActivateRoute))
	if err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tokens := config.Tokens
	if tokens == nil {
		tokens = TokenFunc(func() string { return "" })
	}

	return &Client{
		baseURL:       strings.TrimRight(config.BaseURL, "/"),
		httpClient:    httpClient,
		logger:        logger,
		tokens:        tokens,
		activateRoute: route,
		userAgent:     config.UserAgent,
	}, nil
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// SetUnauthorizedHandler installs the function invoked when an
// authenticated endpoint answers 401. The handler receives the token the
// rejected request carried ("" if none). It runs synchronously, before
// the failing call returns. A nil handler uninstalls it.
func (c *Client) SetUnauthorizedHandler(handler func(rejectedToken string)) {
	c.mu.Lock()
	c.onUnauthorized = handler
	c.mu.Unlock()
}

// CloseIdleConnections closes idle connections in the transport pool.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// access distinguishes endpoints that carry the bearer credential from
// those that must not.
type access int

const (
	authenticated access = iota
	public
)

// call performs one request and decodes the canonical envelope.
func call[T any](ctx context.Context, c *Client, method, path string, mode access, requestBody any) Envelope[T] {
	return decodeEnvelope[T](c.send(ctx, method, path, mode, requestBody))
}

// send performs one request and normalizes the response. It never
// returns a Go error: every failure is expressed in the envelope.
func (c *Client) send(ctx context.Context, method, path string, mode access, requestBody any) rawEnvelope {
	requestURL := c.baseURL + path

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return rawEnvelope{
				message: "could not encode the request",
				kind:    KindTransport,
				cause:   fmt.Errorf("encoding request body: %w", err),
			}
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return rawEnvelope{
			message: "could not build the request",
			kind:    KindTransport,
			cause:   fmt.Errorf("creating request: %w", err),
		}
	}
	request.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	var token string
	if mode == authenticated {
		if token = c.tokens.Token(); token != "" {
			request.Header.Set("Authorization", "Bearer "+token)
		}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		message := "unable to reach the release service"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			message = "request to the release service timed out or was cancelled"
		}
		c.logger.Debug("gateway request failed", "method", method, "path", path, "error", err)
		return rawEnvelope{
			message: message,
			kind:    KindTransport,
			cause:   fmt.Errorf("%s %s: %w", method, path, err),
		}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize+1))
	if err != nil {
		return rawEnvelope{
			message: "could not read the release service response",
			status:  response.StatusCode,
			kind:    KindTransport,
			cause:   fmt.Errorf("reading response body: %w", err),
		}
	}
	if len(responseBody) > maxResponseSize {
		return rawEnvelope{
			message: "release service response was too large",
			status:  response.StatusCode,
			kind:    KindTransport,
			cause:   fmt.Errorf("response body exceeds %d bytes", maxResponseSize),
		}
	}

	c.logger.Debug("gateway request", "method", method, "path", path, "status", response.StatusCode)

	result := normalize(response.StatusCode, responseBody, mode == authenticated)
	if result.kind == KindUnauthorized {
		c.logger.Warn("release service rejected the session credential", "method", method, "path", path)
		c.mu.RLock()
		handler := c.onUnauthorized
		c.mu.RUnlock()
		if handler != nil {
			handler(token)
		}
	}
	return result
}

// escape percent-encodes one path segment.
func escape(segment string) string {
	return url.PathEscape(segment)
}
