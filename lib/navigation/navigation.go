// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package navigation decouples session policy from the view layer.
//
// The session guard decides *that* the operator must be sent to the
// login surface (explicit logout, or a 401 observed by the gateway);
// the front end decides *how* (print a hint on the CLI, push a route in
// a UI). [Service] is the late-bound indirection between the two: the
// guard holds a Service from construction, and the front end installs
// its navigation function with [Service.SetNavigate] once it exists.
package navigation

import (
	"log/slog"
	"sync"
)

// Route is a front-end location name.
type Route string

const (
	// RouteLogin is the login surface. Forced logouts navigate here.
	RouteLogin Route = "/login"

	// RouteDashboard is the landing surface after a successful login.
	RouteDashboard Route = "/dashboard"
)

// Navigator moves the front end to a route.
type Navigator interface {
	Navigate(route Route)
}

// Func adapts an ordinary function to the Navigator interface.
type Func func(route Route)

// Navigate calls f(route).
func (f Func) Navigate(route Route) { f(route) }

// Service is a Navigator whose target is installed after construction.
// Navigating before SetNavigate has been called logs a warning and
// does nothing else. Safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	navigate func(Route)
	logger   *slog.Logger
}

// NewService returns a Service with no navigation target. A nil logger
// uses slog.Default().
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// SetNavigate installs the navigation target, replacing any previous
// one. A nil function uninstalls it.
func (s *Service) SetNavigate(navigate func(Route)) {
	s.mu.Lock()
	s.navigate = navigate
	s.mu.Unlock()
}

// Navigate forwards route to the installed target.
func (s *Service) Navigate(route Route) {
	s.mu.RLock()
	navigate := s.navigate
	s.mu.RUnlock()

	if navigate == nil {
		s.logger.Warn("navigation attempted before a navigator was installed", "route", string(route))
		return
	}
	navigate(route)
}
