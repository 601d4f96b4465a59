// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger handed to every
// command. When stderr is a terminal it uses slog.TextHandler; when
// stderr is piped or redirected it uses slog.JSONHandler so scripts can
// parse it. SPREAD_LOG_LEVEL=debug lowers the level; --verbose on a
// command does the same through [SetVerbose].
func NewCommandLogger() *slog.Logger {
	if os.Getenv("SPREAD_LOG_LEVEL") == "debug" {
		logLevel.Set(slog.LevelDebug)
	}
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: logLevel}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// logLevel is shared by every logger NewCommandLogger returns, so a
// flag parsed after the logger was built still takes effect.
var logLevel = new(slog.LevelVar)

// SetVerbose switches command logging to debug level.
func SetVerbose(verbose bool) {
	if verbose {
		logLevel.Set(slog.LevelDebug)
	} else {
		logLevel.Set(slog.LevelInfo)
	}
}
