// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the spread CLI configuration.
//
// The file is found in this order: an explicit path (the --config
// flag), the SPREAD_CONFIG environment variable, then
// $XDG_CONFIG_HOME/spread/config.yaml (or ~/.config/spread/config.yaml).
// A missing file at the discovered default path is not an error and
// yields [Default]; a missing file named explicitly is.
//
// Files ending in .json or .jsonc are parsed as JSON with comments and
// trailing commas; everything else is YAML.
//
// Two environment variables override file values: SPREAD_SERVER
// replaces server.url and SPREAD_SESSION_FILE replaces session.file.
// Path fields expand a leading ~/ and ${VAR} / ${VAR:-default}
// patterns after loading.
package config
