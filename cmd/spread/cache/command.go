// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache implements the spread cache subcommands for the local
// entity cache snapshot. Neither subcommand contacts the service.
package cache

import (
	"github.com/bureau-foundation/spread/cmd/spread/cli"
)

// Command returns the "cache" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "cache",
		Summary: "Inspect or clear the local entity cache",
		Description: `Inspect or clear the entity cache that spread keeps between runs.

The cache holds the apps, environments, versions and bundles most
recently fetched. It is written only while signed in, restored only
for the server it came from, and deleted on logout or when the service
rejects the session.`,
		Subcommands: []*cli.Command{
			showCommand(),
			clearCommand(),
		},
	}
}
