// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version implements the spread version subcommands. A version
// is one native build (app version string) within an environment; its
// bundles are the over-the-air updates published against it.
package version

import (
	"github.com/bureau-foundation/spread/cmd/spread/cli"
)

// Command returns the "version" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Inspect native versions and their bundles",
		Subcommands: []*cli.Command{
			listCommand(),
			showCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "List the versions of the production environment",
				Command:     "spread version list --app shop --env production",
			},
			{
				Description: "Show a version with its active bundle and history",
				Command:     "spread version show 6650d1c2e4b0a1f3c9d2e8b7",
			},
		},
	}
}
