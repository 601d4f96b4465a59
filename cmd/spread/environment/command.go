// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package environment implements the spread environment subcommands.
// An environment (production, staging, ...) belongs to one application
// and carries the deployment key that devices use to fetch bundles.
package environment

import (
	"github.com/bureau-foundation/spread/cmd/spread/cli"
)

// Command returns the "environment" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "environment",
		Summary: "Manage application environments",
		Description: `Manage the environments of an application.

Each environment has its own versions and bundles, and its own
deployment key that app builds embed to receive updates.`,
		Subcommands: []*cli.Command{
			listCommand(),
			createCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "List the environments of an app",
				Command:     "spread environment list --app shop",
			},
			{
				Description: "Add a staging environment",
				Command:     "spread environment create staging --app shop",
			},
		},
	}
}
