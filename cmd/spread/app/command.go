// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package app implements the spread app subcommands: listing,
// registering, and inspecting applications on the release service.
package app

import (
	"github.com/bureau-foundation/spread/cmd/spread/cli"
)

// Command returns the "app" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "app",
		Summary: "Manage applications",
		Description: `Manage the applications registered with the release service.

An application is one mobile app on one platform (ios or android). Its
environments, versions and bundles hang beneath it.`,
		Subcommands: []*cli.Command{
			listCommand(),
			createCommand(),
			showCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "List applications",
				Command:     "spread app list",
			},
			{
				Description: "Register an Android app",
				Command:     "spread app create shop --os android",
			},
			{
				Description: "Show an app and its environments",
				Command:     "spread app show shop",
			},
		},
	}
}
