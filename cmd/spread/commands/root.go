// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete spread command tree.
package commands

import (
	appcmd "github.com/bureau-foundation/spread/cmd/spread/app"
	authkeycmd "github.com/bureau-foundation/spread/cmd/spread/authkey"
	bundlecmd "github.com/bureau-foundation/spread/cmd/spread/bundle"
	cachecmd "github.com/bureau-foundation/spread/cmd/spread/cache"
	"github.com/bureau-foundation/spread/cmd/spread/cli"
	environmentcmd "github.com/bureau-foundation/spread/cmd/spread/environment"
	rollbackcmd "github.com/bureau-foundation/spread/cmd/spread/rollback"
	setupcmd "github.com/bureau-foundation/spread/cmd/spread/setup"
	versioncmd "github.com/bureau-foundation/spread/cmd/spread/version"
	"github.com/bureau-foundation/spread/lib/version"
)

// Root builds and returns the complete spread command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "spread",
		Description: `spread: administer over-the-air releases.

Sign in to a release service, browse applications, environments,
versions and bundles, choose which bundle devices receive, and roll
back when a release goes wrong.`,
		Version: version.Info,
		Subcommands: []*cli.Command{
			cli.LoginCommand(),
			cli.LogoutCommand(),
			cli.WhoAmICommand(),
			appcmd.Command(),
			environmentcmd.Command(),
			versioncmd.Command(),
			bundlecmd.Command(),
			rollbackcmd.Command(),
			authkeycmd.Command(),
			setupcmd.Command(),
			cachecmd.Command(),
		},
		Examples: []cli.Example{
			{
				Description: "Sign in (saves the session locally)",
				Command:     "spread login admin --server https://releases.example.com/api",
			},
			{
				Description: "See what the production environment is serving",
				Command:     "spread version list --app shop --env production",
			},
			{
				Description: "Show a version's active bundle and history",
				Command:     "spread version show 6650d1c2e4b0a1f3c9d2e8b7",
			},
			{
				Description: "Roll production back to its previous bundle",
				Command:     "spread rollback 6650d1c2e4b0a1f3c9d2e8b7 --app shop --env production",
			},
		},
	}
}
