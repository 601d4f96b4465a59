// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle implements the spread bundle subcommands: listing the
// bundles of a version, choosing which one devices receive, and
// flipping the enabled and mandatory flags.
//
// Every mutating subcommand first loads the version and its bundles so
// the coordinator acts on current data, then reports the outcome.
package bundle

import (
	"context"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
	"github.com/bureau-foundation/spread/lib/coordinator"
	"github.com/bureau-foundation/spread/lib/schema/release"
)

// Command returns the "bundle" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "bundle",
		Summary: "Manage the bundles of a version",
		Subcommands: []*cli.Command{
			listCommand(),
			activateCommand(),
			flagCommand(enableFlag),
			flagCommand(disableFlag),
			mandatoryCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "List a version's bundles (active first)",
				Command:     "spread bundle list 6650d1c2e4b0a1f3c9d2e8b7",
			},
			{
				Description: "Serve an earlier bundle to devices",
				Command:     "spread bundle activate 6650d1c2e4b0a1f3c9d2e8b7 6650d9a1e4b0a1f3c9d2e8c2",
			},
			{
				Description: "Stop offering a broken bundle",
				Command:     "spread bundle disable 6650d1c2e4b0a1f3c9d2e8b7 6650d9a1e4b0a1f3c9d2e8c2",
			},
		},
	}
}

// loadBundle loads versionID and its bundles and returns bundleID from
// among them.
func loadBundle(ctx context.Context, runtime *cli.Runtime, versionID, bundleID string) (coordinator.VersionView, release.Bundle, error) {
	view, err := runtime.Coordinator.LoadVersionAndBundles(ctx, versionID)
	if err != nil {
		return coordinator.VersionView{}, release.Bundle{}, cli.FromGateway(err)
	}
	bundle, ok := runtime.Cache.Bundles.Get(bundleID)
	if !ok || bundle.VersionID != view.Version.ID {
		return coordinator.VersionView{}, release.Bundle{}, cli.NotFound("version %s has no bundle %s", versionID, bundleID)
	}
	return view, bundle, nil
}
