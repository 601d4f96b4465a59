// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
	"github.com/bureau-foundation/spread/lib/schema/release"
)

type listParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List the bundles of a version",
		Description: `List every bundle published against a version. The active bundle
comes first and is marked with "*"; disabled bundles are dimmed.`,
		Usage: "spread bundle list <version-id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "version-id"); err != nil {
				return err
			}
			runtime, err := cli.Open(params.ConnectionParams, logger, cli.OpenOptions{})
			if err != nil {
				return err
			}
			defer runtime.Close()

			ctx, cancel := runtime.WithTimeout(ctx)
			defer cancel()
			if err := runtime.RequireSession(ctx); err != nil {
				return err
			}

			view, err := runtime.Coordinator.LoadVersionAndBundles(ctx, args[0])
			if err != nil {
				return cli.FromGateway(err)
			}
			bundles := view.History
			if view.Active != nil {
				bundles = append([]release.Bundle{*view.Active}, view.History...)
			}
			if done, err := params.EmitJSON(bundles); done {
				return err
			}
			if len(bundles) == 0 {
				fmt.Fprintf(os.Stderr, "Version %s has no bundles.\n", args[0])
				return nil
			}
			return cli.NewRenderer(os.Stdout, runtime.Config.Output.Color).Table(
				[]string{"", "ID", "SEQ", "LABEL", "HASH", "SIZE", "ENABLED", "MANDATORY", "INSTALLED", "CREATED"},
				cli.BundleRows(bundles))
		},
	}
}
