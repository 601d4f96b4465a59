// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
)

type showParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show a version with its active bundle and history",
		Description: `Fetch a version and its bundles together and show the active
bundle first, then every other bundle newest first. The active bundle
is whichever one the version's current bundle id names.`,
		Usage: "spread version show <version-id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
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
			if done, err := params.EmitJSON(view); done {
				return err
			}
			return cli.NewRenderer(os.Stdout, runtime.Config.Output.Color).RenderVersionView(view)
		},
	}
}
