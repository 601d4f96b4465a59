// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rollback implements "spread rollback", which asks the
// release service to return a version to the bundle it served before
// the current one.
package rollback

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
)

type rollbackParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	cli.TargetParams
}

// Command returns the "rollback" command.
func Command() *cli.Command {
	var params rollbackParams

	return &cli.Command{
		Name:    "rollback",
		Summary: "Return a version to its previous bundle",
		Description: `Ask the release service to roll a version back to the bundle it
served before the current one. The service chooses the target bundle;
the version is reloaded afterwards and shown.

If the service refuses (for example, because there is no earlier
bundle), nothing changes.`,
		Usage: "spread rollback <version-id> --app <app> --env <environment> [flags]",
		Examples: []cli.Example{
			{
				Description: "Roll back production",
				Command:     "spread rollback 6650d1c2e4b0a1f3c9d2e8b7 --app shop --env production",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("rollback", &params)
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

			app, environment, err := runtime.ResolveTarget(ctx, params.TargetParams)
			if err != nil {
				return err
			}
			view, err := runtime.Coordinator.Rollback(ctx, app.ID, environment.ID, args[0])
			if err != nil {
				return cli.FromGateway(err)
			}
			if done, err := params.EmitJSON(view); done {
				return err
			}
			fmt.Fprintf(os.Stderr, "Rolled back %s/%s version %s.\n\n", app.Name, environment.Name, args[0])
			return cli.NewRenderer(os.Stdout, runtime.Config.Output.Color).RenderVersionView(view)
		},
	}
}
