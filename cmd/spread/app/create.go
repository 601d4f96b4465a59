// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
	"github.com/bureau-foundation/spread/lib/schema/release"
)

type createParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	OS string `json:"os" flag:"os" desc:"target platform: ios or android"`
}

func createCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Register an application",
		Description: `Register a new application. The platform is fixed at creation.

The app list is refreshed afterwards so the new app is immediately
usable by name in --app flags.`,
		Usage: "spread app create <name> --os <ios|android> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("create", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "name"); err != nil {
				return err
			}
			if params.OS == "" {
				return cli.Validation("--os is required (ios or android)")
			}
			platform, err := release.ParseOS(params.OS)
			if err != nil {
				return cli.Validation("%w", err)
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

			app, err := runtime.Coordinator.CreateApp(ctx, args[0], platform)
			if err != nil {
				return cli.FromGateway(err)
			}
			if done, err := params.EmitJSON(app); done {
				return err
			}
			fmt.Fprintf(os.Stderr, "Created %s app %q", app.OS, app.Name)
			if app.ID != "" {
				fmt.Fprintf(os.Stderr, " (%s)", app.ID)
			}
			fmt.Fprintln(os.Stderr)
			return nil
		},
	}
}
