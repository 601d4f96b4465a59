// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package environment

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
)

type createParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	App string `json:"app" flag:"app,a" desc:"application name or id"`
}

func createCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Add an environment to an application",
		Description: `Add an environment to an application. The service generates the
deployment key; it is printed once the environment exists.`,
		Usage: "spread environment create <name> --app <app> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("create", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "name"); err != nil {
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

			app, err := runtime.ResolveApp(ctx, params.App)
			if err != nil {
				return err
			}
			environment, err := runtime.Coordinator.CreateEnvironment(ctx, app.Name, args[0])
			if err != nil {
				return cli.FromGateway(err)
			}
			if done, err := params.EmitJSON(environment); done {
				return err
			}

			fmt.Fprintf(os.Stderr, "Created environment %q for %s\n", args[0], app.Name)
			if environment.AccessKey != "" {
				fmt.Fprintf(os.Stdout, "%s\n", environment.AccessKey)
			}
			return nil
		},
	}
}
