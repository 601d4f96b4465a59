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

type listParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	App string `json:"app" flag:"app,a" desc:"application name or id"`
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List the environments of an application",
		Usage:   "spread environment list --app <app> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.NoArgs(args); err != nil {
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
			environments, err := runtime.Coordinator.LoadEnvironments(ctx, app.ID)
			if err != nil {
				return cli.FromGateway(err)
			}
			if done, err := params.EmitJSON(environments); done {
				return err
			}
			if len(environments) == 0 {
				fmt.Fprintf(os.Stderr, "App %q has no environments.\n", app.Name)
				return nil
			}

			rows := make([]cli.Row, 0, len(environments))
			for _, environment := range environments {
				rows = append(rows, cli.Row{Cells: []string{
					environment.ID, environment.Name, environment.AccessKey, cli.FormatTime(environment.CreatedAt),
				}})
			}
			return cli.NewRenderer(os.Stdout, runtime.Config.Output.Color).Table(
				[]string{"ID", "NAME", "KEY", "CREATED"}, rows)
		},
	}
}
