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

type listParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List applications",
		Usage:   "spread app list [flags]",
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

			apps, err := runtime.Coordinator.LoadApps(ctx)
			if err != nil {
				return cli.FromGateway(err)
			}
			if done, err := params.EmitJSON(apps); done {
				return err
			}
			if len(apps) == 0 {
				fmt.Fprintln(os.Stderr, "No applications registered. Create one with 'spread app create'.")
				return nil
			}
			return cli.NewRenderer(os.Stdout, runtime.Config.Output.Color).Table(
				[]string{"ID", "NAME", "OS", "CREATED"}, appRows(apps))
		},
	}
}

func appRows(apps []release.App) []cli.Row {
	rows := make([]cli.Row, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, cli.Row{Cells: []string{app.ID, app.Name, string(app.OS), cli.FormatTime(app.CreatedAt)}})
	}
	return rows
}
