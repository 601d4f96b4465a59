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

type showParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

type showOutput struct {
	App          release.App           `json:"app"`
	Environments []release.Environment `json:"environments"`
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show an application and its environments",
		Description: `Show one application and its environments, including each
environment's deployment key.

The app may be given by id, by name, or by an unambiguous fragment of
its name.`,
		Usage: "spread app show <app> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "app"); err != nil {
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

			resolved, err := runtime.ResolveApp(ctx, args[0])
			if err != nil {
				return err
			}
			app, err := runtime.Client.GetApp(ctx, resolved.ID)
			if err != nil {
				return cli.FromGateway(err)
			}
			if app.ID == "" {
				app = resolved
			}
			runtime.Cache.Apps.Upsert(app)

			environments, err := runtime.Coordinator.LoadEnvironments(ctx, app.ID)
			if err != nil {
				return cli.FromGateway(err)
			}

			output := showOutput{App: app, Environments: environments}
			if done, err := params.EmitJSON(output); done {
				return err
			}

			renderer := cli.NewRenderer(os.Stdout, runtime.Config.Output.Color)
			if err := renderer.Details([]cli.Field{
				{Label: "App", Value: app.Name},
				{Label: "ID", Value: app.ID},
				{Label: "OS", Value: string(app.OS)},
				{Label: "Created", Value: cli.FormatTime(app.CreatedAt)},
			}); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout)
			if len(environments) == 0 {
				fmt.Fprintln(os.Stdout, "No environments. Create one with 'spread environment create'.")
				return nil
			}
			rows := make([]cli.Row, 0, len(environments))
			for _, environment := range environments {
				rows = append(rows, cli.Row{Cells: []string{environment.ID, environment.Name, environment.AccessKey}})
			}
			return renderer.Table([]string{"ENVIRONMENT ID", "NAME", "KEY"}, rows)
		},
	}
}
