// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
)

type listParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	cli.TargetParams
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List the versions of an environment",
		Usage:   "spread version list --app <app> --env <environment> [flags]",
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

			app, environment, err := runtime.ResolveTarget(ctx, params.TargetParams)
			if err != nil {
				return err
			}
			versions, err := runtime.Coordinator.LoadVersions(ctx, environment.ID)
			if err != nil {
				return cli.FromGateway(err)
			}
			sort.SliceStable(versions, func(i, j int) bool {
				return versions[i].VersionNumber > versions[j].VersionNumber
			})
			if done, err := params.EmitJSON(versions); done {
				return err
			}
			if len(versions) == 0 {
				fmt.Fprintf(os.Stderr, "No versions in %s/%s.\n", app.Name, environment.Name)
				return nil
			}

			rows := make([]cli.Row, 0, len(versions))
			for _, version := range versions {
				current := version.CurrentBundleID
				if current == "" {
					current = "-"
				}
				rows = append(rows, cli.Row{Cells: []string{
					version.ID,
					version.AppVersion,
					strconv.FormatInt(version.VersionNumber, 10),
					current,
					cli.FormatTime(version.UpdatedAt),
				}})
			}
			return cli.NewRenderer(os.Stdout, runtime.Config.Output.Color).Table(
				[]string{"ID", "APP VERSION", "NUMBER", "CURRENT BUNDLE", "UPDATED"}, rows)
		},
	}
}
