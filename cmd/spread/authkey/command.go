// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package authkey implements the spread authkey subcommands for the
// API keys that CI pipelines use to publish bundles.
package authkey

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
)

// Command returns the "authkey" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "authkey",
		Summary: "Manage publishing API keys",
		Subcommands: []*cli.Command{
			listCommand(),
			createCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Create a key for the CI pipeline",
				Command:     "spread authkey create ci-main",
			},
		},
	}
}

type listParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List API keys",
		Description: `List API keys. Key material is shortened in the table; use --json
for the full values.`,
		Usage: "spread authkey list [flags]",
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

			keys, err := runtime.Client.ListAuthKeys(ctx)
			if err != nil {
				return cli.FromGateway(err)
			}
			if done, err := params.EmitJSON(keys); done {
				return err
			}
			if len(keys) == 0 {
				fmt.Fprintln(os.Stderr, "No API keys.")
				return nil
			}

			rows := make([]cli.Row, 0, len(keys))
			for _, key := range keys {
				style := cli.RowNormal
				if !key.IsValid {
					style = cli.RowDisabled
				}
				rows = append(rows, cli.Row{Style: style, Cells: []string{
					key.ID, key.Name, cli.Truncate(key.Key, 16), key.CreatedBy, cli.FormatTime(key.CreatedAt),
				}})
			}
			return cli.NewRenderer(os.Stdout, runtime.Config.Output.Color).Table(
				[]string{"ID", "NAME", "KEY", "CREATED BY", "CREATED"}, rows)
		},
	}
}

type createParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

type createOutput struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

func createCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create an API key",
		Description: `Create an API key. The key is printed to stdout; store it in the
CI system's secret store.`,
		Usage: "spread authkey create <name> [flags]",
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

			key, err := runtime.Client.CreateAuthKey(ctx, args[0])
			if err != nil {
				return cli.FromGateway(err)
			}
			if done, err := params.EmitJSON(createOutput{Name: args[0], Key: key}); done {
				return err
			}
			fmt.Fprintf(os.Stderr, "Created API key %q.\n", args[0])
			fmt.Fprintln(os.Stdout, key)
			return nil
		},
	}
}
