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
)

type activateParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func activateCommand() *cli.Command {
	var params activateParams

	return &cli.Command{
		Name:    "activate",
		Summary: "Make a bundle the one devices receive",
		Description: `Make a bundle the version's current bundle. Devices on that native
version download it on their next update check.

Disabled bundles cannot be activated; enable them first. After the
service accepts, the version is reloaded and shown.`,
		Usage: "spread bundle activate <version-id> <bundle-id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("activate", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "version-id", "bundle-id"); err != nil {
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

			_, bundle, err := loadBundle(ctx, runtime, args[0], args[1])
			if err != nil {
				return err
			}
			if bundle.IsActive {
				fmt.Fprintf(os.Stderr, "Bundle %s is already active.\n", bundle.ID)
				return nil
			}

			view, err := runtime.Coordinator.ActivateBundle(ctx, bundle.ID)
			if err != nil {
				return cli.FromGateway(err)
			}
			if done, err := params.EmitJSON(view); done {
				return err
			}
			fmt.Fprintf(os.Stderr, "Activated bundle %s.\n\n", bundle.ID)
			return cli.NewRenderer(os.Stdout, runtime.Config.Output.Color).RenderVersionView(view)
		},
	}
}
