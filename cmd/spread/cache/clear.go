// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
	"github.com/bureau-foundation/spread/lib/entitycache"
)

func clearCommand() *cli.Command {
	var params cli.ConnectionParams

	return &cli.Command{
		Name:    "clear",
		Summary: "Delete the cache snapshot",
		Description: `Delete the cache snapshot. The session is kept; the next command
fetches everything afresh.`,
		Usage: "spread cache clear [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("clear", pflag.ContinueOnError)
			params.AddFlags(flagSet)
			return flagSet
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if err := cli.NoArgs(args); err != nil {
				return err
			}
			runtime, err := cli.Open(params, logger, cli.OpenOptions{})
			if err != nil {
				return err
			}
			defer runtime.Close()

			runtime.Cache.Reset()
			if runtime.SnapshotPath == "" {
				return nil
			}
			if err := entitycache.RemoveFile(runtime.SnapshotPath); err != nil {
				return cli.Internal("%w", err)
			}
			fmt.Fprintf(os.Stderr, "Removed %s\n", runtime.SnapshotPath)
			return nil
		},
	}
}
