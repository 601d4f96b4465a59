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

// flagChange describes one of the enable/disable subcommands.
type flagChange struct {
	name    string
	enabled bool
	summary string
	verb    string
}

var (
	enableFlag  = flagChange{name: "enable", enabled: true, summary: "Offer a bundle to devices again", verb: "Enabled"}
	disableFlag = flagChange{name: "disable", enabled: false, summary: "Stop offering a bundle to devices", verb: "Disabled"}
)

type flagParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

func flagCommand(change flagChange) *cli.Command {
	var params flagParams

	return &cli.Command{
		Name:    change.name,
		Summary: change.summary,
		Description: change.summary + `.

The local view changes at once; if the service refuses, it is put back
and the error is reported.`,
		Usage: fmt.Sprintf("spread bundle %s <version-id> <bundle-id> [flags]", change.name),
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams(change.name, &params)
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
			if err := runtime.Coordinator.SetEnabled(ctx, bundle.ID, change.enabled); err != nil {
				return cli.FromGateway(err)
			}
			return report(runtime, &params.JSONOutput, bundle.ID, fmt.Sprintf("%s bundle %s.", change.verb, bundle.ID))
		},
	}
}

type mandatoryParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	Off bool `json:"off" flag:"off" desc:"clear the mandatory flag instead of setting it"`
}

func mandatoryCommand() *cli.Command {
	var params mandatoryParams

	return &cli.Command{
		Name:    "mandatory",
		Summary: "Require devices to install a bundle",
		Description: `Mark a bundle mandatory: devices must install it before the app
continues. With --off the flag is cleared.

The local view changes only after the service accepts.`,
		Usage: "spread bundle mandatory <version-id> <bundle-id> [--off] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("mandatory", &params)
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
			mandatory := !params.Off
			if err := runtime.Coordinator.SetMandatory(ctx, bundle.ID, mandatory); err != nil {
				return cli.FromGateway(err)
			}
			message := fmt.Sprintf("Bundle %s is now mandatory.", bundle.ID)
			if !mandatory {
				message = fmt.Sprintf("Bundle %s is no longer mandatory.", bundle.ID)
			}
			return report(runtime, &params.JSONOutput, bundle.ID, message)
		},
	}
}

// report writes the bundle as the cache now holds it, as JSON or as a
// one-line message.
func report(runtime *cli.Runtime, output *cli.JSONOutput, bundleID, message string) error {
	bundle, _ := runtime.Cache.Bundles.Get(bundleID)
	if done, err := output.EmitJSON(bundle); done {
		return err
	}
	fmt.Fprintln(os.Stderr, message)
	return nil
}

