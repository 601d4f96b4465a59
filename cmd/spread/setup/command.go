// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package setup implements the spread setup subcommands for a fresh
// release service that has no administrator yet. Both talk to public
// endpoints and need no session.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
	"github.com/bureau-foundation/spread/lib/schema/release"
)

// Command returns the "setup" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "setup",
		Summary: "Bootstrap a new release service",
		Subcommands: []*cli.Command{
			statusCommand(),
			initCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Check whether the service still needs its first administrator",
				Command:     "spread setup status --server https://releases.example.com/api",
			},
			{
				Description: "Create the first administrator",
				Command:     "spread setup init admin --password-file ./password",
			},
		},
	}
}

type statusParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

type statusOutput struct {
	Server    string `json:"server"`
	Service   string `json:"service,omitempty"`
	Status    string `json:"status,omitempty"`
	Completed bool   `json:"completed"`
}

func statusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show whether initial setup is complete",
		Description: `Check that the release service is reachable and whether its first
administrator has been created. Exits with status 1 while setup is
still pending.`,
		Usage: "spread setup status [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("status", &params)
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

			output := statusOutput{Server: runtime.Client.BaseURL()}
			service, err := runtime.Client.Ping(ctx)
			if err != nil {
				return cli.FromGateway(err)
			}
			output.Service, output.Status = service.Service, service.Status

			status, err := runtime.Client.SetupStatus(ctx)
			if err != nil {
				return cli.FromGateway(err)
			}
			output.Completed = status.Completed

			if done, err := params.EmitJSON(output); done {
				if err == nil && !output.Completed {
					return &cli.ExitError{Code: 1}
				}
				return err
			}

			state := "complete"
			if !output.Completed {
				state = "pending (run 'spread setup init')"
			}
			renderer := cli.NewRenderer(os.Stdout, runtime.Config.Output.Color)
			if err := renderer.Details([]cli.Field{
				{Label: "Server", Value: output.Server},
				{Label: "Service", Value: output.Service},
				{Label: "Status", Value: output.Status},
				{Label: "Setup", Value: state},
			}); err != nil {
				return err
			}
			if !output.Completed {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

type initParams struct {
	cli.ConnectionParams
	cli.JSONOutput
	PasswordFile string   `json:"-" flag:"password-file" desc:"path to a file containing the password, or - to prompt (default: prompt)"`
	Roles        []string `json:"roles" flag:"role" desc:"roles for the new user (repeatable)" default:"admin"`
}

func initCommand() *cli.Command {
	var params initParams

	return &cli.Command{
		Name:    "init",
		Summary: "Create the first administrator",
		Description: `Create the first user on a release service whose setup is still
pending. The service refuses once setup is complete.

Sign in afterwards with "spread login".`,
		Usage: "spread setup init <username> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("init", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := cli.ExactArgs(args, "username"); err != nil {
				return err
			}
			password, err := cli.ReadPassword(params.PasswordFile, true)
			if err != nil {
				return err
			}

			runtime, err := cli.Open(params.ConnectionParams, logger, cli.OpenOptions{})
			if err != nil {
				return err
			}
			defer runtime.Close()

			ctx, cancel := runtime.WithTimeout(ctx)
			defer cancel()

			user, err := runtime.Client.InitUser(ctx, release.InitUserRequest{
				Username: args[0],
				Password: password,
				Roles:    params.Roles,
			})
			if err != nil {
				return cli.FromGateway(err)
			}
			if user.Username == "" {
				user.Username = args[0]
			}
			if done, err := params.EmitJSON(user); done {
				return err
			}
			fmt.Fprintf(os.Stderr, "Created user %s. Sign in with 'spread login %s'.\n", user.Username, user.Username)
			return nil
		},
	}
}
