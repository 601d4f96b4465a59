// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"
)

type loginParams struct {
	ConnectionParams
	PasswordFile string `json:"-" flag:"password-file" desc:"path to a file containing the password, or - to prompt (default: prompt)"`
}

// LoginCommand returns the "login" command. It exchanges a username
// and password for an access token, verifies it, and stores it so
// later commands run without credentials on the command line.
func LoginCommand() *Command {
	var params loginParams

	return &Command{
		Name:    "login",
		Summary: "Sign in to the release service",
		Description: `Sign in to the release service and save the session locally.

The access token is stored in the session file (session.file in the
configuration, $SPREAD_SESSION_FILE, or ~/.config/spread/session.json)
with mode 0600. When session.identity_file is configured the token is
encrypted to that age identity, which is created on first login.

Signing in clears any cached data from a previous session.`,
		Usage: "spread login <username> [flags]",
		Examples: []Example{
			{
				Description: "Sign in interactively (prompts for password)",
				Command:     "spread login admin",
			},
			{
				Description: "Sign in to a specific server with the password from a file",
				Command:     "spread login admin --server https://releases.example.com/api --password-file ./password",
			},
		},
		Flags: func() *pflag.FlagSet {
			return FlagsFromParams("login", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) < 1 {
				return Validation("username is required\n\nUsage: spread login <username> [flags]")
			}
			if len(args) > 1 {
				return Validation("unexpected argument: %s", args[1])
			}
			username := args[0]

			password, err := ReadPassword(params.PasswordFile, false)
			if err != nil {
				return err
			}

			runtime, err := Open(params.ConnectionParams, logger, OpenOptions{CreateIdentity: true})
			if err != nil {
				return err
			}
			defer runtime.Close()

			ctx, cancel := runtime.WithTimeout(ctx)
			defer cancel()

			if err := runtime.Guard.Login(ctx, username, password); err != nil {
				return FromGateway(fmt.Errorf("login failed: %w", err))
			}

			user, _ := runtime.Guard.User()
			fmt.Fprintf(runtime.Stderr, "Logged in as %s\n", user.Username)
			fmt.Fprintf(runtime.Stderr, "Session saved to %s\n", runtime.SessionPath)
			return nil
		},
	}
}
