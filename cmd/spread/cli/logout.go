// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/pflag"
)

// LogoutCommand returns the "logout" command, which deletes the stored
// credential and the cache snapshot. It needs no network access.
func LogoutCommand() *Command {
	var params ConnectionParams

	return &Command{
		Name:    "logout",
		Summary: "Sign out and forget cached data",
		Description: `Remove the stored access token and the cache snapshot.

Nothing is sent to the release service. Signing out when no session
exists is not an error.`,
		Usage: "spread logout [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("logout", pflag.ContinueOnError)
			params.AddFlags(flagSet)
			return flagSet
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if err := NoArgs(args); err != nil {
				return err
			}
			runtime, err := Open(params, logger, OpenOptions{})
			if err != nil {
				return err
			}
			defer runtime.Close()

			// Logout navigates to the login route, which prints the
			// sign-in hint.
			runtime.Guard.Logout()
			return nil
		},
	}
}
