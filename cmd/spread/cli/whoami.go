// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

type whoamiParams struct {
	ConnectionParams
	JSONOutput
}

type whoamiOutput struct {
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	Server      string   `json:"server"`
	SessionFile string   `json:"session_file"`
}

// WhoAmICommand returns the "whoami" command, which validates the
// stored credential against the service and shows who it belongs to.
func WhoAmICommand() *Command {
	var params whoamiParams

	return &Command{
		Name:    "whoami",
		Summary: "Show the signed-in user",
		Description: `Validate the stored session against the release service and show
the user it belongs to.

A credential the service rejects is removed, along with cached data.`,
		Usage: "spread whoami [flags]",
		Flags: func() *pflag.FlagSet {
			return FlagsFromParams("whoami", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := NoArgs(args); err != nil {
				return err
			}
			runtime, err := Open(params.ConnectionParams, logger, OpenOptions{})
			if err != nil {
				return err
			}
			defer runtime.Close()

			ctx, cancel := runtime.WithTimeout(ctx)
			defer cancel()
			if err := runtime.RequireSession(ctx); err != nil {
				return err
			}

			user, _ := runtime.Guard.User()
			output := whoamiOutput{
				UserID:      user.ID,
				Username:    user.Username,
				Roles:       user.Roles,
				Server:      runtime.Client.BaseURL(),
				SessionFile: runtime.SessionPath,
			}
			if done, err := params.EmitJSON(output); done {
				return err
			}

			renderer := NewRenderer(os.Stdout, runtime.Config.Output.Color)
			return renderer.Details([]Field{
				{Label: "User", Value: output.Username},
				{Label: "User ID", Value: output.UserID},
				{Label: "Roles", Value: strings.Join(output.Roles, ", ")},
				{Label: "Server", Value: output.Server},
				{Label: "Session file", Value: output.SessionFile},
			})
		},
	}
}
