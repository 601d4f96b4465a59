// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/spread/cmd/spread/cli"
	"github.com/bureau-foundation/spread/lib/entitycache"
)

type showParams struct {
	cli.ConnectionParams
	cli.JSONOutput
}

type showOutput struct {
	Path    string         `json:"path"`
	Server  string         `json:"server,omitempty"`
	SavedAt string         `json:"saved_at,omitempty"`
	Counts  map[string]int `json:"counts"`
}

type entityRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func showCommand() *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Summarize the cache, or list one kind of cached entity",
		Usage:   "spread cache show [app|environment|version|bundle] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("unexpected argument: %s", args[1])
			}
			runtime, err := cli.Open(params.ConnectionParams, logger, cli.OpenOptions{})
			if err != nil {
				return err
			}
			defer runtime.Close()

			if runtime.SnapshotPath == "" {
				fmt.Fprintln(os.Stderr, "The cache snapshot is disabled (cache.disabled in the configuration).")
				return nil
			}

			if len(args) == 1 {
				kind, err := entitycache.ParseKind(args[0])
				if err != nil {
					return cli.Validation("%w", err)
				}
				return showKind(runtime, &params.JSONOutput, kind)
			}

			output := showOutput{Path: runtime.SnapshotPath, Counts: make(map[string]int)}
			snapshot, err := entitycache.LoadFile(runtime.SnapshotPath)
			switch {
			case err == nil:
				output.Server = snapshot.Server
				output.SavedAt = cli.FormatTime(snapshot.SavedAt)
			case errors.Is(err, fs.ErrNotExist):
			default:
				return cli.Internal("%w", err)
			}
			for _, kind := range entitycache.Kinds {
				output.Counts[string(kind)] = runtime.Cache.Len(kind)
			}

			if done, err := params.EmitJSON(output); done {
				return err
			}
			renderer := cli.NewRenderer(os.Stdout, runtime.Config.Output.Color)
			fields := []cli.Field{{Label: "Snapshot", Value: output.Path}}
			if output.Server == "" {
				fields = append(fields, cli.Field{Label: "State", Value: "empty"})
			} else {
				fields = append(fields,
					cli.Field{Label: "Server", Value: output.Server},
					cli.Field{Label: "Saved", Value: output.SavedAt})
			}
			if output.Server != "" && output.Server != runtime.Client.BaseURL() {
				fields = append(fields, cli.Field{Label: "Note", Value: "written for another server; not used"})
			}
			for _, kind := range entitycache.Kinds {
				fields = append(fields, cli.Field{Label: string(kind) + "s", Value: strconv.Itoa(output.Counts[string(kind)])})
			}
			return renderer.Details(fields)
		},
	}
}

// showKind lists the cached entities of one kind.
func showKind(runtime *cli.Runtime, output *cli.JSONOutput, kind entitycache.Kind) error {
	var rows []entityRow
	switch kind {
	case entitycache.KindApp:
		for _, app := range runtime.Cache.Apps.List() {
			rows = append(rows, entityRow{ID: app.ID, Name: app.Name})
		}
	case entitycache.KindEnvironment:
		for _, environment := range runtime.Cache.Environments.List() {
			rows = append(rows, entityRow{ID: environment.ID, Name: environment.Name})
		}
	case entitycache.KindVersion:
		for _, version := range runtime.Cache.Versions.List() {
			rows = append(rows, entityRow{ID: version.ID, Name: version.AppVersion})
		}
	case entitycache.KindBundle:
		for _, bundle := range runtime.Cache.Bundles.List() {
			name := bundle.Label
			if name == "" {
				name = "#" + strconv.FormatInt(bundle.SequenceID, 10)
			}
			rows = append(rows, entityRow{ID: bundle.ID, Name: name})
		}
	}

	if done, err := output.EmitJSON(rows); done {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "No cached %ss.\n", kind)
		return nil
	}
	tableRows := make([]cli.Row, 0, len(rows))
	for _, row := range rows {
		tableRows = append(tableRows, cli.Row{Cells: []string{row.ID, row.Name}})
	}
	return cli.NewRenderer(os.Stdout, runtime.Config.Output.Color).Table([]string{"ID", "NAME"}, tableRows)
}
