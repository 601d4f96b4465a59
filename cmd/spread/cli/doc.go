// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the spread binary: a small
// command tree on pflag, struct-tag flag binding, categorized errors,
// --json output, terminal rendering, and [Runtime], which assembles
// the release service client, entity cache, session guard, and
// release coordinator for a single invocation.
//
// Commands that talk to the service follow the same shape:
//
//	runtime, err := cli.Open(ctx, params.Connection, logger, cli.OpenOptions{})
//	if err != nil {
//	    return err
//	}
//	defer runtime.Close()
//	if err := runtime.RequireSession(ctx); err != nil {
//	    return err
//	}
//
// The runtime persists the entity cache between invocations as a
// snapshot file and deletes it whenever the session ends.
package cli
