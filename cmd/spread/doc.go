// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// spread is the administration CLI for an over-the-air release
// service. It manages applications, environments, native versions and
// the update bundles published against them.
//
// Usage:
//
//	spread <command> [subcommand] [flags]
//
// Run "spread --help" for the full command list.
package main
