// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfoUsesInjectedValues(t *testing.T) {
	saved := [4]string{Version, GitCommit, GitDirty, BuildTime}
	t.Cleanup(func() { Version, GitCommit, GitDirty, BuildTime = saved[0], saved[1], saved[2], saved[3] })

	Version, GitCommit, GitDirty, BuildTime = "1.2.3", "abc1234", "true", "2026-10-01T00:00:00Z"
	if got, want := Info(), "1.2.3 (abc1234-dirty, 2026-10-01T00:00:00Z)"; got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
	if !strings.HasPrefix(UserAgent(), "spread/1.2.3 (") {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
	if !strings.Contains(Full(), "Go: go") {
		t.Errorf("Full() = %q lacks the Go version", Full())
	}
}
