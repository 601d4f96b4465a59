// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
)

func TestTablePlain(t *testing.T) {
	var output strings.Builder
	renderer := NewRenderer(&output, "never")

	err := renderer.Table([]string{"ID", "NAME", "OS"}, []Row{
		{Cells: []string{"a1", "shop", "ios"}},
		{Cells: []string{"a22", "kiosk", "android"}, Style: RowActive},
	})
	if err != nil {
		t.Fatalf("Table: %v", err)
	}

	want := "ID    NAME    OS\n" +
		"a1    shop    ios\n" +
		"a22   kiosk   android\n"
	if output.String() != want {
		t.Errorf("table =\n%q\nwant\n%q", output.String(), want)
	}
}

func TestTableTruncatesLongCells(t *testing.T) {
	var output strings.Builder
	renderer := NewRenderer(&output, "never")

	hash := strings.Repeat("f", 64)
	if err := renderer.Table([]string{"HASH", "SEQ"}, []Row{{Cells: []string{hash, "7"}}}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	if strings.Contains(lines[1], hash) {
		t.Error("64-character hash was not truncated")
	}
	if !strings.Contains(lines[1], "…") || !strings.HasSuffix(lines[1], "7") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestColorAlwaysEmitsEscapes(t *testing.T) {
	var output strings.Builder
	renderer := NewRenderer(&output, "always")
	if err := renderer.Heading("Bundles"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output.String(), "\x1b[") {
		t.Errorf("output %q has no escape sequences", output.String())
	}
}

func TestDetails(t *testing.T) {
	var output strings.Builder
	renderer := NewRenderer(&output, "never")
	err := renderer.Details([]Field{
		{Label: "User", Value: "admin"},
		{Label: "Session file", Value: "/tmp/s.json"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "User:         admin\n" +
		"Session file: /tmp/s.json\n"
	if output.String() != want {
		t.Errorf("details =\n%q\nwant\n%q", output.String(), want)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	got := Truncate("abcdefghij", 5)
	if got != "abcd…" {
		t.Errorf("Truncate = %q, want abcd…", got)
	}
}
