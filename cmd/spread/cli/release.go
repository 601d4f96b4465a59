// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bureau-foundation/spread/lib/coordinator"
	"github.com/bureau-foundation/spread/lib/schema/release"
)

// bundleHeaders are the columns of every bundle table.
var bundleHeaders = []string{"", "ID", "SEQ", "LABEL", "HASH", "SIZE", "ENABLED", "MANDATORY", "INSTALLED", "CREATED"}

// BundleRows formats bundles for [Renderer.Table]. The active bundle is
// marked with "*" and disabled bundles are dimmed.
func BundleRows(bundles []release.Bundle) []Row {
	rows := make([]Row, 0, len(bundles))
	for _, bundle := range bundles {
		marker, style := "", RowNormal
		switch {
		case bundle.IsActive:
			marker, style = "*", RowActive
		case !bundle.IsValid:
			style = RowDisabled
		}
		rows = append(rows, Row{
			Style: style,
			Cells: []string{
				marker,
				bundle.ID,
				strconv.FormatInt(bundle.SequenceID, 10),
				bundle.Label,
				Truncate(bundle.Hash, 12),
				FormatSize(bundle.Size),
				yesNo(bundle.IsValid),
				yesNo(bundle.IsMandatory),
				strconv.FormatInt(bundle.Installed, 10),
				FormatTime(bundle.CreatedAt),
			},
		})
	}
	return rows
}

// RenderVersionView writes a version's details followed by its bundles,
// active first.
func (r *Renderer) RenderVersionView(view coordinator.VersionView) error {
	current := view.Version.CurrentBundleID
	if current == "" {
		current = "(none)"
	}
	err := r.Details([]Field{
		{Label: "Version", Value: view.Version.ID},
		{Label: "App version", Value: view.Version.AppVersion},
		{Label: "Number", Value: strconv.FormatInt(view.Version.VersionNumber, 10)},
		{Label: "Current bundle", Value: current},
	})
	if err != nil {
		return err
	}

	bundles := view.History
	if view.Active != nil {
		bundles = append([]release.Bundle{*view.Active}, view.History...)
	} else if view.Version.CurrentBundleID != "" {
		if err := r.Warn(fmt.Sprintf("current bundle %s is not among the loaded bundles", view.Version.CurrentBundleID)); err != nil {
			return err
		}
	}
	if len(bundles) == 0 {
		_, err := fmt.Fprintln(r.out, "\nNo bundles published.")
		return err
	}
	if _, err := fmt.Fprintln(r.out); err != nil {
		return err
	}
	return r.Table(bundleHeaders, BundleRows(bundles))
}

// FormatSize renders a byte count with a binary unit.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	divisor, exponent := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		divisor *= unit
		exponent++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(divisor), "KMGTPE"[exponent])
}

// FormatTime renders a timestamp in UTC, or "-" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
