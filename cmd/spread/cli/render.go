// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// maxColumnWidth caps table cells. Hashes, download URLs and
// descriptions are truncated with an ellipsis beyond it.
const maxColumnWidth = 48

// Theme is the color palette for terminal output, in ANSI 256-color codes.
type Theme struct {
	Header   lipgloss.Color
	Active   lipgloss.Color
	Disabled lipgloss.Color
	Label    lipgloss.Color
	Warning  lipgloss.Color
}

// DefaultTheme is used by every command.
var DefaultTheme = Theme{
	Header:   lipgloss.Color("252"),
	Active:   lipgloss.Color("78"),
	Disabled: lipgloss.Color("243"),
	Label:    lipgloss.Color("245"),
	Warning:  lipgloss.Color("214"),
}

// RowStyle selects how a table row is emphasized.
type RowStyle int

const (
	RowNormal RowStyle = iota
	RowActive
	RowDisabled
)

// Row is one line of a table.
type Row struct {
	Cells []string
	Style RowStyle
}

// Renderer writes styled tables and detail views. Color follows the
// output.color setting: "never" forces plain text, "always" forces 256
// colors, and "auto" lets termenv inspect the writer and environment.
type Renderer struct {
	out      io.Writer
	header   lipgloss.Style
	active   lipgloss.Style
	disabled lipgloss.Style
	label    lipgloss.Style
	warning  lipgloss.Style
}

// NewRenderer creates a renderer for out.
func NewRenderer(out io.Writer, colorMode string) *Renderer {
	var lipRenderer *lipgloss.Renderer
	switch colorMode {
	case "never":
		lipRenderer = lipgloss.NewRenderer(out, termenv.WithProfile(termenv.Ascii))
		lipRenderer.SetColorProfile(termenv.Ascii)
	case "always":
		lipRenderer = lipgloss.NewRenderer(out, termenv.WithProfile(termenv.ANSI256))
		lipRenderer.SetColorProfile(termenv.ANSI256)
	default:
		lipRenderer = lipgloss.NewRenderer(out)
	}

	theme := DefaultTheme
	return &Renderer{
		out:      out,
		header:   lipRenderer.NewStyle().Bold(true).Foreground(theme.Header),
		active:   lipRenderer.NewStyle().Foreground(theme.Active),
		disabled: lipRenderer.NewStyle().Foreground(theme.Disabled),
		label:    lipRenderer.NewStyle().Foreground(theme.Label),
		warning:  lipRenderer.NewStyle().Foreground(theme.Warning),
	}
}

// Table writes an aligned table. Column widths are measured on the
// unstyled text so escape sequences never skew the alignment.
func (r *Renderer) Table(headers []string, rows []Row) error {
	widths := make([]int, len(headers))
	for index, header := range headers {
		widths[index] = ansi.StringWidth(header)
	}
	for _, row := range rows {
		for index, cell := range row.Cells {
			if index >= len(widths) {
				break
			}
			widths[index] = max(widths[index], min(ansi.StringWidth(cell), maxColumnWidth))
		}
	}

	if _, err := fmt.Fprintln(r.out, r.header.Render(formatRow(headers, widths))); err != nil {
		return err
	}
	for _, row := range rows {
		line := formatRow(row.Cells, widths)
		switch row.Style {
		case RowActive:
			line = r.active.Render(line)
		case RowDisabled:
			line = r.disabled.Render(line)
		}
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
	}
	return nil
}

// formatRow pads each cell to its column width. The last column is not
// padded so lines carry no trailing blanks.
func formatRow(cells []string, widths []int) string {
	var builder strings.Builder
	for index, width := range widths {
		var cell string
		if index < len(cells) {
			cell = Truncate(cells[index], width)
		}
		builder.WriteString(cell)
		if index < len(widths)-1 {
			builder.WriteString(strings.Repeat(" ", width-ansi.StringWidth(cell)+3))
		}
	}
	return strings.TrimRight(builder.String(), " ")
}

// Field is one labeled value in a detail view.
type Field struct {
	Label string
	Value string
}

// Details writes labeled values, one per line, labels aligned.
func (r *Renderer) Details(fields []Field) error {
	labelWidth := 0
	for _, field := range fields {
		labelWidth = max(labelWidth, ansi.StringWidth(field.Label)+1)
	}
	for _, field := range fields {
		label := field.Label + ":"
		label += strings.Repeat(" ", labelWidth-ansi.StringWidth(label)+1)
		if _, err := fmt.Fprintf(r.out, "%s%s\n", r.label.Render(label), field.Value); err != nil {
			return err
		}
	}
	return nil
}

// Heading writes a bold line.
func (r *Renderer) Heading(text string) error {
	_, err := fmt.Fprintln(r.out, r.header.Render(text))
	return err
}

// Warn writes a highlighted line.
func (r *Renderer) Warn(text string) error {
	_, err := fmt.Fprintln(r.out, r.warning.Render(text))
	return err
}

// Truncate shortens s to width terminal cells, ending in an ellipsis
// when anything was cut.
func Truncate(s string, width int) string {
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
