// Package cli provides terminal rendering helpers for the datakit CLI.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verdantbio/datakit/pkg/table"
)

// Theme defines the color scheme for CLI output.
type Theme struct {
	Primary lipgloss.Color // headers, labels
	Dim     lipgloss.Color // secondary text
}

// DefaultTheme is the default green-on-dim theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds the styles derived from a theme.
type Styles struct {
	Header lipgloss.Style
	Label  lipgloss.Style
	Dim    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Bold(true),
		Dim:    lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// RenderTable renders up to maxRows data rows of t with a styled header
// row and aligned columns. A trailing dim line reports rows left out.
func RenderTable(t *table.Table, maxRows int, styles Styles) string {
	rows, _ := t.Shape()
	shown := rows
	if maxRows >= 0 && shown > maxRows {
		shown = maxRows
	}

	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col)
	}
	for r := 0; r < shown; r++ {
		for c := range widths {
			if cell := t.At(r, c); len(cell) > widths[c] {
				widths[c] = len(cell)
			}
		}
	}

	var sb strings.Builder
	var header []string
	for i, col := range t.Columns {
		header = append(header, pad(col, widths[i]))
	}
	sb.WriteString(styles.Header.Render(strings.Join(header, "  ")))
	sb.WriteByte('\n')

	for r := 0; r < shown; r++ {
		var cells []string
		for c := range widths {
			cells = append(cells, pad(t.At(r, c), widths[c]))
		}
		sb.WriteString(strings.Join(cells, "  "))
		sb.WriteByte('\n')
	}
	if shown < rows {
		sb.WriteString(styles.Dim.Render(fmt.Sprintf("… %d more rows", rows-shown)))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// FormatBytes formats a byte count as a human readable string.
func FormatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// FormatShape formats a (rows, cols) pair the way shape checks are usually
// written.
func FormatShape(rows, cols int) string {
	return fmt.Sprintf("(%d, %d)", rows, cols)
}
