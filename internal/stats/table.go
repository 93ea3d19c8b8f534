// Package stats contains statistics calculations and reporting.
package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// textColumn describes one column of a plain-text table. Numeric
// columns read better right-aligned.
type textColumn struct {
	title string
	right bool
}

// textTable collects rows and renders them with runewidth-aware
// padding; the board labels contain multi-cell runes.
type textTable struct {
	columns []textColumn
	rows    [][]string
}

func newTextTable(columns ...textColumn) *textTable {
	return &textTable{columns: columns}
}

func (t *textTable) addRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *textTable) lines() []string {
	if len(t.columns) == 0 {
		return nil
	}
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = runewidth.StringWidth(col.title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	out := make([]string, 0, len(t.rows)+1)
	header := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = col.title
	}
	out = append(out, t.renderRow(header, widths))
	for _, row := range t.rows {
		out = append(out, t.renderRow(row, widths))
	}
	return out
}

func (t *textTable) renderRow(cells []string, widths []int) string {
	parts := make([]string, len(t.columns))
	for i, cell := range cells {
		pad := widths[i] - runewidth.StringWidth(cell)
		if pad < 0 {
			pad = 0
		}
		if t.columns[i].right {
			parts[i] = strings.Repeat(" ", pad) + cell
		} else {
			parts[i] = cell + strings.Repeat(" ", pad)
		}
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
