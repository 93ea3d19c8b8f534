// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/tuinoi/internal/model"
)

const (
	minPanelCols  = 8
	fallbackWidth = 80
	axisTick      = " ┤"
	colorTime     = "\x1b[36m"
	colorPace     = "\x1b[33m"
	colorOff      = "\x1b[0m"
)

// trendPanel is one chart in the trend output. Time and pace have
// unrelated units, so each metric gets its own panel and axis instead
// of sharing a scaled canvas.
type trendPanel struct {
	name   string
	values []float64
	color  string
	format func(float64) string
}

// brailleGrid accumulates plot pixels at braille resolution, two
// horizontal and four vertical dots per terminal cell.
type brailleGrid struct {
	cols  int
	rows  int
	cells []uint8
}

// dotBits maps a pixel within one cell to its braille bit, indexed
// [y%4][x%2].
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func newBrailleGrid(cols, rows int) *brailleGrid {
	return &brailleGrid{cols: cols, rows: rows, cells: make([]uint8, cols*rows)}
}

// pixelWidth and pixelHeight are the grid's drawable resolution.
func (g *brailleGrid) pixelWidth() int  { return g.cols * 2 }
func (g *brailleGrid) pixelHeight() int { return g.rows * 4 }

func (g *brailleGrid) set(x, y int) {
	if x < 0 || y < 0 || x >= g.pixelWidth() || y >= g.pixelHeight() {
		return
	}
	g.cells[(y/4)*g.cols+x/2] |= dotBits[y%4][x%2]
}

// line draws from (x0, y0) to (x1, y1) inclusive.
func (g *brailleGrid) line(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	stepX, stepY := 1, 1
	if x0 > x1 {
		stepX = -1
	}
	if y0 > y1 {
		stepY = -1
	}
	err := dx - dy
	for {
		g.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += stepX
		}
		if e2 < dx {
			err += dx
			y0 += stepY
		}
	}
}

func (g *brailleGrid) renderRow(row int) string {
	var b strings.Builder
	for col := 0; col < g.cols; col++ {
		b.WriteRune(rune(0x2800 + int(g.cells[row*g.cols+col])))
	}
	return b.String()
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// RenderTrend plots time and pace curves for the runs at the
// terminal's width.
func RenderTrend(w io.Writer, runs []model.RunResult, window int) error {
	return RenderTrendWithSize(w, runs, window, 0, 10, false)
}

// RenderTrendWithSize plots time and pace curves sized to a given
// total width. Each metric renders as its own panel so the axes can
// carry real values. useColor forces ANSI output for hosts that write
// into a styled buffer.
func RenderTrendWithSize(w io.Writer, runs []model.RunResult, window, totalWidth, height int, useColor bool) error {
	if len(runs) == 0 {
		return nil
	}
	if totalWidth <= 0 {
		totalWidth = outputWidth(w)
	}
	panelRows := height / 2
	if panelRows < 3 {
		panelRows = 3
	}
	if _, err := fmt.Fprintf(w, "Trend over %d runs (window %d)\n", len(runs), window); err != nil {
		return err
	}
	panels := []trendPanel{
		{
			name:   "Time",
			values: MovingAverage(DurationSeries(runs), window),
			color:  colorTime,
			format: formatSecondsValue,
		},
		{
			name:   "Pace",
			values: MovingAverage(PaceSeries(runs), window),
			color:  colorPace,
			format: func(v float64) string { return fmt.Sprintf("%.2f/s", v) },
		},
	}
	color := useColor || writerIsTerminal(w)
	if os.Getenv("NO_COLOR") != "" {
		color = false
	}
	for _, p := range panels {
		if err := renderPanel(w, p, totalWidth, panelRows, color); err != nil {
			return err
		}
	}
	return nil
}

func renderPanel(w io.Writer, p trendPanel, totalWidth, rows int, color bool) error {
	lo, hi := floatRange(p.values)
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	labels := axisLabels(p, lo, hi, rows)
	gutter := 0
	for _, l := range labels {
		if lw := runewidth.StringWidth(l); lw > gutter {
			gutter = lw
		}
	}
	cols := totalWidth - gutter - runewidth.StringWidth(axisTick)
	if cols < minPanelCols {
		cols = minPanelCols
	}

	grid := newBrailleGrid(cols, rows)
	plotValues(grid, p.values, lo, hi)

	if _, err := fmt.Fprintln(w, p.name); err != nil {
		return err
	}
	for row := 0; row < rows; row++ {
		body := grid.renderRow(row)
		if color && p.color != "" {
			body = p.color + body + colorOff
		}
		if _, err := fmt.Fprintf(w, "%*s%s%s\n", gutter, labels[row], axisTick, body); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// axisLabels puts the high value on the top row, the low value on the
// bottom, and the midpoint between them when there is room.
func axisLabels(p trendPanel, lo, hi float64, rows int) []string {
	labels := make([]string, rows)
	labels[0] = p.format(hi)
	if rows > 1 {
		labels[rows-1] = p.format(lo)
	}
	if rows > 2 {
		labels[rows/2] = p.format((lo + hi) / 2)
	}
	return labels
}

// plotValues scales the series into the grid and connects consecutive
// points. Series longer than the pixel width collapse into per-column
// bucket means first.
func plotValues(g *brailleGrid, values []float64, lo, hi float64) {
	pw, ph := g.pixelWidth(), g.pixelHeight()
	if len(values) > pw {
		values = bucketMeans(values, pw)
	}
	prevX, prevY := -1, -1
	for i, v := range values {
		x := 0
		if len(values) > 1 {
			x = int(math.Round(float64(i) * float64(pw-1) / float64(len(values)-1)))
		}
		y := int(math.Round((hi - v) / (hi - lo) * float64(ph-1)))
		if prevX >= 0 {
			g.line(prevX, prevY, x, y)
		} else {
			g.set(x, y)
		}
		prevX, prevY = x, y
	}
}

// bucketMeans shrinks values to n entries by averaging equal spans.
func bucketMeans(values []float64, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * len(values) / n
		end := (i + 1) * len(values) / n
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func floatRange(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func outputWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return fallbackWidth
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
