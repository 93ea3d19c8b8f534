package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuinoi/internal/model"
)

const (
	themePlain = "plain"
	pegGap     = 2
)

var (
	poleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// diskPalette cycles by disk size.
var diskPalette = []lipgloss.Color{
	lipgloss.Color("203"),
	lipgloss.Color("214"),
	lipgloss.Color("220"),
	lipgloss.Color("76"),
	lipgloss.Color("51"),
	lipgloss.Color("69"),
	lipgloss.Color("135"),
}

func diskStyle(size int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(diskPalette[(size-1)%len(diskPalette)])
}

// renderBoard draws the pegs bottom-up. Boards whose bars fit the
// width get solid disk bars; anything wider falls back to one numeric
// line per peg.
func renderBoard(pegs [][]int, cfg model.Config, theme string, maxWidth int) string {
	cell := 2*cfg.Disks - 1
	if cell < 3 {
		cell = 3
	}
	barWidth := cell*cfg.Pegs + pegGap*(cfg.Pegs-1)
	if barWidth <= maxWidth {
		return renderBars(pegs, cfg, theme, cell)
	}
	return renderNumeric(pegs, cfg)
}

func renderBars(pegs [][]int, cfg model.Config, theme string, cell int) string {
	gap := strings.Repeat(" ", pegGap)
	rows := make([]string, 0, cfg.Disks+2)
	for i := 0; i < cfg.Disks; i++ {
		level := cfg.Disks - 1 - i
		cells := make([]string, cfg.Pegs)
		for p := 0; p < cfg.Pegs; p++ {
			stack := pegs[p]
			if level < len(stack) {
				size := stack[level]
				bar := strings.Repeat("█", 2*size-1)
				if theme != themePlain {
					bar = diskStyle(size).Render(bar)
				}
				cells[p] = centerCell(bar, 2*size-1, cell)
			} else {
				pole := "│"
				if theme != themePlain {
					pole = poleStyle.Render(pole)
				}
				cells[p] = centerCell(pole, 1, cell)
			}
		}
		rows = append(rows, strings.Join(cells, gap))
	}
	width := cell*cfg.Pegs + pegGap*(cfg.Pegs-1)
	rows = append(rows, strings.Repeat("─", width))

	labels := make([]string, cfg.Pegs)
	for p := 0; p < cfg.Pegs; p++ {
		label := pegLabel(p, cfg)
		labels[p] = centerCell(label, runewidth.StringWidth(label), cell)
	}
	rows = append(rows, labelStyle.Render(strings.Join(labels, gap)))
	return strings.Join(rows, "\n")
}

func renderNumeric(pegs [][]int, cfg model.Config) string {
	lines := make([]string, 0, cfg.Pegs)
	for p := 0; p < cfg.Pegs; p++ {
		var b strings.Builder
		fmt.Fprintf(&b, "%3s│", pegLabel(p, cfg))
		if len(pegs[p]) == 0 {
			b.WriteString(" -")
		}
		for _, size := range pegs[p] {
			fmt.Fprintf(&b, " %d", size)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// pegLabel numbers pegs from 1 and stars the goal. With a free goal
// every peg but the start is starred.
func pegLabel(p int, cfg model.Config) string {
	label := fmt.Sprintf("%d", p+1)
	if isGoal(p, cfg) {
		label += "*"
	}
	return label
}

func isGoal(p int, cfg model.Config) bool {
	if cfg.GoalPeg == model.AnyPeg {
		return p != cfg.StartPeg
	}
	return p == cfg.GoalPeg
}

// centerCell pads styled text to width. plainWidth is the terminal
// width of the text before styling; ANSI codes make the styled string
// unmeasurable.
func centerCell(styled string, plainWidth, width int) string {
	pad := width - plainWidth
	if pad <= 0 {
		return styled
	}
	left := pad / 2
	return strings.Repeat(" ", left) + styled + strings.Repeat(" ", pad-left)
}
