// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/tuinoi/internal/model"
	"github.com/verte-zerg/tuinoi/internal/solver"
	"github.com/verte-zerg/tuinoi/internal/stats"
	"github.com/verte-zerg/tuinoi/internal/store"
)

const (
	tabOverview = iota
	tabHistory
	tabTrends
)

const (
	plotHeight = 10
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store  *store.Store
	filter model.StatsFilter

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	runTable  table.Model
	runRows   []model.RunResult
	runLayout tableLayout

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	detail   *model.RunResult
	replayID string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
	colCount int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, f model.StatsFilter) *Model {
	m := &Model{
		store:  st,
		filter: f,
		tabs:   []string{"Overview", "History", "Trends"},
	}
	m.initInputs()
	m.initRunTable()
	m.initViewports()
	m.refreshReport()
	return m
}

// ReplayRunID returns the run picked for replay, if the user quit the
// UI through the detail view's replay action.
func (m *Model) ReplayRunID() string {
	return m.replayID
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.activeTab == tabHistory {
			m.runTable.Focus()
		} else {
			m.runTable.Blur()
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.detail != nil {
			return m.updateDetail(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.filter.TrendWindow = nextTrendWindow(m.filter.TrendWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "-":
			m.filter.TrendWindow = prevTrendWindow(m.filter.TrendWindow)
			m.refreshReport()
			m.updateLayout()
			return m, nil
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabHistory {
				return m.openDetail()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabHistory {
				m.runTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHistory {
				m.runTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabHistory {
				var cmd tea.Cmd
				m.runTable, cmd = m.runTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.detail != nil {
		return fitLines(m.renderRunModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Disks: "),
		newFilterInput("Pegs: "),
		newFilterInput("Variant: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Trend window: "),
	}
	m.setInputsFromFilter()
}

func (m *Model) initRunTable() {
	cols, rows, runs := buildRunTableData(nil)
	m.runRows = runs
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(1),
	)
	t.SetStyles(runTableStyles())
	m.runTable = t
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromFilter() {
	if len(m.filterInputs) == 0 {
		return
	}
	if m.filter.Disks > 0 {
		m.filterInputs[0].SetValue(strconv.Itoa(m.filter.Disks))
	} else {
		m.filterInputs[0].SetValue("")
	}
	if m.filter.Pegs > 0 {
		m.filterInputs[1].SetValue(strconv.Itoa(m.filter.Pegs))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.filter.Variant != nil {
		m.filterInputs[2].SetValue(m.filter.Variant.String())
	} else {
		m.filterInputs[2].SetValue("")
	}
	if m.filter.Since != nil {
		m.filterInputs[3].SetValue(m.filter.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[3].SetValue("")
	}
	if m.filter.Last > 0 {
		m.filterInputs[4].SetValue(strconv.Itoa(m.filter.Last))
	} else {
		m.filterInputs[4].SetValue("")
	}
	if m.filter.TrendWindow > 0 {
		m.filterInputs[5].SetValue(strconv.Itoa(m.filter.TrendWindow))
	} else {
		m.filterInputs[5].SetValue("")
	}
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setRunTableSize(m.width, vpHeight)
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabHistory {
		m.runTable.Focus()
	} else {
		m.runTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filters := padLines(m.renderFilterSummary(), m.width)
	return tabs + "\n" + filters
}

func (m *Model) renderFilterSummary() string {
	disks := "any"
	if m.filter.Disks > 0 {
		disks = strconv.Itoa(m.filter.Disks)
	}
	pegs := "any"
	if m.filter.Pegs > 0 {
		pegs = strconv.Itoa(m.filter.Pegs)
	}
	variant := "any"
	if m.filter.Variant != nil {
		variant = m.filter.Variant.String()
	}
	since := "any"
	if m.filter.Since != nil {
		since = m.filter.Since.Format("2006-01-02")
	}
	last := "all"
	if m.filter.Last > 0 {
		last = strconv.Itoa(m.filter.Last)
	}
	summary := fmt.Sprintf("Filters: disks=%s  pegs=%s  variant=%s  since=%s  last=%s  window=%d",
		disks, pegs, variant, since, last, m.filter.TrendWindow)
	summary = truncateLine(summary, m.width)
	return headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Filter: /  Quit: q"
	if m.activeTab == tabHistory {
		help = "Nav: left/right  Rows: up/down  Details: enter  Filter: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFilterHelp() string {
	return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.renderFilterHelp()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filters (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabHistory {
		if len(m.report.Runs) == 0 {
			return fitLines("No runs found.", m.width, height)
		}
		view := tableMutedStyle.Render(m.runTable.View())
		return fitLines(view, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.filter)
	if err != nil {
		if !errors.Is(err, stats.ErrCorruptHistory) {
			m.errMsg = err.Error()
			for i := range m.viewports {
				m.viewports[i].SetContent("Failed to load stats.")
			}
			return
		}
		log.Warn().Err(err).Msg("discarding corrupt run history")
		report = stats.Report{Store: stats.NewStore()}
	}
	m.errMsg = ""
	m.report = report
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.applyRunTable(width, bodyHeight, true)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, width))
	m.viewports[tabTrends].SetContent(renderTrends(m.report.Runs, m.filter.TrendWindow, width))
}

func renderOverview(report stats.Report, width int) string {
	if len(report.Runs) == 0 {
		return "No runs found."
	}
	summary := renderSummaryCards(report, width)
	boards := renderBoardSummaries(report)
	return strings.TrimRight(summary+"\n\n"+boards, "\n")
}

func renderSummaryCards(report stats.Report, width int) string {
	count, total := report.Store.Totals()
	best := report.Runs[0].Duration
	for _, res := range report.Runs[1:] {
		if res.Duration < best {
			best = res.Duration
		}
	}
	mean := total / time.Duration(count)
	cards := []string{
		metricCard("Runs", fmt.Sprintf("%d", count)),
		metricCard("Boards", fmt.Sprintf("%d", len(report.Keys))),
		metricCard("Best time", stats.FormatDuration(best)),
		metricCard("Mean time", stats.FormatDuration(mean)),
		metricCard("Total time", stats.FormatDuration(total)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderBoardSummaries(report stats.Report) string {
	var buf bytes.Buffer
	for _, key := range report.Keys {
		// Keys come from validated history, so the board is in range.
		optimal, _ := solver.MinimumMoves(key.Disks, key.Pegs)
		if err := stats.RenderSummary(&buf, report.Store.Query(key), optimal); err != nil {
			return fmt.Sprintf("Failed to render summary: %v", err)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderTrends(runs []model.RunResult, window, width int) string {
	if len(runs) == 0 {
		return "No runs found."
	}
	var buf bytes.Buffer
	if err := stats.RenderTrendWithSize(&buf, runs, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render trend: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func buildRunTableData(runs []model.RunResult) ([]table.Column, []table.Row, []model.RunResult) {
	columns := []table.Column{
		{Title: "Completed", Width: 16},
		{Title: "Board", Width: 22},
		{Title: "Moves", Width: 6},
		{Title: "Time", Width: 12},
		{Title: "Pace", Width: 8},
	}
	rows := make([]table.Row, 0, len(runs))
	ordered := make([]model.RunResult, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		res := runs[i]
		ordered = append(ordered, res)
		rows = append(rows, table.Row{
			res.CompletedAt.Format("2006-01-02 15:04"),
			res.Config.String(),
			fmt.Sprintf("%d", res.Moves),
			stats.FormatDuration(res.Duration),
			fmt.Sprintf("%.2f/s", stats.Pace(res.Moves, res.Duration)),
		})
	}
	return columns, rows, ordered
}

func (m *Model) applyRunTable(width, height int, force bool) {
	cols, rows, runs := buildRunTableData(m.report.Runs)
	viewportHeight := maxInt(1, height-1)
	if !force &&
		m.runLayout.width == width &&
		m.runLayout.height == viewportHeight &&
		m.runLayout.rowCount == len(rows) &&
		m.runLayout.colCount == len(cols) {
		return
	}
	m.runTable.SetColumns(cols)
	m.runTable.SetRows(rows)
	m.runRows = runs
	m.runLayout.rowCount = len(rows)
	m.runLayout.colCount = len(cols)
	m.setRunTableSize(width, height)
}

func (m *Model) setRunTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.runLayout.width == width && m.runLayout.height == viewportHeight {
		return
	}
	m.runLayout.width = width
	m.runLayout.height = viewportHeight
	m.runTable.SetWidth(width)
	m.runTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustRunTableHeight(height)
	if m.runLayout.height != viewportHeight {
		m.runLayout.height = viewportHeight
		m.runTable.SetHeight(viewportHeight)
	}
}

func runTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// adjustRunTableHeight corrects for the table's own chrome so the
// rendered view fills exactly the body height.
func (m *Model) adjustRunTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.runTable.Height()
	viewHeight := lipgloss.Height(m.runTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.runTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.runTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func (m *Model) openDetail() (tea.Model, tea.Cmd) {
	if len(m.runRows) == 0 {
		return m, nil
	}
	idx := m.runTable.Cursor()
	if idx < 0 || idx >= len(m.runRows) {
		return m, nil
	}
	res := m.runRows[idx]
	full, err := m.store.GetRun(context.Background(), res.ID)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.detail = &full
	return m, nil
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.detail = nil
		return m, nil
	case "r":
		m.replayID = m.detail.ID
		return m, tea.Quit
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) renderRunModal() string {
	res := *m.detail
	// Validated on load, so the board is in range.
	optimal, _ := solver.MinimumMoves(res.Config.Disks, res.Config.Pegs)
	body := []string{
		cardValueStyle.Render(res.Config.String()),
		fmt.Sprintf("Completed: %s", res.CompletedAt.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Time: %s", stats.FormatDuration(res.Duration)),
		fmt.Sprintf("Moves: %d (par %d, %.0f%%)", res.Moves, optimal, stats.Efficiency(res.Moves, optimal)),
		fmt.Sprintf("Pace: %.2f moves/s", stats.Pace(res.Moves, res.Duration)),
	}
	if len(res.Log) > 1 {
		body = append(body, fmt.Sprintf("Rhythm: %s", stats.Sparkline(moveGaps(res.Log))))
	}
	body = append(body, headerStyle.Render("r: replay  esc: close"))
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// moveGaps returns the think time before each move, in seconds.
func moveGaps(moves []model.TimedMove) []float64 {
	out := make([]float64, 0, len(moves))
	prev := time.Duration(0)
	for _, tm := range moves {
		out = append(out, (tm.At - prev).Seconds())
		prev = tm.At
	}
	return out
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromFilter()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	disks := 0
	if v := strings.TrimSpace(m.filterInputs[0].Value()); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid disks value (use a positive integer)")
		}
		disks = parsed
	}

	pegs := 0
	if v := strings.TrimSpace(m.filterInputs[1].Value()); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid pegs value (use a positive integer)")
		}
		pegs = parsed
	}

	var variant *model.Variant
	if v := strings.TrimSpace(m.filterInputs[2].Value()); v != "" {
		parsed, err := model.ParseVariant(v)
		if err != nil {
			return fmt.Errorf("invalid variant (classic, adjacent, norepeat, relaxed)")
		}
		variant = &parsed
	}

	var since *time.Time
	if v := strings.TrimSpace(m.filterInputs[3].Value()); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	last := 0
	if v := strings.TrimSpace(m.filterInputs[4].Value()); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	window := 0
	if v := strings.TrimSpace(m.filterInputs[5].Value()); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid trend window (use integer)")
		}
		if parsed < 1 {
			return fmt.Errorf("invalid trend window (use integer >= 1)")
		}
		window = parsed
	}

	m.filter = model.StatsFilter{
		Disks:       disks,
		Pegs:        pegs,
		Variant:     variant,
		Since:       since,
		Last:        last,
		TrendWindow: window,
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func nextTrendWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevTrendWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
