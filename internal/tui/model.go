// Package tui provides the Bubble Tea play interface.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/tuinoi/internal/model"
	"github.com/verte-zerg/tuinoi/internal/rules"
	"github.com/verte-zerg/tuinoi/internal/session"
	"github.com/verte-zerg/tuinoi/internal/solver"
	statsPkg "github.com/verte-zerg/tuinoi/internal/stats"
	"github.com/verte-zerg/tuinoi/internal/store"
)

const tickInterval = 100 * time.Millisecond

type mode int

const (
	modeHuman mode = iota
	modeBot
	modeReplay
)

// Options tunes the play interface.
type Options struct {
	// Quick maps single keys to fixed moves.
	Quick map[rune]model.Move
	// Blindfold hides the board while the clock runs.
	Blindfold bool
	// Theme is "color" or "plain".
	Theme string
	// Timer shows the live clock while running.
	Timer bool
}

// Model implements the Bubble Tea play UI. It samples the wall clock
// on every event and injects it into the session; the session itself
// never reads time.
type Model struct {
	sess    *session.Session
	ui      Options
	store   *store.Store
	history *statsPkg.Store

	mode     mode
	plan     []model.Move
	planNext int
	interval time.Duration
	lastStep time.Time

	rep      *session.Replayer
	repStart time.Time

	width  int
	height int

	// pendingFrom holds a numerically selected source peg, -1 when
	// no selection is open.
	pendingFrom int
	// abandonedFor remembers why reset-on-reject wiped the run.
	abandonedFor rules.Reason

	result *model.RunResult
	record bool
	delta  time.Duration
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	rejectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	recordStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	pausedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	solvedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5AB0F6"))
)

// NewModel constructs the interactive play model. Finished runs are
// persisted to st and recorded in history.
func NewModel(sess *session.Session, ui Options, st *store.Store, history *statsPkg.Store) *Model {
	return &Model{
		sess:        sess,
		ui:          ui,
		store:       st,
		history:     history,
		mode:        modeHuman,
		pendingFrom: -1,
	}
}

// NewBotModel constructs a model that plays the given move plan by
// itself, one move per interval. Bot runs are not persisted.
func NewBotModel(sess *session.Session, plan []model.Move, interval time.Duration, ui Options) *Model {
	return &Model{
		sess:        sess,
		ui:          ui,
		mode:        modeBot,
		plan:        plan,
		interval:    interval,
		pendingFrom: -1,
	}
}

// NewReplayModel constructs a model that re-plays a stored run
// against the wall clock.
func NewReplayModel(rep *session.Replayer, ui Options) *Model {
	return &Model{
		ui:          ui,
		mode:        modeReplay,
		rep:         rep,
		pendingFrom: -1,
	}
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.mode == modeReplay {
		m.repStart = time.Now()
	}
	return tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.handleTick(time.Time(msg))
		return m, tickCmd()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.pendingFrom = -1
			return m, nil
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				if r == 'q' {
					return m, tea.Quit
				}
				m.handleRune(r, time.Now())
			}
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

func (m *Model) handleTick(now time.Time) {
	switch m.mode {
	case modeBot:
		m.stepBot(now)
	case modeReplay:
		m.stepReplay(now)
	}
}

func (m *Model) stepBot(now time.Time) {
	if m.sess.State() == session.Idle && m.planNext == 0 {
		if err := m.sess.Start(now); err != nil {
			return
		}
		m.lastStep = now
		return
	}
	if m.sess.State() != session.Running || m.planNext >= len(m.plan) {
		return
	}
	if now.Sub(m.lastStep) < m.interval {
		return
	}
	m.submit(m.plan[m.planNext], now)
	m.planNext++
	m.lastStep = now
}

func (m *Model) stepReplay(now time.Time) {
	if m.rep.Done() {
		return
	}
	if _, err := m.rep.Advance(now.Sub(m.repStart)); err != nil {
		log.Error().Err(err).Msg("replay diverged from stored log")
	}
}

func (m *Model) handleRune(r rune, now time.Time) {
	if m.mode != modeHuman {
		return
	}
	switch r {
	case 'p':
		m.togglePause(now)
		return
	case 'z':
		m.undo()
		return
	case 'r':
		m.sess.Reset()
		m.pendingFrom = -1
		m.abandonedFor = 0
		m.result = nil
		m.record = false
		m.delta = 0
		return
	}
	if m.sess.State() == session.Finished {
		return
	}
	if mv, ok := m.ui.Quick[r]; ok {
		m.pendingFrom = -1
		m.submit(mv, now)
		return
	}
	if peg, ok := pegForDigit(r); ok {
		m.selectPeg(peg, now)
	}
}

// pegForDigit maps 1-9 to the first nine pegs and 0 to the tenth.
func pegForDigit(r rune) (int, bool) {
	switch {
	case r >= '1' && r <= '9':
		return int(r - '1'), true
	case r == '0':
		return 9, true
	default:
		return 0, false
	}
}

func (m *Model) selectPeg(peg int, now time.Time) {
	if peg >= m.sess.Config().Pegs {
		return
	}
	if m.pendingFrom < 0 {
		// An empty peg cannot be a source; ignore the selection.
		if len(m.sess.Snapshot(now).Pegs[peg]) == 0 {
			return
		}
		m.pendingFrom = peg
		return
	}
	mv := model.Move{From: m.pendingFrom, To: peg}
	m.pendingFrom = -1
	m.submit(mv, now)
}

func (m *Model) togglePause(now time.Time) {
	switch m.sess.State() {
	case session.Running:
		if err := m.sess.Pause(now); err != nil {
			log.Error().Err(err).Msg("pause failed")
		}
	case session.Paused:
		if err := m.sess.Resume(now); err != nil {
			log.Error().Err(err).Msg("resume failed")
		}
	}
}

func (m *Model) undo() {
	state := m.sess.State()
	if state != session.Running && state != session.Paused {
		return
	}
	if m.sess.MoveCount() == 0 {
		return
	}
	if err := m.sess.Undo(); err != nil {
		log.Debug().Err(err).Msg("undo rejected")
	}
}

func (m *Model) submit(mv model.Move, now time.Time) {
	if m.sess.State() == session.Idle {
		if err := m.sess.Start(now); err != nil {
			log.Error().Err(err).Msg("start failed")
			return
		}
		m.abandonedFor = 0
	}
	out, err := m.sess.SubmitMove(mv, now)
	if err != nil {
		log.Error().Err(err).Stringer("move", mv).Msg("move failed")
		return
	}
	if out.Abandoned {
		m.pendingFrom = -1
		m.abandonedFor = out.Reason
		return
	}
	if out.Solved {
		m.finishRun(out.Result)
	}
}

func (m *Model) finishRun(res *model.RunResult) {
	m.result = res
	if m.history != nil {
		agg := m.history.Query(res.Config.Key())
		m.record = statsPkg.IsRecord(agg, *res)
		m.delta = statsPkg.BestDelta(agg, *res)
		m.history.Record(*res)
	}
	if m.store != nil {
		if err := m.store.InsertRun(context.Background(), *res); err != nil {
			log.Error().Err(err).Str("run", res.ID).Msg("failed to save run")
		}
	}
	log.Info().
		Str("run", res.ID).
		Int("moves", res.Moves).
		Dur("duration", res.Duration).
		Msg("run finished")
}

// View implements tea.Model.
func (m *Model) View() string {
	now := time.Now()
	content := m.renderContent(now)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderContent(now time.Time) string {
	if m.mode == modeReplay {
		return m.renderReplay(now)
	}
	snap := m.sess.Snapshot(now)
	sections := []string{
		titleStyle.Render(snap.Config.String()),
		"",
		m.renderBoardSection(snap),
		"",
		m.statusLine(snap),
	}
	if snap.State == session.Finished && m.result != nil {
		sections = append(sections, "", m.renderCompleted(*m.result))
	}
	return strings.Join(sections, "\n")
}

func (m *Model) renderBoardSection(snap session.Snapshot) string {
	switch {
	case snap.State == session.Paused:
		return pausedStyle.Render("Paused. Board hidden; press p to resume.")
	case m.ui.Blindfold && snap.State == session.Running:
		return statusStyle.Render("Blindfold: board hidden until you solve it.")
	default:
		return renderBoard(snap.Pegs, snap.Config, m.ui.Theme, m.boardWidth())
	}
}

func (m *Model) boardWidth() int {
	if m.width == 0 {
		return 80
	}
	return m.width
}

func (m *Model) renderReplay(now time.Time) string {
	cfg := m.rep.Config()
	progress := fmt.Sprintf("replaying move %d/%d", m.rep.Applied(), m.rep.Total())
	if m.rep.Done() {
		progress = fmt.Sprintf("replay finished: %d moves in %s",
			m.rep.Total(), statsPkg.FormatDuration(m.rep.Duration()))
	}
	elapsed := now.Sub(m.repStart)
	if elapsed > m.rep.Duration() {
		elapsed = m.rep.Duration()
	}
	sections := []string{
		titleStyle.Render(cfg.String() + "  (replay)"),
		"",
		renderBoard(m.rep.Pegs(), cfg, m.ui.Theme, m.boardWidth()),
		"",
		statusStyle.Render(fmt.Sprintf("%s  %s", statsPkg.FormatDuration(elapsed), progress)),
	}
	return strings.Join(sections, "\n")
}

func (m *Model) statusLine(snap session.Snapshot) string {
	segments := []string{fmt.Sprintf("moves %d", snap.Moves), fmt.Sprintf("par %d", snap.Optimal)}
	if m.ui.Timer || snap.State == session.Finished {
		segments = append(segments, statsPkg.FormatDuration(snap.Elapsed))
	}
	if snap.State == session.Idle {
		segments = append(segments, "first move starts the clock")
	}
	if m.pendingFrom >= 0 {
		segments = append(segments, selectedStyle.Render(fmt.Sprintf("from peg %d…", m.pendingFrom+1)))
	}
	line := statusStyle.Render(strings.Join(segments, "  ·  "))
	if snap.State == session.Running && snap.LastReject != 0 {
		line += "  " + rejectStyle.Render("✗ "+snap.LastReject.String())
	}
	if snap.State == session.Idle && m.abandonedFor != 0 {
		line += "  " + rejectStyle.Render("run abandoned: "+m.abandonedFor.String())
	}
	return line
}

func (m *Model) renderCompleted(res model.RunResult) string {
	pace := statsPkg.Pace(res.Moves, res.Duration)
	eff := statsPkg.Efficiency(res.Moves, res.OptimalMoves)
	lines := []string{
		solvedStyle.Render("Solved!"),
		fmt.Sprintf("Time %s   Moves %d (par %d, %.0f%%)   Pace %.2f/s",
			statsPkg.FormatDuration(res.Duration), res.Moves, res.OptimalMoves, eff, pace),
	}
	if m.history != nil {
		switch {
		case m.record && m.delta == 0:
			lines = append(lines, recordStyle.Render("First recorded run for this board."))
		case m.record:
			lines = append(lines, recordStyle.Render(fmt.Sprintf("New record! %s faster than your best.",
				statsPkg.FormatDuration(-m.delta))))
		default:
			lines = append(lines, fmt.Sprintf("%s behind your best.", statsPkg.FormatDuration(m.delta)))
		}
	}
	lines = append(lines, fmt.Sprintf("An expert would need about %s, a computer %s.",
		statsPkg.FormatSeconds(solver.ExpertSeconds(res.OptimalMoves)),
		statsPkg.FormatSeconds(solver.ComputerSeconds(res.OptimalMoves))))
	lines = append(lines, footerStyle.Render("r new run · q quit"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	switch m.mode {
	case modeBot:
		return footerStyle.Render("watching the solver · q quit")
	case modeReplay:
		return footerStyle.Render("replay · q quit")
	}
	segments := []string{"digits pick source then target"}
	if len(m.ui.Quick) > 0 {
		segments = append(segments, quickKeyHelp(m.ui.Quick))
	}
	segments = append(segments, "p pause", "r reset", "q quit")
	if m.sess != nil && m.sess.MoveCount() > 0 {
		segments = append(segments, "z undo")
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}

// quickKeyHelp renders the quick bindings in a stable order.
func quickKeyHelp(quick map[rune]model.Move) string {
	type binding struct {
		key rune
		mv  model.Move
	}
	ordered := make([]binding, 0, len(quick))
	for key, mv := range quick {
		ordered = append(ordered, binding{key, mv})
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i].mv, ordered[j].mv
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	parts := make([]string, 0, len(ordered))
	for _, b := range ordered {
		parts = append(parts, fmt.Sprintf("%c %s", b.key, b.mv))
	}
	return strings.Join(parts, " ")
}
