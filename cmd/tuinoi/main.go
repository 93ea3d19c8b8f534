// Package main provides the CLI entrypoint for tuinoi.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuinoi/internal/config"
	"github.com/verte-zerg/tuinoi/internal/logging"
	"github.com/verte-zerg/tuinoi/internal/model"
	"github.com/verte-zerg/tuinoi/internal/session"
	"github.com/verte-zerg/tuinoi/internal/solver"
	"github.com/verte-zerg/tuinoi/internal/stats"
	"github.com/verte-zerg/tuinoi/internal/statsui"
	"github.com/verte-zerg/tuinoi/internal/store"
	"github.com/verte-zerg/tuinoi/internal/tui"
)

const (
	defaultDisks       = 5
	defaultPegs        = 3
	defaultStart       = 1
	defaultTheme       = "color"
	defaultLogLevel    = "info"
	defaultTrendWindow = 5
	defaultBotInterval = 500 * time.Millisecond
)

var (
	logLevel string

	playDisks         int
	playPegs          int
	playStart         int
	playGoal          string
	playVariant       string
	playRelaxed       bool
	playBlindfold     bool
	playUndo          bool
	playResetOnReject bool
	playTheme         string
	playTimer         bool
	playQuick         string

	statsDisks   int
	statsPegs    int
	statsVariant string
	statsSince   string
	statsLast    int
	statsWindow  int
	statsText    bool

	solveDisks    int
	solvePegs     int
	solveStart    int
	solveGoal     string
	solvePrint    bool
	solveWatch    bool
	solveInterval time.Duration

	replayID string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuinoi",
		Short:         "TUI Tower of Hanoi speedrun trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")

	rootCmd.Flags().IntVar(&playDisks, "disks", defaultDisks, "number of disks (1-64)")
	rootCmd.Flags().IntVar(&playPegs, "pegs", defaultPegs, "number of pegs (3-16)")
	rootCmd.Flags().IntVar(&playStart, "start", defaultStart, "start peg, numbered from 1")
	rootCmd.Flags().StringVar(&playGoal, "goal", "", "goal peg number or 'any' (default: rightmost)")
	rootCmd.Flags().StringVar(&playVariant, "variant", "classic", "rule variant (classic, adjacent, norepeat, relaxed)")
	rootCmd.Flags().BoolVar(&playRelaxed, "relaxed", false, "shorthand for --variant relaxed")
	rootCmd.Flags().BoolVar(&playBlindfold, "blindfold", false, "hide the board while the clock runs")
	rootCmd.Flags().BoolVar(&playUndo, "undo", true, "allow undoing moves with z")
	rootCmd.Flags().BoolVar(&playResetOnReject, "reset-on-reject", false, "a rejected move abandons the run")
	rootCmd.Flags().StringVar(&playTheme, "theme", defaultTheme, "board theme (color, plain)")
	rootCmd.Flags().BoolVar(&playTimer, "timer", true, "show the timer while running")
	rootCmd.Flags().StringVar(&playQuick, "quick", config.DefaultQuickKeys, "quick-move key layout (6 keys)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newSolveCmd())
	rootCmd.AddCommand(newReplayCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "disks", &playDisks, fileCfg.Game.Disks)
	applyIntConfig(cmd, "pegs", &playPegs, fileCfg.Game.Pegs)
	applyIntConfig(cmd, "start", &playStart, fileCfg.Game.Start)
	applyStringConfig(cmd, "goal", &playGoal, fileCfg.Game.Goal)
	applyStringConfig(cmd, "variant", &playVariant, fileCfg.Game.Variant)
	applyBoolConfig(cmd, "undo", &playUndo, fileCfg.Play.Undo)
	applyBoolConfig(cmd, "reset-on-reject", &playResetOnReject, fileCfg.Play.ResetOnReject)
	applyBoolConfig(cmd, "blindfold", &playBlindfold, fileCfg.Play.Blindfold)
	applyStringConfig(cmd, "theme", &playTheme, fileCfg.UI.Theme)
	applyBoolConfig(cmd, "timer", &playTimer, fileCfg.UI.Timer)
	applyStringConfig(cmd, "quick", &playQuick, fileCfg.Keys.Quick)

	cfg, err := buildGameConfig(playDisks, playPegs, playStart, playGoal, playVariant, playRelaxed)
	if err != nil {
		return err
	}
	if playTheme != "color" && playTheme != "plain" {
		return fmt.Errorf("--theme must be color or plain")
	}
	quick, err := config.QuickMoves(playQuick)
	if err != nil {
		return fmt.Errorf("invalid quick keys: %w", err)
	}

	closeLogs, err := setupLogging(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeLogs()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	history := loadHistory(st)

	sess, err := session.New(cfg, session.Options{Undo: playUndo, ResetOnReject: playResetOnReject})
	if err != nil {
		return err
	}

	ui := tui.Options{
		Quick:     quick,
		Blindfold: playBlindfold,
		Theme:     playTheme,
		Timer:     playTimer,
	}
	m := tui.NewModel(sess, ui, st, history)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadHistory rebuilds the aggregate store from the DB. Corrupt
// history is discarded with a warning; play continues with a fresh
// store.
func loadHistory(st *store.Store) *stats.Store {
	runs, err := st.ListRuns(context.Background(), model.StatsFilter{})
	if err != nil {
		log.Error().Err(err).Msg("failed to load run history")
		return stats.NewStore()
	}
	history, err := stats.Load(runs)
	if err != nil {
		log.Warn().Err(err).Msg("discarding corrupt run history")
		return stats.NewStore()
	}
	return history
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show run statistics",
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsDisks, "disks", 0, "filter by disk count")
	cmd.Flags().IntVar(&statsPegs, "pegs", 0, "filter by peg count")
	cmd.Flags().StringVar(&statsVariant, "variant", "", "filter by rule variant")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsWindow, "window", defaultTrendWindow, "moving average window for trends")
	cmd.Flags().BoolVar(&statsText, "text", false, "print a text report instead of opening the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	filter, err := buildStatsFilter()
	if err != nil {
		return err
	}

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	closeLogs, err := setupLogging(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeLogs()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	if statsText {
		return printStatsReport(cmd.OutOrStdout(), st, filter)
	}

	m := statsui.NewModel(st, filter)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	if id := m.ReplayRunID(); id != "" {
		res, err := st.GetRun(context.Background(), id)
		if err != nil {
			return fmt.Errorf("failed to load run %s: %w", id, err)
		}
		return replayResult(res, themeFrom(fileCfg))
	}
	return nil
}

func buildStatsFilter() (model.StatsFilter, error) {
	filter := model.StatsFilter{
		Disks:       statsDisks,
		Pegs:        statsPegs,
		Last:        statsLast,
		TrendWindow: statsWindow,
	}
	if statsVariant != "" {
		v, err := model.ParseVariant(statsVariant)
		if err != nil {
			return model.StatsFilter{}, err
		}
		filter.Variant = &v
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsFilter{}, fmt.Errorf("invalid --since value: %w", err)
		}
		filter.Since = &parsed
	}
	return filter, nil
}

// printStatsReport writes per-board summaries, the run history and
// the trend plot as plain text.
func printStatsReport(w io.Writer, st *store.Store, filter model.StatsFilter) error {
	report, err := stats.BuildReport(context.Background(), st, filter)
	if err != nil {
		if !errors.Is(err, stats.ErrCorruptHistory) {
			return err
		}
		log.Warn().Err(err).Msg("discarding corrupt run history")
		report = stats.Report{Store: stats.NewStore()}
	}
	if len(report.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	for _, key := range report.Keys {
		optimal, err := solver.MinimumMoves(key.Disks, key.Pegs)
		if err != nil {
			return err
		}
		if err := stats.RenderSummary(w, report.Store.Query(key), optimal); err != nil {
			return err
		}
	}
	if err := stats.RenderHistory(w, report.Runs, 0); err != nil {
		return err
	}
	return stats.RenderTrend(w, report.Runs, filter.TrendWindow)
}

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Show the optimal solution for a board",
		RunE:  runSolveCmd,
	}
	cmd.Flags().IntVar(&solveDisks, "disks", defaultDisks, "number of disks (1-64)")
	cmd.Flags().IntVar(&solvePegs, "pegs", defaultPegs, "number of pegs (3-16)")
	cmd.Flags().IntVar(&solveStart, "start", defaultStart, "start peg, numbered from 1")
	cmd.Flags().StringVar(&solveGoal, "goal", "", "goal peg number or 'any' (default: rightmost)")
	cmd.Flags().BoolVar(&solvePrint, "print", false, "list the moves")
	cmd.Flags().BoolVar(&solveWatch, "watch", false, "watch the solver play in the TUI")
	cmd.Flags().DurationVar(&solveInterval, "interval", defaultBotInterval, "delay between moves with --watch")
	return cmd
}

func runSolveCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "disks", &solveDisks, fileCfg.Game.Disks)
	applyIntConfig(cmd, "pegs", &solvePegs, fileCfg.Game.Pegs)
	applyIntConfig(cmd, "start", &solveStart, fileCfg.Game.Start)
	applyStringConfig(cmd, "goal", &solveGoal, fileCfg.Game.Goal)

	cfg, err := buildGameConfig(solveDisks, solvePegs, solveStart, solveGoal, "classic", false)
	if err != nil {
		return err
	}

	optimal, err := solver.MinimumMoves(cfg.Disks, cfg.Pegs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%s: %d moves\n", cfg, optimal); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "An expert would need about %s, a computer %s.\n",
		stats.FormatSeconds(solver.ExpertSeconds(optimal)),
		stats.FormatSeconds(solver.ComputerSeconds(optimal))); err != nil {
		return err
	}

	if !solvePrint && !solveWatch {
		return nil
	}
	plan, err := solver.Plan(cfg)
	if err != nil {
		return err
	}
	if solvePrint {
		for i, mv := range plan {
			if _, err := fmt.Fprintf(out, "%4d. %s\n", i+1, mv); err != nil {
				return err
			}
		}
	}
	if solveWatch {
		if solveInterval <= 0 {
			return fmt.Errorf("--interval must be positive")
		}
		closeLogs, err := setupLogging(cmd, fileCfg)
		if err != nil {
			return err
		}
		defer closeLogs()
		return watchPlan(cfg, plan, themeFrom(fileCfg), solveInterval)
	}
	return nil
}

func watchPlan(cfg model.Config, plan []model.Move, theme string, interval time.Duration) error {
	sess, err := session.New(cfg, session.Options{})
	if err != nil {
		return err
	}
	m := tui.NewBotModel(sess, plan, interval, tui.Options{Theme: theme, Timer: true})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recorded run",
		Args:  cobra.NoArgs,
		RunE:  runReplayCmd,
	}
	cmd.Flags().StringVar(&replayID, "id", "", "run ID (default: most recent run)")
	return cmd
}

func runReplayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	closeLogs, err := setupLogging(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer closeLogs()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	var res model.RunResult
	if replayID != "" {
		res, err = st.GetRun(context.Background(), replayID)
	} else {
		res, err = st.LastRun(context.Background(), model.StatsFilter{})
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no recorded run to replay")
		}
		return fmt.Errorf("failed to load run: %w", err)
	}
	return replayResult(res, themeFrom(fileCfg))
}

func replayResult(res model.RunResult, theme string) error {
	rep, err := session.NewReplayer(res)
	if err != nil {
		return err
	}
	m := tui.NewReplayModel(rep, tui.Options{Theme: theme, Timer: true})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// buildGameConfig turns 1-based user-facing flags into a validated
// core configuration. An empty goal means the rightmost peg.
func buildGameConfig(disks, pegs, start int, goal, variant string, relaxed bool) (model.Config, error) {
	v, err := model.ParseVariant(variant)
	if err != nil {
		return model.Config{}, err
	}
	if relaxed {
		v = model.Relaxed
	}
	if goal == "" {
		goal = strconv.Itoa(pegs)
	}
	goalPeg, err := config.ParseGoal(goal, pegs)
	if err != nil {
		return model.Config{}, err
	}
	cfg := model.Config{
		Disks:    disks,
		Pegs:     pegs,
		StartPeg: start - 1,
		GoalPeg:  goalPeg,
		Variant:  v,
	}
	if err := cfg.Validate(); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func setupLogging(cmd *cobra.Command, fileCfg config.FileConfig) (func(), error) {
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.LogLevel)
	closer, err := logging.Setup(config.DefaultLogPath(), logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return closer, nil
}

func themeFrom(fileCfg config.FileConfig) string {
	if fileCfg.UI.Theme != nil {
		return *fileCfg.UI.Theme
	}
	return defaultTheme
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuinoi configuration
# Uncomment a value to enable it. CLI flags override config values.

# log-level = %q         # Log verbosity (trace, debug, info, warn, error)

[game]
# disks = %d              # Number of disks (1-64)
# pegs = %d               # Number of pegs (3-16)
# start = %d              # Start peg, numbered from 1
# goal = "3"              # Goal peg number, or "any"
# variant = "classic"     # classic, adjacent, norepeat, relaxed

[play]
# undo = true             # Allow undoing moves with z
# reset-on-reject = false # A rejected move abandons the run
# blindfold = false       # Hide the board while the clock runs

[ui]
# theme = %q          # Board theme (color, plain)
# timer = true            # Show the timer while running

[keys]
# quick = %q         # Quick-move keys in pair order 1-2 1-3 2-1 2-3 3-1 3-2
`,
		defaultLogLevel,
		defaultDisks,
		defaultPegs,
		defaultStart,
		defaultTheme,
		config.DefaultQuickKeys,
	)
}
