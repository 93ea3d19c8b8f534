package stats

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/verte-zerg/tuinoi/internal/model"
)

// IsRecord reports whether res beats (or sets) the best time for its
// key. agg must be the aggregate queried before recording res.
func IsRecord(agg Aggregate, res model.RunResult) bool {
	return agg.Count == 0 || res.Duration < agg.BestDuration
}

// BestDelta returns how far res is from the stored best time.
// Negative values beat the record. Zero deltas mean no prior history.
func BestDelta(agg Aggregate, res model.RunResult) time.Duration {
	if agg.Count == 0 {
		return 0
	}
	return res.Duration - agg.BestDuration
}

// MostPlayed lists up to n keys ordered by run count, busiest first.
func MostPlayed(s *Store, n int) []model.Key {
	keys := s.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		return s.Query(keys[i]).Count > s.Query(keys[j]).Count
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Leaderboard returns a key's history ordered fastest first.
func Leaderboard(agg Aggregate) []model.RunResult {
	runs := make([]model.RunResult, len(agg.History))
	copy(runs, agg.History)
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Duration < runs[j].Duration
	})
	return runs
}

// RenderHistory prints the most recent runs as a text table.
func RenderHistory(w io.Writer, runs []model.RunResult, limit int) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[len(runs)-limit:]
	}
	table := newTextTable(
		textColumn{title: "Completed"},
		textColumn{title: "Board"},
		textColumn{title: "Moves", right: true},
		textColumn{title: "Time", right: true},
		textColumn{title: "Pace", right: true},
	)
	for _, res := range runs {
		table.addRow(
			res.CompletedAt.Format("2006-01-02 15:04"),
			res.Config.Key().String(),
			fmt.Sprintf("%d", res.Moves),
			FormatDuration(res.Duration),
			fmt.Sprintf("%.2f/s", Pace(res.Moves, res.Duration)),
		)
	}
	for _, line := range table.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
