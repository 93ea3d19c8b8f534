// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/tuinoi/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Pace returns moves per second of active time.
func Pace(moves int, d time.Duration) float64 {
	if moves <= 0 || d <= 0 {
		return 0
	}
	return float64(moves) / d.Seconds()
}

// Efficiency returns how close a run came to the optimum, in percent.
// A perfect run scores 100.
func Efficiency(moves int, optimal uint64) float64 {
	if moves <= 0 || optimal == 0 {
		return 0
	}
	return float64(optimal) / float64(moves) * 100
}

// FormatDuration renders an active time the way a run timer shows it,
// minutes:seconds.milliseconds, with an hour field when needed.
func FormatDuration(d time.Duration) string {
	neg := ""
	if d < 0 {
		neg = "-"
		d = -d
	}
	ms := d.Milliseconds()
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := ms % 60000 / 1000
	frac := ms % 1000
	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d.%03d", neg, h, m, s, frac)
	}
	return fmt.Sprintf("%s%d:%02d.%03d", neg, m, s, frac)
}

// FormatSeconds renders an estimated time span that may be far too
// large for a time.Duration, picking a sensible unit.
func FormatSeconds(secs float64) string {
	switch {
	case secs < 1:
		return fmt.Sprintf("%.0fms", secs*1000)
	case secs < 60:
		return fmt.Sprintf("%.1fs", secs)
	case secs < 3600:
		return fmt.Sprintf("%.1fm", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%.1fh", secs/3600)
	case secs < 31557600:
		return fmt.Sprintf("%.1fd", secs/86400)
	default:
		return fmt.Sprintf("%.3gy", secs/31557600)
	}
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// DurationSeries extracts run durations in seconds, oldest first.
func DurationSeries(runs []model.RunResult) []float64 {
	out := make([]float64, len(runs))
	for i, res := range runs {
		out[i] = res.Duration.Seconds()
	}
	return out
}

// PaceSeries extracts moves-per-second values, oldest first.
func PaceSeries(runs []model.RunResult) []float64 {
	out := make([]float64, len(runs))
	for i, res := range runs {
		out[i] = Pace(res.Moves, res.Duration)
	}
	return out
}

// RenderSummary prints the aggregate for one configuration key.
// optimal is the minimum move count for the key's board.
func RenderSummary(w io.Writer, agg Aggregate, optimal uint64) error {
	if agg.Count == 0 {
		_, err := fmt.Fprintf(w, "%s: no runs recorded.\n", agg.Key)
		return err
	}
	if _, err := fmt.Fprintln(w, agg.Key.String()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Runs: %d\n", agg.Count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best time: %s\n", FormatDuration(agg.BestDuration)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best moves: %d (optimal %d)\n", agg.BestMoves, optimal); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Mean time: %s\n", FormatDuration(agg.MeanDuration)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Recent mean (last %d): %s\n", recentWindow, FormatDuration(agg.RecentMean)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Times: %s\n", Sparkline(DurationSeries(agg.History))); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func formatSecondsValue(v float64) string {
	return FormatDuration(time.Duration(v * float64(time.Second)))
}
