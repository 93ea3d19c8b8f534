package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func TestPace(t *testing.T) {
	if got := Pace(10, 5*time.Second); got != 2 {
		t.Fatalf("Pace(10, 5s) = %v, want 2", got)
	}
	if got := Pace(0, 5*time.Second); got != 0 {
		t.Fatalf("Pace(0, 5s) = %v, want 0", got)
	}
	if got := Pace(10, 0); got != 0 {
		t.Fatalf("Pace(10, 0) = %v, want 0", got)
	}
}

func TestEfficiency(t *testing.T) {
	if got := Efficiency(7, 7); got != 100 {
		t.Fatalf("perfect run = %v, want 100", got)
	}
	if got := Efficiency(14, 7); got != 50 {
		t.Fatalf("double moves = %v, want 50", got)
	}
	if got := Efficiency(0, 7); got != 0 {
		t.Fatalf("zero moves = %v, want 0", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00.000"},
		{42*time.Second + 150*time.Millisecond, "0:42.150"},
		{90*time.Second + 7*time.Millisecond, "1:30.007"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03.000"},
		{-1500 * time.Millisecond, "-0:01.500"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		secs float64
		want string
	}{
		{0.25, "250ms"},
		{12.34, "12.3s"},
		{90, "1.5m"},
		{7200, "2.0h"},
		{172800, "2.0d"},
		// (2^64-1)/5e7 seconds, the computer estimate for 64 disks.
		{3.69e11, "1.17e+04y"},
	}
	for _, tc := range cases {
		if got := FormatSeconds(tc.secs); got != tc.want {
			t.Fatalf("FormatSeconds(%v) = %q, want %q", tc.secs, got, tc.want)
		}
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := MovingAverage(values, 2)
	want := []float64{1, 1.5, 2.5, 3.5, 4.5}
	if len(got) != len(want) {
		t.Fatalf("length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
	flat := MovingAverage(values, 1)
	for i := range values {
		if flat[i] != values[i] {
			t.Fatalf("window 1 must copy values, got %v", flat)
		}
	}
}

func TestSparkline(t *testing.T) {
	out := Sparkline([]float64{0, 1, 2, 3})
	if len(out) != 4 {
		t.Fatalf("expected 4 characters, got %q", out)
	}
	if out[0] != ' ' || out[3] != '@' {
		t.Fatalf("expected full range from low to high, got %q", out)
	}
	if flat := Sparkline([]float64{2, 2, 2}); len(flat) != 3 || flat[0] != flat[1] {
		t.Fatalf("flat series must render uniformly, got %q", flat)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("empty series must render empty")
	}
}

func TestRenderSummary(t *testing.T) {
	s := NewStore()
	s.Record(testRun("a", 42*time.Second, 9, 0))
	s.Record(testRun("b", 30*time.Second, 7, time.Hour))

	var buf bytes.Buffer
	if err := RenderSummary(&buf, s.Query(testKey), 7); err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"3d/3p classic",
		"Runs: 2",
		"Best time: 0:30.000",
		"Best moves: 7 (optimal 7)",
		"Mean time: 0:36.000",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, NewStore().Query(testKey), 7); err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	if !strings.Contains(buf.String(), "no runs recorded") {
		t.Fatalf("expected empty-store notice, got %q", buf.String())
	}
}

func TestRenderTrend(t *testing.T) {
	s := NewStore()
	for i := 0; i < 12; i++ {
		s.Record(testRun("r", time.Duration(40-i)*time.Second, 9, time.Duration(i)*time.Minute))
	}
	var buf bytes.Buffer
	if err := RenderTrend(&buf, s.Query(testKey).History, 3); err != nil {
		t.Fatalf("RenderTrend: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Trend over 12 runs (window 3)") {
		t.Fatalf("expected trend header, got:\n%s", out)
	}
	// Smoothed durations span 30s to 40s; the axis carries both ends.
	for _, want := range []string{"Time\n", "Pace\n", "0:40.000", "0:30.000"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trend output missing %q:\n%s", want, out)
		}
	}
}
