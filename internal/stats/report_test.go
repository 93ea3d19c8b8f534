package stats

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuinoi/internal/model"
	"github.com/verte-zerg/tuinoi/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tuinoi.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		res := model.RunResult{
			ID:          fmt.Sprintf("run-%d", i),
			Config:      model.Config{Disks: 3, Pegs: 3, StartPeg: 0, GoalPeg: 2, Variant: model.Classic},
			Moves:       7 + i,
			Duration:    time.Duration(30+i) * time.Second,
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := st.InsertRun(ctx, res); err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}
	other := model.RunResult{
		ID:          "run-adjacent",
		Config:      model.Config{Disks: 4, Pegs: 3, StartPeg: 0, GoalPeg: 2, Variant: model.Adjacent},
		Moves:       80,
		Duration:    2 * time.Minute,
		CompletedAt: base.Add(time.Hour),
	}
	if err := st.InsertRun(ctx, other); err != nil {
		t.Fatalf("insert run: %v", err)
	}

	report, err := BuildReport(ctx, st, model.StatsFilter{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Runs) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(report.Runs))
	}
	if len(report.Keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", report.Keys)
	}
	agg := report.Store.Query(model.Key{Disks: 3, Pegs: 3, Variant: model.Classic})
	if agg.Count != 3 || agg.BestDuration != 30*time.Second || agg.BestMoves != 7 {
		t.Fatalf("unexpected classic aggregate: %+v", agg)
	}

	classic := model.Classic
	report, err = BuildReport(ctx, st, model.StatsFilter{Disks: 3, Variant: &classic, Last: 2})
	if err != nil {
		t.Fatalf("build filtered report: %v", err)
	}
	if len(report.Runs) != 2 {
		t.Fatalf("expected 2 filtered runs, got %d", len(report.Runs))
	}
	if report.Runs[0].ID != "run-1" || report.Runs[1].ID != "run-2" {
		t.Fatalf("unexpected filtered runs: %+v", report.Runs)
	}
}

func TestBuildReportFlagsCorruptHistory(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "tuinoi.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	bad := model.RunResult{
		ID:          "bad",
		Config:      model.Config{Disks: 3, Pegs: 3, StartPeg: 0, GoalPeg: 2, Variant: model.Classic},
		Moves:       7,
		Duration:    -time.Second,
		CompletedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := st.InsertRun(ctx, bad); err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if _, err := BuildReport(ctx, st, model.StatsFilter{}); !errors.Is(err, ErrCorruptHistory) {
		t.Fatalf("expected ErrCorruptHistory, got %v", err)
	}
}
