package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/tuinoi/internal/model"
)

var testKey = model.Key{Disks: 3, Pegs: 3, Variant: model.Classic}

func testRun(id string, d time.Duration, moves int, offset time.Duration) model.RunResult {
	return model.RunResult{
		ID:          id,
		Config:      model.Config{Disks: 3, Pegs: 3, StartPeg: 0, GoalPeg: 2, Variant: model.Classic},
		Moves:       moves,
		Duration:    d,
		CompletedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(offset),
	}
}

func TestQueryUnknownKeyIsEmpty(t *testing.T) {
	s := NewStore()
	agg := s.Query(model.Key{Disks: 9, Pegs: 4, Variant: model.Adjacent})
	if agg.Count != 0 {
		t.Fatalf("expected zero count, got %d", agg.Count)
	}
	if agg.BestDuration != 0 || len(agg.History) != 0 {
		t.Fatalf("expected empty aggregate, got %+v", agg)
	}
}

func TestRecordUpdatesAggregates(t *testing.T) {
	s := NewStore()
	s.Record(testRun("a", 60*time.Second, 9, 0))
	s.Record(testRun("b", 40*time.Second, 7, time.Hour))
	s.Record(testRun("c", 50*time.Second, 11, 2*time.Hour))

	agg := s.Query(testKey)
	if agg.Count != 3 {
		t.Fatalf("count = %d, want 3", agg.Count)
	}
	if agg.BestDuration != 40*time.Second {
		t.Fatalf("best = %v, want 40s", agg.BestDuration)
	}
	if agg.BestMoves != 7 {
		t.Fatalf("best moves = %d, want 7", agg.BestMoves)
	}
	if agg.MeanDuration != 50*time.Second {
		t.Fatalf("mean = %v, want 50s", agg.MeanDuration)
	}
	if agg.RecentMean != 50*time.Second {
		t.Fatalf("recent mean = %v, want 50s", agg.RecentMean)
	}
	if len(agg.History) != 3 || agg.History[0].ID != "a" {
		t.Fatalf("unexpected history: %+v", agg.History)
	}
}

func TestRecentMeanWindowsLatestRuns(t *testing.T) {
	s := NewStore()
	// Ten slow runs, then ten fast ones; the trend mean must only
	// see the fast tail.
	for i := 0; i < 10; i++ {
		s.Record(testRun("slow", 100*time.Second, 9, time.Duration(i)*time.Minute))
	}
	for i := 10; i < 20; i++ {
		s.Record(testRun("fast", 20*time.Second, 9, time.Duration(i)*time.Minute))
	}
	agg := s.Query(testKey)
	if agg.RecentMean != 20*time.Second {
		t.Fatalf("recent mean = %v, want 20s", agg.RecentMean)
	}
	if agg.MeanDuration != 60*time.Second {
		t.Fatalf("mean = %v, want 60s", agg.MeanDuration)
	}
}

func TestQueryReturnsCopies(t *testing.T) {
	s := NewStore()
	s.Record(testRun("a", 60*time.Second, 9, 0))
	agg := s.Query(testKey)
	agg.History[0].ID = "tampered"
	if got := s.Query(testKey).History[0].ID; got != "a" {
		t.Fatalf("stored history mutated through a query: %s", got)
	}
}

func TestKeysGroupByConfig(t *testing.T) {
	s := NewStore()
	s.Record(testRun("a", 60*time.Second, 9, 0))
	big := testRun("b", 90*time.Second, 31, time.Hour)
	big.Config.Disks = 5
	s.Record(big)
	relaxed := testRun("c", 30*time.Second, 7, 2*time.Hour)
	relaxed.Config.Variant = model.Relaxed
	s.Record(relaxed)

	keys := s.Keys()
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %v", keys)
	}
	if keys[0] != (model.Key{Disks: 3, Pegs: 3, Variant: model.Classic}) {
		t.Fatalf("unexpected key order: %v", keys)
	}
	count, total := s.Totals()
	if count != 3 || total != 180*time.Second {
		t.Fatalf("totals = (%d, %v), want (3, 3m)", count, total)
	}
}

func TestLoadRejectsNegativeDuration(t *testing.T) {
	bad := testRun("bad", -time.Second, 7, 0)
	_, err := Load([]model.RunResult{testRun("ok", time.Second, 7, 0), bad})
	if !errors.Is(err, ErrCorruptHistory) {
		t.Fatalf("expected ErrCorruptHistory, got %v", err)
	}
}

func TestLoadRejectsStructuralViolations(t *testing.T) {
	zeroMoves := testRun("m", time.Second, 0, 0)

	badConfig := testRun("c", time.Second, 7, 0)
	badConfig.Config.Pegs = 2

	noTime := testRun("t", time.Second, 7, 0)
	noTime.CompletedAt = time.Time{}

	shortLog := testRun("l", time.Second, 7, 0)
	shortLog.Log = []model.TimedMove{{From: 0, To: 2, At: time.Second}}

	unorderedLog := testRun("o", time.Second, 2, 0)
	unorderedLog.Log = []model.TimedMove{
		{From: 0, To: 2, At: 2 * time.Second},
		{From: 0, To: 1, At: time.Second},
	}

	for _, bad := range []model.RunResult{zeroMoves, badConfig, noTime, shortLog, unorderedLog} {
		if _, err := Load([]model.RunResult{bad}); !errors.Is(err, ErrCorruptHistory) {
			t.Fatalf("record %s: expected ErrCorruptHistory, got %v", bad.ID, err)
		}
	}
}

func TestLoadRebuildsAggregates(t *testing.T) {
	history := []model.RunResult{
		testRun("a", 60*time.Second, 9, 0),
		testRun("b", 40*time.Second, 7, time.Hour),
	}
	s, err := Load(history)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	agg := s.Query(testKey)
	if agg.Count != 2 || agg.BestDuration != 40*time.Second || agg.BestMoves != 7 {
		t.Fatalf("unexpected aggregate after load: %+v", agg)
	}
}

func TestLoadEmptyHistory(t *testing.T) {
	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil): %v", err)
	}
	if count, _ := s.Totals(); count != 0 {
		t.Fatalf("expected empty store, got %d runs", count)
	}
}
