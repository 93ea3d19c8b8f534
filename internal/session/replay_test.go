package session

import (
	"testing"
	"time"

	"github.com/verte-zerg/tuinoi/internal/model"
)

func finishedResult(t *testing.T) model.RunResult {
	t.Helper()
	s := newRunning(t, classic3(), Options{})
	for i, m := range solution3 {
		mustMove(t, s, m, at(i+1))
	}
	res, ok := s.Result()
	if !ok {
		t.Fatalf("run did not finish")
	}
	return res
}

func TestReplayerAdvance(t *testing.T) {
	res := finishedResult(t)
	r, err := NewReplayer(res)
	if err != nil {
		t.Fatalf("NewReplayer: %v", err)
	}
	applied, err := r.Advance(3 * time.Second)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if applied != 3 || r.Applied() != 3 || r.Done() {
		t.Fatalf("after 3s: applied=%d total=%d done=%v", applied, r.Applied(), r.Done())
	}
	// Nothing new falls due between the same instants.
	applied, err = r.Advance(3 * time.Second)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if applied != 0 {
		t.Fatalf("re-advancing applied %d moves", applied)
	}
	applied, err = r.Advance(res.Duration)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if applied != 4 || !r.Done() {
		t.Fatalf("final advance applied %d, done=%v", applied, r.Done())
	}
	pegs := r.Pegs()
	if len(pegs[2]) != res.Config.Disks {
		t.Fatalf("replayed board not solved: %v", pegs)
	}
}

func TestReplayerPastEnd(t *testing.T) {
	res := finishedResult(t)
	r, err := NewReplayer(res)
	if err != nil {
		t.Fatalf("NewReplayer: %v", err)
	}
	applied, err := r.Advance(time.Hour)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if applied != r.Total() || !r.Done() {
		t.Fatalf("expected full log played, applied=%d total=%d", applied, r.Total())
	}
}

func TestReplayerBadLog(t *testing.T) {
	res := finishedResult(t)
	res.Log[0].From = 1 // peg 1 is empty at the start
	r, err := NewReplayer(res)
	if err != nil {
		t.Fatalf("NewReplayer: %v", err)
	}
	if _, err := r.Advance(time.Hour); err == nil {
		t.Fatalf("expected error replaying an inconsistent log")
	}
}
