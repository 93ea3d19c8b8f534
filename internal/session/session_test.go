package session

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/verte-zerg/tuinoi/internal/model"
	"github.com/verte-zerg/tuinoi/internal/rules"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return t0.Add(time.Duration(sec) * time.Second) }

func classic3() model.Config {
	return model.Config{Disks: 3, Pegs: 3, StartPeg: 0, GoalPeg: 2}
}

var solution3 = []model.Move{
	{From: 0, To: 2}, {From: 0, To: 1}, {From: 2, To: 1}, {From: 0, To: 2},
	{From: 1, To: 0}, {From: 1, To: 2}, {From: 0, To: 2},
}

func newRunning(t *testing.T, cfg model.Config, opts Options) *Session {
	t.Helper()
	s, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(t0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func mustMove(t *testing.T, s *Session, m model.Move, now time.Time) MoveOutcome {
	t.Helper()
	out, err := s.SubmitMove(m, now)
	if err != nil {
		t.Fatalf("SubmitMove(%s): %v", m, err)
	}
	if !out.Accepted {
		t.Fatalf("SubmitMove(%s) rejected: %s", m, out.Reason)
	}
	return out
}

func TestSevenMoveRun(t *testing.T) {
	s := newRunning(t, classic3(), Options{})
	for i, m := range solution3 {
		out := mustMove(t, s, m, at(i+1))
		if i < len(solution3)-1 {
			if out.Solved || s.State() != Running {
				t.Fatalf("move %d already finished the run", i+1)
			}
		}
	}
	if s.State() != Finished {
		t.Fatalf("expected Finished after move 7, got %s", s.State())
	}
	res, ok := s.Result()
	if !ok {
		t.Fatalf("no result after finish")
	}
	if res.Moves != 7 {
		t.Fatalf("result moves = %d, want 7", res.Moves)
	}
	if res.OptimalMoves != 7 {
		t.Fatalf("result optimal = %d, want 7", res.OptimalMoves)
	}
	if res.Duration != 7*time.Second {
		t.Fatalf("result duration = %v, want 7s", res.Duration)
	}
	if res.ID == "" {
		t.Fatalf("result has no ID")
	}
	if len(res.Log) != 7 || res.Log[6].At != 7*time.Second {
		t.Fatalf("unexpected result log: %v", res.Log)
	}
}

func TestSingleDiskRun(t *testing.T) {
	s := newRunning(t, model.Config{Disks: 1, Pegs: 3, StartPeg: 0, GoalPeg: 2}, Options{})
	out := mustMove(t, s, model.Move{From: 0, To: 2}, at(1))
	if !out.Solved {
		t.Fatalf("single move did not finish the run")
	}
	if out.Result == nil || out.Result.Moves != 1 || out.Result.OptimalMoves != 1 {
		t.Fatalf("unexpected result: %+v", out.Result)
	}
}

func TestSamePegAlwaysRejected(t *testing.T) {
	s := newRunning(t, classic3(), Options{})
	reject := func(step string) {
		t.Helper()
		out, err := s.SubmitMove(model.Move{From: 0, To: 0}, at(1))
		if err != nil {
			t.Fatalf("%s: SubmitMove: %v", step, err)
		}
		if out.Accepted || out.Reason != rules.SamePeg {
			t.Fatalf("%s: expected SamePeg rejection, got %+v", step, out)
		}
		if s.State() != Running {
			t.Fatalf("%s: rejection changed session state to %s", step, s.State())
		}
	}
	reject("fresh board")
	mustMove(t, s, model.Move{From: 0, To: 1}, at(2))
	reject("after an accepted move")
	if s.MoveCount() != 1 {
		t.Fatalf("move count = %d, want 1", s.MoveCount())
	}
}

func TestRejectionKeepsSnapshotReason(t *testing.T) {
	s := newRunning(t, classic3(), Options{})
	if _, err := s.SubmitMove(model.Move{From: 1, To: 2}, at(1)); err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	snap := s.Snapshot(at(2))
	if snap.LastReject != rules.SourceEmpty {
		t.Fatalf("snapshot reject = %v, want SourceEmpty", snap.LastReject)
	}
	mustMove(t, s, model.Move{From: 0, To: 2}, at(3))
	snap = s.Snapshot(at(4))
	if snap.LastReject != 0 {
		t.Fatalf("accepted move did not clear the reject reason")
	}
}

func TestInvalidTransitions(t *testing.T) {
	s, err := New(classic3(), Options{Undo: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.SubmitMove(model.Move{From: 0, To: 2}, t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("move in Idle: got %v", err)
	}
	if err := s.Pause(t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pause in Idle: got %v", err)
	}
	if err := s.Resume(t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("resume in Idle: got %v", err)
	}
	if err := s.Undo(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("undo in Idle: got %v", err)
	}
	if err := s.Start(t0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(at(1)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second start: got %v", err)
	}
	if err := s.Resume(at(1)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("resume while running: got %v", err)
	}
	if err := s.Undo(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("undo with empty log: got %v", err)
	}
}

func TestPauseFreezesElapsed(t *testing.T) {
	s := newRunning(t, classic3(), Options{})
	if err := s.Pause(at(10)); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if got := s.Elapsed(at(25)); got != 10*time.Second {
		t.Fatalf("elapsed while paused = %v, want 10s", got)
	}
	if err := s.Resume(at(30)); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got := s.Elapsed(at(40)); got != 20*time.Second {
		t.Fatalf("elapsed after resume = %v, want 20s", got)
	}
}

func TestZeroWidthPauseContributesZero(t *testing.T) {
	s := newRunning(t, classic3(), Options{})
	before := s.Elapsed(at(10))
	if err := s.Pause(at(10)); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := s.Resume(at(10)); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got := s.Elapsed(at(10)); got != before {
		t.Fatalf("zero-width pause changed elapsed: %v -> %v", before, got)
	}
}

func TestPauseNeverDecreasesElapsed(t *testing.T) {
	s := newRunning(t, classic3(), Options{})
	last := time.Duration(0)
	for i := 0; i < 5; i++ {
		base := i * 20
		if err := s.Pause(at(base + 10)); err != nil {
			t.Fatalf("Pause: %v", err)
		}
		if got := s.Elapsed(at(base + 15)); got < last {
			t.Fatalf("elapsed decreased: %v -> %v", last, got)
		} else {
			last = got
		}
		if err := s.Resume(at(base + 20)); err != nil {
			t.Fatalf("Resume: %v", err)
		}
		if got := s.Elapsed(at(base + 20)); got < last {
			t.Fatalf("elapsed decreased after resume: %v -> %v", last, got)
		} else {
			last = got
		}
	}
}

func TestMoveTimestampsExcludePause(t *testing.T) {
	s := newRunning(t, classic3(), Options{})
	mustMove(t, s, model.Move{From: 0, To: 2}, at(5))
	if err := s.Pause(at(10)); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := s.Resume(at(70)); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	mustMove(t, s, model.Move{From: 0, To: 1}, at(75))
	log := s.Log()
	if log[0].At != 5*time.Second {
		t.Fatalf("first move at %v, want 5s", log[0].At)
	}
	if log[1].At != 15*time.Second {
		t.Fatalf("second move at %v, want 15s", log[1].At)
	}
}

func TestUndoThenRedoRestoresBoard(t *testing.T) {
	s := newRunning(t, classic3(), Options{Undo: true})
	for i, m := range solution3[:3] {
		mustMove(t, s, m, at(i+1))
	}
	pegsAfter3 := s.Snapshot(at(4)).Pegs
	mustMove(t, s, solution3[3], at(4))
	pegsAfter4 := s.Snapshot(at(5)).Pegs

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if s.MoveCount() != 3 {
		t.Fatalf("move count after undo = %d, want 3", s.MoveCount())
	}
	if got := s.Snapshot(at(6)).Pegs; !reflect.DeepEqual(got, pegsAfter3) {
		t.Fatalf("undo pegs = %v, want %v", got, pegsAfter3)
	}
	mustMove(t, s, solution3[3], at(7))
	if got := s.Snapshot(at(8)).Pegs; !reflect.DeepEqual(got, pegsAfter4) {
		t.Fatalf("redo pegs = %v, want %v", got, pegsAfter4)
	}
}

func TestUndoWhilePaused(t *testing.T) {
	s := newRunning(t, classic3(), Options{Undo: true})
	mustMove(t, s, solution3[0], at(1))
	if err := s.Pause(at(2)); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo while paused: %v", err)
	}
	if s.MoveCount() != 0 {
		t.Fatalf("move count = %d, want 0", s.MoveCount())
	}
}

func TestUndoDisabled(t *testing.T) {
	s := newRunning(t, classic3(), Options{})
	mustMove(t, s, solution3[0], at(1))
	if err := s.Undo(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("undo with Undo disabled: got %v", err)
	}
}

func TestResetOnReject(t *testing.T) {
	s := newRunning(t, classic3(), Options{ResetOnReject: true})
	mustMove(t, s, solution3[0], at(1))
	out, err := s.SubmitMove(model.Move{From: 1, To: 2}, at(2))
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if out.Accepted || !out.Abandoned || out.Reason != rules.SourceEmpty {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if s.State() != Idle || s.MoveCount() != 0 {
		t.Fatalf("run not abandoned: state=%s moves=%d", s.State(), s.MoveCount())
	}
	if s.Snapshot(at(3)).Pegs[0][0] != 3 {
		t.Fatalf("board not back at start: %v", s.Snapshot(at(3)).Pegs)
	}
}

func TestResetReturnsToIdle(t *testing.T) {
	s := newRunning(t, classic3(), Options{})
	mustMove(t, s, solution3[0], at(1))
	s.Reset()
	if s.State() != Idle {
		t.Fatalf("state after reset = %s, want idle", s.State())
	}
	if got := s.Elapsed(at(100)); got != 0 {
		t.Fatalf("elapsed after reset = %v, want 0", got)
	}
	if _, ok := s.Result(); ok {
		t.Fatalf("reset left a result behind")
	}
	if err := s.Start(at(200)); err != nil {
		t.Fatalf("Start after reset: %v", err)
	}
}

func TestFinishedIsTerminalExceptReset(t *testing.T) {
	s := newRunning(t, model.Config{Disks: 1, Pegs: 3, StartPeg: 0, GoalPeg: 2}, Options{})
	mustMove(t, s, model.Move{From: 0, To: 2}, at(1))
	if _, err := s.SubmitMove(model.Move{From: 2, To: 0}, at(2)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("move after finish: got %v", err)
	}
	if err := s.Pause(at(2)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pause after finish: got %v", err)
	}
	if got := s.Elapsed(at(500)); got != 1*time.Second {
		t.Fatalf("elapsed after finish = %v, want 1s", got)
	}
	s.Reset()
	if s.State() != Idle {
		t.Fatalf("reset after finish failed, state %s", s.State())
	}
}

func TestFreeGoalFinishes(t *testing.T) {
	s := newRunning(t, model.Config{Disks: 1, Pegs: 4, StartPeg: 0, GoalPeg: model.AnyPeg}, Options{})
	out := mustMove(t, s, model.Move{From: 0, To: 1}, at(1))
	if !out.Solved {
		t.Fatalf("free-goal run did not finish on peg 1")
	}
}
