// Package session tracks the lifecycle of a single run: the state
// machine from idle through running, paused and finished, the move
// log with active-time stamps, and the result emitted on a win.
//
// The package never reads a clock. Every mutating call takes the
// current time from the caller, which keeps runs deterministic and
// directly testable.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuinoi/internal/hanoi"
	"github.com/verte-zerg/tuinoi/internal/model"
	"github.com/verte-zerg/tuinoi/internal/rules"
	"github.com/verte-zerg/tuinoi/internal/solver"
)

// ErrInvalidTransition reports a lifecycle call made in the wrong
// state. It signals a host bug; the session state is left intact.
var ErrInvalidTransition = errors.New("invalid session transition")

// State is the lifecycle phase of a run.
type State int

const (
	// Idle: configured, board set up, clock not started.
	Idle State = iota
	// Running: clock ticking, moves accepted.
	Running
	// Paused: clock frozen, moves not accepted.
	Paused
	// Finished: solved; terminal except for Reset.
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options tunes optional run behaviour.
type Options struct {
	// Undo enables the Undo call.
	Undo bool
	// ResetOnReject abandons the whole run when a move is rejected.
	ResetOnReject bool
}

// PauseSpan is one pause interval. To is zero while the span is open.
type PauseSpan struct {
	From time.Time
	To   time.Time
}

// MoveOutcome reports what SubmitMove did. A rejection is routine
// feedback, not an error: Accepted is false and Reason says why.
type MoveOutcome struct {
	Accepted bool
	Reason   rules.Reason
	// Solved is set on the winning move; Result carries the final
	// record.
	Solved bool
	Result *model.RunResult
	// Abandoned is set when ResetOnReject wiped the run.
	Abandoned bool
}

// Snapshot is the cheap read-only view rendered every frame.
type Snapshot struct {
	Config     model.Config
	State      State
	Pegs       [][]int
	Moves      int
	Elapsed    time.Duration
	Optimal    uint64
	LastReject rules.Reason
}

// Session owns the board and move log of one run. It must be driven
// from a single goroutine.
type Session struct {
	cfg     model.Config
	opts    Options
	optimal uint64
	// initial stays at the starting position; Reset and Undo rebuild
	// from clones of it.
	initial *hanoi.Board

	state      State
	board      *hanoi.Board
	log        []model.TimedMove
	startedAt  time.Time
	finishedAt time.Time
	pauses     []PauseSpan
	lastReject rules.Reason
	result     *model.RunResult
}

// New builds an idle session for cfg. The board is set up so the
// host can render the starting position before the clock starts.
func New(cfg model.Config, opts Options) (*Session, error) {
	board, err := hanoi.New(cfg)
	if err != nil {
		return nil, err
	}
	optimal, err := solver.MinimumMoves(cfg.Disks, cfg.Pegs)
	if err != nil {
		return nil, err
	}
	return &Session{cfg: cfg, opts: opts, optimal: optimal, initial: board, board: board.Clone()}, nil
}

// Config returns the run configuration.
func (s *Session) Config() model.Config { return s.cfg }

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// Optimal returns the minimum move count for this configuration.
func (s *Session) Optimal() uint64 { return s.optimal }

// MoveCount returns the number of accepted moves.
func (s *Session) MoveCount() int { return len(s.log) }

// Log returns a copy of the accepted moves.
func (s *Session) Log() []model.TimedMove {
	out := make([]model.TimedMove, len(s.log))
	copy(out, s.log)
	return out
}

// Result returns the run record once the session is finished.
func (s *Session) Result() (model.RunResult, bool) {
	if s.result == nil {
		return model.RunResult{}, false
	}
	return *s.result, true
}

// Start begins the run and stamps the start time.
func (s *Session) Start(now time.Time) error {
	if s.state != Idle {
		return fmt.Errorf("%w: start in state %s", ErrInvalidTransition, s.state)
	}
	s.state = Running
	s.startedAt = now
	return nil
}

// SubmitMove validates and applies m. Only valid while running;
// calling in any other state is a host bug and returns
// ErrInvalidTransition. Rejections are reported in the outcome.
func (s *Session) SubmitMove(m model.Move, now time.Time) (MoveOutcome, error) {
	if s.state != Running {
		return MoveOutcome{}, fmt.Errorf("%w: move in state %s", ErrInvalidTransition, s.state)
	}
	verdict := rules.Validate(s.board, m, s.cfg.Variant, s.lastMove())
	if !verdict.Accepted {
		s.lastReject = verdict.Reason
		out := MoveOutcome{Reason: verdict.Reason}
		if s.opts.ResetOnReject {
			s.Reset()
			out.Abandoned = true
		}
		return out, nil
	}
	if err := s.apply(m); err != nil {
		return MoveOutcome{}, err
	}
	s.lastReject = 0
	s.log = append(s.log, model.TimedMove{From: m.From, To: m.To, At: s.Elapsed(now)})
	if !s.board.Solved() {
		return MoveOutcome{Accepted: true}, nil
	}
	s.state = Finished
	s.finishedAt = now
	res := model.RunResult{
		ID:           uuid.NewString(),
		Config:       s.cfg,
		Moves:        len(s.log),
		OptimalMoves: s.optimal,
		Duration:     s.Elapsed(now),
		CompletedAt:  now,
		Log:          s.Log(),
	}
	s.result = &res
	return MoveOutcome{Accepted: true, Solved: true, Result: &res}, nil
}

// Pause freezes the clock.
func (s *Session) Pause(now time.Time) error {
	if s.state != Running {
		return fmt.Errorf("%w: pause in state %s", ErrInvalidTransition, s.state)
	}
	s.state = Paused
	s.pauses = append(s.pauses, PauseSpan{From: now})
	return nil
}

// Resume restarts the clock.
func (s *Session) Resume(now time.Time) error {
	if s.state != Paused {
		return fmt.Errorf("%w: resume in state %s", ErrInvalidTransition, s.state)
	}
	s.state = Running
	s.pauses[len(s.pauses)-1].To = now
	return nil
}

// Undo removes the last accepted move and rebuilds the board by
// replaying the remaining log from the starting position. Replay is
// the only rebuild path; there is no inverse-move logic to drift out
// of sync with the variants.
func (s *Session) Undo() error {
	if !s.opts.Undo {
		return fmt.Errorf("%w: undo disabled", ErrInvalidTransition)
	}
	if s.state != Running && s.state != Paused {
		return fmt.Errorf("%w: undo in state %s", ErrInvalidTransition, s.state)
	}
	if len(s.log) == 0 {
		return fmt.Errorf("%w: undo with empty move log", ErrInvalidTransition)
	}
	s.log = s.log[:len(s.log)-1]
	board := s.initial.Clone()
	for _, tm := range s.log {
		if err := applyTo(board, tm.Move(), s.cfg.Variant); err != nil {
			return err
		}
	}
	s.board = board
	return nil
}

// Reset abandons the run and returns to Idle. No result is emitted.
func (s *Session) Reset() {
	s.state = Idle
	s.board = s.initial.Clone()
	s.log = nil
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}
	s.pauses = nil
	s.lastReject = 0
	s.result = nil
}

// Elapsed returns the active run time at now: wall time since start
// minus pause intervals. While paused the value is frozen at the
// pause instant; in Idle it is zero.
func (s *Session) Elapsed(now time.Time) time.Duration {
	switch s.state {
	case Idle:
		return 0
	case Paused:
		open := s.pauses[len(s.pauses)-1]
		return open.From.Sub(s.startedAt) - s.closedPauses()
	case Finished:
		return s.finishedAt.Sub(s.startedAt) - s.closedPauses()
	default:
		return now.Sub(s.startedAt) - s.closedPauses()
	}
}

// Snapshot assembles the per-frame view. Peg contents are copied so
// the caller can hold them across events.
func (s *Session) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		Config:     s.cfg,
		State:      s.state,
		Pegs:       s.board.Pegs(),
		Moves:      len(s.log),
		Elapsed:    s.Elapsed(now),
		Optimal:    s.optimal,
		LastReject: s.lastReject,
	}
}

func (s *Session) closedPauses() time.Duration {
	var total time.Duration
	for _, span := range s.pauses {
		if !span.To.IsZero() {
			total += span.To.Sub(span.From)
		}
	}
	return total
}

func (s *Session) lastMove() *model.Move {
	if len(s.log) == 0 {
		return nil
	}
	m := s.log[len(s.log)-1].Move()
	return &m
}

func (s *Session) apply(m model.Move) error {
	return applyTo(s.board, m, s.cfg.Variant)
}

func applyTo(b *hanoi.Board, m model.Move, v model.Variant) error {
	if v == model.Relaxed {
		return b.ApplyRelaxed(m)
	}
	return b.Apply(m)
}
