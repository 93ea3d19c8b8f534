package session

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tuinoi/internal/hanoi"
	"github.com/verte-zerg/tuinoi/internal/model"
)

// Replayer plays a stored run's timed move log back against a clock
// supplied by the caller.
type Replayer struct {
	res   model.RunResult
	board *hanoi.Board
	next  int
}

// NewReplayer sets up a replay of res from the starting position.
func NewReplayer(res model.RunResult) (*Replayer, error) {
	board, err := hanoi.New(res.Config)
	if err != nil {
		return nil, err
	}
	return &Replayer{res: res, board: board}, nil
}

// Advance applies every logged move due at elapsed and returns how
// many were applied. A move that fails to apply means the stored log
// is inconsistent with its configuration.
func (r *Replayer) Advance(elapsed time.Duration) (int, error) {
	applied := 0
	for r.next < len(r.res.Log) && r.res.Log[r.next].At <= elapsed {
		tm := r.res.Log[r.next]
		if err := applyTo(r.board, tm.Move(), r.res.Config.Variant); err != nil {
			return applied, fmt.Errorf("replay move %d: %w", r.next+1, err)
		}
		r.next++
		applied++
	}
	return applied, nil
}

// Done reports whether the whole log has been played.
func (r *Replayer) Done() bool { return r.next >= len(r.res.Log) }

// Applied returns the number of moves played so far.
func (r *Replayer) Applied() int { return r.next }

// Total returns the length of the stored log.
func (r *Replayer) Total() int { return len(r.res.Log) }

// Pegs returns a copy of the current board contents.
func (r *Replayer) Pegs() [][]int { return r.board.Pegs() }

// Config returns the configuration of the replayed run.
func (r *Replayer) Config() model.Config { return r.res.Config }

// Duration returns the recorded active time of the replayed run.
func (r *Replayer) Duration() time.Duration { return r.res.Duration }
