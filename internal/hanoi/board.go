// Package hanoi implements the puzzle board: peg stacks, move
// application and win detection.
package hanoi

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/tuinoi/internal/model"
)

// ErrIllegalMove reports a move that would break the board invariant.
var ErrIllegalMove = errors.New("illegal move")

// Board holds the disk stacks of a single run. pegs[i] lists disk
// sizes bottom to top; under the base rules sizes strictly decrease
// towards the top. All mutation goes through Apply/ApplyRelaxed.
type Board struct {
	cfg  model.Config
	pegs [][]int
}

// New builds a board with all disks stacked on the start peg, the
// largest at the bottom.
func New(cfg model.Config) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pegs := make([][]int, cfg.Pegs)
	for i := range pegs {
		pegs[i] = make([]int, 0, cfg.Disks)
	}
	for size := cfg.Disks; size >= 1; size-- {
		pegs[cfg.StartPeg] = append(pegs[cfg.StartPeg], size)
	}
	return &Board{cfg: cfg, pegs: pegs}, nil
}

// Config returns the configuration the board was built from.
func (b *Board) Config() model.Config { return b.cfg }

// Disks returns the total disk count.
func (b *Board) Disks() int { return b.cfg.Disks }

// PegCount returns the number of pegs.
func (b *Board) PegCount() int { return len(b.pegs) }

// Top returns the topmost (smallest) disk on peg, or false when the
// peg is empty or out of range.
func (b *Board) Top(peg int) (int, bool) {
	if peg < 0 || peg >= len(b.pegs) || len(b.pegs[peg]) == 0 {
		return 0, false
	}
	stack := b.pegs[peg]
	return stack[len(stack)-1], true
}

// Height returns the number of disks on peg.
func (b *Board) Height(peg int) int {
	if peg < 0 || peg >= len(b.pegs) {
		return 0
	}
	return len(b.pegs[peg])
}

// IsLegalMove reports whether moving the top of from onto to keeps
// the board legal: distinct in-range pegs, non-empty source, and the
// destination either empty or topped by a larger disk.
func (b *Board) IsLegalMove(from, to int) bool {
	if from == to || from < 0 || to < 0 || from >= len(b.pegs) || to >= len(b.pegs) {
		return false
	}
	src, ok := b.Top(from)
	if !ok {
		return false
	}
	dst, ok := b.Top(to)
	if !ok {
		return true
	}
	return dst > src
}

// Apply pops the top of m.From and pushes it onto m.To. The board is
// left untouched when the move is illegal.
func (b *Board) Apply(m model.Move) error {
	if !b.IsLegalMove(m.From, m.To) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	b.shift(m.From, m.To)
	return nil
}

// ApplyRelaxed is Apply with the size rule waived. Same-peg moves,
// empty sources and out-of-range pegs are still rejected.
func (b *Board) ApplyRelaxed(m model.Move) error {
	if m.From == m.To || m.From < 0 || m.To < 0 || m.From >= len(b.pegs) || m.To >= len(b.pegs) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	if _, ok := b.Top(m.From); !ok {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	b.shift(m.From, m.To)
	return nil
}

func (b *Board) shift(from, to int) {
	src := b.pegs[from]
	disk := src[len(src)-1]
	b.pegs[from] = src[:len(src)-1]
	b.pegs[to] = append(b.pegs[to], disk)
}

// Solved reports whether the run's goal is reached: every disk
// stacked in order on the goal peg, or on any peg other than the
// start peg when the goal is free.
func (b *Board) Solved() bool {
	if b.cfg.GoalPeg == model.AnyPeg {
		for peg := range b.pegs {
			if peg == b.cfg.StartPeg {
				continue
			}
			if b.orderedStack(peg) {
				return true
			}
		}
		return false
	}
	return b.orderedStack(b.cfg.GoalPeg)
}

// orderedStack reports whether peg holds all disks in strictly
// descending order. The explicit order check matters under the
// relaxed rules, where intermediate states may be scrambled.
func (b *Board) orderedStack(peg int) bool {
	stack := b.pegs[peg]
	if len(stack) != b.cfg.Disks {
		return false
	}
	for i := 1; i < len(stack); i++ {
		if stack[i] >= stack[i-1] {
			return false
		}
	}
	return true
}

// Peg returns a copy of the disk stack on peg, bottom first.
func (b *Board) Peg(peg int) []int {
	if peg < 0 || peg >= len(b.pegs) {
		return nil
	}
	out := make([]int, len(b.pegs[peg]))
	copy(out, b.pegs[peg])
	return out
}

// Pegs returns a deep copy of all stacks for rendering.
func (b *Board) Pegs() [][]int {
	out := make([][]int, len(b.pegs))
	for i := range b.pegs {
		out[i] = b.Peg(i)
	}
	return out
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	return &Board{cfg: b.cfg, pegs: b.Pegs()}
}
