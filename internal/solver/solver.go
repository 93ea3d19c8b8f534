// Package solver computes minimum move counts and optimal move
// sequences. Three pegs use the closed form 2^n-1; four or more pegs
// use the Frame-Stewart recurrence, the best known strategy (not
// provably optimal in general).
package solver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/verte-zerg/tuinoi/internal/model"
)

// MaxPlanMoves bounds the length of an explicit plan. Move counts
// beyond this are still reported by MinimumMoves; they are just too
// long to materialize or watch.
const MaxPlanMoves = 1 << 20

// ErrPlanTooLarge reports a configuration whose optimal solution has
// more than MaxPlanMoves moves.
var ErrPlanTooLarge = errors.New("optimal plan too large to materialize")

type fsKey struct {
	disks int
	pegs  int
}

type fsEntry struct {
	moves uint64
	split int
}

// Results are memoized process-wide: inputs are plain integers, the
// table never needs invalidation. The lock allows concurrent readers
// (stats views recompute pars while a run is in progress).
var (
	memoMu sync.RWMutex
	memo   = make(map[fsKey]fsEntry)
)

// MinimumMoves returns the minimum move count for solving disks on
// pegs. For four or more pegs this is the Frame-Stewart value.
func MinimumMoves(disks, pegs int) (uint64, error) {
	if disks < model.MinDisks || disks > model.MaxDisks {
		return 0, fmt.Errorf("%w: disks must be in [%d, %d], got %d", model.ErrInvalidConfig, model.MinDisks, model.MaxDisks, disks)
	}
	if pegs < model.MinPegs || pegs > model.MaxPegs {
		return 0, fmt.Errorf("%w: pegs must be in [%d, %d], got %d", model.ErrInvalidConfig, model.MinPegs, model.MaxPegs, pegs)
	}
	if pegs == 3 {
		return threePeg(disks), nil
	}
	return frameStewart(disks, pegs).moves, nil
}

// threePeg returns 2^d - 1. The d=64 value is exactly the maximum
// uint64, which is why MaxDisks is 64.
func threePeg(d int) uint64 {
	return ^uint64(0) >> (64 - uint(d))
}

// frameStewart finds the best disk split: move k disks aside with all
// pegs, the remaining d-k with one peg fewer, then the k disks back.
// The search over k is exhaustive; with d capped at 64 and the memo
// table it stays trivial.
func frameStewart(d, p int) fsEntry {
	if d <= 0 {
		return fsEntry{}
	}
	if d == 1 {
		return fsEntry{moves: 1}
	}
	if p == 3 {
		return fsEntry{moves: threePeg(d)}
	}
	key := fsKey{disks: d, pegs: p}
	memoMu.RLock()
	e, ok := memo[key]
	memoMu.RUnlock()
	if ok {
		return e
	}
	best := fsEntry{moves: ^uint64(0)}
	for k := 1; k < d; k++ {
		total := 2*frameStewart(k, p).moves + frameStewart(d-k, p-1).moves
		if total < best.moves {
			best = fsEntry{moves: total, split: k}
		}
	}
	memoMu.Lock()
	memo[key] = best
	memoMu.Unlock()
	return best
}

// Plan returns an optimal move sequence for cfg under the base rules.
// A free goal resolves to the highest peg other than the start.
func Plan(cfg model.Config) ([]model.Move, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	total, err := MinimumMoves(cfg.Disks, cfg.Pegs)
	if err != nil {
		return nil, err
	}
	if total > MaxPlanMoves {
		return nil, fmt.Errorf("%w: %d moves", ErrPlanTooLarge, total)
	}
	goal := cfg.GoalPeg
	if goal == model.AnyPeg {
		goal = cfg.Pegs - 1
		if goal == cfg.StartPeg {
			goal--
		}
	}
	spares := make([]int, 0, cfg.Pegs-2)
	for peg := 0; peg < cfg.Pegs; peg++ {
		if peg != cfg.StartPeg && peg != goal {
			spares = append(spares, peg)
		}
	}
	moves := make([]model.Move, 0, total)
	planMoves(&moves, cfg.Disks, cfg.StartPeg, goal, spares)
	return moves, nil
}

func planMoves(out *[]model.Move, d, from, to int, spares []int) {
	if d <= 0 {
		return
	}
	if d == 1 {
		*out = append(*out, model.Move{From: from, To: to})
		return
	}
	if len(spares) == 1 {
		via := spares[0]
		planMoves(out, d-1, from, via, []int{to})
		*out = append(*out, model.Move{From: from, To: to})
		planMoves(out, d-1, via, to, []int{from})
		return
	}
	k := frameStewart(d, len(spares)+2).split
	spare, rest := spares[0], spares[1:]
	planMoves(out, k, from, spare, append([]int{to}, rest...))
	planMoves(out, d-k, from, to, rest)
	planMoves(out, k, spare, to, append([]int{from}, rest...))
}

// ExpertSeconds estimates how long a strong human needs for a
// solution of the given length, at three moves per second after the
// first.
func ExpertSeconds(moves uint64) float64 {
	if moves <= 1 {
		return 0
	}
	return float64(moves-1) / 3
}

// ComputerSeconds is the same estimate for a machine playing fifty
// million moves per second.
func ComputerSeconds(moves uint64) float64 {
	if moves <= 1 {
		return 0
	}
	return float64(moves-1) / 5e7
}
