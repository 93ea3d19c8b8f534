// Package rules validates candidate moves against the active rule
// variant. Rejections are values, not errors: they are routine
// feedback for the player, reported with a reason.
package rules

import (
	"github.com/verte-zerg/tuinoi/internal/hanoi"
	"github.com/verte-zerg/tuinoi/internal/model"
)

// Reason explains why a move was rejected.
type Reason int

const (
	// SamePeg: source and destination are the same peg.
	SamePeg Reason = iota + 1
	// OutOfRange: a peg index is outside the board.
	OutOfRange
	// SourceEmpty: no disk to pick up.
	SourceEmpty
	// SizeViolation: a larger disk may not land on a smaller one.
	SizeViolation
	// VariantForbidden: the active variant forbids an otherwise
	// legal move.
	VariantForbidden
)

func (r Reason) String() string {
	switch r {
	case SamePeg:
		return "same peg"
	case OutOfRange:
		return "peg out of range"
	case SourceEmpty:
		return "source peg is empty"
	case SizeViolation:
		return "cannot place a larger disk on a smaller one"
	case VariantForbidden:
		return "move forbidden by the rule variant"
	default:
		return "rejected"
	}
}

// Verdict is the outcome of validating one move.
type Verdict struct {
	Accepted bool
	Reason   Reason
}

func accepted() Verdict { return Verdict{Accepted: true} }

func rejected(r Reason) Verdict { return Verdict{Reason: r} }

// Validate checks m against the board and the variant. last is the
// previously accepted move, nil at the start of a run; only the
// NoRepeat variant consults it. The board is never mutated.
func Validate(b *hanoi.Board, m model.Move, variant model.Variant, last *model.Move) Verdict {
	if m.From == m.To {
		return rejected(SamePeg)
	}
	if m.From < 0 || m.To < 0 || m.From >= b.PegCount() || m.To >= b.PegCount() {
		return rejected(OutOfRange)
	}
	src, ok := b.Top(m.From)
	if !ok {
		return rejected(SourceEmpty)
	}
	switch variant {
	case model.Adjacent:
		if m.To-m.From != 1 && m.From-m.To != 1 {
			return rejected(VariantForbidden)
		}
	case model.NoRepeat:
		// The disk moved last sits on last.To; picking it straight
		// back up is what the variant forbids.
		if last != nil && m.From == last.To {
			return rejected(VariantForbidden)
		}
	}
	if variant != model.Relaxed {
		if dst, ok := b.Top(m.To); ok && dst < src {
			return rejected(SizeViolation)
		}
	}
	return accepted()
}
