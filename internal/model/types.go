// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Board size limits. Three pegs and one disk is the smallest playable
// configuration; 64 disks is the largest whose 3-peg optimum (2^64-1)
// still fits in a uint64.
const (
	MinDisks = 1
	MaxDisks = 64
	MinPegs  = 3
	MaxPegs  = 16
)

// AnyPeg marks a free-goal run: the puzzle is solved as soon as every
// disk is stacked on any peg other than the start peg.
const AnyPeg = -1

// ErrInvalidConfig reports an unusable puzzle configuration.
var ErrInvalidConfig = errors.New("invalid puzzle configuration")

// Variant selects the rule set a run is played under.
type Variant int

const (
	// Classic applies the base rules only.
	Classic Variant = iota
	// Adjacent restricts moves to neighbouring pegs.
	Adjacent
	// NoRepeat forbids moving the same disk twice in a row.
	NoRepeat
	// Relaxed waives the size rule; the win still requires an
	// ordered stack.
	Relaxed
)

func (v Variant) String() string {
	switch v {
	case Classic:
		return "classic"
	case Adjacent:
		return "adjacent"
	case NoRepeat:
		return "norepeat"
	case Relaxed:
		return "relaxed"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant converts a config/flag string into a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "classic":
		return Classic, nil
	case "adjacent":
		return Adjacent, nil
	case "norepeat", "no-repeat":
		return NoRepeat, nil
	case "relaxed", "illegal":
		return Relaxed, nil
	default:
		return Classic, fmt.Errorf("%w: unknown variant %q", ErrInvalidConfig, s)
	}
}

// Config identifies a run: board shape, start/goal pegs and rule
// variant. GoalPeg may be AnyPeg. Pegs are 0-based here; the CLI and
// config file speak 1-based and translate on the way in.
type Config struct {
	Disks    int
	Pegs     int
	StartPeg int
	GoalPeg  int
	Variant  Variant
}

// DefaultConfig is the standard 5-disk, 3-peg game from the leftmost
// to the rightmost peg.
func DefaultConfig() Config {
	return Config{Disks: 5, Pegs: 3, StartPeg: 0, GoalPeg: 2, Variant: Classic}
}

// Validate checks the configuration against the board limits.
func (c Config) Validate() error {
	if c.Disks < MinDisks || c.Disks > MaxDisks {
		return fmt.Errorf("%w: disks must be in [%d, %d], got %d", ErrInvalidConfig, MinDisks, MaxDisks, c.Disks)
	}
	if c.Pegs < MinPegs || c.Pegs > MaxPegs {
		return fmt.Errorf("%w: pegs must be in [%d, %d], got %d", ErrInvalidConfig, MinPegs, MaxPegs, c.Pegs)
	}
	if c.StartPeg < 0 || c.StartPeg >= c.Pegs {
		return fmt.Errorf("%w: start peg %d out of range", ErrInvalidConfig, c.StartPeg)
	}
	if c.GoalPeg != AnyPeg && (c.GoalPeg < 0 || c.GoalPeg >= c.Pegs) {
		return fmt.Errorf("%w: goal peg %d out of range", ErrInvalidConfig, c.GoalPeg)
	}
	if c.GoalPeg == c.StartPeg {
		return fmt.Errorf("%w: start and goal peg are both %d", ErrInvalidConfig, c.StartPeg)
	}
	return nil
}

// Key returns the history grouping key. Start and goal pegs do not
// change the difficulty class, so they are not part of the key.
func (c Config) Key() Key {
	return Key{Disks: c.Disks, Pegs: c.Pegs, Variant: c.Variant}
}

func (c Config) String() string {
	goal := "any"
	if c.GoalPeg != AnyPeg {
		goal = fmt.Sprintf("%d", c.GoalPeg+1)
	}
	return fmt.Sprintf("%dd/%dp %d→%s %s", c.Disks, c.Pegs, c.StartPeg+1, goal, c.Variant)
}

// Key groups run results that are comparable with each other.
type Key struct {
	Disks   int
	Pegs    int
	Variant Variant
}

func (k Key) String() string {
	return fmt.Sprintf("%dd/%dp %s", k.Disks, k.Pegs, k.Variant)
}

// Move relocates the top disk of From onto To. The disk is implied.
type Move struct {
	From int
	To   int
}

func (m Move) String() string {
	return fmt.Sprintf("%d→%d", m.From+1, m.To+1)
}

// TimedMove is an accepted move stamped with the active elapsed time
// at the moment it was accepted. Pause time is excluded from At.
type TimedMove struct {
	From int
	To   int
	At   time.Duration
}

// Move strips the timestamp.
func (m TimedMove) Move() Move {
	return Move{From: m.From, To: m.To}
}

// RunResult captures one finished run. It is immutable once emitted;
// OptimalMoves is recomputed from the solver on reload rather than
// persisted, since the 64-disk value does not fit a signed column.
type RunResult struct {
	ID           string
	Config       Config
	Moves        int
	OptimalMoves uint64
	Duration     time.Duration
	CompletedAt  time.Time
	Log          []TimedMove
}

// StatsFilter selects runs for stats output. Zero values mean "any".
type StatsFilter struct {
	Disks       int
	Pegs        int
	Variant     *Variant
	Since       *time.Time
	Last        int
	TrendWindow int
}
