package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/verte-zerg/tuinoi/internal/model"
)

// DefaultQuickKeys is the six-key layout for three-peg boards, in
// from/to pair order 1-2, 1-3, 2-1, 2-3, 3-1, 3-2.
const DefaultQuickKeys = "dfsljk"

// reservedPlayKeys are bound to pause, undo, reset, and quit and may
// not be rebound as quick moves.
const reservedPlayKeys = "pzrq"

var quickPairs = []model.Move{
	{From: 0, To: 1},
	{From: 0, To: 2},
	{From: 1, To: 0},
	{From: 1, To: 2},
	{From: 2, To: 0},
	{From: 2, To: 1},
}

// QuickMoves parses a quick-key layout into a key-to-move map. The
// layout must hold six distinct letters; digits are taken by numeric
// peg selection.
func QuickMoves(layout string) (map[rune]model.Move, error) {
	runes := []rune(layout)
	if len(runes) != len(quickPairs) {
		return nil, fmt.Errorf("quick keys must be %d characters, got %q", len(quickPairs), layout)
	}
	moves := make(map[rune]model.Move, len(runes))
	for i, r := range runes {
		if unicode.IsDigit(r) {
			return nil, fmt.Errorf("quick key %q clashes with numeric peg selection", r)
		}
		if strings.ContainsRune(reservedPlayKeys, r) {
			return nil, fmt.Errorf("quick key %q is reserved", r)
		}
		if _, dup := moves[r]; dup {
			return nil, fmt.Errorf("quick key %q is bound twice", r)
		}
		moves[r] = quickPairs[i]
	}
	return moves, nil
}

// ParseGoal converts a goal value from config or flag into a peg
// index. "any" allows finishing on any peg other than the start peg;
// numbers count from 1.
func ParseGoal(value string, pegs int) (int, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "any" {
		return model.AnyPeg, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("goal must be a peg number or \"any\", got %q", value)
	}
	if n < 1 || n > pegs {
		return 0, fmt.Errorf("goal peg %d out of range 1-%d", n, pegs)
	}
	return n - 1, nil
}
