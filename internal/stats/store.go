package stats

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/verte-zerg/tuinoi/internal/model"
)

// recentWindow is how many of the latest runs feed the trend mean.
const recentWindow = 10

// ErrCorruptHistory reports persisted history that fails structural
// validation. Callers discard it and continue with an empty store.
var ErrCorruptHistory = errors.New("corrupt run history")

// Aggregate is an immutable summary of one configuration's history.
// A zero Count means no runs are recorded; the other fields are
// meaningless then.
type Aggregate struct {
	Key          model.Key
	Count        int
	BestDuration time.Duration
	BestMoves    int
	MeanDuration time.Duration
	RecentMean   time.Duration
	History      []model.RunResult
}

type entry struct {
	results   []model.RunResult
	bestDur   time.Duration
	bestMoves int
	sumDur    time.Duration
}

// Store accumulates run results grouped by configuration key. Best
// and mean values are maintained incrementally on insert; queries
// hand out copies, never the stored slices.
type Store struct {
	entries map[model.Key]*entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[model.Key]*entry)}
}

// Load rebuilds a store from persisted history. Any structurally
// invalid record fails the whole load with ErrCorruptHistory; the
// caller falls back to an empty store.
func Load(history []model.RunResult) (*Store, error) {
	s := NewStore()
	for i, res := range history {
		if err := validateResult(res); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorruptHistory, i, err)
		}
		s.Record(res)
	}
	return s, nil
}

func validateResult(res model.RunResult) error {
	if err := res.Config.Validate(); err != nil {
		return err
	}
	if res.Moves < 1 {
		return fmt.Errorf("move count %d", res.Moves)
	}
	if res.Duration < 0 {
		return fmt.Errorf("negative duration %v", res.Duration)
	}
	if res.CompletedAt.IsZero() {
		return errors.New("missing completion time")
	}
	if len(res.Log) > 0 {
		if len(res.Log) != res.Moves {
			return fmt.Errorf("log has %d moves, run has %d", len(res.Log), res.Moves)
		}
		prev := time.Duration(-1)
		for i, tm := range res.Log {
			if tm.At < 0 || tm.At < prev {
				return fmt.Errorf("log timestamp %d out of order", i)
			}
			prev = tm.At
		}
	}
	return nil
}

// Record appends res and updates the cached aggregates. The best-time
// check is one comparison against the cached minimum.
func (s *Store) Record(res model.RunResult) {
	key := res.Config.Key()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	first := len(e.results) == 0
	e.results = append(e.results, res)
	e.sumDur += res.Duration
	if first || res.Duration < e.bestDur {
		e.bestDur = res.Duration
	}
	if first || res.Moves < e.bestMoves {
		e.bestMoves = res.Moves
	}
}

// Query returns the aggregate view for key. Unknown keys yield a
// zero-count aggregate; absent history is not an error.
func (s *Store) Query(key model.Key) Aggregate {
	e, ok := s.entries[key]
	if !ok {
		return Aggregate{Key: key}
	}
	history := make([]model.RunResult, len(e.results))
	copy(history, e.results)
	return Aggregate{
		Key:          key,
		Count:        len(e.results),
		BestDuration: e.bestDur,
		BestMoves:    e.bestMoves,
		MeanDuration: e.sumDur / time.Duration(len(e.results)),
		RecentMean:   recentMean(e.results, recentWindow),
		History:      history,
	}
}

func recentMean(results []model.RunResult, window int) time.Duration {
	if len(results) == 0 {
		return 0
	}
	if window > len(results) {
		window = len(results)
	}
	var sum time.Duration
	for _, res := range results[len(results)-window:] {
		sum += res.Duration
	}
	return sum / time.Duration(window)
}

// Keys lists the recorded configuration keys in a stable order.
func (s *Store) Keys() []model.Key {
	keys := make([]model.Key, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Disks != keys[j].Disks {
			return keys[i].Disks < keys[j].Disks
		}
		if keys[i].Pegs != keys[j].Pegs {
			return keys[i].Pegs < keys[j].Pegs
		}
		return keys[i].Variant < keys[j].Variant
	})
	return keys
}

// Totals returns the run count and summed active time across all
// keys.
func (s *Store) Totals() (int, time.Duration) {
	count := 0
	var total time.Duration
	for _, e := range s.entries {
		count += len(e.results)
		total += e.sumDur
	}
	return count, total
}
