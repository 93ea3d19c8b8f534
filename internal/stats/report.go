// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/verte-zerg/tuinoi/internal/model"
	"github.com/verte-zerg/tuinoi/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs  []model.RunResult
	Store *Store
	Keys  []model.Key
}

// BuildReport loads the matching runs and builds their aggregates.
// A validation failure surfaces as ErrCorruptHistory; the caller
// decides whether to fall back to an empty report.
func BuildReport(ctx context.Context, st *store.Store, f model.StatsFilter) (Report, error) {
	runs, err := st.ListRuns(ctx, f)
	if err != nil {
		return Report{}, err
	}
	agg, err := Load(runs)
	if err != nil {
		return Report{}, err
	}
	return Report{Runs: runs, Store: agg, Keys: agg.Keys()}, nil
}
