// Package store handles SQLite persistence of run history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuinoi/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			completed_at TEXT NOT NULL,
			disks INTEGER NOT NULL,
			pegs INTEGER NOT NULL,
			start_peg INTEGER NOT NULL,
			goal_peg INTEGER NOT NULL,
			variant TEXT NOT NULL,
			moves INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_moves (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			from_peg INTEGER NOT NULL,
			to_peg INTEGER NOT NULL,
			at_ms INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_completed_at ON runs(completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_key ON runs(disks, pegs, variant);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a completed run and its move log.
func (s *Store) InsertRun(ctx context.Context, res model.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, completed_at, disks, pegs, start_peg, goal_peg, variant, moves, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID,
		res.CompletedAt.Format(time.RFC3339Nano),
		res.Config.Disks,
		res.Config.Pegs,
		res.Config.StartPeg,
		res.Config.GoalPeg,
		res.Config.Variant.String(),
		res.Moves,
		res.Duration.Milliseconds(),
	)
	if err != nil {
		return err
	}

	if len(res.Log) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO run_moves (run_id, seq, from_peg, to_peg, at_ms)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, tm := range res.Log {
			if _, err = stmt.ExecContext(ctx, res.ID, i, tm.From, tm.To, tm.At.Milliseconds()); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// ListRuns returns runs matching the filter, oldest first. Move logs
// are not loaded; use GetRun for a full record.
func (s *Store) ListRuns(ctx context.Context, f model.StatsFilter) ([]model.RunResult, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.Disks > 0 {
		clauses = append(clauses, "disks = ?")
		args = append(args, f.Disks)
	}
	if f.Pegs > 0 {
		clauses = append(clauses, "pegs = ?")
		args = append(args, f.Pegs)
	}
	if f.Variant != nil {
		clauses = append(clauses, "variant = ?")
		args = append(args, f.Variant.String())
	}
	if f.Since != nil {
		clauses = append(clauses, "completed_at >= ?")
		args = append(args, f.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, completed_at, disks, pegs, start_peg, goal_peg, variant, moves, duration_ms
		FROM runs
		WHERE %s
		ORDER BY completed_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunResult
	for rows.Next() {
		res, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if f.Last > 0 && len(runs) > f.Last {
		runs = runs[len(runs)-f.Last:]
	}
	return runs, nil
}

// GetRun loads one run with its full move log.
func (s *Store) GetRun(ctx context.Context, id string) (model.RunResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, completed_at, disks, pegs, start_peg, goal_peg, variant, moves, duration_ms
		 FROM runs WHERE id = ?`, id)
	res, err := scanRun(row)
	if err != nil {
		return model.RunResult{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT from_peg, to_peg, at_ms FROM run_moves WHERE run_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return model.RunResult{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var tm model.TimedMove
		var atMs int64
		if err := rows.Scan(&tm.From, &tm.To, &atMs); err != nil {
			return model.RunResult{}, err
		}
		tm.At = time.Duration(atMs) * time.Millisecond
		res.Log = append(res.Log, tm)
	}
	if err := rows.Err(); err != nil {
		return model.RunResult{}, err
	}
	return res, nil
}

// LastRun returns the most recently completed run matching the
// filter, with its move log.
func (s *Store) LastRun(ctx context.Context, f model.StatsFilter) (model.RunResult, error) {
	f.Last = 1
	runs, err := s.ListRuns(ctx, f)
	if err != nil {
		return model.RunResult{}, err
	}
	if len(runs) == 0 {
		return model.RunResult{}, sql.ErrNoRows
	}
	return s.GetRun(ctx, runs[0].ID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.RunResult, error) {
	var res model.RunResult
	var completedAt, variant string
	var durationMs int64
	if err := row.Scan(&res.ID, &completedAt, &res.Config.Disks, &res.Config.Pegs,
		&res.Config.StartPeg, &res.Config.GoalPeg, &variant, &res.Moves, &durationMs); err != nil {
		return model.RunResult{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, completedAt)
	if err != nil {
		return model.RunResult{}, err
	}
	res.CompletedAt = parsed
	v, err := model.ParseVariant(variant)
	if err != nil {
		return model.RunResult{}, err
	}
	res.Config.Variant = v
	res.Duration = time.Duration(durationMs) * time.Millisecond
	return res, nil
}
