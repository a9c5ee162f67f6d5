package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kyky30/Projet-SIR/internal/model"

	_ "modernc.org/sqlite"
)

const createPresetsTable = `
CREATE TABLE IF NOT EXISTS presets (
    name       TEXT PRIMARY KEY,
    params     TEXT NOT NULL,
    updated_at DATETIME NOT NULL
)`

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    status      TEXT NOT NULL,
    engine      TEXT NOT NULL,
    preset      TEXT NOT NULL DEFAULT '',
    seed        INTEGER NOT NULL,
    params      TEXT NOT NULL,
    elapsed     INTEGER NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL,
    started_at  DATETIME,
    finished_at DATETIME
)`

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS snapshots (
    run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    day       INTEGER NOT NULL,
    healthy   REAL NOT NULL,
    exposed   REAL NOT NULL,
    infected  REAL NOT NULL,
    recovered REAL NOT NULL,
    dead      REAL NOT NULL,
    PRIMARY KEY (run_id, day)
)`

const runColumns = `id, status, engine, preset, seed, params, elapsed, error,
	created_at, started_at, finished_at`

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	for _, stmt := range []struct {
		name string
		sql  string
	}{
		{"presets", createPresetsTable},
		{"runs", createRunsTable},
		{"snapshots", createSnapshotsTable},
	} {
		if _, err := db.Exec(stmt.sql); err != nil {
			db.Close()
			return nil, fmt.Errorf("create %s table: %w", stmt.name, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SavePreset inserts or replaces a preset.
func (s *SQLiteStore) SavePreset(ctx context.Context, name string, p model.Params) error {
	if err := ValidatePresetName(name); err != nil {
		return err
	}
	data, err := json.Marshal(p.ToMap())
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO presets (name, params, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET params = excluded.params, updated_at = excluded.updated_at`,
		name, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	return nil
}

// GetPreset loads a preset by name.
func (s *SQLiteStore) GetPreset(ctx context.Context, name string) (model.Params, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT params FROM presets WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Params{}, ErrNotFound
	}
	if err != nil {
		return model.Params{}, fmt.Errorf("get preset: %w", err)
	}

	var m map[string]float64
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return model.Params{}, fmt.Errorf("decode preset %q: %w", name, err)
	}
	return model.ParamsFromMap(m)
}

// ListPresets returns all preset names sorted ascending.
func (s *SQLiteStore) ListPresets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM presets ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presets: %w", err)
	}
	return names, nil
}

// DeletePreset removes a preset.
func (s *SQLiteStore) DeletePreset(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM presets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	return requireRow(result)
}

// CreateRun inserts a new run record.
func (s *SQLiteStore) CreateRun(ctx context.Context, r *model.Run) error {
	params, err := json.Marshal(r.Params.ToMap())
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Status, r.Engine, r.Preset, r.Seed, string(params), r.Elapsed, r.Error,
		r.CreatedAt, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	r := &model.Run{}
	var params string
	if err := row.Scan(
		&r.ID, &r.Status, &r.Engine, &r.Preset, &r.Seed, &params, &r.Elapsed, &r.Error,
		&r.CreatedAt, &r.StartedAt, &r.FinishedAt,
	); err != nil {
		return nil, err
	}

	var m map[string]float64
	if err := json.Unmarshal([]byte(params), &m); err != nil {
		return nil, fmt.Errorf("decode params of run %s: %w", r.ID, err)
	}
	p, err := model.ParamsFromMap(m)
	if err != nil {
		return nil, fmt.Errorf("decode params of run %s: %w", r.ID, err)
	}
	r.Params = p
	return r, nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns a page of runs ordered by created_at DESC, along with the
// total count of all runs.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*model.Run, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, total, nil
}

// UpdateRunStatus validates and applies a status transition. Moving to
// running sets started_at; terminal statuses set finished_at.
func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, id, status, errMsg string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT status FROM runs WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get run status: %w", err)
	}

	if !model.ValidTransition(current, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}

	now := time.Now().UTC()
	switch {
	case status == model.StatusRunning:
		_, err = tx.ExecContext(ctx,
			"UPDATE runs SET status = ?, started_at = ? WHERE id = ?",
			status, now, id,
		)
	case model.IsTerminal(status):
		_, err = tx.ExecContext(ctx,
			"UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?",
			status, errMsg, now, id,
		)
	default:
		_, err = tx.ExecContext(ctx, "UPDATE runs SET status = ? WHERE id = ?", status, id)
	}
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AppendSnapshots stores a batch of snapshots and the run's elapsed day
// count in one transaction.
func (s *SQLiteStore) AppendSnapshots(ctx context.Context, runID string, elapsed int, snaps []model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "UPDATE runs SET elapsed = ? WHERE id = ?", elapsed, runID)
	if err != nil {
		return fmt.Errorf("update elapsed: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshots (run_id, day, healthy, exposed, infected, recovered, dead)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, snap := range snaps {
		if _, err := stmt.ExecContext(ctx, runID, snap.Day,
			snap.Healthy, snap.Exposed, snap.Infected, snap.Recovered, snap.Dead,
		); err != nil {
			return fmt.Errorf("insert snapshot day %d: %w", snap.Day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetSnapshots returns every stored snapshot of a run ordered by day.
// It returns ErrNotFound when the run does not exist.
func (s *SQLiteStore) GetSnapshots(ctx context.Context, runID string) ([]model.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM runs WHERE id = ?", runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check run: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT day, healthy, exposed, infected, recovered, dead
		FROM snapshots WHERE run_id = ? ORDER BY day ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("get snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []model.Snapshot{}
	for rows.Next() {
		var snap model.Snapshot
		if err := rows.Scan(&snap.Day, &snap.Healthy, &snap.Exposed, &snap.Infected, &snap.Recovered, &snap.Dead); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}

// GetRunStats aggregates run counts by status and engine, and the average
// number of simulated days over all runs.
func (s *SQLiteStore) GetRunStats(ctx context.Context) (*RunStats, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	stats := &RunStats{
		CountByStatus: make(map[string]int),
		CountByEngine: make(map[string]int),
	}

	var avg sql.NullFloat64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*), AVG(elapsed) FROM runs").Scan(&stats.Total, &avg); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	if avg.Valid {
		stats.AvgElapsedDays = avg.Float64
	}

	if err := groupCount(ctx, tx, "status", stats.CountByStatus); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, tx, "engine", stats.CountByEngine); err != nil {
		return nil, err
	}
	return stats, nil
}

// groupCount fills dst with run counts grouped by column, which must be a
// trusted column name.
func groupCount(ctx context.Context, tx *sql.Tx, column string, dst map[string]int) error {
	rows, err := tx.QueryContext(ctx, "SELECT "+column+", COUNT(*) FROM runs GROUP BY "+column)
	if err != nil {
		return fmt.Errorf("count runs by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		dst[key] = n
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s counts: %w", column, err)
	}
	return nil
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
