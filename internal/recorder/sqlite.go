package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"StockScreener/internal/model"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zap.S().Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			run_id      TEXT PRIMARY KEY,
			strategy    TEXT NOT NULL,
			params      TEXT,
			period      TEXT,
			interval    TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			universe    INTEGER,
			evaluated   INTEGER,
			matched     INTEGER,
			skipped     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON scan_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS scan_rows (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES scan_runs(run_id),
			ticker      TEXT NOT NULL,
			matched     INTEGER NOT NULL,
			skipped     INTEGER NOT NULL,
			reason      TEXT,
			close       REAL,
			rsi         REAL,
			sma_fast    REAL,
			sma_mid     REAL,
			sma_slow    REAL,
			volume      REAL,
			volume_ma   REAL,
			conditions  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_run ON scan_rows(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_ticker ON scan_rows(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func nullable(v model.Value) sql.NullFloat64 {
	f, ok := v.Float()
	return sql.NullFloat64{Float64: f, Valid: ok}
}

func (r *SQLiteRecorder) RecordRun(rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	params, err := json.Marshal(rep.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO scan_runs
		(run_id, strategy, params, period, interval, started_at, finished_at,
		 universe, evaluated, matched, skipped)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rep.RunID, rep.Strategy, string(params), rep.Period, rep.Interval,
		rep.StartedAt.UnixMilli(), rep.FinishedAt.UnixMilli(),
		rep.Universe, len(rep.Rows), len(rep.Matches()), len(rep.Skipped),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO scan_rows
		(run_id, ticker, matched, skipped, reason, close, rsi, sma_fast, sma_mid, sma_slow,
		 volume, volume_ma, conditions)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for _, row := range rep.Rows {
		conds, err := json.Marshal(row.Evaluation.Conditions)
		if err != nil {
			return fmt.Errorf("marshal conditions: %w", err)
		}
		s := row.Snapshot
		_, err = stmt.Exec(rep.RunID, row.Ticker, row.Evaluation.Matched, row.Evaluation.Skipped,
			row.Evaluation.Reason, nullable(s.Close), nullable(s.RSI), nullable(s.FastMA),
			nullable(s.MidMA), nullable(s.SlowMA), nullable(s.Volume), nullable(s.VolumeMA), string(conds))
		if err != nil {
			return fmt.Errorf("insert row %s: %w", row.Ticker, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT run_id, strategy, period, interval, started_at, finished_at,
		universe, evaluated, skipped
		FROM scan_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var started, finished int64
		if err := rows.Scan(&s.RunID, &s.Strategy, &s.Period, &s.Interval, &started, &finished,
			&s.Universe, &s.Evaluated, &s.Skipped); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.UnixMilli(started).UTC()
		s.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		matches, err := r.matches(out[i].RunID)
		if err != nil {
			return nil, err
		}
		out[i].Matches = matches
	}
	return out, nil
}

func (r *SQLiteRecorder) matches(runID string) ([]string, error) {
	rows, err := r.db.Query(`SELECT ticker FROM scan_rows WHERE run_id = ? AND matched = 1 ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	zap.S().Info("closing sqlite recorder")
	return r.db.Close()
}
