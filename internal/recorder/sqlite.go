package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"TickerLens/internal/series"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		logger: log.With().Str("component", "recorder").Logger(),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			ticker       TEXT NOT NULL,
			bar_interval TEXT NOT NULL,
			first_ts     INTEGER,
			last_ts      INTEGER,
			row_count    INTEGER,
			column_count INTEGER,
			note         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ticker_ts ON analysis_runs(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS series_values (
			run_id      INTEGER NOT NULL REFERENCES analysis_runs(id),
			ts          INTEGER NOT NULL,
			column_name TEXT NOT NULL,
			value       REAL,
			PRIMARY KEY (run_id, column_name, ts)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(run *RunRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`INSERT INTO analysis_runs
		(timestamp, ticker, bar_interval, first_ts, last_ts, row_count, column_count, note)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), run.Ticker, string(run.Interval),
		run.Start.Unix(), run.End.Unix(), run.Rows, run.Columns, run.Note,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// RecordSeries stores every cell of view in one transaction. Undefined cells become NULL
// and +Inf is stored as is.
func (r *SQLiteRecorder) RecordSeries(runID int64, view series.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO series_values (run_id, ts, column_name, value) VALUES (?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, name := range view.Names() {
		col, _ := view.Column(name)
		for i, cell := range col {
			// null.Float is a driver.Valuer, invalid cells are written as NULL
			if _, err := stmt.Exec(runID, view.Time(i).Unix(), name, cell); err != nil {
				return fmt.Errorf("insert %s[%d]: %w", name, i, err)
			}
			n++
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug().Int64("run_id", runID).Int("cells", n).Msg("series recorded")
	return nil
}

// LatestRunID returns the newest run recorded for ticker, or 0 if there is none.
func (r *SQLiteRecorder) LatestRunID(ticker string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id int64
	err := r.db.QueryRow(`SELECT id FROM analysis_runs WHERE ticker = ? ORDER BY id DESC LIMIT 1`, ticker).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return id, err
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
