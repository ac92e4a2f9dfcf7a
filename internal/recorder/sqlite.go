package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists alert and error history to a SQLite database.
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

	// WAL mode so dashboards can read while the monitor writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			alert_id      TEXT,
			symbol        TEXT,
			category      TEXT,
			prev_state    TEXT,
			new_state     TEXT,
			price         REAL,
			delivered     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol)`,

		`CREATE TABLE IF NOT EXISTS cycle_errors (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp          INTEGER NOT NULL,
			symbol             TEXT,
			consecutive_errors INTEGER,
			backoff_seconds    REAL,
			message            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycle_errors_ts ON cycle_errors(timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// RecordAlert writes one structure transition.
func (r *SQLiteRecorder) RecordAlert(row *AlertRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delivered := 0
	if row.Delivered {
		delivered = 1
	}
	_, err := r.db.Exec(
		`INSERT INTO alerts (timestamp, alert_id, symbol, category, prev_state, new_state, price, delivered)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.At.Unix(), row.AlertID, row.Symbol, row.Category,
		row.Previous, row.Current, row.Price, delivered,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// RecordCycleError writes one failed cycle.
func (r *SQLiteRecorder) RecordCycleError(row *CycleErrorRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(
		`INSERT INTO cycle_errors (timestamp, symbol, consecutive_errors, backoff_seconds, message)
		 VALUES (?, ?, ?, ?, ?)`,
		row.At.Unix(), row.Symbol, row.ConsecutiveErrors, row.BackoffSeconds, row.Message,
	)
	if err != nil {
		return fmt.Errorf("insert cycle error: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
