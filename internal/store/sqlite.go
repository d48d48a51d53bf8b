package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tokenscope/internal/token"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ Recorder = (*SQLiteRecorder)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ticks (
	id          TEXT    NOT NULL,
	price       REAL    NOT NULL,
	change24h   REAL    NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS ticks_id_time ON ticks (id, recorded_at);
`

// SQLiteRecorder journals every tick as a row in a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (or creates) a SQLite database at dbPath and
// creates the ticks table if needed.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", dbPath, err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes
	// writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ticks table: %w", err)
	}
	return &SQLiteRecorder{db: db}, nil
}

// Record inserts one row.
func (s *SQLiteRecorder) Record(ctx context.Context, u token.Update, t time.Time) error {
	tk := NewTick(u, t)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ticks (id, price, change24h, recorded_at) VALUES (?, ?, ?, ?)`,
		tk.ID, tk.Price, tk.Change24h, tk.RecordedAt)
	if err != nil {
		return fmt.Errorf("inserting tick for %s: %w", u.ID, err)
	}
	return nil
}

// History returns up to limit of the most recent ticks for id, newest first.
func (s *SQLiteRecorder) History(ctx context.Context, id string, limit int) ([]Tick, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, price, change24h, recorded_at FROM ticks
		 WHERE id = ? ORDER BY recorded_at DESC, rowid DESC LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ticks for %s: %w", id, err)
	}
	defer rows.Close()

	var out []Tick
	for rows.Next() {
		var t Tick
		if err := rows.Scan(&t.ID, &t.Price, &t.Change24h, &t.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning tick: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Count returns the number of recorded ticks.
func (s *SQLiteRecorder) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ticks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting ticks: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *SQLiteRecorder) Close() error {
	return s.db.Close()
}
