// Package audit persists a journal of executed privileged actions to DuckDB.
// The journal is strictly write-behind: a failed insert is logged and dropped,
// never surfaced to the interactive loop.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver
)

const schema = `
CREATE TABLE IF NOT EXISTS action_log (
    id        UUID PRIMARY KEY,
    at        TIMESTAMP NOT NULL,
    action    VARCHAR NOT NULL,
    target    VARCHAR NOT NULL,
    outcome   VARCHAR NOT NULL
)`

// Entry is one recorded action.
type Entry struct {
	ID      string
	At      time.Time
	Action  string
	Target  string
	Outcome string // "ok" or the error text
}

// Journal is the DuckDB-backed action log.
type Journal struct {
	db      *sql.DB
	timeout time.Duration
	clock   func() time.Time
}

// Option configures the journal.
type Option func(*Journal)

// WithTimeout bounds each insert and query.
func WithTimeout(d time.Duration) Option {
	return func(j *Journal) {
		j.timeout = d
	}
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(j *Journal) {
		j.clock = clock
	}
}

// Open creates or opens the journal at dsn. An empty dsn keeps the journal
// in memory, which is what the tests and the no-persistence mode use.
func Open(dsn string, opts ...Option) (*Journal, error) {
	j := &Journal{
		timeout: 5 * time.Second,
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(j)
		}
	}

	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// DuckDB is embedded; serial access is safer for writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create action_log: %w", err)
	}

	j.db = db
	return j, nil
}

// Record appends one action outcome. Insert failures are logged, not
// returned: the journal must never disturb the action path.
func (j *Journal) Record(ctx context.Context, action, target string, actionErr error) {
	outcome := "ok"
	if actionErr != nil {
		outcome = actionErr.Error()
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO action_log (id, at, action, target, outcome) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), j.clock().UTC(), action, target, outcome)
	if err != nil {
		log.Printf("audit: failed to record %s %s: %v", action, target, err)
	}
}

// Recent returns the latest entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, at, action, target, outcome FROM action_log ORDER BY at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query action_log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.At, &e.Action, &e.Target, &e.Outcome); err != nil {
			return nil, fmt.Errorf("failed to scan action_log row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
