package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite driver registration

	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/config"
)

const (
	pingTimeout = 5 * time.Second

	defaultBusyTimeoutMs = 5000

	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// schema is applied on every open. Both tables are append-only and never
// altered, so idempotent CREATE statements replace migration versioning.
const schema = `
CREATE TABLE IF NOT EXISTS switch_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	channel    INTEGER NOT NULL,
	state      INTEGER NOT NULL,
	pin        INTEGER NOT NULL,
	level      TEXT    NOT NULL,
	created_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_switch_events_created_at ON switch_events(created_at);

CREATE TABLE IF NOT EXISTS decode_failures (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	reason     TEXT    NOT NULL,
	payload    TEXT    NOT NULL,
	created_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decode_failures_created_at ON decode_failures(created_at);
`

// SwitchEvent is one applied relay command as recorded in the journal.
type SwitchEvent struct {
	ID        int64
	Channel   int
	On        bool
	Pin       int
	Level     string
	CreatedAt time.Time
}

// Journal records relay activity in a local SQLite file.
type Journal struct {
	db   *sql.DB
	path string
}

// Open creates or opens the journal database and ensures its schema.
//
// Returns ErrDisabled when journaling is turned off in configuration so
// callers can distinguish "off" from "broken".
func Open(cfg config.JournalConfig) (*Journal, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrOpenFailed, dir, err)
	}

	busyTimeoutMs := cfg.BusyTimeout * 1000
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = defaultBusyTimeoutMs
	}

	connString := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", cfg.Path, busyTimeoutMs)
	if cfg.WALMode {
		connString += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	// One connection serialises all writers. The bridge is the only
	// process touching this file and sqlite locks whole databases anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	if err := os.Chmod(cfg.Path, 0o600); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: setting permissions: %v", ErrOpenFailed, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: creating schema: %v", ErrOpenFailed, err)
	}

	return &Journal{db: db, path: cfg.Path}, nil
}

// RecordSwitch appends one applied command to the journal. Both the
// logical state and the physical pin level are stored so the active-low
// inversion can be audited after the fact.
func (j *Journal) RecordSwitch(ctx context.Context, channel int, on bool, pin int, level string) error {
	state := 0
	if on {
		state = 1
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO switch_events (channel, state, pin, level, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		channel, state, pin, level, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: switch event: %v", ErrWriteFailed, err)
	}

	return nil
}

// RecordDecodeFailure appends one rejected payload to the journal. The
// payload is stored hex-encoded, matching how it appears in log output,
// so malformed frames can be inspected later.
func (j *Journal) RecordDecodeFailure(ctx context.Context, reason string, payload []byte) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO decode_failures (reason, payload, created_at)
		 VALUES (?, ?, ?)`,
		reason, fmt.Sprintf("%X", payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: decode failure: %v", ErrWriteFailed, err)
	}

	return nil
}

// RecentSwitches returns the newest switch events, most recent first.
// A limit of zero or less uses the default of 50; limits above 200 are
// capped.
func (j *Journal) RecentSwitches(ctx context.Context, limit int) ([]SwitchEvent, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	// Timestamps have second resolution, so id breaks ties for events
	// recorded within the same second.
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, channel, state, pin, level, created_at
		 FROM switch_events
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying switch events: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var events []SwitchEvent

	for rows.Next() {
		var (
			event     SwitchEvent
			state     int
			createdAt string
		)

		if err := rows.Scan(&event.ID, &event.Channel, &state, &event.Pin, &event.Level, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning switch event: %w", err)
		}

		event.On = state != 0

		timestamp, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, fmt.Errorf("switch event %d: %w", event.ID, err)
		}
		event.CreatedAt = timestamp

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating switch events: %w", err)
	}

	return events, nil
}

// Prune deletes rows older than the supplied age from both tables and
// returns the number of rows removed.
func (j *Journal) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)

	var total int64

	res, err := j.db.ExecContext(ctx, `DELETE FROM switch_events WHERE created_at < ?`, cutoff)
	if err != nil {
		return total, fmt.Errorf("pruning switch events: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	res, err = j.db.ExecContext(ctx, `DELETE FROM decode_failures WHERE created_at < ?`, cutoff)
	if err != nil {
		return total, fmt.Errorf("pruning decode failures: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	return total, nil
}

// HealthCheck verifies the database responds to queries.
func (j *Journal) HealthCheck(ctx context.Context) error {
	var one int
	if err := j.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("journal health check: %w", err)
	}

	return nil
}

// Close closes the underlying database. Safe to call on a nil journal.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}

	return j.db.Close()
}

// Path returns the journal database file location.
func (j *Journal) Path() string {
	return j.path
}

func parseTimestamp(value string) (time.Time, error) {
	timestamp, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
	}

	return timestamp, nil
}
