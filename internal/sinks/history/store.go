package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// fixed width so text ordering matches time ordering
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var (
	// ErrSchemaMismatch indicates the database was created by a different version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("history session not found")
)

// Entry kinds.
const (
	KindLog      = "log"
	KindProgress = "progress"
)

// Session is one Initialize cycle of a logger.
type Session struct {
	ID        string
	Logger    string
	Context   string
	StartedAt time.Time
	EndedAt   time.Time // zero while the session is open
	Entries   int
}

// Entry is one recorded log call or sampled progress transition.
type Entry struct {
	ID        int64
	SessionID string
	Timestamp time.Time
	Kind      string
	Subject   string
	Message   string
	Percent   *float64
}

// Store persists sessions and entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	ctx = ensureContext(ctx)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginSession records the start of a session.
func (s *Store) BeginSession(ctx context.Context, session Session) error {
	if strings.TrimSpace(session.ID) == "" {
		return errors.New("begin session: id is required")
	}
	return s.execWithRetry(ctx,
		`INSERT INTO sessions (id, logger, context, started_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET logger = excluded.logger, context = excluded.context`,
		session.ID, session.Logger, session.Context, formatTime(session.StartedAt))
}

// Append stores one entry.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	var percent sql.NullFloat64
	if entry.Percent != nil {
		percent = sql.NullFloat64{Float64: *entry.Percent, Valid: true}
	}
	return s.execWithRetry(ctx,
		`INSERT INTO entries (session_id, ts, kind, subject, message, percent) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.SessionID, formatTime(entry.Timestamp), entry.Kind, entry.Subject, entry.Message, percent)
}

// EndSession marks a session finished.
func (s *Store) EndSession(ctx context.Context, id string, at time.Time) error {
	ctx = ensureContext(ctx)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, `UPDATE sessions SET ended_at = ? WHERE id = ?`, formatTime(at), id)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Sessions lists the most recent sessions first. limit <= 0 returns all.
func (s *Store) Sessions(ctx context.Context, limit int) ([]Session, error) {
	ctx = ensureContext(ctx)
	query := `SELECT s.id, s.logger, s.context, s.started_at, s.ended_at,
		(SELECT COUNT(1) FROM entries e WHERE e.session_id = s.id)
		FROM sessions s ORDER BY s.started_at DESC, s.rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			session Session
			started string
			ended   sql.NullString
		)
		if err := rows.Scan(&session.ID, &session.Logger, &session.Context, &started, &ended, &session.Entries); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.StartedAt = parseTime(started)
		if ended.Valid {
			session.EndedAt = parseTime(ended.String)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Entries returns a session's entries in recording order. limit <= 0 returns
// all; otherwise the most recent limit entries are returned.
func (s *Store) Entries(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	ctx = ensureContext(ctx)
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sessions WHERE id = ?`, sessionID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	query := `SELECT id, session_id, ts, kind, subject, message, percent FROM entries WHERE session_id = ? ORDER BY id DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			ts      string
			percent sql.NullFloat64
		)
		if err := rows.Scan(&entry.ID, &entry.SessionID, &ts, &entry.Kind, &entry.Subject, &entry.Message, &percent); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Timestamp = parseTime(ts)
		if percent.Valid {
			p := percent.Float64
			entry.Percent = &p
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
