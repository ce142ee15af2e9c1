package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/npetros/argosales/internal/domain"
)

// SQLiteArchive implements Archive using SQLite.
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed archive.
func NewSQLite(dbPath string) (*SQLiteArchive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	a := &SQLiteArchive{db: db}
	if err := a.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return a, nil
}

func (a *SQLiteArchive) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS conversation_turns (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON conversation_turns(session_id, created_at);
	`
	if _, err := a.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (a *SQLiteArchive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close closes the database connection.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

// AppendTurn records one transcript turn. Concurrent sessions share one
// database file, so a busy write is retried once before surfacing.
func (a *SQLiteArchive) AppendTurn(ctx context.Context, sessionID string, turn domain.Turn) error {
	query := `
	INSERT INTO conversation_turns (id, session_id, role, body, created_at)
	VALUES (?, ?, ?, ?, ?)`

	args := []interface{}{
		uuid.NewString(), sessionID, string(turn.Role), turn.Text, turn.At.Unix(),
	}

	_, err := a.db.ExecContext(ctx, query, args...)
	if isSQLiteConflict(err) {
		slog.Warn("archive write hit a busy database, retrying", "session_id", sessionID)
		_, err = a.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// ListTurns returns all recorded turns for a session in append order.
func (a *SQLiteArchive) ListTurns(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	query := `
		SELECT role, body, created_at
		FROM conversation_turns
		WHERE session_id = ?
		ORDER BY created_at, rowid`

	rows, err := a.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close turn rows", "error", closeErr)
		}
	}()

	var turns []domain.Turn
	for rows.Next() {
		var role, body string
		var createdAt int64
		if err := rows.Scan(&role, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turns = append(turns, domain.Turn{
			Role: domain.Role(role),
			Text: body,
			At:   time.Unix(createdAt, 0),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}
	return turns, nil
}

// isSQLiteConflict reports whether err is a SQLITE_BUSY or "database is
// locked" concurrency error worth a retry.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
