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

	"github.com/oklog/ulid/v2"
	"github.com/svaldes/parlante/internal/domain"
	_ "modernc.org/sqlite"
)

// keyPrefix namespaces conversation logs: the full key for a speaker is
// keyPrefix + normalized identifier, and enumeration is by this prefix.
const keyPrefix = "speaker_"

// SQLiteStore implements History using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed history store.
func NewSQLite(dbPath string) (History, error) {
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

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id TEXT NOT NULL UNIQUE,
		speaker_key TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_speaker ON messages(speaker_key, seq);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// speakerKey derives the storage key for a speaker identifier.
func speakerKey(speakerID string) string {
	return keyPrefix + domain.NormalizeSpeaker(speakerID)
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w: %v", ErrUnavailable, err)
	}
	return nil
}

// AppendTurn appends messages to the tail of the speaker's log inside one
// transaction, so the user/assistant pair of a turn lands in order even when
// another session writes to the same speaker concurrently.
func (s *SQLiteStore) AppendTurn(ctx context.Context, speakerID string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w: %v", ErrUnavailable, err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			slog.Warn("failed to roll back append transaction", "error", rbErr)
		}
	}()

	key := speakerKey(speakerID)
	query := `INSERT INTO messages (message_id, speaker_key, role, content, created_at) VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	for _, msg := range msgs {
		if _, err := tx.ExecContext(ctx, query, ulid.Make().String(), key, string(msg.Role), msg.Content, now.Unix()); err != nil {
			return fmt.Errorf("insert message: %w: %v", ErrUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w: %v", ErrUnavailable, err)
	}
	return nil
}

// ReadAll returns the speaker's ordered log, oldest first.
func (s *SQLiteStore) ReadAll(ctx context.Context, speakerID string) ([]domain.Message, error) {
	query := `
		SELECT message_id, role, content, created_at
		FROM messages WHERE speaker_key = ? ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, speakerKey(speakerID))
	if err != nil {
		return nil, fmt.Errorf("query messages: %w: %v", ErrUnavailable, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close message rows", "error", closeErr)
		}
	}()

	msgs := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		var role string
		var createdAt int64

		if err := rows.Scan(&msg.ID, &role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}

		msg.Role = domain.Role(role)
		msg.CreatedAt = time.Unix(createdAt, 0)
		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w: %v", ErrUnavailable, err)
	}

	return msgs, nil
}

// ListSpeakers enumerates storage keys by prefix and strips the prefix back
// off. Only speakers with at least one stored message appear.
func (s *SQLiteStore) ListSpeakers(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT speaker_key FROM messages WHERE speaker_key LIKE ? ORDER BY speaker_key`

	rows, err := s.db.QueryContext(ctx, query, keyPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("query speakers: %w: %v", ErrUnavailable, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close speaker rows", "error", closeErr)
		}
	}()

	var speakers []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan speaker row: %w", err)
		}
		speakers = append(speakers, strings.TrimPrefix(key, keyPrefix))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate speakers: %w: %v", ErrUnavailable, err)
	}

	return speakers, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
