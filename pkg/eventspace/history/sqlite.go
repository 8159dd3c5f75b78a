package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists the event journal to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite journal store.
// The path should be a file path (e.g., "./events.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer at a time; a single pooled connection also
	// keeps ":memory:" databases stable across statements.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			origin TEXT NOT NULL,
			receive_time TEXT NOT NULL,
			delivered INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_type_time
		ON events(event_type, receive_time)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO events (event_id, event_type, origin, receive_time, delivered)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			event_type = excluded.event_type,
			origin = excluded.origin,
			receive_time = excluded.receive_time,
			delivered = excluded.delivered
	`, rec.EventID, rec.EventType, rec.Origin,
		rec.ReceiveTime.UTC().Format(time.RFC3339Nano), rec.Delivered)

	if err != nil {
		return fmt.Errorf("append event record: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(limit int) ([]Record, error) {
	return s.query(`
		SELECT event_id, event_type, origin, receive_time, delivered
		FROM events ORDER BY receive_time DESC
	`, nil, limit)
}

// ListByType implements Store.
func (s *SQLiteStore) ListByType(eventType string, limit int) ([]Record, error) {
	return s.query(`
		SELECT event_id, event_type, origin, receive_time, delivered
		FROM events WHERE event_type = ? ORDER BY receive_time DESC
	`, []any{eventType}, limit)
}

func (s *SQLiteStore) query(q string, args []any, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list event records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var receiveTime string
		if err := rows.Scan(&rec.EventID, &rec.EventType, &rec.Origin, &receiveTime, &rec.Delivered); err != nil {
			return nil, fmt.Errorf("scan event record: %w", err)
		}
		rec.ReceiveTime, _ = time.Parse(time.RFC3339Nano, receiveTime)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event records: %w", err)
	}
	return records, nil
}

// Count implements Store.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count event records: %w", err)
	}
	return count, nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM events WHERE receive_time < ?
	`, before.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("prune event records: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
