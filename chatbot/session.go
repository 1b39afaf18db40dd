package chatbot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SessionStore owns the durable conversation identity and the cached
// transcript. The two are always persisted and cleared together so a reload
// never replays a history against a mismatched session.
type SessionStore interface {
	// GetOrCreateSessionID returns the stored identifier, generating and
	// persisting a fresh one on first use.
	GetOrCreateSessionID() (string, error)
	// LoadTranscript returns the cached message list, possibly empty.
	LoadTranscript() ([]Message, error)
	// SaveTranscript replaces the cached message list. Saving an empty list
	// is a no-op so an initial render cannot erase a real history.
	SaveTranscript(msgs []Message) error
	// Clear removes the identifier and the transcript atomically.
	Clear() error
}

// SQLiteStore persists chat state in a local sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

const sessionSchema = `
CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	session_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS transcript (
	idx INTEGER PRIMARY KEY,
	message TEXT NOT NULL
);`

// NewSQLiteStore opens (creating if needed) the chat state database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create state dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open state database: %w", err)
	}

	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create state schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetOrCreateSessionID implements SessionStore.
func (s *SQLiteStore) GetOrCreateSessionID() (string, error) {
	var id string
	err := s.db.QueryRow("SELECT session_id FROM session WHERE id = 1;").Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		id = uuid.NewString()
		if _, err := s.db.Exec("INSERT INTO session(id, session_id) VALUES(1, ?);", id); err != nil {
			return "", fmt.Errorf("could not persist session id: %w", err)
		}
		return id, nil
	case err != nil:
		return "", fmt.Errorf("could not read session id: %w", err)
	}

	return id, nil
}

// LoadTranscript implements SessionStore.
func (s *SQLiteStore) LoadTranscript() ([]Message, error) {
	rows, err := s.db.Query("SELECT message FROM transcript ORDER BY idx;")
	if err != nil {
		return nil, fmt.Errorf("could not query transcript: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("could not scan transcript row: %w", err)
		}
		var m Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("could not decode transcript row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not scan transcript rows: %w", err)
	}

	return msgs, nil
}

// SaveTranscript implements SessionStore.
func (s *SQLiteStore) SaveTranscript(msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transcript save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM transcript;"); err != nil {
		return fmt.Errorf("could not clear transcript: %w", err)
	}

	for i, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("could not encode message %d: %w", i, err)
		}
		if _, err := tx.Exec("INSERT INTO transcript(idx, message) VALUES(?, ?);", i, string(raw)); err != nil {
			return fmt.Errorf("could not insert message %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Clear implements SessionStore. The identifier and transcript are removed in
// one transaction.
func (s *SQLiteStore) Clear() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin clear: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM session;"); err != nil {
		return fmt.Errorf("could not clear session id: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM transcript;"); err != nil {
		return fmt.Errorf("could not clear transcript: %w", err)
	}

	return tx.Commit()
}

// MemorySessionStore is an in-memory SessionStore for tests and one-off runs.
type MemorySessionStore struct {
	mu        sync.Mutex
	sessionID string
	messages  []Message
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// GetOrCreateSessionID implements SessionStore.
func (s *MemorySessionStore) GetOrCreateSessionID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID == "" {
		s.sessionID = uuid.NewString()
	}
	return s.sessionID, nil
}

// LoadTranscript implements SessionStore.
func (s *MemorySessionStore) LoadTranscript() ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return msgs, nil
}

// SaveTranscript implements SessionStore.
func (s *MemorySessionStore) SaveTranscript(msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = make([]Message, len(msgs))
	copy(s.messages, msgs)
	return nil
}

// Clear implements SessionStore.
func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = ""
	s.messages = nil
	return nil
}
