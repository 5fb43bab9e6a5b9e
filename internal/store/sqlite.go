package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/zenwell/zenchat/backend/internal/model/chat"
	"github.com/zenwell/zenchat/backend/internal/model/profile"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, created_at);

CREATE TABLE IF NOT EXISTS chat_messages (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	content     TEXT NOT NULL,
	role        TEXT NOT NULL,
	suggestions TEXT NOT NULL DEFAULT '[]',
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON chat_messages(session_id, created_at);

CREATE TABLE IF NOT EXISTS profiles (
	user_id       TEXT PRIMARY KEY,
	past_emotions TEXT NOT NULL DEFAULT '[]',
	last_activity TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS mentor_contacts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`

// SQLite is a Store backed by a local SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite tolerates a single writer; the companion's write volume is
	// one row per finalized turn, so a single connection is enough.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) CreateSession(ctx context.Context, userID, title string) (SessionRecord, error) {
	record := SessionRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, title, created_at) VALUES (?, ?, ?, ?)`,
		record.ID, record.UserID, record.Title, record.CreatedAt)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("insert session: %w", err)
	}
	return record, nil
}

func (s *SQLite) LatestSession(ctx context.Context, userID string) (SessionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at FROM sessions
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID)

	var record SessionRecord
	if err := row.Scan(&record.ID, &record.UserID, &record.Title, &record.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return SessionRecord{}, ErrSessionNotFound
		}
		return SessionRecord{}, fmt.Errorf("query latest session: %w", err)
	}
	return record, nil
}

func (s *SQLite) Messages(ctx context.Context, sessionID string) ([]MessageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, user_id, content, role, suggestions, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []MessageRecord
	for rows.Next() {
		var (
			m       MessageRecord
			rawJSON string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.UserID, &m.Content, &m.Role, &rawJSON, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if rawJSON != "" && rawJSON != "[]" {
			var cards []chat.SuggestionCard
			if err := json.Unmarshal([]byte(rawJSON), &cards); err == nil {
				m.Suggestions = cards
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLite) SaveMessage(ctx context.Context, m MessageRecord) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	suggestions := "[]"
	if len(m.Suggestions) > 0 {
		raw, err := json.Marshal(m.Suggestions)
		if err != nil {
			return fmt.Errorf("marshal suggestions: %w", err)
		}
		suggestions = string(raw)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, session_id, user_id, content, role, suggestions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, m.UserID, m.Content, m.Role, suggestions, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *SQLite) Profile(ctx context.Context, userID string) (profile.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, past_emotions, last_activity FROM profiles WHERE user_id = ?`, userID)

	var (
		p       profile.Profile
		rawJSON string
	)
	if err := row.Scan(&p.UserID, &rawJSON, &p.LastActivity); err != nil {
		if err == sql.ErrNoRows {
			return profile.Profile{}, ErrProfileNotFound
		}
		return profile.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	if err := json.Unmarshal([]byte(rawJSON), &p.PastEmotions); err != nil {
		p.PastEmotions = nil
	}
	return p, nil
}

func (s *SQLite) RecordEmotions(ctx context.Context, userID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	p, err := s.Profile(ctx, userID)
	if err != nil && err != ErrProfileNotFound {
		return err
	}
	p.UserID = userID
	p.AppendEmotions(tags)
	p.LastActivity = time.Now().UTC()

	raw, err := json.Marshal(p.PastEmotions)
	if err != nil {
		return fmt.Errorf("marshal emotions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, past_emotions, last_activity) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET past_emotions = excluded.past_emotions,
		 last_activity = excluded.last_activity`,
		p.UserID, string(raw), p.LastActivity)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *SQLite) SaveContact(ctx context.Context, c ContactRecord) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mentor_contacts (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Message, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
