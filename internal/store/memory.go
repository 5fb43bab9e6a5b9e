package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zenwell/zenchat/backend/internal/model/profile"
)

// Memory is an in-memory Store suitable for tests and for running
// without a database file.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]SessionRecord
	messages map[string][]MessageRecord
	profiles map[string]profile.Profile
	contacts []ContactRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[string]SessionRecord),
		messages: make(map[string][]MessageRecord),
		profiles: make(map[string]profile.Profile),
	}
}

func (s *Memory) CreateSession(_ context.Context, userID, title string) (SessionRecord, error) {
	record := SessionRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[record.ID] = record
	s.messages[record.ID] = make([]MessageRecord, 0, 16)
	s.mu.Unlock()

	return record, nil
}

func (s *Memory) LatestSession(_ context.Context, userID string) (SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest SessionRecord
	found := false
	for _, record := range s.sessions {
		if record.UserID != userID {
			continue
		}
		if !found || record.CreatedAt.After(latest.CreatedAt) {
			latest = record
			found = true
		}
	}
	if !found {
		return SessionRecord{}, ErrSessionNotFound
	}
	return latest, nil
}

func (s *Memory) Messages(_ context.Context, sessionID string) ([]MessageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]MessageRecord, len(messages))
	copy(copied, messages)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].CreatedAt.Before(copied[j].CreatedAt)
	})
	return copied, nil
}

func (s *Memory) SaveMessage(_ context.Context, m MessageRecord) error {
	if m.SessionID == "" {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[m.SessionID]; !ok {
		return ErrSessionNotFound
	}

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	s.messages[m.SessionID] = append(s.messages[m.SessionID], m)
	return nil
}

func (s *Memory) Profile(_ context.Context, userID string) (profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return profile.Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (s *Memory) RecordEmotions(_ context.Context, userID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		p = profile.Profile{UserID: userID}
	}
	p.AppendEmotions(tags)
	p.LastActivity = time.Now().UTC()
	s.profiles[userID] = p
	return nil
}

func (s *Memory) SaveContact(_ context.Context, c ContactRecord) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.contacts = append(s.contacts, c)
	s.mu.Unlock()
	return nil
}

func (s *Memory) Close() error { return nil }
