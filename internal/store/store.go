// Package store is the persistence collaborator for sessions, messages,
// profiles and mentor contact requests. Persistence is best-effort
// throughout the companion: callers degrade to local-only behavior when
// a store operation fails.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/zenwell/zenchat/backend/internal/model/chat"
	"github.com/zenwell/zenchat/backend/internal/model/profile"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// SessionRecord is a durably stored session row.
type SessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageRecord is a durably stored chat turn.
type MessageRecord struct {
	ID          string                `json:"id"`
	SessionID   string                `json:"sessionId"`
	UserID      string                `json:"userId"`
	Content     string                `json:"content"`
	Role        string                `json:"role"`
	Suggestions []chat.SuggestionCard `json:"suggestions,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// ContactRecord is a stored mentor contact request.
type ContactRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store exposes the operations the companion consumes.
type Store interface {
	// CreateSession provisions a persisted session for the user.
	CreateSession(ctx context.Context, userID, title string) (SessionRecord, error)

	// LatestSession returns the most recently created session for the
	// user, or ErrSessionNotFound.
	LatestSession(ctx context.Context, userID string) (SessionRecord, error)

	// Messages returns all turns under the session ordered by creation
	// time ascending.
	Messages(ctx context.Context, sessionID string) ([]MessageRecord, error)

	// SaveMessage appends a turn to the session history.
	SaveMessage(ctx context.Context, m MessageRecord) error

	// Profile returns the user's profile, or ErrProfileNotFound.
	Profile(ctx context.Context, userID string) (profile.Profile, error)

	// RecordEmotions rolls newly detected emotion tags into the user's
	// profile, bounded by profile.MaxPastEmotions.
	RecordEmotions(ctx context.Context, userID string, tags []string) error

	// SaveContact stores a mentor contact request.
	SaveContact(ctx context.Context, c ContactRecord) error

	// Close releases underlying resources.
	Close() error
}
