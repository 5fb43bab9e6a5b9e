package chat

import "time"

// Session captures a conversation's identity pair. A session starts
// local-only and may be upgraded exactly once to a persisted session
// with server-issued identifiers; it is never downgraded.
type Session struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	Persisted bool      `json:"persisted"`
	CreatedAt time.Time `json:"createdAt"`
}
