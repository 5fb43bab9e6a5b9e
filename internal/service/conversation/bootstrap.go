package conversation

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zenwell/zenchat/backend/internal/model/chat"
	"github.com/zenwell/zenchat/backend/internal/store"
)

// sessionTitle names persisted session records.
const sessionTitle = "Wellness Chat"

// Bootstrap launches the one-shot asynchronous upgrade from the local
// session to an authenticated, persisted one. The local session created
// at construction stays authoritative unless the upgrade lands; no
// failure here ever reaches the user.
//
// The upgrade must outlive the mount request: the HTTP context is
// canceled as soon as the open response is written, so the goroutine
// keeps the caller's values but not its cancelation.
func (c *Controller) Bootstrap(ctx context.Context) {
	c.upgradeOnce.Do(func() {
		go c.upgrade(context.WithoutCancel(ctx))
	})
}

// upgrade resolves identity, finds or creates a persisted session, and
// atomically swaps in the server-issued identifiers. The session is
// never downgraded and the attempt is never retried.
func (c *Controller) upgrade(ctx context.Context) {
	if c.deps.Auth == nil || c.deps.Store == nil {
		return
	}

	identity, ok := c.deps.Auth.CurrentUser(ctx)
	if !ok {
		log.Printf("[bootstrap] no authenticated identity, conversation=%s stays local", c.id)
		return
	}

	record, err := c.deps.Store.LatestSession(ctx, identity.UserID)
	if err != nil {
		if err != store.ErrSessionNotFound {
			log.Printf("[bootstrap] session lookup failed: %v", err)
			return
		}
		record, err = c.deps.Store.CreateSession(ctx, identity.UserID, sessionTitle)
		if err != nil {
			log.Printf("[bootstrap] session creation failed: %v", err)
			return
		}
	}

	c.mu.Lock()
	c.session = chat.Session{
		SessionID: record.ID,
		UserID:    record.UserID,
		Persisted: true,
		CreatedAt: record.CreatedAt,
	}
	// Replaying history would discard turns the user already authored
	// while the upgrade was in flight; in that case the local log wins.
	replay := c.userTurns == 0
	c.mu.Unlock()

	log.Printf("[bootstrap] conversation=%s upgraded to persisted session=%s", c.id, record.ID)

	if replay {
		c.loadHistory(ctx, record.ID)
	}
}

// welcomeBackTurn is the fallback when a persisted session has no
// replayable history: a session never renders with zero turns.
func welcomeBackTurn() chat.Turn {
	return chat.Turn{
		ID:          uuid.NewString(),
		Text:        welcomeBackText,
		Speaker:     chat.SpeakerAssistant,
		CreatedAt:   time.Now().UTC(),
		Suggestions: welcomeCards(),
	}
}
