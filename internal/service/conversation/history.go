package conversation

import (
	"context"
	"log"

	"github.com/zenwell/zenchat/backend/internal/model/chat"
)

// loadHistory replays the persisted session's turns into the in-memory
// log. Loading is best-effort: an empty or failed query degrades to the
// canned welcome-back turn, and the conversation is initialized either
// way.
func (c *Controller) loadHistory(ctx context.Context, sessionID string) {
	replay := []chat.Turn{welcomeBackTurn()}

	records, err := c.deps.Store.Messages(ctx, sessionID)
	if err != nil {
		log.Printf("[history] load failed for session=%s: %v", sessionID, err)
	} else if len(records) > 0 {
		replay = make([]chat.Turn, 0, len(records))
		for _, record := range records {
			replay = append(replay, chat.Turn{
				ID:          record.ID,
				Text:        record.Content,
				Speaker:     chat.Speaker(record.Role),
				CreatedAt:   record.CreatedAt,
				Suggestions: record.Suggestions,
			})
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check under the lock: a user turn may have landed between the
	// upgrade's guard and now. The local log wins that race.
	if c.userTurns > 0 {
		return
	}
	c.turns = replay
}
