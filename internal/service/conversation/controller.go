// Package conversation orchestrates a chat session: it owns the ordered
// turn log, routes user input through the intercept classifier or the
// streaming responder, and decorates finalized assistant turns with
// suggestions. The log is append-mostly: only the newest assistant turn
// mutates, and only while its stream is still delivering fragments.
package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zenwell/zenchat/backend/internal/auth"
	"github.com/zenwell/zenchat/backend/internal/model/chat"
	"github.com/zenwell/zenchat/backend/internal/rules"
	"github.com/zenwell/zenchat/backend/internal/service/stream"
	"github.com/zenwell/zenchat/backend/internal/store"
	"github.com/zenwell/zenchat/backend/internal/text"
)

var (
	// ErrBusy rejects a send while a response cycle is in flight.
	ErrBusy = errors.New("a response is already in progress")
	// ErrEmptyMessage rejects blank input.
	ErrEmptyMessage = errors.New("message is empty")
)

// Responder produces the assistant side of one exchange, emitting text
// fragments as they become available.
type Responder interface {
	Respond(ctx context.Context, conversationID, message string, emit func(fragment string)) error
}

// IdentityResolver is the auth collaborator surface the bootstrapper
// consumes.
type IdentityResolver interface {
	CurrentUser(ctx context.Context) (auth.Identity, bool)
}

// Event labels a sink notification during a send cycle.
type Event string

const (
	// EventUser reports the appended user turn.
	EventUser Event = "user"
	// EventDelta reports the in-progress assistant turn after a
	// fragment was coalesced into it.
	EventDelta Event = "delta"
	// EventFinal reports the finalized assistant turn.
	EventFinal Event = "message"
)

// Sink observes turn updates during a send cycle. It may be nil.
type Sink func(event Event, turn chat.Turn)

// Deps carries the controller's collaborators. Store and Auth may be
// nil; the controller then stays local-only.
type Deps struct {
	Classifier *rules.Classifier
	Engine     *rules.Engine
	Responder  Responder
	Store      store.Store
	Auth       IdentityResolver
}

// Controller is the top-level orchestrator for one conversation mount.
type Controller struct {
	id   string
	deps Deps

	mu           sync.Mutex
	session      chat.Session
	turns        []chat.Turn
	exchanges    int
	userTurns    int
	pending      bool
	loading      bool
	streamTurnID string
	streamRaw    string

	upgradeOnce sync.Once
}

// NewController mints the local session and welcome turn synchronously,
// so the conversation is usable with zero network latency. The async
// upgrade attempt starts only when Bootstrap is called.
func NewController(deps Deps) *Controller {
	now := time.Now().UTC()
	c := &Controller{
		id:   uuid.NewString(),
		deps: deps,
		session: chat.Session{
			SessionID: uuid.NewString(),
			UserID:    "anonymous_" + uuid.NewString(),
			Persisted: false,
			CreatedAt: now,
		},
	}
	c.turns = []chat.Turn{{
		ID:          uuid.NewString(),
		Text:        welcomeText,
		Speaker:     chat.SpeakerAssistant,
		CreatedAt:   now,
		Suggestions: welcomeCards(),
	}}
	return c
}

// ID returns the conversation identifier, stable for the mount.
func (c *Controller) ID() string { return c.id }

// Session returns the current session identity.
func (c *Controller) Session() chat.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Turns returns a snapshot of the ordered turn log.
func (c *Controller) Turns() []chat.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make([]chat.Turn, len(c.turns))
	copy(copied, c.turns)
	return copied
}

// Loading reports whether a response cycle is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Send runs one exchange: append the user turn, try the intercept
// table, otherwise stream from the responder. It returns the finalized
// assistant turn. Transport failures surface as fixed fallback turns,
// not as errors; only ErrBusy and ErrEmptyMessage are returned.
func (c *Controller) Send(ctx context.Context, rawText string, sink Sink) (chat.Turn, error) {
	message := strings.TrimSpace(rawText)
	if message == "" {
		return chat.Turn{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return chat.Turn{}, ErrBusy
	}
	c.pending = true
	c.loading = true
	// The counter ticks at send time, before classification.
	c.exchanges++
	exchange := c.exchanges
	userTurn := chat.Turn{
		ID:        uuid.NewString(),
		Text:      message,
		Speaker:   chat.SpeakerUser,
		CreatedAt: time.Now().UTC(),
	}
	c.turns = append(c.turns, userTurn)
	c.userTurns++
	c.streamTurnID = ""
	c.streamRaw = ""
	c.mu.Unlock()

	defer c.finishCycle()

	notify(sink, EventUser, userTurn)
	c.persistTurn(ctx, userTurn)

	if intercept, ok := c.deps.Classifier.Classify(message); ok {
		reply := text.Normalize(intercept.Response)
		cards := c.deps.Engine.Suggest(message, reply, exchange)
		turn := c.appendAssistantTurn(reply, cards)
		c.persistTurn(ctx, turn)
		notify(sink, EventFinal, turn)
		return turn, nil
	}

	err := c.deps.Responder.Respond(ctx, c.id, message, func(fragment string) {
		turn := c.coalesce(message, fragment, exchange)
		notify(sink, EventDelta, turn)
	})

	final := c.settle(ctx, err)
	notify(sink, EventFinal, final)
	return final, nil
}

// coalesce folds a fragment into the in-progress assistant turn,
// concatenating the raw stream and renormalizing the whole, then
// recomputes suggestions from the cumulative text.
func (c *Controller) coalesce(userText, fragment string, exchange int) chat.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.streamRaw += fragment
	normalized := text.Normalize(c.streamRaw)
	cards := c.deps.Engine.Suggest(userText, normalized, exchange)

	last := len(c.turns) - 1
	if c.streamTurnID != "" && last >= 0 && c.turns[last].ID == c.streamTurnID {
		c.turns[last].Text = normalized
		c.turns[last].Suggestions = cards
		return c.turns[last]
	}

	turn := chat.Turn{
		ID:          uuid.NewString(),
		Text:        normalized,
		Speaker:     chat.SpeakerAssistant,
		CreatedAt:   time.Now().UTC(),
		Suggestions: cards,
	}
	c.turns = append(c.turns, turn)
	c.streamTurnID = turn.ID
	return turn
}

// settle resolves the end of a streaming cycle into the finalized
// assistant turn, mapping each failure mode to its fixed fallback.
func (c *Controller) settle(ctx context.Context, err error) chat.Turn {
	switch {
	case errors.Is(err, stream.ErrInterrupted):
		return c.appendAssistantTurn(interruptedText, nil)
	case errors.Is(err, stream.ErrTimeout):
		return c.appendAssistantTurn(timeoutText, nil)
	case err != nil:
		log.Printf("[conversation] stream failed for conversation=%s: %v", c.id, err)
		return c.appendAssistantTurn(apologyText, nil)
	}

	c.mu.Lock()
	streamed := c.streamTurnID != ""
	var final chat.Turn
	if streamed {
		final = c.turns[len(c.turns)-1]
	}
	c.mu.Unlock()

	if !streamed {
		// Stream completed without delivering a single fragment; treat
		// it like a failed exchange rather than leaving it dead.
		return c.appendAssistantTurn(apologyText, nil)
	}

	c.persistTurn(ctx, final)
	return final
}

// appendAssistantTurn appends a finalized assistant turn.
func (c *Controller) appendAssistantTurn(textContent string, cards []chat.SuggestionCard) chat.Turn {
	turn := chat.Turn{
		ID:          uuid.NewString(),
		Text:        textContent,
		Speaker:     chat.SpeakerAssistant,
		CreatedAt:   time.Now().UTC(),
		Suggestions: cards,
	}

	c.mu.Lock()
	c.turns = append(c.turns, turn)
	c.streamTurnID = ""
	c.mu.Unlock()
	return turn
}

// Clear resets the log to a single fresh welcome turn and the exchange
// counter to zero. It has no persistence side effect.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = []chat.Turn{{
		ID:          uuid.NewString(),
		Text:        welcomeText,
		Speaker:     chat.SpeakerAssistant,
		CreatedAt:   time.Now().UTC(),
		Suggestions: welcomeCards(),
	}}
	c.exchanges = 0
	c.userTurns = 0
	c.pending = false
	c.loading = false
	c.streamTurnID = ""
	c.streamRaw = ""
}

// WellnessReturn synthesizes the follow-up turn for a user returning
// from a wellness sub-page. It takes the same busy guard as Send:
// appending mid-stream would displace the coalescing turn from the tail
// of the log and split the streamed message in two.
func (c *Controller) WellnessReturn(sessionType string) (chat.Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending {
		return chat.Turn{}, ErrBusy
	}

	turn := chat.Turn{
		ID:          uuid.NewString(),
		Text:        wellnessReturnText(sessionType),
		Speaker:     chat.SpeakerAssistant,
		CreatedAt:   time.Now().UTC(),
		Suggestions: wellnessReturnCards(sessionType),
	}
	c.turns = append(c.turns, turn)
	return turn, nil
}

// Close releases the responder's channel on session teardown.
func (c *Controller) Close() {
	if closer, ok := c.deps.Responder.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (c *Controller) finishCycle() {
	c.mu.Lock()
	c.pending = false
	c.loading = false
	c.mu.Unlock()
}

// persistTurn writes a finalized turn to the store, best-effort, only
// once the session is persisted.
func (c *Controller) persistTurn(ctx context.Context, turn chat.Turn) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if c.deps.Store == nil || !session.Persisted {
		return
	}

	err := c.deps.Store.SaveMessage(ctx, store.MessageRecord{
		SessionID:   session.SessionID,
		UserID:      session.UserID,
		Content:     turn.Text,
		Role:        string(turn.Speaker),
		Suggestions: turn.Suggestions,
		CreatedAt:   turn.CreatedAt,
	})
	if err != nil {
		log.Printf("[conversation] failed to persist turn: %v", err)
	}
}

func notify(sink Sink, event Event, turn chat.Turn) {
	if sink != nil {
		sink(event, turn)
	}
}
