package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zenwell/zenchat/backend/internal/auth"
	"github.com/zenwell/zenchat/backend/internal/model/chat"
	"github.com/zenwell/zenchat/backend/internal/rules"
	"github.com/zenwell/zenchat/backend/internal/service/stream"
	"github.com/zenwell/zenchat/backend/internal/store"
)

// scriptedResponder plays back fixed fragments and an outcome, and
// records whether it was called at all.
type scriptedResponder struct {
	fragments []string
	err       error
	calls     int
	block     chan struct{}
}

func (r *scriptedResponder) Respond(_ context.Context, _ string, _ string, emit func(string)) error {
	r.calls++
	if r.block != nil {
		<-r.block
	}
	for _, f := range r.fragments {
		emit(f)
	}
	return r.err
}

type fakeAuth struct {
	identity auth.Identity
	ok       bool
}

func (a fakeAuth) CurrentUser(context.Context) (auth.Identity, bool) {
	return a.identity, a.ok
}

func newTestController(responder Responder, s store.Store, a IdentityResolver) *Controller {
	return NewController(Deps{
		Classifier: rules.NewClassifier(rules.DefaultRules()),
		Engine:     rules.NewEngine(rules.DefaultRules()),
		Responder:  responder,
		Store:      s,
		Auth:       a,
	})
}

func TestNewControllerStartsWithWelcomeTurn(t *testing.T) {
	c := newTestController(&scriptedResponder{}, nil, nil)

	turns := c.Turns()
	if len(turns) != 1 {
		t.Fatalf("expected exactly one turn, got %d", len(turns))
	}
	if turns[0].Speaker != chat.SpeakerAssistant || turns[0].Text != welcomeText {
		t.Fatalf("unexpected welcome turn: %+v", turns[0])
	}
	if len(turns[0].Suggestions) != 4 {
		t.Fatalf("expected 4 welcome cards, got %d", len(turns[0].Suggestions))
	}
	if c.Session().Persisted {
		t.Fatal("fresh session must start local-only")
	}
	if !strings.HasPrefix(c.Session().UserID, "anonymous_") {
		t.Fatalf("expected anonymous user id, got %s", c.Session().UserID)
	}
}

func TestSendCoalescesFragmentsIntoOneTurn(t *testing.T) {
	r := &scriptedResponder{fragments: []string{"Hel", "lo wor", "ld."}}
	c := newTestController(r, nil, nil)

	final, err := c.Send(context.Background(), "hello there", nil)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if final.Text != "Hello world." {
		t.Fatalf("unexpected coalesced text: %q", final.Text)
	}

	turns := c.Turns()
	// welcome + user + exactly one assistant turn.
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[2].Text != "Hello world." {
		t.Fatalf("log holds wrong assistant text: %q", turns[2].Text)
	}
	if c.Loading() {
		t.Fatal("loading flag must clear after the cycle")
	}
}

func TestSendEmitsDeltaEvents(t *testing.T) {
	r := &scriptedResponder{fragments: []string{"one ", "two"}}
	c := newTestController(r, nil, nil)

	var events []Event
	_, err := c.Send(context.Background(), "counting", func(event Event, _ chat.Turn) {
		events = append(events, event)
	})
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}

	want := []Event{EventUser, EventDelta, EventDelta, EventFinal}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d = %s, want %s", i, events[i], want[i])
		}
	}
}

func TestSendDistressIntercept(t *testing.T) {
	r := &scriptedResponder{}
	c := newTestController(r, nil, nil)

	final, err := c.Send(context.Background(), "I want to die", nil)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if r.calls != 0 {
		t.Fatal("distress intercept must never reach the responder")
	}
	if !strings.Contains(final.Text, "988") {
		t.Fatalf("expected crisis message, got %q", final.Text)
	}
	if len(final.Suggestions) != 3 {
		t.Fatalf("expected 3 crisis cards, got %d", len(final.Suggestions))
	}
	if final.Suggestions[0].Target != "tel:988" ||
		final.Suggestions[1].Target != "sms:741741" ||
		final.Suggestions[2].Target != "tel:911" {
		t.Fatalf("unexpected crisis card order: %+v", final.Suggestions)
	}
}

func TestSendTechnicalInterceptSkipsNetwork(t *testing.T) {
	r := &scriptedResponder{}
	c := newTestController(r, nil, nil)

	final, err := c.Send(context.Background(), "how do I write a python function", nil)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if r.calls != 0 {
		t.Fatal("technical intercept must not open a channel")
	}
	if !strings.Contains(final.Text, "wellness companion") {
		t.Fatalf("expected technical redirect, got %q", final.Text)
	}
}

func TestSendInterruptedStream(t *testing.T) {
	r := &scriptedResponder{err: stream.ErrInterrupted}
	c := newTestController(r, nil, nil)

	final, err := c.Send(context.Background(), "tell me something calming", nil)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if final.Text != interruptedText {
		t.Fatalf("expected interrupted turn, got %q", final.Text)
	}

	turns := c.Turns()
	if len(turns) != 3 {
		t.Fatalf("expected exactly one interrupted turn appended, got %d turns", len(turns))
	}
	if c.Loading() {
		t.Fatal("loading flag must clear after an interrupted stream")
	}
}

func TestSendTimeoutStream(t *testing.T) {
	r := &scriptedResponder{err: stream.ErrTimeout}
	c := newTestController(r, nil, nil)

	final, _ := c.Send(context.Background(), "are you there", nil)
	if final.Text != timeoutText {
		t.Fatalf("expected timeout turn, got %q", final.Text)
	}
}

func TestSendTransportFailureAppendsApology(t *testing.T) {
	r := &scriptedResponder{err: errors.New("connection refused")}
	c := newTestController(r, nil, nil)

	final, _ := c.Send(context.Background(), "hello friend", nil)
	if final.Text != apologyText {
		t.Fatalf("expected apology turn, got %q", final.Text)
	}
}

func TestSendBusyGuard(t *testing.T) {
	r := &scriptedResponder{fragments: []string{"slow reply"}, block: make(chan struct{})}
	c := newTestController(r, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Send(context.Background(), "first message", nil)
	}()

	// Wait for the first cycle to take the pending slot.
	deadline := time.Now().Add(2 * time.Second)
	for !c.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("first send never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := c.Send(context.Background(), "second message", nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(r.block)
	<-done
}

func TestSendRejectsEmptyInput(t *testing.T) {
	c := newTestController(&scriptedResponder{}, nil, nil)

	if _, err := c.Send(context.Background(), "   ", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestClearResetsLogAndCounter(t *testing.T) {
	r := &scriptedResponder{fragments: []string{"a reply"}}
	c := newTestController(r, nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := c.Send(context.Background(), "another message", nil); err != nil {
			t.Fatalf("Send err: %v", err)
		}
	}

	c.Clear()

	turns := c.Turns()
	if len(turns) != 1 || turns[0].Text != welcomeText {
		t.Fatalf("expected a single fresh welcome turn, got %+v", turns)
	}
	c.mu.Lock()
	exchanges := c.exchanges
	c.mu.Unlock()
	if exchanges != 0 {
		t.Fatalf("exchange counter not reset: %d", exchanges)
	}
}

func TestUpgradeFullSuccessReplaysHistory(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	record, err := s.CreateSession(ctx, "user-1", sessionTitle)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	base := time.Now().UTC()
	for i, content := range []string{"hi", "hello, how are you feeling?"} {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		err := s.SaveMessage(ctx, store.MessageRecord{
			SessionID: record.ID,
			UserID:    "user-1",
			Content:   content,
			Role:      role,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("SaveMessage err: %v", err)
		}
	}

	c := newTestController(&scriptedResponder{}, s, fakeAuth{identity: auth.Identity{UserID: "user-1"}, ok: true})
	c.upgrade(ctx)

	session := c.Session()
	if !session.Persisted || session.SessionID != record.ID {
		t.Fatalf("session not upgraded: %+v", session)
	}

	turns := c.Turns()
	if len(turns) != 2 || turns[0].Text != "hi" || turns[1].Speaker != chat.SpeakerAssistant {
		t.Fatalf("history not replayed: %+v", turns)
	}
}

func TestUpgradeEmptyHistoryFallsBackToWelcomeBack(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	if _, err := s.CreateSession(ctx, "user-1", sessionTitle); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	c := newTestController(&scriptedResponder{}, s, fakeAuth{identity: auth.Identity{UserID: "user-1"}, ok: true})
	c.upgrade(ctx)

	turns := c.Turns()
	if len(turns) != 1 || turns[0].Text != welcomeBackText {
		t.Fatalf("expected welcome-back fallback, got %+v", turns)
	}
}

func TestUpgradeAuthFailureKeepsLocalSession(t *testing.T) {
	c := newTestController(&scriptedResponder{}, store.NewMemory(), fakeAuth{ok: false})
	c.upgrade(context.Background())

	session := c.Session()
	if session.Persisted {
		t.Fatal("session must stay local when auth fails")
	}
	if turns := c.Turns(); len(turns) != 1 {
		t.Fatalf("log invariant violated: %d turns", len(turns))
	}
}

// brokenStore fails every operation, standing in for an unreachable
// persistence collaborator.
type brokenStore struct {
	store.Store
}

func (brokenStore) LatestSession(context.Context, string) (store.SessionRecord, error) {
	return store.SessionRecord{}, errors.New("store unavailable")
}

func (brokenStore) CreateSession(context.Context, string, string) (store.SessionRecord, error) {
	return store.SessionRecord{}, errors.New("store unavailable")
}

func TestUpgradePersistenceFailureKeepsLocalSession(t *testing.T) {
	c := newTestController(&scriptedResponder{}, brokenStore{},
		fakeAuth{identity: auth.Identity{UserID: "user-1"}, ok: true})
	c.upgrade(context.Background())

	if c.Session().Persisted {
		t.Fatal("session must stay local when the store fails")
	}
	if turns := c.Turns(); len(turns) != 1 || turns[0].Text != welcomeText {
		t.Fatalf("log invariant violated: %+v", turns)
	}
}

func TestUpgradeSkipsHistoryAfterUserTurns(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	record, err := s.CreateSession(ctx, "user-1", sessionTitle)
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	err = s.SaveMessage(ctx, store.MessageRecord{
		SessionID: record.ID, UserID: "user-1", Content: "old turn", Role: "user",
	})
	if err != nil {
		t.Fatalf("SaveMessage err: %v", err)
	}

	c := newTestController(&scriptedResponder{fragments: []string{"a reply"}}, s,
		fakeAuth{identity: auth.Identity{UserID: "user-1"}, ok: true})

	// The user speaks before the upgrade lands.
	if _, err := c.Send(ctx, "I'm feeling hopeful today", nil); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	c.upgrade(ctx)

	session := c.Session()
	if !session.Persisted {
		t.Fatal("identifiers should still upgrade")
	}
	turns := c.Turns()
	if turns[0].Text != welcomeText {
		t.Fatalf("local log was discarded: %+v", turns[0])
	}
	for _, turn := range turns {
		if turn.Text == "old turn" {
			t.Fatal("history must not replace a log with user-authored turns")
		}
	}
}

func TestPersistedSessionSavesTurns(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	if _, err := s.CreateSession(ctx, "user-1", sessionTitle); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	c := newTestController(&scriptedResponder{fragments: []string{"stay present."}}, s,
		fakeAuth{identity: auth.Identity{UserID: "user-1"}, ok: true})
	c.upgrade(ctx)

	if _, err := c.Send(ctx, "feeling scattered", nil); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	records, err := s.Messages(ctx, c.Session().SessionID)
	if err != nil {
		t.Fatalf("Messages err: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected user and assistant records, got %d", len(records))
	}
	if records[0].Role != "user" || records[1].Role != "assistant" {
		t.Fatalf("unexpected roles: %+v", records)
	}
}

func TestWellnessReturnAppendsFollowUp(t *testing.T) {
	c := newTestController(&scriptedResponder{}, nil, nil)

	turn, err := c.WellnessReturn("meditation")
	if err != nil {
		t.Fatalf("WellnessReturn err: %v", err)
	}
	if !strings.Contains(turn.Text, "meditation session") {
		t.Fatalf("unexpected follow-up text: %q", turn.Text)
	}
	if len(turn.Suggestions) != 2 {
		t.Fatalf("expected 2 continue-practice cards, got %d", len(turn.Suggestions))
	}
	if turn.Suggestions[0].Target != "/meditation" {
		t.Fatalf("unexpected card target: %+v", turn.Suggestions[0])
	}

	if turns := c.Turns(); len(turns) != 2 {
		t.Fatalf("follow-up not appended: %d turns", len(turns))
	}
}

func TestWellnessReturnBusyMidStream(t *testing.T) {
	r := &scriptedResponder{fragments: []string{"a reply"}, block: make(chan struct{})}
	c := newTestController(r, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Send(context.Background(), "first message", nil)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !c.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("send never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := c.WellnessReturn("meditation"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy mid-stream, got %v", err)
	}

	close(r.block)
	<-done

	// The streamed assistant turn stayed whole: welcome + user + reply.
	turns := c.Turns()
	if len(turns) != 3 || turns[2].Text != "a reply" {
		t.Fatalf("stream was split by the follow-up: %+v", turns)
	}

	if _, err := c.WellnessReturn("meditation"); err != nil {
		t.Fatalf("WellnessReturn after the cycle err: %v", err)
	}
}

func TestLocalResponderRotatesReplies(t *testing.T) {
	r := NewLocalResponder()
	c := newTestController(r, nil, nil)

	first, err := c.Send(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	second, err := c.Send(context.Background(), "hello again", nil)
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if first.Text == second.Text {
		t.Fatalf("expected rotation, got %q twice", first.Text)
	}
}
