package rules

import "testing"

func newEngine() *Engine {
	return NewEngine(DefaultRules())
}

func TestSuggestAtMostThreeCards(t *testing.T) {
	e := newEngine()

	inputs := []string{
		"I feel so sad and lonely and anxious and tired",
		"I want to die",
		"just a normal day",
	}
	for _, in := range inputs {
		cards := e.Suggest(in, "", 1)
		if len(cards) > 3 {
			t.Fatalf("expected at most 3 cards for %q, got %d", in, len(cards))
		}
	}
}

func TestSuggestEmptyWhenNoMatch(t *testing.T) {
	e := newEngine()

	if cards := e.Suggest("the sky is blue today", "indeed it is", 3); len(cards) != 0 {
		t.Fatalf("expected no suggestions, got %d", len(cards))
	}
}

func TestSuggestCrisisCardsForDistress(t *testing.T) {
	e := newEngine()

	cards := e.Suggest("I want to die", "", 1)
	if len(cards) != 3 {
		t.Fatalf("expected 3 crisis cards, got %d", len(cards))
	}
	// Fixed order: hotline, text line, emergency.
	if cards[0].Target != "tel:988" || cards[1].Target != "sms:741741" || cards[2].Target != "tel:911" {
		t.Fatalf("unexpected crisis card order: %+v", cards)
	}
}

func TestSuggestCrisisDetectedInAssistantText(t *testing.T) {
	e := newEngine()

	cards := e.Suggest("how are you", "I hear that you want to end it all, and I'm concerned", 1)
	if len(cards) != 3 || cards[0].Target != "tel:988" {
		t.Fatalf("expected crisis cards from assistant text, got %+v", cards)
	}
}

func TestPeriodicHotlineNeverFiresEarly(t *testing.T) {
	e := newEngine()

	for count := 1; count <= 9; count++ {
		cards := e.Suggest("nothing special", "a calm reply", count)
		if len(cards) != 0 {
			t.Fatalf("hotline fired at exchange %d without distress keywords", count)
		}
	}
}

func TestPeriodicHotlineFiresOnLaterDecades(t *testing.T) {
	e := newEngine()

	for _, count := range []int{20, 30, 40} {
		cards := e.Suggest("nothing special", "a calm reply", count)
		if len(cards) != 3 || cards[0].Target != "tel:988" {
			t.Fatalf("expected crisis cards at exchange %d, got %+v", count, cards)
		}
	}
}

func TestPeriodicHotlineSkipsTen(t *testing.T) {
	e := newEngine()

	// The gate is strictly greater than ten, so the tenth exchange does
	// not fire.
	if cards := e.Suggest("neutral", "neutral", 10); len(cards) != 0 {
		t.Fatalf("expected no cards at exchange 10, got %+v", cards)
	}
}

func TestSuggestTopicGroupOrder(t *testing.T) {
	e := newEngine()

	// Sadness precedes anxiety in the fixed group order, so mixed
	// content resolves to the sadness cards.
	cards := e.Suggest("I'm sad and anxious", "", 2)
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	if cards[0].Title != "Gentle Meditation" {
		t.Fatalf("expected sadness group to win, got %+v", cards[0])
	}
}

func TestSuggestTopicFromAssistantText(t *testing.T) {
	e := newEngine()

	cards := e.Suggest("tell me something", "it sounds like you are feeling anxious about tomorrow", 2)
	if len(cards) != 3 || cards[0].Title != "Breathing Meditation" {
		t.Fatalf("expected anxiety cards from assistant text, got %+v", cards)
	}
}
