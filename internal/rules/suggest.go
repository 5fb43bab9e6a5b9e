package rules

import (
	"strings"

	"github.com/zenwell/zenchat/backend/internal/model/chat"
)

// hotlineEvery gates the periodic crisis-resource reminder: once every
// tenth exchange after the tenth, independent of keyword detection.
const hotlineEvery = 10

// Engine maps conversational content to follow-up suggestion cards.
// Suggestions must feel earned by the conversation: when nothing
// matches, the engine returns nothing rather than generic filler.
type Engine struct {
	distressKeywords []string
	groups           []topicGroup
}

// NewEngine builds the suggestion engine with the standard topic groups.
// The distress keyword set is shared with the classifier's table so the
// two components never disagree about what counts as a crisis.
func NewEngine(rules []Rule) *Engine {
	var distress []string
	for _, r := range rules {
		if r.Category == CategoryDistress {
			distress = r.Keywords
			break
		}
	}
	return &Engine{
		distressKeywords: distress,
		groups:           defaultTopicGroups(),
	}
}

// Suggest returns 0-3 cards for a finalized exchange. Priority order,
// first match wins:
//  1. Distress keywords in either text, or the periodic safety-net
//     gate, yield the crisis-resource cards regardless of other content.
//  2. Topic groups tested in fixed order over both texts.
//  3. Otherwise no suggestions.
func (e *Engine) Suggest(userText, assistantText string, exchangeCount int) []chat.SuggestionCard {
	combined := strings.ToLower(userText + " " + assistantText)

	if e.containsDistress(combined) || periodicHotline(exchangeCount) {
		return CrisisCards()
	}

	for _, group := range e.groups {
		for _, kw := range group.keywords {
			if strings.Contains(combined, kw) {
				return append([]chat.SuggestionCard(nil), group.cards...)
			}
		}
	}

	return nil
}

func (e *Engine) containsDistress(lowered string) bool {
	for _, kw := range e.distressKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func periodicHotline(exchangeCount int) bool {
	return exchangeCount > hotlineEvery && exchangeCount%hotlineEvery == 0
}
