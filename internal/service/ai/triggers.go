package ai

import (
	"strings"

	"github.com/zenwell/zenchat/backend/internal/model/chat"
)

// The server-side trigger table is deliberately simpler than the
// conversation engine's: one category, first match, a single fixed card.
var wellnessTriggers = []struct {
	emotion  string
	keywords []string
	card     chat.SuggestionCard
}{
	{
		emotion:  "stress",
		keywords: []string{"stress", "stressed", "overwhelmed", "pressure", "anxious", "anxiety", "worried", "panic"},
		card:     chat.SuggestionCard{Title: "Guided Meditation", Icon: "🧘", Target: "/meditation", Description: "5-minute breathing meditation to reduce stress"},
	},
	{
		emotion:  "focus",
		keywords: []string{"focus", "concentrate", "distracted", "attention", "exam", "study", "work"},
		card:     chat.SuggestionCard{Title: "Gyan Mudra", Icon: "👌", Target: "/mudra", Description: "Hand gesture for enhanced concentration"},
	},
	{
		emotion:  "calm",
		keywords: []string{"calm", "peace", "relax", "rest", "sleep", "tired", "exhausted"},
		card:     chat.SuggestionCard{Title: "Sound Healing", Icon: "🎵", Target: "/sound", Description: "Soothing sounds for deep relaxation"},
	},
	{
		emotion:  "energy",
		keywords: []string{"energy", "motivated", "tired", "lazy", "procrastinate", "sluggish"},
		card:     chat.SuggestionCard{Title: "Energizing Meditation", Icon: "⚡", Target: "/meditation", Description: "Boost your energy with pranayama"},
	},
	{
		emotion:  "confidence",
		keywords: []string{"confidence", "doubt", "fear", "nervous", "self-esteem", "insecure"},
		card:     chat.SuggestionCard{Title: "Spiritual Mentor", Icon: "🙏", Target: "/mentor", Description: "Wisdom from ancient teachings"},
	},
}

// DetectWellnessTriggers returns the first matching category's card.
func DetectWellnessTriggers(message string) []chat.SuggestionCard {
	lowered := strings.ToLower(message)
	for _, trigger := range wellnessTriggers {
		for _, kw := range trigger.keywords {
			if strings.Contains(lowered, kw) {
				return []chat.SuggestionCard{trigger.card}
			}
		}
	}
	return nil
}

// DetectEmotions returns every category whose keywords appear in the
// message, for the profile's rolling emotion list.
func DetectEmotions(message string) []string {
	lowered := strings.ToLower(message)
	var detected []string
	for _, trigger := range wellnessTriggers {
		for _, kw := range trigger.keywords {
			if strings.Contains(lowered, kw) {
				detected = append(detected, trigger.emotion)
				break
			}
		}
	}
	return detected
}
