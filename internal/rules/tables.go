package rules

import "github.com/zenwell/zenchat/backend/internal/model/chat"

// Category labels an intercept rule. Categories are evaluated in strict
// priority order: distress > technical > general knowledge.
type Category string

const (
	CategoryDistress         Category = "distress"
	CategoryTechnical        Category = "technical"
	CategoryGeneralKnowledge Category = "generalKnowledge"
)

// Rule maps a keyword set to an intercept category and its canned response.
type Rule struct {
	Category Category
	Keywords []string
	Response string
}

// Crisis and redirect copy. All fallback strings stay wellness-themed so
// the companion keeps a consistent voice even when it refuses a topic.
const (
	distressResponse = "I'm really glad you told me, and I want you to know you don't have to face this alone. " +
		"Please reach out right now to the 988 Suicide & Crisis Lifeline (call or text 988), " +
		"or text HOME to 741741 to talk with a crisis counselor. If you are in immediate danger, call 911. " +
		"You matter, and there are people ready to listen this very moment. 💚"

	technicalResponse = "It sounds like you're wrestling with something technical. I'm a wellness companion, " +
		"so code and tools are beyond my practice - but how are you doing while you work on it? " +
		"If your mind feels tangled, a short breathing pause can help untie it."

	generalKnowledgeResponse = "That's a question for an encyclopedia, and I'm more of a garden than a library. " +
		"I'm here for what's going on inside you. What's on your mind or in your heart today?"
)

// DefaultRules returns the standard intercept table in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: CategoryDistress,
			Keywords: []string{
				"want to die", "kill myself", "suicide", "suicidal", "end my life",
				"self harm", "self-harm", "hurt myself", "no reason to live",
				"better off without me", "end it all", "can't go on",
			},
			Response: distressResponse,
		},
		{
			Category: CategoryTechnical,
			Keywords: []string{
				"python", "javascript", "java", "golang", "typescript", "coding",
				"debug", "compile", "algorithm", "database", "sql", "html", "css",
				"write a function", "fix my code", "programming",
			},
			Response: technicalResponse,
		},
		{
			Category: CategoryGeneralKnowledge,
			Keywords: []string{
				"capital of", "who invented", "who discovered", "what year",
				"history of", "population of", "square root", "distance between",
				"how many countries", "president of", "largest country",
			},
			Response: generalKnowledgeResponse,
		},
	}
}

// topicGroup binds a suggestion theme to its keyword set and fixed cards.
type topicGroup struct {
	name     string
	keywords []string
	cards    []chat.SuggestionCard
}

// CrisisCards returns the three crisis-resource cards in fixed order:
// hotline, text line, emergency.
func CrisisCards() []chat.SuggestionCard {
	return []chat.SuggestionCard{
		{Title: "988 Suicide & Crisis Lifeline", Icon: "📞", Target: "tel:988", Description: "Free, confidential support, 24/7"},
		{Title: "Crisis Text Line", Icon: "💬", Target: "sms:741741", Description: "Text HOME to reach a trained counselor"},
		{Title: "Emergency Services", Icon: "🚨", Target: "tel:911", Description: "Call now if you are in immediate danger"},
	}
}

// defaultTopicGroups returns the topical suggestion groups in their fixed
// evaluation order. First matching group wins.
func defaultTopicGroups() []topicGroup {
	return []topicGroup{
		{
			name:     "sadness",
			keywords: []string{"sad", "down", "depressed", "crying", "grief", "heartbroken", "hopeless", "miserable"},
			cards: []chat.SuggestionCard{
				{Title: "Gentle Meditation", Icon: "🧘", Target: "/meditation", Description: "A soft space to sit with your feelings"},
				{Title: "Sound Healing", Icon: "🎵", Target: "/sound", Description: "Tibetan bowls to soothe a heavy heart"},
				{Title: "Talk to Mentor", Icon: "👨‍🏫", Target: "/mentor", Description: "Connect with a wellness guide"},
			},
		},
		{
			name:     "anxiety",
			keywords: []string{"anxious", "anxiety", "worried", "panic", "overwhelmed", "nervous", "stressed", "racing thoughts"},
			cards: []chat.SuggestionCard{
				{Title: "Breathing Meditation", Icon: "💨", Target: "/meditation", Description: "Slow your breath, steady your mind"},
				{Title: "Gyan Mudra", Icon: "👌", Target: "/mudra", Description: "A grounding hand position for calm"},
				{Title: "Ocean Waves", Icon: "🌊", Target: "/sound", Description: "Let rhythmic sound settle your nerves"},
			},
		},
		{
			name:     "anger",
			keywords: []string{"angry", "furious", "rage", "frustrated", "irritated", "resentful", "fed up"},
			cards: []chat.SuggestionCard{
				{Title: "Cooling Breath", Icon: "🧘", Target: "/meditation", Description: "Release heat with slow exhales"},
				{Title: "Sound Healing", Icon: "🎵", Target: "/sound", Description: "Crystal tones to dissolve tension"},
				{Title: "Talk to Mentor", Icon: "👨‍🏫", Target: "/mentor", Description: "Work through it with a guide"},
			},
		},
		{
			name:     "fatigue",
			keywords: []string{"tired", "exhausted", "drained", "can't sleep", "insomnia", "burned out", "burnout", "no energy"},
			cards: []chat.SuggestionCard{
				{Title: "Rest Meditation", Icon: "🌙", Target: "/meditation", Description: "Guided wind-down for deep rest"},
				{Title: "Nature Sounds", Icon: "🌿", Target: "/sound", Description: "Gentle soundscapes for sleep"},
				{Title: "Prana Mudra", Icon: "🙏", Target: "/mudra", Description: "A gesture said to restore vitality"},
			},
		},
		{
			name:     "focus",
			keywords: []string{"focus", "concentrate", "distracted", "procrastinating", "attention", "exam", "studying"},
			cards: []chat.SuggestionCard{
				{Title: "Gyan Mudra", Icon: "👌", Target: "/mudra", Description: "Hand gesture for concentration"},
				{Title: "Focus Meditation", Icon: "🧘", Target: "/meditation", Description: "Train attention on the breath"},
				{Title: "Singing Bowls", Icon: "🎵", Target: "/sound", Description: "Steady tones for deep work"},
			},
		},
		{
			name:     "gratitude",
			keywords: []string{"grateful", "gratitude", "thankful", "blessed", "appreciate", "wonderful day"},
			cards: []chat.SuggestionCard{
				{Title: "Gratitude Meditation", Icon: "🙏", Target: "/meditation", Description: "Savor what is going well"},
				{Title: "Sound Celebration", Icon: "🎵", Target: "/sound", Description: "Uplifting tones to match your mood"},
				{Title: "Share with Mentor", Icon: "👨‍🏫", Target: "/mentor", Description: "Reflect on your growth together"},
			},
		},
		{
			name:     "loneliness",
			keywords: []string{"lonely", "alone", "isolated", "no friends", "nobody cares", "left out"},
			cards: []chat.SuggestionCard{
				{Title: "Talk to Mentor", Icon: "👨‍🏫", Target: "/mentor", Description: "A caring person to connect with"},
				{Title: "Loving-Kindness Meditation", Icon: "💚", Target: "/meditation", Description: "Warmth for yourself and others"},
				{Title: "7 Cups", Icon: "🫂", Target: "https://www.7cups.com", Description: "Free online emotional support community"},
			},
		},
	}
}
