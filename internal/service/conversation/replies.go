package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/zenwell/zenchat/backend/internal/model/chat"
)

// Every fallback string is static, pre-written and wellness-themed so
// the companion keeps its persona even while failing.
const (
	welcomeText = "Welcome to Zen Chat! I'm here to guide you on your wellness journey. How are you feeling today?"

	welcomeBackText = "Welcome back! It's good to see you again. How have you been feeling since we last talked?"

	apologyText = "I'm having trouble connecting right now. Take a slow breath with me, and please try again in a moment. 🌱"

	interruptedText = "Our connection was interrupted. Take a deep breath, and send your message again when you're ready."

	timeoutText = "This is taking longer than expected. Let's pause for a breath together and try again in a moment."
)

func welcomeCards() []chat.SuggestionCard {
	return []chat.SuggestionCard{
		{Title: "Try Meditation", Icon: "🧘", Target: "/meditation", Description: "Guided mindfulness session"},
		{Title: "Practice Mudra", Icon: "🙏", Target: "/mudra", Description: "Hand positions for focus"},
		{Title: "Sound Healing", Icon: "🎵", Target: "/sound", Description: "Therapeutic sound therapy"},
		{Title: "Talk to Mentor", Icon: "👨‍🏫", Target: "/mentor", Description: "Connect with a wellness guide"},
	}
}

func wellnessReturnText(sessionType string) string {
	if sessionType == "" {
		sessionType = "wellness"
	}
	return fmt.Sprintf("Welcome back! How was your %s session? Did it help you feel calmer and more centered?", sessionType)
}

func wellnessReturnCards(sessionType string) []chat.SuggestionCard {
	if sessionType == "" {
		sessionType = "meditation"
	}
	return []chat.SuggestionCard{
		{Title: "Try Another Session", Icon: "🔄", Target: "/" + sessionType, Description: "Continue your practice"},
		{Title: "Explore Different Practice", Icon: "✨", Target: "/meditation", Description: "Try something new"},
	}
}

// localReplies are served when no AI backend is reachable at all; the
// companion degrades to a rule-free rotation of gentle responses.
var localReplies = []string{
	"That's wonderful to hear. Mindfulness is a powerful practice for inner peace.",
	"I understand. Let's explore some techniques that might help you find balance.",
	"It's natural to feel that way. Would you like to try a guided meditation?",
	"Great question! Wellness is a journey, and every step counts.",
	"I'm here to support you. What aspect of wellness interests you most?",
}

// LocalResponder is the last rung of the degradation ladder: a fully
// offline responder that rotates through fixed wellness replies.
type LocalResponder struct {
	mu   sync.Mutex
	next int
}

// NewLocalResponder returns an offline responder.
func NewLocalResponder() *LocalResponder {
	return &LocalResponder{}
}

// Respond emits one canned reply. It never fails.
func (r *LocalResponder) Respond(_ context.Context, _ string, _ string, emit func(fragment string)) error {
	r.mu.Lock()
	reply := localReplies[r.next%len(localReplies)]
	r.next++
	r.mu.Unlock()

	emit(reply)
	return nil
}
