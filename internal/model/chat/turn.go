package chat

import "time"

// Speaker identifies which side of the conversation authored a turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// SuggestionCard is an actionable shortcut rendered under an assistant turn.
// It is a pure value, compared structurally; Target is a local route,
// an external URL, or a telephone/sms URI.
type SuggestionCard struct {
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Target      string `json:"target"`
	Description string `json:"description"`
}

// Turn is one entry in a conversation log. Turns are immutable once
// finalized, except the most recent assistant turn, which is mutated in
// place while a stream is still appending fragments to it.
type Turn struct {
	ID          string           `json:"id"`
	Text        string           `json:"text"`
	Speaker     Speaker          `json:"speaker"`
	CreatedAt   time.Time        `json:"createdAt"`
	Suggestions []SuggestionCard `json:"suggestions,omitempty"`
}
