package stream

import "encoding/json"

// DoneSentinel marks the end of a streamed response.
const DoneSentinel = "[DONE]"

// FrameKind tags the inbound frame variant.
type FrameKind int

const (
	// FrameRaw is a plain text chunk, including payloads that failed to
	// parse as the structured envelope. Malformed frames are carried as
	// literal text rather than dropped.
	FrameRaw FrameKind = iota
	// FrameStructured is a parsed {type, message|content} envelope.
	FrameStructured
)

// Frame is one inbound message from the streaming gateway.
type Frame struct {
	Kind FrameKind
	Type string
	Text string
}

// envelope mirrors the gateway's structured frame shape. Some gateways
// put the text under "message", others under "content".
type envelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Content string `json:"content"`
}

// ParseFrame attempts the structured envelope and falls back to raw
// text. The parse attempt is explicit; exceptions-as-control-flow have
// no place here.
func ParseFrame(data []byte) Frame {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Frame{Kind: FrameRaw, Text: string(data)}
	}
	if env.Type == "" && env.Message == "" && env.Content == "" {
		return Frame{Kind: FrameRaw, Text: string(data)}
	}

	text := env.Message
	if text == "" {
		text = env.Content
	}
	return Frame{Kind: FrameStructured, Type: env.Type, Text: text}
}
