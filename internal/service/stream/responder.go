// Package stream talks to the AI gateway over a duplex WebSocket and
// aggregates streamed fragments into one assistant response per
// outgoing message.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State tracks one response cycle through its lifecycle.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateFinalized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// canEnter enumerates the legal transitions of the response cycle.
func (s State) canEnter(next State) bool {
	switch s {
	case StateIdle:
		return next == StateConnecting
	case StateConnecting:
		return next == StateStreaming || next == StateFailed
	case StateStreaming:
		return next == StateFinalized || next == StateFailed
	case StateFinalized, StateFailed:
		return next == StateIdle
	default:
		return false
	}
}

var (
	// ErrInterrupted reports an abnormal close code after streaming began.
	ErrInterrupted = errors.New("stream interrupted")
	// ErrTimeout reports a silent gateway: no frame arrived within the
	// configured read deadline.
	ErrTimeout = errors.New("stream read timed out")
)

// Config holds gateway connection settings.
type Config struct {
	GatewayURL       string
	AppID            string
	SystemPrompt     string
	ReadTimeout      time.Duration
	HandshakeTimeout time.Duration
}

// request is the single outbound frame sent after the channel opens.
type request struct {
	ConversationID string `json:"conversationId"`
	AppID          string `json:"appId"`
	SystemPrompt   string `json:"systemPrompt"`
	Message        string `json:"message"`
}

// Responder runs one streaming response cycle at a time against the
// gateway. A conversation owns at most one Responder, and the Responder
// keeps at most one live channel: opening a new cycle closes the prior
// channel first.
type Responder struct {
	cfg    Config
	dialer *websocket.Dialer

	mu    sync.Mutex
	conn  *websocket.Conn
	state State
}

// NewResponder builds a Responder for the configured gateway.
func NewResponder(cfg Config) *Responder {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 30 * time.Second
	}
	return &Responder{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		state: StateIdle,
	}
}

// State returns the current cycle state.
func (r *Responder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Responder) transition(next State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.state.canEnter(next) {
		log.Printf("[stream] unexpected transition %s -> %s", r.state, next)
	}
	r.state = next
}

// Respond opens a channel, sends the request frame and emits each
// inbound text fragment until the stream completes. It returns nil on
// normal completion, ErrInterrupted on an abnormal close, ErrTimeout on
// a silent gateway, and the transport or gateway error otherwise.
func (r *Responder) Respond(ctx context.Context, conversationID, message string, emit func(fragment string)) error {
	r.resetIdle()
	r.transition(StateConnecting)

	// Opening a new channel cancels interest in any prior channel's
	// further fragments.
	r.closeChannel()

	conn, _, err := r.dialer.DialContext(ctx, r.cfg.GatewayURL, nil)
	if err != nil {
		r.transition(StateFailed)
		return fmt.Errorf("dial gateway: %w", err)
	}

	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	defer r.closeChannel()

	req := request{
		ConversationID: conversationID,
		AppID:          r.cfg.AppID,
		SystemPrompt:   r.cfg.SystemPrompt,
		Message:        message,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		r.transition(StateFailed)
		return fmt.Errorf("marshal request frame: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		r.transition(StateFailed)
		return fmt.Errorf("send request frame: %w", err)
	}

	r.transition(StateStreaming)
	return r.readLoop(conn, emit)
}

func (r *Responder) readLoop(conn *websocket.Conn, emit func(string)) error {
	for {
		if err := conn.SetReadDeadline(time.Now().Add(r.cfg.ReadTimeout)); err != nil {
			r.transition(StateFailed)
			return fmt.Errorf("set read deadline: %w", err)
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return r.classifyReadError(err)
		}

		frame := ParseFrame(data)
		switch frame.Kind {
		case FrameStructured:
			switch frame.Type {
			case "error":
				r.transition(StateFailed)
				if frame.Text == "" {
					return errors.New("gateway reported an error")
				}
				return fmt.Errorf("gateway error: %s", frame.Text)
			case "done":
				r.transition(StateFinalized)
				return nil
			default:
				if frame.Text == DoneSentinel {
					r.transition(StateFinalized)
					return nil
				}
				if frame.Text != "" {
					emit(frame.Text)
				}
			}
		case FrameRaw:
			if frame.Text == DoneSentinel {
				r.transition(StateFinalized)
				return nil
			}
			if frame.Text != "" {
				emit(frame.Text)
			}
		}
	}
}

func (r *Responder) classifyReadError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		r.transition(StateFailed)
		return ErrTimeout
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		if closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway {
			r.transition(StateFinalized)
			return nil
		}
		// Closure with an abnormal status code still finalizes the
		// cycle; the caller appends the fixed interrupted turn.
		r.transition(StateFinalized)
		return ErrInterrupted
	}

	r.transition(StateFailed)
	return fmt.Errorf("read stream: %w", err)
}

// resetIdle rewinds a completed cycle so the next one can begin.
func (r *Responder) resetIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateFinalized || r.state == StateFailed {
		r.state = StateIdle
	}
}

// closeChannel closes the live channel, if any.
func (r *Responder) closeChannel() {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}
}

// Close releases the channel on session teardown.
func (r *Responder) Close() {
	r.closeChannel()
}
