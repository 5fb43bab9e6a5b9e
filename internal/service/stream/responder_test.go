package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// gatewayFunc drives one fake gateway conversation after the request
// frame has been read.
type gatewayFunc func(conn *websocket.Conn, req request)

func newGateway(t *testing.T, fn gatewayFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade err: %v", err)
			return
		}
		defer conn.Close()

		var req request
		if err := conn.ReadJSON(&req); err != nil {
			t.Errorf("read request frame err: %v", err)
			return
		}
		fn(conn, req)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestResponder(srv *httptest.Server) *Responder {
	return NewResponder(Config{
		GatewayURL:   wsURL(srv),
		AppID:        "zenchat-test",
		SystemPrompt: "stay on wellness topics",
		ReadTimeout:  2 * time.Second,
	})
}

func TestRespondCoalescesRawFragments(t *testing.T) {
	srv := newGateway(t, func(conn *websocket.Conn, _ request) {
		for _, chunk := range []string{"Hel", "lo wor", "ld."} {
			conn.WriteMessage(websocket.TextMessage, []byte(chunk))
		}
		conn.WriteMessage(websocket.TextMessage, []byte(DoneSentinel))
	})
	defer srv.Close()

	r := newTestResponder(srv)
	var got []string
	err := r.Respond(context.Background(), "conv-1", "hello", func(fragment string) {
		got = append(got, fragment)
	})
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if strings.Join(got, "") != "Hello world." {
		t.Fatalf("unexpected fragments: %q", got)
	}
	if r.State() != StateFinalized {
		t.Fatalf("expected finalized state, got %s", r.State())
	}
}

func TestRespondHandlesStructuredFrames(t *testing.T) {
	srv := newGateway(t, func(conn *websocket.Conn, _ request) {
		conn.WriteJSON(map[string]string{"type": "delta", "content": "breathe "})
		conn.WriteJSON(map[string]string{"type": "delta", "message": "deeply"})
		conn.WriteJSON(map[string]string{"type": "done"})
	})
	defer srv.Close()

	r := newTestResponder(srv)
	var got strings.Builder
	err := r.Respond(context.Background(), "conv-1", "hi", func(fragment string) {
		got.WriteString(fragment)
	})
	if err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if got.String() != "breathe deeply" {
		t.Fatalf("unexpected text: %q", got.String())
	}
}

func TestRespondSendsRequestFrame(t *testing.T) {
	frames := make(chan request, 1)
	srv := newGateway(t, func(conn *websocket.Conn, req request) {
		frames <- req
		conn.WriteMessage(websocket.TextMessage, []byte(DoneSentinel))
	})
	defer srv.Close()

	r := newTestResponder(srv)
	if err := r.Respond(context.Background(), "conv-42", "how are you", func(string) {}); err != nil {
		t.Fatalf("Respond err: %v", err)
	}

	req := <-frames
	if req.ConversationID != "conv-42" || req.AppID != "zenchat-test" || req.Message != "how are you" {
		t.Fatalf("unexpected request frame: %+v", req)
	}
	if req.SystemPrompt == "" {
		t.Fatal("system prompt missing from request frame")
	}
}

func TestRespondErrorFrameFails(t *testing.T) {
	srv := newGateway(t, func(conn *websocket.Conn, _ request) {
		conn.WriteJSON(map[string]string{"type": "error", "message": "model overloaded"})
	})
	defer srv.Close()

	r := newTestResponder(srv)
	err := r.Respond(context.Background(), "conv-1", "hi", func(string) {})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if r.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", r.State())
	}
}

func TestRespondAbnormalClose(t *testing.T) {
	srv := newGateway(t, func(conn *websocket.Conn, _ request) {
		// Close with an abnormal status code before sending anything.
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "boom"), time.Now().Add(time.Second))
	})
	defer srv.Close()

	r := newTestResponder(srv)
	fragments := 0
	err := r.Respond(context.Background(), "conv-1", "hi", func(string) { fragments++ })
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if fragments != 0 {
		t.Fatalf("expected zero fragments, got %d", fragments)
	}
}

func TestRespondNormalCloseFinalizes(t *testing.T) {
	srv := newGateway(t, func(conn *websocket.Conn, _ request) {
		conn.WriteMessage(websocket.TextMessage, []byte("peace"))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	})
	defer srv.Close()

	r := newTestResponder(srv)
	var got strings.Builder
	if err := r.Respond(context.Background(), "conv-1", "hi", func(f string) { got.WriteString(f) }); err != nil {
		t.Fatalf("Respond err: %v", err)
	}
	if got.String() != "peace" {
		t.Fatalf("unexpected text: %q", got.String())
	}
}

func TestRespondSilentGatewayTimesOut(t *testing.T) {
	srv := newGateway(t, func(conn *websocket.Conn, _ request) {
		// Never send a frame, never close; the client deadline fires.
		time.Sleep(2 * time.Second)
	})
	defer srv.Close()

	r := NewResponder(Config{
		GatewayURL:  wsURL(srv),
		ReadTimeout: 100 * time.Millisecond,
	})
	err := r.Respond(context.Background(), "conv-1", "hi", func(string) {})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestRespondDialFailure(t *testing.T) {
	r := NewResponder(Config{
		GatewayURL:       "ws://127.0.0.1:1/nowhere",
		HandshakeTimeout: 500 * time.Millisecond,
	})
	if err := r.Respond(context.Background(), "conv-1", "hi", func(string) {}); err == nil {
		t.Fatal("expected dial error")
	}
	if r.State() != StateFailed {
		t.Fatalf("expected failed state, got %s", r.State())
	}
}

func TestParseFrameVariants(t *testing.T) {
	cases := []struct {
		in       string
		kind     FrameKind
		typ      string
		text     string
	}{
		{`{"type":"delta","content":"hi"}`, FrameStructured, "delta", "hi"},
		{`{"type":"message","message":"hello"}`, FrameStructured, "message", "hello"},
		{`{"message":"bare"}`, FrameStructured, "", "bare"},
		{`plain text chunk`, FrameRaw, "", "plain text chunk"},
		{`{"broken":`, FrameRaw, "", `{"broken":`},
		{`{"unrelated":1}`, FrameRaw, "", `{"unrelated":1}`},
	}
	for _, tc := range cases {
		got := ParseFrame([]byte(tc.in))
		if got.Kind != tc.kind || got.Type != tc.typ || got.Text != tc.text {
			t.Fatalf("ParseFrame(%q) = %+v", tc.in, got)
		}
	}
}
