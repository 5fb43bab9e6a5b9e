package aichat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zenwell/zenchat/backend/internal/store"
)

func setupRouter() *chi.Mux {
	handler := New(nil, store.NewMemory())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/ai-chat", bytes.NewReader([]byte(`{"message":""}`)))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatFallsBackWithoutModel(t *testing.T) {
	r := setupRouter()

	payload, _ := json.Marshal(map[string]string{
		"message":   "I feel stressed",
		"sessionId": "s1",
		"userId":    "anonymous_123",
	})
	req := httptest.NewRequest(http.MethodPost, "/ai-chat", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}

	var body struct {
		Error    string `json:"error"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Response != fallbackResponse {
		t.Fatalf("expected fixed fallback response, got %q", body.Response)
	}
	if body.Error == "" {
		t.Fatal("expected an error field")
	}
}

func TestChatRejectsMalformedBody(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/ai-chat", bytes.NewReader([]byte(`{`)))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
