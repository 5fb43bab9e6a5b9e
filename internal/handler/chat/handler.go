package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/zenwell/zenchat/backend/internal/model/chat"
	"github.com/zenwell/zenchat/backend/internal/service/conversation"
	"github.com/zenwell/zenchat/backend/pkg/utils"
)

// Handler exposes the conversation lifecycle over HTTP.
type Handler struct {
	manager *conversation.Manager
}

// New creates the conversation handler.
func New(manager *conversation.Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes registers the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleOpenSession)
	r.Get("/session/{conversationID}/turns", h.handleTurns)
	r.Post("/session/{conversationID}/messages", h.handleSendMessage)
	r.Post("/session/{conversationID}/clear", h.handleClear)
	r.Post("/session/{conversationID}/wellness-return", h.handleWellnessReturn)
}

// handleOpenSession opens a conversation. The response carries the local
// session immediately; persistence upgrades in the background.
func (h *Handler) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	ctrl := h.manager.Open(r.Context())

	respondJSON(w, http.StatusCreated, map[string]any{
		"conversationId": ctrl.ID(),
		"session":        ctrl.Session(),
		"turns":          ctrl.Turns(),
	})
}

// handleTurns returns the visible chat log.
func (h *Handler) handleTurns(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.manager.Get(chi.URLParam(r, "conversationID"))
	if !ok {
		respondError(w, http.StatusNotFound, "conversation not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session": ctrl.Session(),
		"turns":   ctrl.Turns(),
	})
}

// handleSendMessage runs one exchange and streams turn updates as SSE
// events, closing with a [DONE] chunk.
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.manager.Get(chi.URLParam(r, "conversationID"))
	if !ok {
		respondError(w, http.StatusNotFound, "conversation not found")
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Headers go out with the first event, so guard failures below can
	// still answer with a plain status code.
	wrote := false
	sink := func(event conversation.Event, turn chatModel.Turn) {
		if !wrote {
			utils.SetupSSEHeaders(w)
			wrote = true
		}
		utils.SendSSEEvent(w, flusher, string(event), turn)
	}

	if _, err := ctrl.Send(r.Context(), payload.Message, sink); err != nil {
		switch {
		case errors.Is(err, conversation.ErrBusy):
			respondError(w, http.StatusConflict, "a response is already in progress")
		case errors.Is(err, conversation.ErrEmptyMessage):
			respondError(w, http.StatusBadRequest, "message is required")
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	utils.SendSSEChunk(w, flusher, "[DONE]")
}

// handleClear resets the conversation to a fresh welcome turn.
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.manager.Get(chi.URLParam(r, "conversationID"))
	if !ok {
		respondError(w, http.StatusNotFound, "conversation not found")
		return
	}

	ctrl.Clear()
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "cleared",
		"turns":  ctrl.Turns(),
	})
}

// handleWellnessReturn appends the follow-up turn shown after the user
// comes back from a wellness practice page.
func (h *Handler) handleWellnessReturn(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.manager.Get(chi.URLParam(r, "conversationID"))
	if !ok {
		respondError(w, http.StatusNotFound, "conversation not found")
		return
	}

	var payload struct {
		SessionType string `json:"sessionType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := ctrl.WellnessReturn(payload.SessionType)
	if err != nil {
		if errors.Is(err, conversation.ErrBusy) {
			respondError(w, http.StatusConflict, "a response is already in progress")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, turn)
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
