// Package aichat serves the one-shot chat completion endpoint used by
// clients that do not hold a streaming conversation open.
package aichat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zenwell/zenchat/backend/internal/model/chat"
	"github.com/zenwell/zenchat/backend/internal/service/ai"
	"github.com/zenwell/zenchat/backend/internal/store"
	"github.com/zenwell/zenchat/backend/pkg/utils"
)

// fallbackResponse keeps the companion voice even when the model call
// fails outright.
const fallbackResponse = "I'm experiencing some difficulties right now. Let me share some wisdom: " +
	"even in uncertainty, there is an opportunity for growth. Take a deep breath and try again in a moment. 🌱"

// promptEmotionWindow bounds how many recent emotion tags flavor the
// system prompt.
const promptEmotionWindow = 3

// Handler answers POST /ai-chat.
type Handler struct {
	aiSvc *ai.Service
	st    store.Store
}

// New creates the one-shot chat handler. aiSvc may be nil when no model
// credentials are configured.
func New(aiSvc *ai.Service, st store.Store) *Handler {
	return &Handler{aiSvc: aiSvc, st: st}
}

// RegisterRoutes registers the one-shot chat route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ai-chat", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message   string `json:"message"`
		SessionID string `json:"sessionId"`
		UserID    string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	if h.aiSvc == nil {
		respondFallback(w, errors.New("ai service not configured"))
		return
	}

	ctx := r.Context()
	authenticated := payload.UserID != "" && !strings.HasPrefix(payload.UserID, "anonymous_")

	// Recent emotion tags personalize the system prompt for returning
	// users. Lookup failures degrade to an unpersonalized prompt.
	var recentEmotions []string
	if h.st != nil && authenticated {
		if prof, err := h.st.Profile(ctx, payload.UserID); err == nil {
			emotions := prof.PastEmotions
			if len(emotions) > promptEmotionWindow {
				emotions = emotions[len(emotions)-promptEmotionWindow:]
			}
			recentEmotions = emotions
		} else if !errors.Is(err, store.ErrProfileNotFound) {
			log.Printf("[ai-chat] profile lookup failed for user=%s: %v", payload.UserID, err)
		}
	}

	var history []store.MessageRecord
	if h.st != nil && payload.SessionID != "" {
		records, err := h.st.Messages(ctx, payload.SessionID)
		if err != nil {
			log.Printf("[ai-chat] history lookup failed for session=%s: %v", payload.SessionID, err)
		} else {
			history = records
		}
	}

	response, err := h.aiSvc.GenerateResponse(ctx, history, recentEmotions, payload.Message)
	if err != nil {
		respondFallback(w, err)
		return
	}

	suggestions := ai.DetectWellnessTriggers(payload.Message)

	h.persistExchange(ctx, payload.SessionID, payload.UserID, payload.Message, response, suggestions)

	if authenticated {
		if tags := ai.DetectEmotions(payload.Message); len(tags) > 0 && h.st != nil {
			if err := h.st.RecordEmotions(ctx, payload.UserID, tags); err != nil {
				log.Printf("[ai-chat] emotion tracking failed for user=%s: %v", payload.UserID, err)
			}
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"response":    response,
		"suggestions": suggestions,
	})
}

// persistExchange saves both turns of the exchange. Persistence stays
// best-effort; failures are logged and the response still goes out.
func (h *Handler) persistExchange(ctx context.Context, sessionID, userID, message, response string, suggestions []chat.SuggestionCard) {
	if h.st == nil || sessionID == "" {
		return
	}

	userRecord := store.MessageRecord{
		SessionID: sessionID,
		UserID:    userID,
		Content:   message,
		Role:      "user",
	}
	if err := h.st.SaveMessage(ctx, userRecord); err != nil {
		log.Printf("[ai-chat] failed to save user message for session=%s: %v", sessionID, err)
	}

	assistantRecord := store.MessageRecord{
		SessionID:   sessionID,
		UserID:      userID,
		Content:     response,
		Role:        "assistant",
		Suggestions: suggestions,
	}
	if err := h.st.SaveMessage(ctx, assistantRecord); err != nil {
		log.Printf("[ai-chat] failed to save assistant message for session=%s: %v", sessionID, err)
	}
}

// respondFallback answers a failed model call with the fixed wellness
// fallback so the client always has something to show.
func respondFallback(w http.ResponseWriter, err error) {
	log.Printf("[ai-chat] falling back: %v", err)
	utils.RespondJSON(w, http.StatusInternalServerError, map[string]any{
		"error":    err.Error(),
		"response": fallbackResponse,
	})
}
