package mentor

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zenwell/zenchat/backend/internal/store"
	"github.com/zenwell/zenchat/backend/pkg/utils"
)

const confirmationText = "A wellness mentor will contact you within 24 hours."

// Handler accepts mentor contact requests.
type Handler struct {
	st store.Store
}

// New creates the mentor handler.
func New(st store.Store) *Handler {
	return &Handler{st: st}
}

// RegisterRoutes registers the mentor routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/mentor/contact", h.handleContact)
}

// handleContact stores a contact request from the mentor form.
func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)
	payload.Query = strings.TrimSpace(payload.Query)
	if payload.Name == "" || payload.Email == "" || payload.Query == "" {
		utils.RespondError(w, http.StatusBadRequest, "all fields are required to connect with a mentor")
		return
	}

	record := store.ContactRecord{
		Name:    payload.Name,
		Email:   payload.Email,
		Message: payload.Query,
	}
	if err := h.st.SaveContact(r.Context(), record); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save contact request")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"status":  "received",
		"message": confirmationText,
	})
}
