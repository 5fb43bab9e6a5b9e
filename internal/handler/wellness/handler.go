// Package wellness serves the static catalog behind the practice pages
// the suggestion cards link to.
package wellness

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zenwell/zenchat/backend/pkg/utils"
)

// Track is one playable sound healing track.
type Track struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	File     string `json:"file"`
}

// Page describes one wellness practice page.
type Page struct {
	Route       string   `json:"route"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Steps       []string `json:"steps,omitempty"`
	Benefits    []string `json:"benefits,omitempty"`
	DurationMin []int    `json:"durationMinutes,omitempty"`
	Tracks      []Track  `json:"tracks,omitempty"`
}

func catalog() []Page {
	return []Page{
		{
			Route:    "/meditation",
			Title:    "Guided Meditation",
			Subtitle: "5-minute breathing meditation to reduce stress",
		},
		{
			Route:    "/mudra",
			Title:    "Gyan Mudra",
			Subtitle: "The Gesture of Knowledge",
			Steps: []string{
				"Sit comfortably with your spine straight",
				"Touch the tip of your index finger to the tip of your thumb",
				"Keep the other three fingers straight and relaxed",
				"Rest your hands on your knees, palms facing up",
				"Hold for 5-15 minutes while breathing deeply",
			},
			Benefits: []string{
				"Enhances concentration and memory",
				"Calms the nervous system",
				"Improves wisdom and knowledge",
				"Reduces stress and anxiety",
				"Balances the air element in body",
			},
			DurationMin: []int{5, 10, 15},
		},
		{
			Route:    "/sound",
			Title:    "Sound Healing",
			Subtitle: "Therapeutic sound therapy",
			Tracks: []Track{
				{Name: "Tibetan Singing Bowls", Duration: "15:00", File: "tibetan-bowls.mp3"},
				{Name: "Nature Sounds", Duration: "20:00", File: "nature-sounds.mp3"},
				{Name: "Crystal Healing Tones", Duration: "12:00", File: "crystal-tones.mp3"},
				{Name: "Ocean Waves", Duration: "25:00", File: "ocean-waves.mp3"},
			},
		},
	}
}

// Handler serves the wellness page catalog.
type Handler struct{}

// New creates the wellness handler.
func New() *Handler {
	return &Handler{}
}

// RegisterRoutes registers the wellness routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/wellness/pages", h.handlePages)
}

func (h *Handler) handlePages(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{"pages": catalog()})
}
