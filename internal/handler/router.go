package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zenwell/zenchat/backend/internal/handler/aichat"
	"github.com/zenwell/zenchat/backend/internal/handler/chat"
	"github.com/zenwell/zenchat/backend/internal/handler/mentor"
	"github.com/zenwell/zenchat/backend/internal/handler/wellness"
	middlewarePkg "github.com/zenwell/zenchat/backend/internal/middleware"
	aiService "github.com/zenwell/zenchat/backend/internal/service/ai"
	"github.com/zenwell/zenchat/backend/internal/service/conversation"
	"github.com/zenwell/zenchat/backend/internal/store"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(manager *conversation.Manager, aiSvc *aiService.Service, st store.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(manager)
	aichatHandler := aichat.New(aiSvc, st)
	mentorHandler := mentor.New(st)
	wellnessHandler := wellness.New()

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		aichatHandler.RegisterRoutes(api)
		mentorHandler.RegisterRoutes(api)
		wellnessHandler.RegisterRoutes(api)
	})

	return r
}
