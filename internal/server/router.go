package server

import (
	"net/http"

	"github.com/cloo-solutions/communityos/internal/api/handlers"
	"github.com/cloo-solutions/communityos/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes int64 = 1 << 20

type RouterConfig struct {
	Logger             logrus.FieldLogger
	HealthHandler      *handlers.HealthHandler
	SearchHandler      *handlers.SearchHandler
	MatchHandler       *handlers.MatchHandler
	ParticipantHandler *handlers.ParticipantHandler
	IntroHandler       *handlers.IntroHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Health)

	r.Post("/search", cfg.SearchHandler.Search)
	r.Post("/matches", cfg.MatchHandler.Match)
	r.Post("/intro", cfg.IntroHandler.Generate)

	r.Route("/participants", func(r chi.Router) {
		r.Get("/", cfg.ParticipantHandler.List)
		r.Get("/{id}", cfg.ParticipantHandler.Get)
		r.Put("/{id}/status", cfg.ParticipantHandler.UpdateStatus)
	})

	r.Get("/skills", cfg.ParticipantHandler.Skills)
	r.Get("/stats", cfg.ParticipantHandler.Stats)

	return r
}
