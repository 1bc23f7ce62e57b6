package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mapa-service/internal/config"
	importHnd "mapa-service/internal/importer/handler"
	"mapa-service/internal/middleware"
	"mapa-service/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, imports *importHnd.Handler, db handlers.Pinger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(db))

	imports.Routes(r)

	return r
}
