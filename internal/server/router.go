// Package server exposes the converter over HTTP.
package server

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cleared-dev/cpa005/internal/config"
	"github.com/cleared-dev/cpa005/internal/runlog"
	"github.com/cleared-dev/cpa005/internal/source"
)

// defaultMaxUpload bounds the request body of a conversion upload.
const defaultMaxUpload = 32 << 20

// NewRouter creates the chi router with all routes mounted. history may be
// nil, in which case runs are not recorded.
func NewRouter(cfg *config.Config, history runlog.Store, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &Handlers{
		cfg:       cfg,
		history:   history,
		sources:   source.DefaultRegistry(),
		logger:    logger,
		now:       time.Now,
		maxUpload: defaultMaxUpload,
	}
	return h.routes()
}

func (h *Handlers) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Post("/convert", h.Convert)
	r.Get("/runs", h.ListRuns)

	return r
}
