package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/system", s.handleSystemMetrics)
		r.Get("/params", s.handleListParams)
		r.Get(s.hub.cfg.Path, s.handleWebSocket)

		if s.gatherer != nil {
			r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
				ErrorHandling: promhttp.HTTPErrorOnError,
			}))
		}

		r.Route("/fontsounds", func(r chi.Router) {
			r.Get("/", s.handleListFontsounds)
			r.Post("/", s.handleGenFontsounds)
			r.Delete("/", s.handleDeleteFontsounds)
			r.Get("/stats", s.handleFontsoundStats)
			r.Get("/error", s.handleGetError)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetFontsound)
				r.Get("/params/{param}", s.handleGetParam)
				r.Put("/params/{param}", s.handleSetParam)
			})
		})

		r.Route("/banks", func(r chi.Router) {
			r.Get("/", s.handleListBanks)
			r.Post("/", s.handleCaptureBank)
			r.Post("/import", s.handleImportBank)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetBank)
				r.Delete("/", s.handleDeleteBank)
				r.Get("/export", s.handleExportBank)
				r.Post("/restore", s.handleRestoreBank)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"device":  s.device.Name(),
	})
}
