// ReelRank - Short-Video Feed Ranking Engine
// Copyright 2026 ReelKit
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelkit/reelrank

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelkit/reelrank/internal/config"
	"github.com/reelkit/reelrank/internal/middleware"
)

// NewRouter assembles the full HTTP surface. The middleware order matters:
// request IDs come first so every later log line carries one, and viewer
// identity runs before the handlers that personalize on it.
func NewRouter(h *Handler, apiCfg *config.APIConfig, secCfg *config.SecurityConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   apiCfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(
			apiCfg.RateLimitReqs,
			apiCfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
		r.Use(chimiddleware.Timeout(apiCfg.RequestTimeout))
		r.Use(middleware.Metrics)
		r.Use(middleware.ViewerIdentity(secCfg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compression)
			r.Get("/feed", h.Feed)
			r.Get("/trending", h.Trending)
		})

		r.Post("/telemetry/events", h.TelemetryEvents)
		r.Post("/feedback", h.Feedback)

		r.Post("/live/{creatorID}", h.LiveStart)
		r.Delete("/live/{creatorID}", h.LiveEnd)

		r.Route("/health", func(r chi.Router) {
			r.Get("/", h.Health)
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
