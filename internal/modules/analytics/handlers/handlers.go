// Package handlers provides HTTP handlers for pipeline analytics.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/modules/analytics"
)

// Handler provides HTTP handlers for analytics endpoints
type Handler struct {
	service *analytics.Service
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// RegisterRoutes registers analytics routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/analytics/pipeline", h.HandlePipeline)
}

// HandlePipeline handles GET /api/analytics/pipeline
func (h *Handler) HandlePipeline(w http.ResponseWriter, r *http.Request) {
	stats := h.service.PipelineStats()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode pipeline stats")
	}
}
