// Package handlers provides the HTTP handler for ad-hoc deal evaluation.
package handlers

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/modules/scoring"
)

// EvaluationCache is the optional read-through cache for computed evaluations
type EvaluationCache interface {
	Get(inputHash string) (*scoring.Evaluation, bool)
	Put(inputHash, leadID string, eval *scoring.Evaluation) error
}

// Handler provides HTTP handlers for scoring endpoints
type Handler struct {
	cache EvaluationCache
	log   zerolog.Logger
}

// NewHandler creates a new scoring handler. cache may be nil.
func NewHandler(cache EvaluationCache, log zerolog.Logger) *Handler {
	return &Handler{
		cache: cache,
		log:   log.With().Str("handler", "scoring").Logger(),
	}
}

// RegisterRoutes registers scoring routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/evaluate", h.HandleEvaluate)
}

// HandleEvaluate handles POST /api/evaluate. It takes a financial snapshot
// and returns the full derived evaluation without touching any lead. Used by
// the quick-check dialog before a lead exists.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var snapshot scoring.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateSnapshot(snapshot); err != "" {
		http.Error(w, err, http.StatusBadRequest)
		return
	}

	eval := h.Evaluate(snapshot, "")

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(eval); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode evaluation response")
	}
}

// Evaluate computes (or returns the cached) evaluation for a snapshot.
// leadID may be empty for ad-hoc evaluations.
func (h *Handler) Evaluate(snapshot scoring.Snapshot, leadID string) *scoring.Evaluation {
	hash := snapshot.Hash()

	if h.cache != nil {
		if cached, found := h.cache.Get(hash); found {
			return cached
		}
	}

	eval := scoring.Evaluate(snapshot)

	if h.cache != nil {
		if err := h.cache.Put(hash, leadID, &eval); err != nil {
			h.log.Warn().Err(err).Msg("Failed to cache evaluation")
		}
	}

	return &eval
}

// validateSnapshot rejects inputs the pure scoring layer would happily
// propagate. Returns an error message, or "" when the snapshot is clean.
func validateSnapshot(s scoring.Snapshot) string {
	fields := map[string]float64{
		"offer_price":    s.OfferPrice,
		"rehab_costs":    s.RehabCosts,
		"arv":            s.ARV,
		"potential_rent": s.PotentialRent,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return name + " must be a finite number"
		}
		if v < 0 {
			return name + " must not be negative"
		}
	}
	if s.Units < 0 {
		return "units must not be negative"
	}
	return ""
}
