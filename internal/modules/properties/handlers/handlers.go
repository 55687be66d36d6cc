// Package handlers provides HTTP handlers for property financial detail.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/modules/properties"
)

// Handler provides HTTP handlers for property endpoints
type Handler struct {
	service *properties.Service
	log     zerolog.Logger
}

// NewHandler creates a new properties handler
func NewHandler(service *properties.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "properties").Logger(),
	}
}

// RegisterRoutes registers property routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/properties/{leadID}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Post("/expenses", h.HandleAddExpense)
		r.Delete("/expenses/{id}", h.HandleDeleteExpense)
		r.Post("/capital-costs", h.HandleAddCapitalCost)
		r.Delete("/capital-costs/{id}", h.HandleDeleteCapitalCost)
		r.Post("/units", h.HandleAddUnit)
		r.Put("/units/{id}", h.HandleUpdateUnit)
		r.Delete("/units/{id}", h.HandleDeleteUnit)
		r.Put("/metadata", h.HandleIngestMetadata)
	})
}

// HandleGet handles GET /api/properties/{leadID}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	property, err := h.service.Get(leadID)
	if err != nil {
		h.log.Error().Err(err).Str("lead_id", leadID).Msg("Failed to get property detail")
		http.Error(w, "Failed to get property detail", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.log, property)
}

// HandleAddExpense handles POST /api/properties/{leadID}/expenses
func (h *Handler) HandleAddExpense(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	var expense properties.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	expense.LeadID = leadID

	added, err := h.service.AddExpense(expense)
	if err != nil {
		h.log.Error().Err(err).Str("lead_id", leadID).Msg("Failed to add expense")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(added)
}

// HandleDeleteExpense handles DELETE /api/properties/{leadID}/expenses/{id}
func (h *Handler) HandleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	h.handleDelete(w, r, h.service.DeleteExpense)
}

// HandleAddCapitalCost handles POST /api/properties/{leadID}/capital-costs
func (h *Handler) HandleAddCapitalCost(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	var cost properties.CapitalCost
	if err := json.NewDecoder(r.Body).Decode(&cost); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cost.LeadID = leadID

	added, err := h.service.AddCapitalCost(cost)
	if err != nil {
		h.log.Error().Err(err).Str("lead_id", leadID).Msg("Failed to add capital cost")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(added)
}

// HandleDeleteCapitalCost handles DELETE /api/properties/{leadID}/capital-costs/{id}
func (h *Handler) HandleDeleteCapitalCost(w http.ResponseWriter, r *http.Request) {
	h.handleDelete(w, r, h.service.DeleteCapitalCost)
}

// HandleAddUnit handles POST /api/properties/{leadID}/units
func (h *Handler) HandleAddUnit(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	var unit properties.Unit
	if err := json.NewDecoder(r.Body).Decode(&unit); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	unit.LeadID = leadID

	added, err := h.service.AddUnit(unit)
	if err != nil {
		h.log.Error().Err(err).Str("lead_id", leadID).Msg("Failed to add unit")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(added)
}

// HandleUpdateUnit handles PUT /api/properties/{leadID}/units/{id}
func (h *Handler) HandleUpdateUnit(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid unit ID", http.StatusBadRequest)
		return
	}

	var unit properties.Unit
	if err := json.NewDecoder(r.Body).Decode(&unit); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	unit.ID = id
	unit.LeadID = leadID

	if err := h.service.UpdateUnit(unit); err != nil {
		h.log.Error().Err(err).Int64("unit_id", id).Msg("Failed to update unit")
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, h.log, unit)
}

// HandleDeleteUnit handles DELETE /api/properties/{leadID}/units/{id}
func (h *Handler) HandleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	h.handleDelete(w, r, h.service.DeleteUnit)
}

// HandleIngestMetadata handles PUT /api/properties/{leadID}/metadata.
// The body is the raw scraped JSON object; typing happens server-side.
func (h *Handler) HandleIngestMetadata(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resolved, err := h.service.IngestMetadata(leadID, raw)
	if err != nil {
		h.log.Error().Err(err).Str("lead_id", leadID).Msg("Failed to ingest metadata")
		http.Error(w, "Failed to ingest metadata", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.log, resolved)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, del func(leadID string, id int64) error) {
	leadID := chi.URLParam(r, "leadID")
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := del(leadID, id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
