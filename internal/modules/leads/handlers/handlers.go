// Package handlers provides HTTP handlers for lead management and the work
// queue endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/modules/leads"
)

// Handler provides HTTP handlers for lead endpoints
type Handler struct {
	service *leads.Service
	log     zerolog.Logger
}

// NewHandler creates a new leads handler
func NewHandler(service *leads.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "leads").Logger(),
	}
}

// RegisterRoutes registers lead routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/leads", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/queue", h.HandleQueue)
		r.Get("/queue/counts", h.HandleQueueCounts)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Post("/status", h.HandleChangeStatus)
		})
	})
}

// HandleList handles GET /api/leads
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list leads")
		http.Error(w, "Failed to list leads", http.StatusInternalServerError)
		return
	}
	if all == nil {
		all = []leads.Lead{}
	}

	writeJSON(w, h.log, all)
}

// HandleCreate handles POST /api/leads
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var lead leads.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(lead)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create lead")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(created); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode lead response")
	}
}

// HandleGet handles GET /api/leads/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := h.service.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Str("lead_id", id).Msg("Failed to get lead")
		http.Error(w, "Failed to get lead", http.StatusInternalServerError)
		return
	}
	if lead == nil {
		http.Error(w, "Lead not found", http.StatusNotFound)
		return
	}

	writeJSON(w, h.log, lead)
}

// HandleUpdate handles PUT /api/leads/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var lead leads.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	lead.ID = id

	updated, err := h.service.Update(lead)
	if err != nil {
		h.log.Error().Err(err).Str("lead_id", id).Msg("Failed to update lead")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if updated == nil {
		http.Error(w, "Lead not found", http.StatusNotFound)
		return
	}

	writeJSON(w, h.log, updated)
}

// HandleDelete handles DELETE /api/leads/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(id); err != nil {
		h.log.Error().Err(err).Str("lead_id", id).Msg("Failed to delete lead")
		http.Error(w, "Lead not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleChangeStatus handles POST /api/leads/{id}/status
func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status := leads.Status(body.Status)
	if !status.Valid() {
		http.Error(w, "Invalid status: "+body.Status, http.StatusBadRequest)
		return
	}

	updated, err := h.service.ChangeStatus(id, status)
	if err != nil {
		h.log.Error().Err(err).Str("lead_id", id).Msg("Failed to change lead status")
		http.Error(w, "Failed to change status", http.StatusInternalServerError)
		return
	}
	if updated == nil {
		http.Error(w, "Lead not found", http.StatusNotFound)
		return
	}

	writeJSON(w, h.log, updated)
}

// HandleQueue handles GET /api/leads/queue
func (h *Handler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	items := h.service.Queue()
	if items == nil {
		items = []leads.QueueItem{}
	}
	writeJSON(w, h.log, items)
}

// HandleQueueCounts handles GET /api/leads/queue/counts
func (h *Handler) HandleQueueCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, h.service.Counts())
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
