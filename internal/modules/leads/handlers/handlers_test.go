package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avramidis/dealscout/internal/events"
	"github.com/avramidis/dealscout/internal/modules/leads"
	testdb "github.com/avramidis/dealscout/internal/testing"
)

func newTestRouter(t *testing.T) *chi.Mux {
	db, cleanup := testdb.NewTestDB(t, "leads")
	t.Cleanup(cleanup)

	bus := events.NewBus(zerolog.Nop())
	manager := events.NewManager(bus, zerolog.Nop())
	repo := leads.NewRepository(db.Conn(), zerolog.Nop())
	svc := leads.NewService(repo, manager, nil, zerolog.Nop())
	require.NoError(t, svc.LoadState())

	r := chi.NewRouter()
	NewHandler(svc, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func createLead(t *testing.T, router *chi.Mux) leads.Lead {
	body := `{"address":"12 Oak Ave","city":"Springfield","offer_price":200000,
		"rehab_costs":30000,"arv":300000,"potential_rent":2500,"units":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var lead leads.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	return lead
}

func TestLeadCRUD(t *testing.T) {
	router := newTestRouter(t)

	lead := createLead(t, router)
	require.NotEmpty(t, lead.ID)

	// get
	req := httptest.NewRequest(http.MethodGet, "/api/leads/"+lead.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// update
	req = httptest.NewRequest(http.MethodPut, "/api/leads/"+lead.ID,
		strings.NewReader(`{"address":"12 Oak Ave","potential_rent":2800,"units":1}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"potential_rent":2800`)

	// delete
	req = httptest.NewRequest(http.MethodDelete, "/api/leads/"+lead.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/leads/"+lead.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeadCreateRejectsInvalid(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"city":"no address"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadStatusEndpoint(t *testing.T) {
	router := newTestRouter(t)
	lead := createLead(t, router)

	req := httptest.NewRequest(http.MethodPost, "/api/leads/"+lead.ID+"/status",
		strings.NewReader(`{"status":"offer_made"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"offer_made"`)

	req = httptest.NewRequest(http.MethodPost, "/api/leads/"+lead.ID+"/status",
		strings.NewReader(`{"status":"bogus"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueueEndpoints(t *testing.T) {
	router := newTestRouter(t)
	createLead(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/leads/queue", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []leads.QueueItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, 10, items[0].HoldScore)
	assert.InDelta(t, 175000, items[0].MAO, 1e-9)

	req = httptest.NewRequest(http.MethodGet, "/api/leads/queue/counts", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"new":1`)
}
