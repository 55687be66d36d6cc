package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avramidis/dealscout/internal/config"
	"github.com/avramidis/dealscout/internal/events"
	"github.com/avramidis/dealscout/internal/scheduler"
	testdb "github.com/avramidis/dealscout/internal/testing"
)

type countingJob struct {
	runs int
}

func (j *countingJob) Name() string { return "counting" }
func (j *countingJob) Run() error {
	j.runs++
	return nil
}

func newTestServer(t *testing.T) (*Server, *countingJob) {
	t.Helper()

	leadsDB, cleanupLeads := testdb.NewTestDB(t, "leads")
	t.Cleanup(cleanupLeads)
	configDB, cleanupConfig := testdb.NewTestDB(t, "config")
	t.Cleanup(cleanupConfig)
	cacheDB, cleanupCache := testdb.NewTestDB(t, "cache")
	t.Cleanup(cleanupCache)

	sched := scheduler.New(cacheDB, nil, zerolog.Nop())
	job := &countingJob{}
	require.NoError(t, sched.AddJob("@daily", job))

	srv := New(Config{
		Log: zerolog.Nop(),
		Cfg: &config.Config{
			DataDir: t.TempDir(),
			Port:    0,
			DevMode: true,
		},
		Bus:      events.NewBus(zerolog.Nop()),
		LeadsDB:  leadsDB,
		ConfigDB: configDB,
		CacheDB:  cacheDB,

		Scheduler: sched,
	})

	return srv, job
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthEndpointReportsClosedDatabase(t *testing.T) {
	leadsDB, cleanupLeads := testdb.NewTestDB(t, "leads")
	t.Cleanup(cleanupLeads)
	configDB, cleanupConfig := testdb.NewTestDB(t, "config")
	t.Cleanup(cleanupConfig)
	cacheDB, cleanupCache := testdb.NewTestDB(t, "cache")
	t.Cleanup(cleanupCache)

	srv := New(Config{
		Log: zerolog.Nop(),
		Cfg: &config.Config{
			DataDir: t.TempDir(),
			Port:    0,
			DevMode: true,
		},
		Bus:      events.NewBus(zerolog.Nop()),
		LeadsDB:  leadsDB,
		ConfigDB: configDB,
		CacheDB:  cacheDB,

		Scheduler: scheduler.New(nil, nil, zerolog.Nop()),
	})

	require.NoError(t, leadsDB.Close())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","database":"leads"}`, rec.Body.String())
}

func TestSystemStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Contains(t, status, "timestamp")
}

func TestSystemDiskUsage(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/disk", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "size_mb")
}

func TestSystemDatabaseStats(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/database/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	for _, name := range []string{"leads", "config", "cache"} {
		require.Contains(t, stats, name)
		assert.Contains(t, stats[name], "page_count")
	}
}

func TestManualJobTrigger(t *testing.T) {
	srv, job := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/system/jobs/counting", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, job.runs)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/system/jobs/nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListJobs(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/jobs", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Jobs []string `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Jobs, "counting")
}

func TestJobHistoryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/system/jobs/counting", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/system/jobs/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		History []struct {
			JobName string `json:"job_name"`
			Status  string `json:"status"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.History, 1)
	assert.Equal(t, "counting", body.History[0].JobName)
	assert.Equal(t, "ok", body.History[0].Status)
}
