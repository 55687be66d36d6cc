package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/avramidis/dealscout/internal/database"
	"github.com/avramidis/dealscout/internal/scheduler"
)

// SystemHandlers serves host and database diagnostics plus manual job triggers
type SystemHandlers struct {
	dataDir   string
	databases map[string]*database.DB
	scheduler *scheduler.Scheduler
	log       zerolog.Logger
}

// NewSystemHandlers creates system diagnostics handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, databases map[string]*database.DB, sched *scheduler.Scheduler) *SystemHandlers {
	return &SystemHandlers{
		dataDir:   dataDir,
		databases: databases,
		scheduler: sched,
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/api/system", func(r chi.Router) {
		r.Get("/status", h.HandleStatus)
		r.Get("/disk", h.HandleDiskUsage)
		r.Get("/database/stats", h.HandleDatabaseStats)
		r.Get("/jobs", h.HandleListJobs)
		r.Get("/jobs/history", h.HandleJobHistory)
		r.Post("/jobs/{name}", h.HandleRunJob)
	})
}

// HandleStatus handles GET /api/system/status
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"timestamp": time.Now(),
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		status["cpu_percent"] = cpuPercent[0]
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		status["memory"] = map[string]interface{}{
			"total_mb":     vmStat.Total / 1024 / 1024,
			"used_mb":      vmStat.Used / 1024 / 1024,
			"used_percent": vmStat.UsedPercent,
		}
	}

	h.writeJSON(w, http.StatusOK, status)
}

// HandleDiskUsage handles GET /api/system/disk
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	size, err := getDirSize(h.dataDir)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to measure data directory")
		http.Error(w, "failed to measure data directory", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data_dir": h.dataDir,
		"size_mb":  float64(size) / 1024 / 1024,
	})
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	result := make(map[string]interface{}, len(h.databases))

	for name, db := range h.databases {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to read database stats")
			result[name] = map[string]interface{}{"error": err.Error()}
			continue
		}

		result[name] = map[string]interface{}{
			"size_mb":        float64(stats.SizeBytes) / 1024 / 1024,
			"wal_size_mb":    float64(stats.WALSizeBytes) / 1024 / 1024,
			"page_count":     stats.PageCount,
			"page_size":      stats.PageSize,
			"freelist_count": stats.FreelistCount,
		}
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleListJobs handles GET /api/system/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if h.scheduler != nil {
		names = h.scheduler.JobNames()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": names})
}

// HandleJobHistory handles GET /api/system/jobs/history
func (h *SystemHandlers) HandleJobHistory(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		http.Error(w, "scheduler not available", http.StatusServiceUnavailable)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.scheduler.History(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read job history")
		http.Error(w, "failed to read job history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"history": runs})
}

// HandleRunJob handles POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if h.scheduler == nil {
		http.Error(w, "scheduler not available", http.StatusServiceUnavailable)
		return
	}

	if err := h.scheduler.RunNow(name); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"job":   name,
			"error": err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"job":    name,
		"status": "completed",
	})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// getDirSize walks a directory and sums regular file sizes
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
