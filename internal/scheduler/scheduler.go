// Package scheduler runs background jobs on cron schedules: the nightly
// rescore, WAL checkpoint sweeps, cache cleanup and offsite backups.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/database"
	"github.com/avramidis/dealscout/internal/events"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs. Every run, scheduled or manual, is
// recorded in the cache database's job_history table and announced on the
// event bus.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]Job
	history *database.DB
	events  *events.Manager
	log     zerolog.Logger
}

// New creates a new scheduler. history is the cache database; it and the
// event manager may be nil in tests.
func New(history *database.DB, eventManager *events.Manager, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		jobs:    make(map[string]Job),
		history: history,
		events:  eventManager,
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job with a cron schedule.
// Schedule examples: "@daily", "@every 1h", "30 3 * * *".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	s.jobs[job.Name()] = job

	_, err := s.cron.AddFunc(schedule, func() {
		s.execute(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// RunNow executes a registered job immediately, outside its schedule.
// Used by the manual trigger endpoint.
func (s *Scheduler) RunNow(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}

	s.log.Info().Str("job", name).Msg("Running job on demand")
	return s.execute(job)
}

// JobRun is one recorded job execution
type JobRun struct {
	JobName    string `json:"job_name"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt int64  `json:"finished_at"`
}

// History returns the most recent job runs, newest first
func (s *Scheduler) History(limit int) ([]JobRun, error) {
	if s.history == nil {
		return []JobRun{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.history.Query(
		`SELECT job_name, status, detail, started_at, finished_at
		 FROM job_history ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read job history: %w", err)
	}
	defer rows.Close()

	runs := []JobRun{}
	for rows.Next() {
		var run JobRun
		if err := rows.Scan(&run.JobName, &run.Status, &run.Detail, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job history: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// JobNames returns the registered job names
func (s *Scheduler) JobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// execute runs a job, records its outcome and announces completion
func (s *Scheduler) execute(job Job) error {
	start := time.Now()
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	err := job.Run()
	duration := time.Since(start)

	detail := ""
	if err != nil {
		detail = err.Error()
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Dur("duration", duration).
			Msg("Job failed")
	} else {
		s.log.Debug().
			Str("job", job.Name()).
			Dur("duration", duration).
			Msg("Job completed")
	}

	s.recordHistory(job.Name(), err == nil, detail, start, duration)

	if s.events != nil {
		s.events.EmitTyped("scheduler", &events.JobCompletedData{
			JobName:  job.Name(),
			Success:  err == nil,
			Detail:   detail,
			Duration: duration.Milliseconds(),
		})
	}

	return err
}

func (s *Scheduler) recordHistory(name string, success bool, detail string, start time.Time, duration time.Duration) {
	if s.history == nil {
		return
	}

	status := "ok"
	if !success {
		status = "error"
	}

	_, err := s.history.Exec(
		`INSERT INTO job_history (job_name, status, detail, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?)`,
		name, status, detail, start.Unix(), start.Add(duration).Unix(),
	)
	if err != nil {
		s.log.Warn().Err(err).Str("job", name).Msg("Failed to record job history")
	}
}
