package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/cache"
	"github.com/avramidis/dealscout/internal/database"
	"github.com/avramidis/dealscout/internal/modules/leads"
	"github.com/avramidis/dealscout/internal/modules/scoring"
)

// RescoreJob recomputes and caches evaluations for every active lead, then
// rebuilds the queue state. Nightly safety net: scores are recomputed on
// every change anyway, but this repopulates the cache after expiry and picks
// up any drift from direct database edits.
type RescoreJob struct {
	leadService *leads.Service
	cache       *cache.SnapshotCache
	log         zerolog.Logger
}

// NewRescoreJob creates the nightly rescore job
func NewRescoreJob(leadService *leads.Service, snapshotCache *cache.SnapshotCache, log zerolog.Logger) *RescoreJob {
	return &RescoreJob{
		leadService: leadService,
		cache:       snapshotCache,
		log:         log.With().Str("job", "rescore").Logger(),
	}
}

// Name returns the job name
func (j *RescoreJob) Name() string { return "rescore" }

// Run recomputes evaluations for all active leads
func (j *RescoreJob) Run() error {
	if err := j.leadService.LoadState(); err != nil {
		return fmt.Errorf("rescore failed to reload queue state: %w", err)
	}

	items := j.leadService.Queue()
	for _, item := range items {
		snapshot := item.Lead.Snapshot()
		eval := scoring.Evaluate(snapshot)
		if j.cache != nil {
			if err := j.cache.Put(snapshot.Hash(), item.Lead.ID, &eval); err != nil {
				j.log.Warn().Err(err).Str("lead_id", item.Lead.ID).Msg("Failed to cache evaluation")
			}
		}
	}

	j.log.Info().Int("leads", len(items)).Msg("Rescore completed")
	return nil
}

// WALCheckpointJob runs a TRUNCATE checkpoint and an integrity check on every
// database. Checkpointing keeps WAL files from growing without bound on a
// long-running server; the integrity check is expensive, so it lives here in
// the maintenance sweep rather than on the request path.
type WALCheckpointJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates the WAL checkpoint sweep job
func NewWALCheckpointJob(databases map[string]*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string { return "wal_checkpoint" }

// Run checkpoints and integrity-checks every database
func (j *WALCheckpointJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var firstErr error
	for name, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("WAL checkpoint failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("checkpoint %s: %w", name, err)
			}
			continue
		}

		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("Integrity check failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("integrity check %s: %w", name, err)
			}
		}
	}
	return firstErr
}

// CacheCleanupJob removes expired evaluation snapshots
type CacheCleanupJob struct {
	cache *cache.SnapshotCache
	log   zerolog.Logger
}

// NewCacheCleanupJob creates the cache cleanup job
func NewCacheCleanupJob(snapshotCache *cache.SnapshotCache, log zerolog.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache: snapshotCache,
		log:   log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string { return "cache_cleanup" }

// Run deletes expired snapshot rows
func (j *CacheCleanupJob) Run() error {
	removed, err := j.cache.Cleanup()
	if err != nil {
		return err
	}
	j.log.Info().Int64("removed", removed).Msg("Cache cleanup completed")
	return nil
}

// BackupRunner is the surface of the backup service the job needs
type BackupRunner interface {
	CreateAndUploadBackup(ctx context.Context) error
}

// BackupJob creates and uploads a database backup archive
type BackupJob struct {
	backups BackupRunner
	timeout time.Duration
	log     zerolog.Logger
}

// NewBackupJob creates the offsite backup job
func NewBackupJob(backups BackupRunner, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backups: backups,
		timeout: 15 * time.Minute,
		log:     log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name
func (j *BackupJob) Name() string { return "backup" }

// Run creates and uploads a backup archive
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	return j.backups.CreateAndUploadBackup(ctx)
}
