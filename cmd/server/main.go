// Package main is the entry point for the DealScout lead-tracking server.
// It wires the databases, event bus, module services, background jobs, and
// HTTP server, then blocks until a shutdown signal arrives.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/avramidis/dealscout/internal/cache"
	"github.com/avramidis/dealscout/internal/config"
	"github.com/avramidis/dealscout/internal/database"
	"github.com/avramidis/dealscout/internal/events"
	"github.com/avramidis/dealscout/internal/modules/analytics"
	analyticshandlers "github.com/avramidis/dealscout/internal/modules/analytics/handlers"
	"github.com/avramidis/dealscout/internal/modules/leads"
	leadshandlers "github.com/avramidis/dealscout/internal/modules/leads/handlers"
	"github.com/avramidis/dealscout/internal/modules/properties"
	propertieshandlers "github.com/avramidis/dealscout/internal/modules/properties/handlers"
	scoringhandlers "github.com/avramidis/dealscout/internal/modules/scoring/handlers"
	"github.com/avramidis/dealscout/internal/modules/settings"
	settingshandlers "github.com/avramidis/dealscout/internal/modules/settings/handlers"
	"github.com/avramidis/dealscout/internal/reliability"
	"github.com/avramidis/dealscout/internal/scheduler"
	"github.com/avramidis/dealscout/internal/server"
	"github.com/avramidis/dealscout/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting DealScout")

	leadsDB := mustOpenDB(log, cfg, "leads", database.ProfileStandard)
	defer leadsDB.Close()
	configDB := mustOpenDB(log, cfg, "config", database.ProfileStandard)
	defer configDB.Close()
	cacheDB := mustOpenDB(log, cfg, "cache", database.ProfileCache)
	defer cacheDB.Close()

	// Settings stored in config.db override environment variables, so users
	// can rotate backup credentials from the UI without a restart.
	settingsRepo := settings.NewRepository(configDB.Conn(), log)
	if err := cfg.UpdateFromSettings(settingsRepo); err != nil {
		log.Warn().Err(err).Msg("Failed to overlay settings, using environment values")
	}

	bus := events.NewBus(log)
	eventManager := events.NewManager(bus, log)

	snapshotCache := cache.New(cacheDB, log)

	leadsRepo := leads.NewRepository(leadsDB.Conn(), log)
	leadService := leads.NewService(leadsRepo, eventManager, snapshotCache, log)
	if err := leadService.LoadState(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load queue state")
	}

	propertiesRepo := properties.NewRepository(leadsDB.Conn(), log)
	propertyService := properties.NewService(propertiesRepo, leadService, eventManager, log)

	settingsService := settings.NewService(settingsRepo, log)
	analyticsService := analytics.NewService(leadService, log)

	sched := scheduler.New(cacheDB, eventManager, log)
	allDatabases := map[string]*database.DB{
		"leads":  leadsDB,
		"config": configDB,
		"cache":  cacheDB,
	}

	mustAddJob(log, sched, "30 3 * * *", scheduler.NewRescoreJob(leadService, snapshotCache, log))
	mustAddJob(log, sched, "@every 1h", scheduler.NewWALCheckpointJob(allDatabases, log))
	mustAddJob(log, sched, "@daily", scheduler.NewCacheCleanupJob(snapshotCache, log))

	if cfg.Backup.Enabled() {
		s3Client, err := reliability.NewS3Client(context.Background(), cfg.Backup, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create backup storage client")
		}

		// cache.db is rebuildable and excluded from offsite backups
		backupService := reliability.NewBackupService(
			map[string]*database.DB{"leads": leadsDB, "config": configDB},
			s3Client,
			cfg.DataDir,
			cfg.Backup.Retention,
			eventManager,
			log,
		)
		mustAddJob(log, sched, "15 4 * * *", scheduler.NewBackupJob(backupService, log))
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Offsite backups enabled")
	} else {
		log.Warn().Msg("Offsite backups disabled (no S3 configuration)")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:      log,
		Cfg:      cfg,
		Bus:      bus,
		LeadsDB:  leadsDB,
		ConfigDB: configDB,
		CacheDB:  cacheDB,

		LeadHandlers:      leadshandlers.NewHandler(leadService, log),
		PropertyHandlers:  propertieshandlers.NewHandler(propertyService, log),
		ScoringHandlers:   scoringhandlers.NewHandler(snapshotCache, log),
		AnalyticsHandlers: analyticshandlers.NewHandler(analyticsService, log),
		SettingsHandlers:  settingshandlers.NewHandler(settingsService, eventManager, log),

		Scheduler:   sched,
		QueueSource: leadService,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("DealScout stopped")
}

// mustOpenDB opens and migrates a database, exiting on failure
func mustOpenDB(log zerolog.Logger, cfg *config.Config, name string, profile database.DatabaseProfile) *database.DB {
	db, err := database.New(database.Config{
		Path:    cfg.DatabasePath(name + ".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		log.Fatal().Err(err).Str("database", name).Msg("Failed to open database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Str("database", name).Msg("Failed to migrate database")
	}
	return db
}

// mustAddJob registers a cron job, exiting on an invalid schedule
func mustAddJob(log zerolog.Logger, sched *scheduler.Scheduler, schedule string, job scheduler.Job) {
	if err := sched.AddJob(schedule, job); err != nil {
		log.Fatal().Err(err).Str("job", job.Name()).Msg("Failed to register job")
	}
}
