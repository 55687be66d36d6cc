// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/avramidis/dealscout/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases, always absolute
	Port     int
	LogLevel string
	DevMode  bool

	Backup BackupConfig
}

// BackupConfig holds S3 backup settings. Credentials normally live in the
// settings database; the env vars are the bootstrap fallback.
type BackupConfig struct {
	Bucket    string
	Region    string
	Endpoint  string // custom endpoint for S3-compatible storage, empty for AWS
	AccessKey string
	SecretKey string
	Retention int // number of archives to keep
}

// Enabled reports whether backups can run
func (b BackupConfig) Enabled() bool {
	return b.Bucket != "" && b.AccessKey != "" && b.SecretKey != ""
}

// Load reads configuration from environment variables.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("DEALSCOUT_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("DEALSCOUT_PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		Backup: BackupConfig{
			Bucket:    getEnv("BACKUP_S3_BUCKET", ""),
			Region:    getEnv("BACKUP_S3_REGION", "us-east-1"),
			Endpoint:  getEnv("BACKUP_S3_ENDPOINT", ""),
			AccessKey: getEnv("BACKUP_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("BACKUP_S3_SECRET_KEY", ""),
			Retention: getEnvAsInt("BACKUP_RETENTION", 7),
		},
	}

	return cfg, nil
}

// UpdateFromSettings overlays configuration from the settings database.
// Called after config.db is initialized; non-empty settings values take
// precedence over environment variables.
func (c *Config) UpdateFromSettings(repo *settings.Repository) error {
	overlay := func(key string, dest *string) error {
		value, err := repo.Get(key)
		if err != nil {
			return fmt.Errorf("failed to get %s from settings: %w", key, err)
		}
		if value != nil && *value != "" {
			*dest = *value
		}
		return nil
	}

	if err := overlay(settings.KeyBackupBucket, &c.Backup.Bucket); err != nil {
		return err
	}
	if err := overlay(settings.KeyBackupRegion, &c.Backup.Region); err != nil {
		return err
	}
	if err := overlay(settings.KeyBackupEndpoint, &c.Backup.Endpoint); err != nil {
		return err
	}
	if err := overlay(settings.KeyBackupAccessKey, &c.Backup.AccessKey); err != nil {
		return err
	}
	if err := overlay(settings.KeyBackupSecretKey, &c.Backup.SecretKey); err != nil {
		return err
	}

	retention, err := repo.GetInt(settings.KeyBackupRetention, c.Backup.Retention)
	if err != nil {
		return fmt.Errorf("failed to get %s from settings: %w", settings.KeyBackupRetention, err)
	}
	c.Backup.Retention = retention

	return nil
}

// DatabasePath returns the absolute path for a named database file
func (c *Config) DatabasePath(name string) string {
	return filepath.Join(c.DataDir, name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
