// Package config loads agent configuration from the environment, with a
// .env file honored when present. Missing required settings are the only
// hard startup errors the agent produces.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the agent needs to start.
type Config struct {
	// MongoURI is the remote document store. Empty means offline-only
	// operation: only offline-prefixed lists can be used.
	MongoURI string
	MongoDB  string

	// CachePath is the SQLite file for the local document cache.
	CachePath string

	// Lists are the list IDs to subscribe on startup.
	Lists []string

	// UserID, when set, is used to discover lists shared with this user.
	UserID string

	ActiveInterval time.Duration
	HiddenInterval time.Duration
	MaxInterval    time.Duration

	ClassifierURL string

	LogLevel  string
	LogFormat string

	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	// BackupPassphrase enables periodic encrypted snapshots when the S3
	// settings are also present.
	BackupPassphrase string
	BackupInterval   time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Config{
		MongoURI:       os.Getenv("PANTRYD_MONGO_URI"),
		MongoDB:        envDefault("PANTRYD_MONGO_DB", "pantry"),
		CachePath:      envDefault("PANTRYD_CACHE_PATH", "pantryd.db"),
		ClassifierURL:  os.Getenv("PANTRYD_CLASSIFIER_URL"),
		LogLevel:       envDefault("PANTRYD_LOG_LEVEL", "info"),
		LogFormat:      envDefault("PANTRYD_LOG_FORMAT", "text"),
		S3Endpoint:     os.Getenv("PANTRYD_S3_ENDPOINT"),
		S3Bucket:       os.Getenv("PANTRYD_S3_BUCKET"),
		S3Region:       envDefault("PANTRYD_S3_REGION", "auto"),
		S3AccessKey:    os.Getenv("PANTRYD_S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("PANTRYD_S3_SECRET_KEY"),
		UserID:         os.Getenv("PANTRYD_USER_ID"),
		ActiveInterval: 10 * time.Second,
		HiddenInterval: 60 * time.Second,
		MaxInterval:    5 * time.Minute,

		BackupPassphrase: os.Getenv("PANTRYD_BACKUP_PASSPHRASE"),
		BackupInterval:   24 * time.Hour,
	}

	if lists := os.Getenv("PANTRYD_LISTS"); lists != "" {
		for _, id := range strings.Split(lists, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.Lists = append(cfg.Lists, id)
			}
		}
	}

	var err error
	if cfg.ActiveInterval, err = envDuration("PANTRYD_ACTIVE_INTERVAL", cfg.ActiveInterval); err != nil {
		return cfg, err
	}
	if cfg.HiddenInterval, err = envDuration("PANTRYD_HIDDEN_INTERVAL", cfg.HiddenInterval); err != nil {
		return cfg, err
	}
	if cfg.MaxInterval, err = envDuration("PANTRYD_MAX_INTERVAL", cfg.MaxInterval); err != nil {
		return cfg, err
	}
	if cfg.BackupInterval, err = envDuration("PANTRYD_BACKUP_INTERVAL", cfg.BackupInterval); err != nil {
		return cfg, err
	}

	if cfg.ActiveInterval <= 0 || cfg.HiddenInterval < cfg.ActiveInterval || cfg.MaxInterval < cfg.HiddenInterval {
		return cfg, fmt.Errorf("intervals must satisfy 0 < active <= hidden <= max, got %v/%v/%v",
			cfg.ActiveInterval, cfg.HiddenInterval, cfg.MaxInterval)
	}

	return cfg, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
