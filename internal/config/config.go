package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ledger_app_echo/internal/ledger"
)

// Config holds every setting read from the environment
type Config struct {
	Port             string
	DatabaseURL      string
	RedisURL         string
	FirebaseCredPath string

	Location       *time.Location
	DueHour        int
	Ratios         []ledger.Ratio
	BucketOwners   map[string]uint
	CollectSplits  bool
	AlertsCacheTTL time.Duration
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using system environment")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		FirebaseCredPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
	}

	loc, err := time.LoadLocation(getEnv("LEDGER_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("LEDGER_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	cfg.DueHour, err = strconv.Atoi(getEnv("LEDGER_DUE_HOUR", "9"))
	if err != nil || cfg.DueHour < 0 || cfg.DueHour > 23 {
		return nil, fmt.Errorf("LEDGER_DUE_HOUR must be an hour between 0 and 23")
	}

	cfg.Ratios, err = ledger.ParseRatios(os.Getenv("LEDGER_RATIOS"))
	if err != nil {
		return nil, fmt.Errorf("LEDGER_RATIOS: %w", err)
	}
	if cfg.Ratios == nil {
		cfg.Ratios = ledger.DefaultRatios()
	}

	cfg.BucketOwners, err = ParseBucketOwners(os.Getenv("LEDGER_BUCKET_OWNERS"))
	if err != nil {
		return nil, fmt.Errorf("LEDGER_BUCKET_OWNERS: %w", err)
	}

	cfg.CollectSplits, err = strconv.ParseBool(getEnv("LEDGER_COLLECT_SPLITS", "true"))
	if err != nil {
		return nil, fmt.Errorf("LEDGER_COLLECT_SPLITS: %w", err)
	}

	cfg.AlertsCacheTTL, err = time.ParseDuration(getEnv("ALERT_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("ALERT_CACHE_TTL: %w", err)
	}

	return cfg, nil
}

// ParseBucketOwners parses "bucket:userID,bucket:userID"
func ParseBucketOwners(raw string) (map[string]uint, error) {
	owners := make(map[string]uint)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return owners, nil
	}
	for _, part := range strings.Split(raw, ",") {
		bucket, idStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || strings.TrimSpace(bucket) == "" {
			return nil, fmt.Errorf("invalid owner %q, want bucket:userID", part)
		}
		id, err := strconv.ParseUint(strings.TrimSpace(idStr), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("owner %q: %w", part, err)
		}
		owners[strings.TrimSpace(bucket)] = uint(id)
	}
	return owners, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
