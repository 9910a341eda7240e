package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		GoogleBooks
		Covers
		CatalogRefresh
		Audit
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		DemoMode                 bool
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret       string
		AccessTokenTTL  time.Duration
		RefreshTokenTTL time.Duration
		BcryptCost      int
	}
	GoogleBooks struct {
		APIKey string
	}
	Covers struct {
		CacheDir string
	}
	CatalogRefresh struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Audit struct {
		RetentionDays int // Days to keep audit entries (default: 365)
		PruneSchedule string
		ArchiveDir    string // Pruned entries are archived here when set
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("demo_mode", false)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("covers_cache_dir", DefaultCoversCacheDir)

	// Auth defaults
	v.SetDefault("auth_jwt_secret", "") // Must be set in production
	v.SetDefault("auth_access_token_ttl", "30m")
	v.SetDefault("auth_refresh_token_ttl", "720h") // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)

	// Catalog defaults
	v.SetDefault("google_books_api_key", "")
	v.SetDefault("catalog_refresh_enabled", false)
	v.SetDefault("catalog_refresh_schedule", "0 3 * * *") // Daily at 03:00

	// Audit retention defaults
	v.SetDefault("audit_retention_days", 365)
	v.SetDefault("audit_prune_schedule", "30 4 * * *") // Daily at 04:30
	v.SetDefault("audit_archive_dir", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			DemoMode:                 v.GetBool("DEMO_MODE"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:       v.GetString("AUTH_JWT_SECRET"),
			AccessTokenTTL:  v.GetDuration("AUTH_ACCESS_TOKEN_TTL"),
			RefreshTokenTTL: v.GetDuration("AUTH_REFRESH_TOKEN_TTL"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
		},
		GoogleBooks: GoogleBooks{
			APIKey: v.GetString("GOOGLE_BOOKS_API_KEY"),
		},
		Covers: Covers{
			CacheDir: v.GetString("COVERS_CACHE_DIR"),
		},
		CatalogRefresh: CatalogRefresh{
			Enabled:  v.GetBool("CATALOG_REFRESH_ENABLED"),
			Schedule: v.GetString("CATALOG_REFRESH_SCHEDULE"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			PruneSchedule: v.GetString("AUDIT_PRUNE_SCHEDULE"),
			ArchiveDir:    v.GetString("AUDIT_ARCHIVE_DIR"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
	}
}
