package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Audit      AuditConfig      `yaml:"audit"`
	Changelog  ChangelogConfig  `yaml:"changelog"`
	Images     ImagesConfig     `yaml:"images"`
	Migrations MigrationsConfig `yaml:"migrations"`
	CORS       CORSConfig       `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-User-Id,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// AuditConfig holds transaction log settings.
type AuditConfig struct {
	RetentionDays     int           `yaml:"retention_days"      env:"AUDIT_RETENTION_DAYS"      env-default:"90"`
	VerifyBatchSize   int           `yaml:"verify_batch_size"   env:"AUDIT_VERIFY_BATCH_SIZE"   env-default:"1000"`
	StalePendingAfter time.Duration `yaml:"stale_pending_after" env:"AUDIT_STALE_PENDING_AFTER" env-default:"1h"`
	HistoryLimit      int           `yaml:"history_limit"       env:"AUDIT_HISTORY_LIMIT"       env-default:"50"`
}

// ChangelogConfig holds changelog settings.
type ChangelogConfig struct {
	RetentionDays int `yaml:"retention_days" env:"CHANGELOG_RETENTION_DAYS" env-default:"365"`
	PageSize      int `yaml:"page_size"      env:"CHANGELOG_PAGE_SIZE"      env-default:"50"`
}

// ImagesConfig holds image upload settings.
type ImagesConfig struct {
	UploadDir string `yaml:"upload_dir" env:"IMAGES_UPLOAD_DIR" env-default:"./uploads"`
	BaseURL   string `yaml:"base_url"   env:"IMAGES_BASE_URL"   env-default:"/uploads"`
	MaxSize   int64  `yaml:"max_size"   env:"IMAGES_MAX_SIZE"   env-default:"5242880"`
	FullSize  int    `yaml:"full_size"  env:"IMAGES_FULL_SIZE"  env-default:"800"`
	ThumbSize int    `yaml:"thumb_size" env:"IMAGES_THUMB_SIZE" env-default:"300"`
	Quality   int    `yaml:"quality"    env:"IMAGES_QUALITY"    env-default:"85"`
	// RateLimit is uploads per client per minute; 0 disables the limiter.
	RateLimit int    `yaml:"rate_limit" env:"IMAGES_RATE_LIMIT" env-default:"30"`
}

// MigrationsConfig holds migration tool settings.
type MigrationsConfig struct {
	Dir string `yaml:"dir" env:"MIGRATIONS_DIR" env-default:"internal/migrations"`
}
