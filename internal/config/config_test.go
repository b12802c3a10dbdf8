package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// chdir switches into dir for the rest of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  write_timeout: "15s"
  idle_timeout: "30s"
  shutdown_timeout: "5s"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2

log:
  level: "debug"
  format: "text"

audit:
  retention_days: 30
  verify_batch_size: 500
  stale_pending_after: "15m"

changelog:
  retention_days: 180

images:
  upload_dir: "/var/lib/kindergarten/uploads"
  base_url: "https://cdn.example.com/uploads"
  max_size: 1048576
  full_size: 1024
  thumb_size: 256
  quality: 80

migrations:
  dir: "db/migrations"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", validYAML)
	t.Setenv("CONFIG_PATH", path)
	chdir(t, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Server
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}

	// Database
	if cfg.Database.MaxConns != 10 {
		t.Errorf("database.max_conns = %d, want 10", cfg.Database.MaxConns)
	}

	// Audit
	if cfg.Audit.RetentionDays != 30 {
		t.Errorf("audit.retention_days = %d, want 30", cfg.Audit.RetentionDays)
	}
	if cfg.Audit.VerifyBatchSize != 500 {
		t.Errorf("audit.verify_batch_size = %d, want 500", cfg.Audit.VerifyBatchSize)
	}
	if cfg.Audit.StalePendingAfter != 15*time.Minute {
		t.Errorf("audit.stale_pending_after = %v, want 15m", cfg.Audit.StalePendingAfter)
	}

	// Changelog
	if cfg.Changelog.RetentionDays != 180 {
		t.Errorf("changelog.retention_days = %d, want 180", cfg.Changelog.RetentionDays)
	}

	// Images
	if cfg.Images.UploadDir != "/var/lib/kindergarten/uploads" {
		t.Errorf("images.upload_dir = %q", cfg.Images.UploadDir)
	}
	if cfg.Images.MaxSize != 1048576 {
		t.Errorf("images.max_size = %d, want 1048576", cfg.Images.MaxSize)
	}
	if cfg.Images.FullSize != 1024 || cfg.Images.ThumbSize != 256 {
		t.Errorf("images sizes = %d/%d, want 1024/256", cfg.Images.FullSize, cfg.Images.ThumbSize)
	}
	if cfg.Images.Quality != 80 {
		t.Errorf("images.quality = %d, want 80", cfg.Images.Quality)
	}

	// Log
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}

	// Migrations
	if cfg.Migrations.Dir != "db/migrations" {
		t.Errorf("migrations.dir = %q", cfg.Migrations.Dir)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("IMAGES_QUALITY", "60")
	chdir(t, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Images.Quality != 60 {
		t.Errorf("images.quality = %d, want 60 (ENV override)", cfg.Images.Quality)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Audit.VerifyBatchSize != 1000 {
		t.Errorf("audit.verify_batch_size = %d, want 1000 (default)", cfg.Audit.VerifyBatchSize)
	}
	if cfg.Images.FullSize != 800 || cfg.Images.ThumbSize != 300 || cfg.Images.Quality != 85 {
		t.Errorf("images defaults = %d/%d/%d, want 800/300/85",
			cfg.Images.FullSize, cfg.Images.ThumbSize, cfg.Images.Quality)
	}
	if cfg.Images.MaxSize != 5*1024*1024 {
		t.Errorf("images.max_size = %d, want 5MiB (default)", cfg.Images.MaxSize)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", "")
	// Registered with t.Setenv so the value set by .env is restored afterwards.
	t.Setenv("DATABASE_DSN", "")
	os.Unsetenv("DATABASE_DSN")
	t.Setenv("AUDIT_RETENTION_DAYS", "7")
	writeFile(t, dir, ".env", "DATABASE_DSN=postgres://dotenv@localhost/db\nAUDIT_RETENTION_DAYS=99\n")
	chdir(t, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.DSN != "postgres://dotenv@localhost/db" {
		t.Errorf("database.dsn = %q, want value from .env", cfg.Database.DSN)
	}
	if cfg.Audit.RetentionDays != 7 {
		t.Errorf("audit.retention_days = %d, want 7 (process env wins over .env)", cfg.Audit.RetentionDays)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	chdir(t, t.TempDir())

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)
	chdir(t, dir)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "audit retention zero", mutate: func(c *Config) { c.Audit.RetentionDays = 0 }, wantErr: true},
		{name: "verify batch zero", mutate: func(c *Config) { c.Audit.VerifyBatchSize = 0 }, wantErr: true},
		{name: "stale pending zero", mutate: func(c *Config) { c.Audit.StalePendingAfter = 0 }, wantErr: true},
		{name: "changelog retention negative", mutate: func(c *Config) { c.Changelog.RetentionDays = -1 }, wantErr: true},
		{name: "upload dir blank", mutate: func(c *Config) { c.Images.UploadDir = "  " }, wantErr: true},
		{name: "max size zero", mutate: func(c *Config) { c.Images.MaxSize = 0 }, wantErr: true},
		{name: "thumb larger than full", mutate: func(c *Config) { c.Images.ThumbSize = 900 }, wantErr: true},
		{name: "quality zero", mutate: func(c *Config) { c.Images.Quality = 0 }, wantErr: true},
		{name: "quality 101", mutate: func(c *Config) { c.Images.Quality = 101 }, wantErr: true},
		{name: "quality boundary", mutate: func(c *Config) { c.Images.Quality = 100 }},
		{name: "thumb equals full", mutate: func(c *Config) { c.Images.ThumbSize = c.Images.FullSize }},
		{name: "rate limit negative", mutate: func(c *Config) { c.Images.RateLimit = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{Port: 8080},
		Audit: AuditConfig{
			RetentionDays:     90,
			VerifyBatchSize:   1000,
			StalePendingAfter: time.Hour,
		},
		Changelog: ChangelogConfig{RetentionDays: 365},
		Images: ImagesConfig{
			UploadDir: "./uploads",
			MaxSize:   5 << 20,
			FullSize:  800,
			ThumbSize: 300,
			Quality:   85,
		},
	}
}

func TestLoadMigrations_NoDatabaseRequired(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	os.Unsetenv("DATABASE_DSN")
	t.Setenv("MIGRATIONS_DIR", "db/changes")
	chdir(t, t.TempDir())

	cfg, err := LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != "db/changes" {
		t.Errorf("migrations.dir = %q, want db/changes", cfg.Dir)
	}
}
