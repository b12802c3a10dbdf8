package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if err := c.Audit.validate(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}

	if c.Changelog.RetentionDays <= 0 {
		return fmt.Errorf("changelog: retention_days must be > 0 (got %d)", c.Changelog.RetentionDays)
	}

	if err := c.Images.validate(); err != nil {
		return fmt.Errorf("images: %w", err)
	}

	return nil
}

func (a AuditConfig) validate() error {
	if a.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be > 0 (got %d)", a.RetentionDays)
	}
	if a.VerifyBatchSize <= 0 {
		return fmt.Errorf("verify_batch_size must be > 0 (got %d)", a.VerifyBatchSize)
	}
	if a.StalePendingAfter <= 0 {
		return fmt.Errorf("stale_pending_after must be > 0 (got %s)", a.StalePendingAfter)
	}
	return nil
}

func (i ImagesConfig) validate() error {
	if strings.TrimSpace(i.UploadDir) == "" {
		return fmt.Errorf("upload_dir is required")
	}
	if i.MaxSize <= 0 {
		return fmt.Errorf("max_size must be > 0 (got %d)", i.MaxSize)
	}
	if i.FullSize <= 0 || i.ThumbSize <= 0 {
		return fmt.Errorf("full_size and thumb_size must be > 0 (got %d, %d)", i.FullSize, i.ThumbSize)
	}
	if i.ThumbSize > i.FullSize {
		return fmt.Errorf("thumb_size %d exceeds full_size %d", i.ThumbSize, i.FullSize)
	}
	if i.Quality < 1 || i.Quality > 100 {
		return fmt.Errorf("quality must be in 1..100 (got %d)", i.Quality)
	}
	if i.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0 (got %d)", i.RateLimit)
	}
	return nil
}
