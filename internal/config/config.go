package config

import (
	"fmt"
	"regexp"
	"time"
)

var apiHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

type Config struct {
	Env                   string
	TelegramAPIID         int
	TelegramAPIHash       string
	TelegramPhone         string
	TelegramSessionDir    string
	TelegramSessionName   string
	ExportDir             string
	ArtifactTimezone      string
	HarvestBatchSize      int
	HarvestBatchPause     time.Duration
	HarvestBioRetryPause  time.Duration
	HarvestMaxConcurrent  int
	HarvestLeaveTimeout   time.Duration
	HTTPAddr              string
	HTTPArtifactRetention time.Duration
	DatabaseURL           string
	HarvestWebhookURL     string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.TelegramAPIID <= 0 {
		return fmt.Errorf("TELEGRAM_API_ID must be positive, got %d", c.TelegramAPIID)
	}
	if !apiHashPattern.MatchString(c.TelegramAPIHash) {
		return fmt.Errorf("TELEGRAM_API_HASH must be 32 hexadecimal characters")
	}
	if c.HarvestBatchSize <= 0 {
		return fmt.Errorf("HARVEST_BATCH_SIZE must be positive, got %d", c.HarvestBatchSize)
	}
	if c.HarvestBatchPause < 0 {
		return fmt.Errorf("HARVEST_BATCH_PAUSE must not be negative, got %s", c.HarvestBatchPause)
	}
	if c.HarvestBioRetryPause < 0 {
		return fmt.Errorf("HARVEST_BIO_RETRY_PAUSE must not be negative, got %s", c.HarvestBioRetryPause)
	}
	if c.HarvestMaxConcurrent <= 0 {
		return fmt.Errorf("HARVEST_MAX_CONCURRENT must be positive, got %d", c.HarvestMaxConcurrent)
	}
	if c.HarvestLeaveTimeout <= 0 {
		return fmt.Errorf("HARVEST_LEAVE_TIMEOUT must be positive, got %s", c.HarvestLeaveTimeout)
	}
	if c.HTTPArtifactRetention < 0 {
		return fmt.Errorf("HTTP_ARTIFACT_RETENTION must not be negative, got %s", c.HTTPArtifactRetention)
	}
	if _, err := time.LoadLocation(c.ArtifactTimezone); err != nil {
		return fmt.Errorf("ARTIFACT_TIMEZONE is invalid: %w", err)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "TELEGRAM_API_HASH", value: c.TelegramAPIHash},
		{name: "TELEGRAM_SESSION_DIR", value: c.TelegramSessionDir},
		{name: "TELEGRAM_SESSION_NAME", value: c.TelegramSessionName},
		{name: "EXPORT_DIR", value: c.ExportDir},
		{name: "ARTIFACT_TIMEZONE", value: c.ArtifactTimezone},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location returns the zone used to stamp artifact names. Validate must
// have succeeded first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ArtifactTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
