package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/chanharvest/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env                   string        `env:"ENV" envDefault:"production"`
	TelegramAPIID         int           `env:"TELEGRAM_API_ID,required"`
	TelegramAPIHash       string        `env:"TELEGRAM_API_HASH,required"`
	TelegramPhone         string        `env:"TELEGRAM_PHONE"`
	TelegramSessionDir    string        `env:"TELEGRAM_SESSION_DIR" envDefault:"sessions"`
	TelegramSessionName   string        `env:"TELEGRAM_SESSION_NAME" envDefault:"user_session"`
	ExportDir             string        `env:"EXPORT_DIR" envDefault:"exports"`
	ArtifactTimezone      string        `env:"ARTIFACT_TIMEZONE" envDefault:"UTC"`
	HarvestBatchSize      int           `env:"HARVEST_BATCH_SIZE" envDefault:"50"`
	HarvestBatchPause     time.Duration `env:"HARVEST_BATCH_PAUSE" envDefault:"2s"`
	HarvestBioRetryPause  time.Duration `env:"HARVEST_BIO_RETRY_PAUSE" envDefault:"500ms"`
	HarvestMaxConcurrent  int           `env:"HARVEST_MAX_CONCURRENT" envDefault:"2"`
	HarvestLeaveTimeout   time.Duration `env:"HARVEST_LEAVE_TIMEOUT" envDefault:"15s"`
	HTTPAddr              string        `env:"HTTP_ADDR" envDefault:":8000"`
	HTTPArtifactRetention time.Duration `env:"HTTP_ARTIFACT_RETENTION" envDefault:"1m"`
	DatabaseURL           string        `env:"DATABASE_URL"`
	HarvestWebhookURL     string        `env:"HARVEST_WEBHOOK_URL"`
}

const defaultDotenvFile = ".env"

// Load reads the named dotenv files and the process environment once.
// Without names it reads ./.env when present; named files must exist.
func Load(dotenvFiles ...string) (*internalconfig.Config, error) {
	if len(dotenvFiles) == 0 {
		if err := godotenv.Load(defaultDotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read dotenv file: %w", err)
		}
	} else if err := godotenv.Load(dotenvFiles...); err != nil {
		return nil, fmt.Errorf("failed to read dotenv file: %w", err)
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                   raw.Env,
		TelegramAPIID:         raw.TelegramAPIID,
		TelegramAPIHash:       raw.TelegramAPIHash,
		TelegramPhone:         raw.TelegramPhone,
		TelegramSessionDir:    raw.TelegramSessionDir,
		TelegramSessionName:   raw.TelegramSessionName,
		ExportDir:             raw.ExportDir,
		ArtifactTimezone:      raw.ArtifactTimezone,
		HarvestBatchSize:      raw.HarvestBatchSize,
		HarvestBatchPause:     raw.HarvestBatchPause,
		HarvestBioRetryPause:  raw.HarvestBioRetryPause,
		HarvestMaxConcurrent:  raw.HarvestMaxConcurrent,
		HarvestLeaveTimeout:   raw.HarvestLeaveTimeout,
		HTTPAddr:              raw.HTTPAddr,
		HTTPArtifactRetention: raw.HTTPArtifactRetention,
		DatabaseURL:           raw.DatabaseURL,
		HarvestWebhookURL:     raw.HarvestWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
