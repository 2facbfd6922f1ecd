package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Env:                   "development",
		TelegramAPIID:         28355456,
		TelegramAPIHash:       "5abc8c86bf772fe864987b761289d974",
		TelegramSessionDir:    "sessions",
		TelegramSessionName:   "user_session",
		ExportDir:             "exports",
		ArtifactTimezone:      "UTC",
		HarvestBatchSize:      50,
		HarvestBatchPause:     2 * time.Second,
		HarvestBioRetryPause:  500 * time.Millisecond,
		HarvestMaxConcurrent:  2,
		HarvestLeaveTimeout:   15 * time.Second,
		HTTPAddr:              ":8000",
		HTTPArtifactRetention: time.Minute,
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_InvalidAPIID(t *testing.T) {
	cfg := validConfig()
	cfg.TelegramAPIID = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive api id")
	}
}

func TestValidate_MalformedAPIHash(t *testing.T) {
	cfg := validConfig()
	cfg.TelegramAPIHash = "not-a-hash"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed api hash")
	}
}

func TestValidate_InvalidBatchSize(t *testing.T) {
	cfg := validConfig()
	cfg.HarvestBatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive batch size")
	}
}

func TestValidate_NegativePause(t *testing.T) {
	cfg := validConfig()
	cfg.HarvestBatchPause = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative batch pause")
	}
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.ArtifactTimezone = "Mars/Olympus_Mons"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when required fields are missing")
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode")
	}
	cfg.Env = "production"
	if cfg.IsDevelopment() {
		t.Fatal("expected non-development mode")
	}
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	cfg.ArtifactTimezone = "Asia/Tokyo"
	if got := cfg.Location().String(); got != "Asia/Tokyo" {
		t.Fatalf("unexpected location: %s", got)
	}
}
