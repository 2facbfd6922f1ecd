package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_API_ID", "28355456")
	t.Setenv("TELEGRAM_API_HASH", "5abc8c86bf772fe864987b761289d974")
}

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	setRequiredEnv(t)

	cfg, err := Load()
	req.NoError(err)
	req.Equal("production", cfg.Env)
	req.Equal("sessions", cfg.TelegramSessionDir)
	req.Equal("user_session", cfg.TelegramSessionName)
	req.Equal("exports", cfg.ExportDir)
	req.Equal(50, cfg.HarvestBatchSize)
	req.Equal(2*time.Second, cfg.HarvestBatchPause)
	req.Equal(500*time.Millisecond, cfg.HarvestBioRetryPause)
	req.Equal(2, cfg.HarvestMaxConcurrent)
	req.Equal(15*time.Second, cfg.HarvestLeaveTimeout)
	req.Equal(":8000", cfg.HTTPAddr)
	req.Equal(time.Minute, cfg.HTTPArtifactRetention)
	req.Empty(cfg.DatabaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)
	setRequiredEnv(t)
	t.Setenv("HARVEST_BATCH_SIZE", "25")
	t.Setenv("HARVEST_BATCH_PAUSE", "5s")
	t.Setenv("ARTIFACT_TIMEZONE", "Europe/Moscow")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(25, cfg.HarvestBatchSize)
	req.Equal(5*time.Second, cfg.HarvestBatchPause)
	req.Equal("Europe/Moscow", cfg.Location().String())
}

func TestLoad_DotenvFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), ".env")
	req.NoError(os.WriteFile(path, []byte("TELEGRAM_API_ID=1\nTELEGRAM_API_HASH=0123456789abcdef0123456789abcdef\nHARVEST_WEBHOOK_URL=http://hook.test/upload\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("TELEGRAM_API_ID")
		os.Unsetenv("TELEGRAM_API_HASH")
		os.Unsetenv("HARVEST_WEBHOOK_URL")
	})

	cfg, err := Load(path)
	req.NoError(err)
	req.Equal(1, cfg.TelegramAPIID)
	req.Equal("http://hook.test/upload", cfg.HarvestWebhookURL)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("TELEGRAM_API_ID", "")
	t.Setenv("TELEGRAM_API_HASH", "")
	os.Unsetenv("TELEGRAM_API_ID")
	os.Unsetenv("TELEGRAM_API_HASH")
	t.Chdir(t.TempDir())

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidValue(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HARVEST_BATCH_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_DefaultDotenvFromWorkingDir(t *testing.T) {
	req := require.New(t)
	setRequiredEnv(t)
	t.Setenv("HARVEST_WEBHOOK_URL", "")
	req.NoError(os.WriteFile(".env", []byte("HARVEST_WEBHOOK_URL=http://hook.test/default\n"), 0o600))
	os.Unsetenv("HARVEST_WEBHOOK_URL")

	cfg, err := Load()
	req.NoError(err)
	req.Equal("http://hook.test/default", cfg.HarvestWebhookURL)
}

func TestLoad_MissingNamedDotenvFile(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "prod.env")

	_, err := Load(path)
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.ErrorContains(t, err, "prod.env")
}
