package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile creates a configs/<name>.env file in a temp working directory
// and chdirs into it so loadConfig's relative search paths find the file.
func writeConfigFile(t *testing.T, name, content string) {
	t.Helper()

	dir := t.TempDir()
	configsDir := filepath.Join(dir, "configs")
	require.NoError(t, os.Mkdir(configsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configsDir, name+".env"), []byte(content), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	writeConfigFile(t, "ledgerd", `
SERVER_PORT=9191
LOG_LEVEL=debug
POSTGRES_URL=postgres://ledger:secret@db:5432/ledger?sslmode=disable
KAFKA_EVENTS_TOPIC=balance_events_test
TRANSFER_MAX_RETRIES=7
OUTBOX_BATCH_SIZE=25
`)

	cfg, err := LoadConfig("ledgerd")
	require.NoError(t, err)

	// Values from the file win.
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "postgres://ledger:secret@db:5432/ledger?sslmode=disable", cfg.Postgres.URL)
	assert.Equal(t, "balance_events_test", cfg.Kafka.EventsTopic)
	assert.Equal(t, 7, cfg.Transfer.MaxRetries)
	assert.Equal(t, 25, cfg.Outbox.BatchSize)

	// Everything not mentioned falls back to defaults.
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "migrations/postgres", cfg.Postgres.MigrationsPath)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "payee_notifications", cfg.Kafka.NotificationTopic)
	assert.Equal(t, 15*time.Second, cfg.Transfer.Timeout)
	assert.Equal(t, 10, cfg.Dispatcher.PoolSize)
	assert.Equal(t, "splitpay-ledger", cfg.Application.Name)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})

	cfg, err := LoadConfig("does-not-exist")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "balance_events", cfg.Kafka.EventsTopic)
	assert.Equal(t, 3, cfg.Transfer.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Outbox.PollingInterval)
}

func TestLoadConfig_InvalidValuesFailValidation(t *testing.T) {
	writeConfigFile(t, "ledgerd", `
SERVER_PORT=-1
POSTGRES_MAX_CONNS=0
`)

	cfg, err := LoadConfig("ledgerd")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "SERVER_PORT must be greater than 0")
	assert.Contains(t, err.Error(), "POSTGRES_MAX_CONNS must be greater than 0")
}
