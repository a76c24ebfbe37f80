package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "STORE_KEY", "DATABASE_URL", "DB_NAME", "EXPIRY_HORIZON_DAYS", "ASSISTANT_TIMEOUT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, BackendPostgres, cfg.StoreBackend)
	require.Equal(t, "PHARMACLIC_DB_V1", cfg.StoreKey)
	require.Equal(t, 90, cfg.ExpiryHorizonDays)
	require.Equal(t, 30*time.Second, cfg.AssistantTimeout)
	require.Contains(t, cfg.DSN(), "dbname=pharmaclic")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("EXPIRY_HORIZON_DAYS", "30")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, BackendRedis, cfg.StoreBackend)
	require.Equal(t, 30, cfg.ExpiryHorizonDays)
	require.Equal(t, "postgres://u:p@db:5432/x", cfg.DSN())
}

func TestFromEnvRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	_, err := FromEnv()
	require.ErrorContains(t, err, "STORE_BACKEND")
}
