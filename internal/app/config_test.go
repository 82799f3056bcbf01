package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "taskhive", cfg.Auth.JWT.Issuer)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.TTL)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.True(t, cfg.Maintenance.OrphanSweep.Enabled)
	require.Equal(t, "@hourly", cfg.Maintenance.OrphanSweep.Schedule)
	require.Equal(t, 90, cfg.Maintenance.AuditRetentionDays)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TASKHIVE_SERVER_PORT", "9090")
	t.Setenv("TASKHIVE_DATABASE_DRIVER", "postgres")
	t.Setenv("TASKHIVE_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}
