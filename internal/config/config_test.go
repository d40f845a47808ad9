package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-dashboard/internal/service/calendar"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Calendar.FirstHour)
	assert.Equal(t, 20, cfg.Calendar.LastHour)
	assert.True(t, cfg.Calendar.ReloadAfterBulk)
	assert.Equal(t, "memory", cfg.Session.Driver)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "Asia/Kolkata", cfg.Calendar.Location().String())
}

func TestUnresolvedLocationIsIST(t *testing.T) {
	var c CalendarConfig
	assert.Equal(t, calendar.IST, c.Location())

	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	_, offset := now.In(c.Location()).Zone()
	assert.Equal(t, 5*3600+30*60, offset)
}

func TestLoadDefaultsCityFallbackTTL(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Cities.FallbackTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_BACKEND_URL", "https://api.hospital.test")
	t.Setenv("DASHBOARD_SESSION_DRIVER", "Redis")
	t.Setenv("DASHBOARD_TIMEZONE", "Europe/London")
	t.Setenv("DASHBOARD_RELOAD_AFTER_BULK", "false")

	cfg, err := Load(writeConfig(t, "backend:\n  base_url: http://ignored\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.hospital.test", cfg.Backend.BaseURL)
	assert.True(t, cfg.UsesRedis())
	assert.Equal(t, "Europe/London", cfg.Calendar.Location().String())
	assert.False(t, cfg.Calendar.ReloadAfterBulk)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"timezone": "calendar:\n  timezone: Mars/Olympus\n",
		"hours":    "calendar:\n  first_hour: 21\n  last_hour: 20\n",
		"driver":   "session:\n  driver: etcd\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestToClientConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, "backend:\n  base_url: http://b\n  timeout: 3s\n"))
	require.NoError(t, err)

	cc := cfg.Backend.ToClientConfig()
	assert.Equal(t, "http://b", cc.BaseURL)
	assert.Equal(t, 3*time.Second, cc.Timeout)
	assert.Equal(t, uint32(5), cc.Breaker.MaxFailures)
}
