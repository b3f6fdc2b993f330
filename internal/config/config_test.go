package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_FileAndDefaults(t *testing.T) {
	p := writeFile(t, `
app:
  env: dev
  timezone: UTC
storage:
  driver: memory
dashboard:
  window_days: 7
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, DriverMemory, c.Storage.Driver)
	assert.Equal(t, 7, c.Dashboard.WindowDays)
	assert.Equal(t, 5, c.Dashboard.RecentMovements)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, 5*time.Second, c.HTTP.ShutdownTimeout)
	assert.Equal(t, "0 7 * * *", c.Alerts.LowStockCron)
	assert.Equal(t, time.UTC, c.Location())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeFile(t, `
storage:
  driver: memory
http:
  addr: ":9000"
`)
	t.Setenv("APP_HTTP_ADDR", ":7070")
	t.Setenv("APP_STORAGE_DRIVER", "postgres")
	t.Setenv("APP_POSTGRES_DSN", "postgres://plant@localhost/plant")
	t.Setenv("APP_POSTGRES_MAX_CONNS", "4")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.HTTP.Addr)
	assert.Equal(t, DriverPostgres, c.Storage.Driver)
	assert.Equal(t, int32(4), c.Postgres.MaxConns)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.App.Timezone = "UTC"
		c.Storage.Driver = DriverMemory
		c.Dashboard.WindowDays = 30
		c.Dashboard.RecentMovements = 5
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name string
		edit func(*Config)
		want string
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mysql" }, "storage.driver"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres; c.Postgres.MaxConns = 1 }, "postgres.dsn"},
		{"bad timezone", func(c *Config) { c.App.Timezone = "Mars/Olympus" }, "app.timezone"},
		{"token without chat", func(c *Config) { c.Telegram.Token = "123:abc" }, "admin_chat_id"},
		{"bad cron", func(c *Config) { c.Alerts.ReportCron = "every day" }, "alerts.report_cron"},
		{"zero window", func(c *Config) { c.Dashboard.WindowDays = 0 }, "window_days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.edit(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
