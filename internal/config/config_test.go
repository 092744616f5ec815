package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CompteClient/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "database.db", cfg.Database.Path)
	assert.Equal(t, ":8501", cfg.Server.Addr)
	assert.Equal(t, "data/dashboard.html", cfg.Snapshot.Path)
	assert.Empty(t, cfg.Snapshot.Cron)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: mysql
  path: "user:pass@tcp(db:3306)/banque"
server:
  addr: ":9000"
snapshot:
  cron: "0 0 7 * * 1-5"
telegram:
  bot_token: file-token
  chat_id: "42"
`)
	t.Setenv("DASHBOARD_ADDR", ":9100")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "user:pass@tcp(db:3306)/banque", cfg.Database.Path)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "database: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"empty path", func(c *Config) { c.Database.Path = "" }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "t" }},
		{"bad cron", func(c *Config) { c.Snapshot.Cron = "every day" }},
		{"cron without seconds", func(c *Config) { c.Snapshot.Cron = "0 7 * * *" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), model.ErrConfig)
		})
	}
}
