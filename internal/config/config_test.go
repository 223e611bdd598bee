package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Chdir(dir)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	writeConfig(t, `
telegram:
  bot_token: "123:abc"
  admin_ids: [100, 200]
  channel_id: "@tmarket228"
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, []int64{100, 200}, cfg.Telegram.AdminIDs)
	assert.Equal(t, "@tmarket228", cfg.Telegram.ChannelID)
	assert.Equal(t, 60, cfg.Telegram.PollingTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Telegram.RequestTimeout)
	assert.Equal(t, "photos", cfg.Storage.PhotosDir)
	assert.Equal(t, "static/conditions.jpg", cfg.Storage.ConditionsImage)
	assert.Equal(t, "", cfg.Storage.DatabasePath)
	assert.Equal(t, 80, cfg.Image.JPEGQuality)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.JSONFormat)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	writeConfig(t, `
telegram:
  bot_token: "123:abc"
  admin_ids: [100]
  channel_id: "-1001234567890"
  polling_timeout: 30
storage:
  photos_dir: "/var/lib/tmarket/photos"
  database_path: "/var/lib/tmarket/bot.db"
image:
  jpeg_quality: 95
logging:
  level: "debug"
  json_format: true
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "-1001234567890", cfg.Telegram.ChannelID)
	assert.Equal(t, 30, cfg.Telegram.PollingTimeout)
	assert.Equal(t, "/var/lib/tmarket/photos", cfg.Storage.PhotosDir)
	assert.Equal(t, "/var/lib/tmarket/bot.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 95, cfg.Image.JPEGQuality)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSONFormat)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Telegram: TelegramConfig{
				BotToken:  "123:abc",
				AdminIDs:  []int64{100},
				ChannelID: "@tmarket228",
			},
			Image: ImageConfig{JPEGQuality: 80},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}, wantErr: ""},
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.Telegram.BotToken = "" },
			wantErr: "bot_token",
		},
		{
			name:    "no admins",
			mutate:  func(c *Config) { c.Telegram.AdminIDs = nil },
			wantErr: "admin_ids",
		},
		{
			name:    "missing channel",
			mutate:  func(c *Config) { c.Telegram.ChannelID = "" },
			wantErr: "channel_id",
		},
		{
			name:    "quality too low",
			mutate:  func(c *Config) { c.Image.JPEGQuality = 0 },
			wantErr: "jpeg_quality",
		},
		{
			name:    "quality too high",
			mutate:  func(c *Config) { c.Image.JPEGQuality = 101 },
			wantErr: "jpeg_quality",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
