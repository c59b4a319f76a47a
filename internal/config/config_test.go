package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTokens(t *testing.T) {
	t.Setenv("TOKEN_DASHBOARD_BOT", "dash-token")
	t.Setenv("TOKEN_NOTIFY_BOT", "notify-token")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setTokens(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.PostgresConfig.Store)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, "cycle-reminders", cfg.KafkaConfig.Topic)
	assert.Equal(t, uint(3), cfg.GeminiConfig.Attempts)
	assert.Equal(t, "gemini-3-flash-preview", cfg.GeminiConfig.Model)
	assert.Equal(t, 500*time.Millisecond, cfg.GeminiConfig.Delay)
	assert.Equal(t, "smtp.femhealth.io", cfg.DispatchConfig.SMTPHost)
	assert.Equal(t, 100*time.Millisecond, cfg.DispatchConfig.MinDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.DispatchConfig.MaxDelay)
	assert.Equal(t, 3, cfg.DispatchConfig.DueSoonDays)
	assert.Equal(t, "0 8 * * *", cfg.NotifierConfig.Schedule)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setTokens(t)
	t.Setenv("STORE", "postgres")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DISPATCH_MIN_DELAY", "0s")
	t.Setenv("DISPATCH_MAX_DELAY", "1s")
	t.Setenv("DUE_SOON_DAYS", "5")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("GEMINI_RETRY_DELAY", "2s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.PostgresConfig.Store)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaConfig.Brokers)
	assert.Equal(t, time.Second, cfg.DispatchConfig.MaxDelay)
	assert.Equal(t, 5, cfg.DispatchConfig.DueSoonDays)
	assert.Equal(t, 2*time.Second, cfg.GeminiConfig.Delay)
	assert.Equal(t, "postgres://user:password@db:5432/femhealth?sslmode=disable", cfg.PostgresConfig.DSN())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing dashboard token", env: map[string]string{"TOKEN_DASHBOARD_BOT": ""}},
		{name: "unknown store", env: map[string]string{"STORE": "redis"}},
		{name: "bad delay", env: map[string]string{"DISPATCH_MIN_DELAY": "soon"}},
		{name: "inverted delays", env: map[string]string{"DISPATCH_MIN_DELAY": "2s", "DISPATCH_MAX_DELAY": "1s"}},
		{name: "bad retry delay", env: map[string]string{"GEMINI_RETRY_DELAY": "later"}},
		{name: "bad attempts", env: map[string]string{"GEMINI_ATTEMPTS": "many"}},
		{name: "negative due soon", env: map[string]string{"DUE_SOON_DAYS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setTokens(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
