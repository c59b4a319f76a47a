package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kotche/femhealth/internal/config"
	"github.com/kotche/femhealth/internal/content"
)

func TestGeminiConfig_PassesRetrySettings(t *testing.T) {
	got := geminiConfig(config.GeminiConfig{
		APIKey:   "key",
		Model:    content.DefaultModel,
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		Timeout:  20 * time.Second,
	})

	assert.Equal(t, content.GeminiConfig{
		APIKey:   "key",
		Model:    "gemini-3-flash-preview",
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		Timeout:  20 * time.Second,
	}, got)
}
