package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "loft.db", cfg.DatabasePath)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.ScreenshotEnabled)
	assert.Equal(t, "screenshots", cfg.ScreenshotDir)
	assert.Equal(t, 15*time.Second, cfg.ScreenshotTimeout)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("SCREENSHOT_ENABLED", "true")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("SCREENSHOT_TIMEOUT", "20")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, http://localhost:3000 ,")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.True(t, cfg.ScreenshotEnabled)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	// bare integers read as seconds
	assert.Equal(t, 20*time.Second, cfg.ScreenshotTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresBadDurations(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "soon")
	t.Setenv("SCREENSHOT_TIMEOUT", "-4s")

	cfg := Load()
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 15*time.Second, cfg.ScreenshotTimeout)
}
