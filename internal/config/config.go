package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabasePath         string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	FetchTimeout      time.Duration
	ScreenshotEnabled bool
	ScreenshotDir     string
	ScreenshotTimeout time.Duration

	LogLevel string
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabasePath:         getenv("DATABASE_PATH", "loft.db"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		FetchTimeout:      getduration("FETCH_TIMEOUT", 10*time.Second),
		ScreenshotEnabled: getenv("SCREENSHOT_ENABLED", "false") == "true",
		ScreenshotDir:     getenv("SCREENSHOT_DIR", "screenshots"),
		ScreenshotTimeout: getduration("SCREENSHOT_TIMEOUT", 15*time.Second),

		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getduration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
