// Package config loads pipeline settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// App holds everything the pipeline and scheduler need beyond the scraper's
// own config file.
type App struct {
	TargetURL string
	MaxPages  int
	Headless  bool

	DataDir string

	MinioURL    string
	MinioUser   string
	MinioPass   string
	MinioBucket string
	MinioSSL    bool

	// ScheduleAt is the weekday run time in "HH:MM" 24h format.
	ScheduleAt string

	// Retention bounds how long swept artifacts may linger locally.
	Retention time.Duration

	LogLevel string
}

var scheduleRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() (*App, error) {
	// Ignore a missing .env; containerized runs set the environment directly.
	_ = godotenv.Load()

	app := &App{
		TargetURL:   getEnv("IBOV_URL", "https://sistemaswebb3-listados.b3.com.br/indexPage/day/IBOV?language=pt-br"),
		MaxPages:    getEnvInt("IBOV_MAX_PAGES", 50),
		Headless:    getEnvBool("IBOV_HEADLESS", true),
		DataDir:     getEnv("DATA_DIR", "data"),
		MinioURL:    getEnv("MINIO_URL", ""),
		MinioUser:   getEnv("MINIO_USER", ""),
		MinioPass:   getEnv("MINIO_PASS", ""),
		MinioBucket: getEnv("MINIO_BUCKET", "ibov"),
		MinioSSL:    getEnvBool("MINIO_SSL", false),
		ScheduleAt:  getEnv("HORA_PIPELINE", "20:00"),
		Retention:   getEnvDuration("RETENTION", 0),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if err := app.Validate(); err != nil {
		return nil, err
	}
	return app, nil
}

// Validate checks the settings that would otherwise fail deep inside a run.
func (a *App) Validate() error {
	if a.MaxPages < 1 {
		return fmt.Errorf("IBOV_MAX_PAGES must be at least 1")
	}
	if !scheduleRe.MatchString(a.ScheduleAt) {
		return fmt.Errorf("HORA_PIPELINE must be HH:MM, got %q", a.ScheduleAt)
	}
	return nil
}

// UploadConfigured reports whether object storage credentials are present.
// Without them the pipeline skips the upload and cleanup stages instead of
// failing.
func (a *App) UploadConfigured() bool {
	return a.MinioURL != "" && a.MinioUser != "" && a.MinioPass != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
