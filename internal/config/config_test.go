package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	app, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if app.MaxPages != 50 {
		t.Errorf("MaxPages = %d, want 50", app.MaxPages)
	}
	if !app.Headless {
		t.Error("Headless should default to true")
	}
	if app.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", app.DataDir)
	}
	if app.ScheduleAt != "20:00" {
		t.Errorf("ScheduleAt = %q, want 20:00", app.ScheduleAt)
	}
	if app.MinioBucket != "ibov" {
		t.Errorf("MinioBucket = %q, want ibov", app.MinioBucket)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IBOV_MAX_PAGES", "7")
	t.Setenv("IBOV_HEADLESS", "false")
	t.Setenv("DATA_DIR", "/tmp/ibov")
	t.Setenv("HORA_PIPELINE", "09:30")
	t.Setenv("RETENTION", "72h")

	app, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if app.MaxPages != 7 {
		t.Errorf("MaxPages = %d, want 7", app.MaxPages)
	}
	if app.Headless {
		t.Error("Headless should be overridden to false")
	}
	if app.DataDir != "/tmp/ibov" {
		t.Errorf("DataDir = %q", app.DataDir)
	}
	if app.ScheduleAt != "09:30" {
		t.Errorf("ScheduleAt = %q", app.ScheduleAt)
	}
	if app.Retention != 72*time.Hour {
		t.Errorf("Retention = %v, want 72h", app.Retention)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("IBOV_MAX_PAGES", "not-a-number")
	t.Setenv("IBOV_HEADLESS", "not-a-bool")
	t.Setenv("RETENTION", "not-a-duration")

	app, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if app.MaxPages != 50 {
		t.Errorf("MaxPages = %d, want fallback 50", app.MaxPages)
	}
	if !app.Headless {
		t.Error("Headless should fall back to true")
	}
	if app.Retention != 0 {
		t.Errorf("Retention = %v, want fallback 0", app.Retention)
	}
}

func TestLoad_InvalidSchedule(t *testing.T) {
	t.Setenv("HORA_PIPELINE", "25:99")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil for invalid schedule time")
	}
}

func TestApp_UploadConfigured(t *testing.T) {
	app := &App{}
	if app.UploadConfigured() {
		t.Error("Empty credentials should not report configured")
	}

	app.MinioURL = "minio:9000"
	app.MinioUser = "admin"
	app.MinioPass = "secret"
	if !app.UploadConfigured() {
		t.Error("Full credentials should report configured")
	}
}
