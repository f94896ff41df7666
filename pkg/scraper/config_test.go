package scraper

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.TargetURL != DefaultTargetURL {
		t.Errorf("TargetURL = %q", cfg.TargetURL)
	}
	if cfg.MaxPages != 50 {
		t.Errorf("MaxPages = %d, want 50", cfg.MaxPages)
	}
	if !cfg.Browser.Headless {
		t.Error("Browser should default to headless")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing URL", func(c *Config) { c.TargetURL = "" }, true},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }, true},
		{"negative max pages", func(c *Config) { c.MaxPages = -1 }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"zero nav rate", func(c *Config) { c.NavPerSecond = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
target_url: https://example.test/day/IBOV
max_pages: 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.TargetURL != "https://example.test/day/IBOV" {
		t.Errorf("TargetURL = %q", cfg.TargetURL)
	}
	if cfg.MaxPages != 10 {
		t.Errorf("MaxPages = %d, want 10", cfg.MaxPages)
	}
	// Unspecified fields keep their defaults.
	if cfg.NavPerSecond != 1 {
		t.Errorf("NavPerSecond = %v, want default 1", cfg.NavPerSecond)
	}
}

func TestConfig_SaveAndLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := DefaultConfig()
			cfg.MaxPages = 12
			cfg.Timeout = 45 * time.Second

			if err := cfg.SaveToFile(path); err != nil {
				t.Fatalf("SaveToFile() error = %v", err)
			}

			loaded, err := LoadFromFile(path)
			if err != nil {
				t.Fatalf("LoadFromFile() error = %v", err)
			}
			if loaded.MaxPages != 12 {
				t.Errorf("MaxPages = %d, want 12", loaded.MaxPages)
			}
			if loaded.Timeout != 45*time.Second {
				t.Errorf("Timeout = %v, want 45s", loaded.Timeout)
			}
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFromFile() error = nil for missing file")
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.MaxPages = 7
	clone.Browser.Headless = false

	if cfg.MaxPages == 7 {
		t.Error("Clone shares MaxPages with the original")
	}
	if !cfg.Browser.Headless {
		t.Error("Clone shares nested browser config with the original")
	}
}
