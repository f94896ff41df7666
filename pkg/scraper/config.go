package scraper

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/b3flow/ibovscan/internal/browser"
)

// DefaultTargetURL is the B3 IBOV day page the scraper was built for.
const DefaultTargetURL = "https://sistemaswebb3-listados.b3.com.br/indexPage/day/IBOV?language=pt-br"

// Config holds all scraper configuration.
type Config struct {
	// Target URL to scrape
	TargetURL string `json:"target_url" yaml:"target_url"`

	// Hard ceiling on pages visited, the safety bound against pagination
	// controls that always report success without changing content
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// Per-operation timeout (render wait, navigation)
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Settle delays giving client-side rendering time to populate
	InitialSettle time.Duration `json:"initial_settle" yaml:"initial_settle"`
	TableSettle   time.Duration `json:"table_settle" yaml:"table_settle"`
	DensitySettle time.Duration `json:"density_settle" yaml:"density_settle"`
	AdvanceSettle time.Duration `json:"advance_settle" yaml:"advance_settle"`

	// Politeness bound on page navigations per second
	NavPerSecond float64 `json:"nav_per_second" yaml:"nav_per_second"`

	// Browser configuration
	Browser browser.Config `json:"browser" yaml:"browser"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// DefaultConfig returns a configuration with sensible defaults. The settle
// delays mirror the cadence the target page needs to repopulate its table.
func DefaultConfig() *Config {
	return &Config{
		TargetURL:     DefaultTargetURL,
		MaxPages:      50,
		Timeout:       30 * time.Second,
		InitialSettle: 5 * time.Second,
		TableSettle:   3 * time.Second,
		DensitySettle: 5 * time.Second,
		AdvanceSettle: 3 * time.Second,
		NavPerSecond:  1,
		Browser:       browser.DefaultConfig(),
		Verbose:       false,
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile writes the configuration to a file, JSON when the path ends
// in .json and YAML otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("target URL is required")
	}

	if c.MaxPages < 1 {
		return fmt.Errorf("max pages must be at least 1")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.NavPerSecond <= 0 {
		return fmt.Errorf("navigation rate must be positive")
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	data, _ := json.Marshal(c)
	clone := &Config{}
	json.Unmarshal(data, clone)
	return clone
}
