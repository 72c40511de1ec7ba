package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doorsmith/internal/catalog"
	"doorsmith/internal/results"

	"gopkg.in/yaml.v3"
)

// DefaultDir is the workspace-relative directory holding doorsmith files.
const DefaultDir = ".doorsmith"

// Config holds all doorsmith configuration.
type Config struct {
	// Search API client
	Catalog CatalogConfig `yaml:"catalog"`

	// Customization panel choices
	Customize CustomizeConfig `yaml:"customize"`

	// Add-to-build sinks
	Build BuildConfig `yaml:"build"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig configures the product search client.
type CatalogConfig struct {
	BaseURL       string `yaml:"base_url"`
	Timeout       string `yaml:"timeout"`
	UserAgent     string `yaml:"user_agent"`
	FallbackImage string `yaml:"fallback_image"`
}

// CustomizeConfig lists the options offered by the customization panel.
type CustomizeConfig struct {
	Materials       []string `yaml:"materials"`
	HardwareOptions []string `yaml:"hardware_options"`
}

// BuildConfig configures where add-to-build payloads are emitted.
type BuildConfig struct {
	LogFile   string `yaml:"log_file"`   // JSONL event log, empty disables
	BusBuffer int    `yaml:"bus_buffer"` // per-subscriber channel buffer
}

// UIConfig configures the interactive configurator.
type UIConfig struct {
	Theme           string `yaml:"theme"`        // auto, light, dark
	DefaultSort     string `yaml:"default_sort"` // relevance, price-asc, price-desc, name
	PreviewDebounce string `yaml:"preview_debounce"`
}

// LoggingConfig configures file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`
	Dir        string          `yaml:"dir"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:       catalog.DefaultBaseURL,
			Timeout:       "15s",
			UserAgent:     catalog.DefaultUserAgent,
			FallbackImage: catalog.FallbackImageURL,
		},
		Customize: CustomizeConfig{
			Materials:       []string{"Wood", "Metal", "Glass", "Composite"},
			HardwareOptions: []string{"Handle", "Hinges", "Lock", "Peephole", "Kick plate"},
		},
		Build: BuildConfig{
			LogFile:   "",
			BusBuffer: 16,
		},
		UI: UIConfig{
			Theme:           "auto",
			DefaultSort:     string(results.SortRelevance),
			PreviewDebounce: "150ms",
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
			Dir:       filepath.Join(DefaultDir, "logs"),
		},
	}
}

// DefaultConfigPath returns the default path to .doorsmith/config.yaml.
func DefaultConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(DefaultDir, "config.yaml")
	}
	return filepath.Join(cwd, DefaultDir, "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults when the file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if u := os.Getenv("DOORSMITH_SEARCH_URL"); u != "" {
		c.Catalog.BaseURL = u
	}
	if theme := os.Getenv("DOORSMITH_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if path := os.Getenv("DOORSMITH_BUILD_LOG"); path != "" {
		c.Build.LogFile = path
	}
}

// GetTimeout returns the search request timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// GetPreviewDebounce returns the customization preview debounce interval.
func (c *Config) GetPreviewDebounce() time.Duration {
	d, err := time.ParseDuration(c.UI.PreviewDebounce)
	if err != nil || d < 0 {
		return 150 * time.Millisecond
	}
	return d
}

// GetDefaultSort returns the configured initial sort key.
func (c *Config) GetDefaultSort() results.SortKey {
	key, err := results.ParseSortKey(c.UI.DefaultSort)
	if err != nil {
		return results.SortRelevance
	}
	return key
}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid catalog.base_url %q: must be an absolute http(s) URL", c.Catalog.BaseURL)
	}
	if c.Catalog.Timeout != "" {
		if _, err := time.ParseDuration(c.Catalog.Timeout); err != nil {
			return fmt.Errorf("invalid catalog.timeout %q: %w", c.Catalog.Timeout, err)
		}
	}
	if _, err := results.ParseSortKey(c.UI.DefaultSort); err != nil {
		return fmt.Errorf("invalid ui.default_sort: %w", err)
	}

	theme := strings.ToLower(c.UI.Theme)
	validTheme := theme == ""
	for _, t := range ValidThemes {
		if theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ui.theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	if c.Build.BusBuffer < 0 {
		return fmt.Errorf("invalid build.bus_buffer %d: must not be negative", c.Build.BusBuffer)
	}
	return nil
}
