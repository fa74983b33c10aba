package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is where the directory backend listens in local setups.
const DefaultBaseURL = "http://localhost:8000"

// Config holds the dirsearch configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Search  SearchConfig  `yaml:"search"`
	Suggest SuggestConfig `yaml:"suggest"`
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds gateway authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds gateway server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// BackendConfig points at the directory search API.
type BackendConfig struct {
	BaseURL           string `yaml:"base_url"`
	SearchPath        string `yaml:"search_path"`
	AutosuggestPath   string `yaml:"autosuggest_path"`
	HealthPath        string `yaml:"health_path"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
	HealthTimeoutSec  int    `yaml:"health_timeout_sec"`
}

// SearchConfig holds paging settings.
type SearchConfig struct {
	PageSize int `yaml:"page_size"`
}

// SuggestConfig tunes the autosuggest dropdown.
type SuggestConfig struct {
	DebounceMs     int   `yaml:"debounce_ms"`
	BlurDelayMs    int   `yaml:"blur_delay_ms"`
	MinQueryLength int   `yaml:"min_query_length"`
	Limit          int   `yaml:"limit"`
	DiscardStale   *bool `yaml:"discard_stale"` // nil = true
}

// RequestTimeout is the per-request backend timeout.
func (b BackendConfig) RequestTimeout() time.Duration {
	return time.Duration(b.RequestTimeoutSec) * time.Second
}

// HealthTimeout bounds a health probe.
func (b BackendConfig) HealthTimeout() time.Duration {
	return time.Duration(b.HealthTimeoutSec) * time.Second
}

// Debounce is the quiet period before a suggestion lookup.
func (s SuggestConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// BlurDelay is how long the dropdown survives losing focus.
func (s SuggestConfig) BlurDelay() time.Duration {
	return time.Duration(s.BlurDelayMs) * time.Millisecond
}

// StaleDiscarded reports whether out-of-order suggestion responses are dropped.
func (s SuggestConfig) StaleDiscarded() bool {
	return s.DiscardStale == nil || *s.DiscardStale
}

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// LoadOrDefault is Load, falling back to Default when the file does not exist.
func LoadOrDefault(env string) (Config, error) {
	if !fileExists(findConfigPath(env)) {
		return Default(), nil
	}
	return Load(env)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	var cfg Config
	data = expandEnvVars(data)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBaseURL
	}
	if c.Backend.SearchPath == "" {
		c.Backend.SearchPath = "/search/comprehensive"
	}
	if c.Backend.AutosuggestPath == "" {
		c.Backend.AutosuggestPath = "/autosuggest"
	}
	if c.Backend.HealthPath == "" {
		c.Backend.HealthPath = "/health"
	}
	if c.Backend.RequestTimeoutSec <= 0 {
		c.Backend.RequestTimeoutSec = 30
	}
	if c.Backend.HealthTimeoutSec <= 0 {
		c.Backend.HealthTimeoutSec = 5
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 25
	}
	if c.Suggest.DebounceMs == 0 {
		c.Suggest.DebounceMs = 300
	}
	if c.Suggest.BlurDelayMs == 0 {
		c.Suggest.BlurDelayMs = 150
	}
	if c.Suggest.MinQueryLength == 0 {
		c.Suggest.MinQueryLength = 2
	}
	if c.Suggest.Limit <= 0 {
		c.Suggest.Limit = 5
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL)
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search.page_size must be positive, got %d", c.Search.PageSize)
	}
	if c.Suggest.MinQueryLength < 1 {
		return fmt.Errorf("suggest.min_query_length must be at least 1, got %d", c.Suggest.MinQueryLength)
	}
	if c.Suggest.DebounceMs < 0 {
		return fmt.Errorf("suggest.debounce_ms must not be negative, got %d", c.Suggest.DebounceMs)
	}
	if c.Suggest.BlurDelayMs < 0 {
		return fmt.Errorf("suggest.blur_delay_ms must not be negative, got %d", c.Suggest.BlurDelayMs)
	}
	return nil
}

// ValidateGateway checks the settings only the HTTP gateway needs.
func (c *Config) ValidateGateway() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	return nil
}

// PathEnvVar names an explicit config file, overriding the lookup by environment.
const PathEnvVar = "DIRSEARCH_CONFIG"

// findConfigPath picks, in order: $DIRSEARCH_CONFIG, ./config/<env>.yaml,
// <user config dir>/dirsearch/<env>.yaml. When none exists the ./config path is returned.
func findConfigPath(env string) string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}

	local := filepath.Join("config", env+".yaml")
	if fileExists(local) {
		return local
	}
	if dir, err := os.UserConfigDir(); err == nil {
		if p := filepath.Join(dir, "dirsearch", env+".yaml"); fileExists(p) {
			return p
		}
	}
	return local
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandEnvVars substitutes ${VAR} and ${VAR:-fallback}. Unset and empty
// variables both take the fallback.
func expandEnvVars(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		m := envRef.FindSubmatch(ref)
		if v := os.Getenv(string(m[1])); v != "" {
			return []byte(v)
		}
		return m[3]
	})
}
