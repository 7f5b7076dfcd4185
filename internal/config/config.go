package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the bizvet pipeline configuration.
type Config struct {
	Proxy      ProxyConfig      `yaml:"proxy"`
	Registry   RegistryConfig   `yaml:"registry"`
	Completion CompletionConfig `yaml:"completion"`
	Matching   MatchingConfig   `yaml:"matching"`
	Activity   ActivityConfig   `yaml:"activity"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Ops        OpsConfig        `yaml:"ops"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// ProxyConfig holds extraction proxy settings.
type ProxyConfig struct {
	APIKey           string  `yaml:"api_key"`
	Endpoint         string  `yaml:"endpoint"`
	RatePerSec       float64 `yaml:"rate_per_sec"`
	SearchTimeoutSec int     `yaml:"search_timeout_sec"`
	DetailTimeoutSec int     `yaml:"detail_timeout_sec"`
}

// RegistryConfig holds corporate registry endpoint settings.
type RegistryConfig struct {
	SearchURL   string `yaml:"search_url"`
	DetailURL   string `yaml:"detail_url"`
	ResultLimit int    `yaml:"result_limit"`
}

// CompletionConfig holds chat completion provider settings.
type CompletionConfig struct {
	APIKey     string  `yaml:"api_key"`
	BaseURL    string  `yaml:"base_url"` // empty = provider default
	Model      string  `yaml:"model"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	TimeoutSec int     `yaml:"timeout_sec"`
}

// MatchingConfig holds classical matcher settings.
type MatchingConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"` // 0..100
	NameWeight     float64 `yaml:"name_weight"`
	AddressWeight  float64 `yaml:"address_weight"`
}

// ActivityConfig holds activity heuristic settings.
type ActivityConfig struct {
	LowThreshold float64 `yaml:"low_threshold"` // 0..1
}

// PipelineConfig holds batch processing settings.
type PipelineConfig struct {
	BatchSize int `yaml:"batch_size"`
	MaxRows   int `yaml:"max_rows"` // 0 = no limit
}

// OpsConfig holds the operational HTTP server settings.
type OpsConfig struct {
	Port        int `yaml:"port"` // 0 = disabled
	ShutdownSec int `yaml:"shutdown_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
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
	if c.Proxy.Endpoint == "" {
		c.Proxy.Endpoint = "https://api.zyte.com/v1/extract"
	}
	if c.Proxy.RatePerSec <= 0 {
		c.Proxy.RatePerSec = 1000
	}
	if c.Proxy.SearchTimeoutSec <= 0 {
		c.Proxy.SearchTimeoutSec = 15
	}
	if c.Proxy.DetailTimeoutSec <= 0 {
		c.Proxy.DetailTimeoutSec = 30
	}
	if c.Registry.SearchURL == "" {
		c.Registry.SearchURL = "https://rceapi.estado.pr.gov/api/corporation/search"
	}
	if c.Registry.DetailURL == "" {
		c.Registry.DetailURL = "https://rceapi.estado.pr.gov/api/corporation/info"
	}
	if c.Registry.ResultLimit <= 0 {
		c.Registry.ResultLimit = 10
	}
	if c.Completion.Model == "" {
		c.Completion.Model = "gpt-4o-mini"
	}
	if c.Completion.RatePerSec <= 0 {
		c.Completion.RatePerSec = 500
	}
	if c.Completion.TimeoutSec <= 0 {
		c.Completion.TimeoutSec = 30
	}
	if c.Matching.FuzzyThreshold <= 0 {
		c.Matching.FuzzyThreshold = 50
	}
	if c.Matching.NameWeight <= 0 && c.Matching.AddressWeight <= 0 {
		c.Matching.NameWeight = 0.25
		c.Matching.AddressWeight = 0.75
	}
	if c.Activity.LowThreshold <= 0 {
		c.Activity.LowThreshold = 0.2
	}
	if c.Pipeline.BatchSize <= 0 {
		c.Pipeline.BatchSize = 15
	}
	if c.Ops.ShutdownSec <= 0 {
		c.Ops.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Proxy.APIKey == "" {
		return fmt.Errorf("proxy.api_key is required")
	}
	if c.Completion.APIKey == "" {
		return fmt.Errorf("completion.api_key is required")
	}
	if c.Matching.FuzzyThreshold < 0 || c.Matching.FuzzyThreshold > 100 {
		return fmt.Errorf("matching.fuzzy_threshold must be between 0 and 100, got %v", c.Matching.FuzzyThreshold)
	}
	if sum := c.Matching.NameWeight + c.Matching.AddressWeight; math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("matching.name_weight and matching.address_weight must sum to 1.0, got %v", sum)
	}
	if c.Activity.LowThreshold < 0 || c.Activity.LowThreshold > 1 {
		return fmt.Errorf("activity.low_threshold must be between 0 and 1, got %v", c.Activity.LowThreshold)
	}
	if c.Pipeline.MaxRows < 0 {
		return fmt.Errorf("pipeline.max_rows must not be negative, got %d", c.Pipeline.MaxRows)
	}
	if c.Ops.Port < 0 || c.Ops.Port > 65535 {
		return fmt.Errorf("ops.port must be between 0 and 65535, got %d", c.Ops.Port)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
