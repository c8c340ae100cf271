// ABOUTME: Configuration loading for the edgecall client
// ABOUTME: Reads YAML or TOML with ${ENV} expansion, parses durations, applies defaults, validates

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by DefaultPath and FromEnv.
const (
	EnvConfigPath = "EDGECALL_CONFIG"
	EnvBaseURL    = "EDGECALL_BASE_URL"
	EnvAnonKey    = "EDGECALL_ANON_KEY"
)

// Defaults applied by Load and FromEnv.
const (
	DefaultFunctionsPath         = "functions/v1"
	DefaultTokenEnv              = "EDGECALL_TOKEN"
	DefaultNotificationsEndpoint = "notifications-stream"
	DefaultDedupeTTL             = 10 * time.Minute
	DefaultDedupeSize            = 1024
	DefaultLogLevel              = "info"
	DefaultLogFormat             = "text"
)

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Config is the complete client configuration.
type Config struct {
	API     APIConfig     `yaml:"api" toml:"api"`
	Auth    AuthConfig    `yaml:"auth" toml:"auth"`
	Streams StreamsConfig `yaml:"streams" toml:"streams"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// APIConfig locates the remote.
type APIConfig struct {
	BaseURL       string `yaml:"base_url" toml:"base_url"`
	AnonKey       string `yaml:"anon_key" toml:"anon_key"`
	FunctionsPath string `yaml:"functions_path" toml:"functions_path"`
	UserAgent     string `yaml:"user_agent" toml:"user_agent"`

	// Raw string value from config, parsed into RequestTimeout. Zero means
	// no client-side timeout.
	RequestTimeoutRaw string        `yaml:"request_timeout" toml:"request_timeout"`
	RequestTimeout    time.Duration `yaml:"-" toml:"-"`
}

// AuthConfig says where bearer credentials come from. Sources are tried in
// order: Token, the TokenEnv variable, TokenFile, then the SessionDB store.
type AuthConfig struct {
	Token     string `yaml:"token" toml:"token"`
	TokenEnv  string `yaml:"token_env" toml:"token_env"`
	TokenFile string `yaml:"token_file" toml:"token_file"`
	SessionDB string `yaml:"session_db" toml:"session_db"`
}

// StreamsConfig tunes push-stream subscriptions.
type StreamsConfig struct {
	NotificationsEndpoint string `yaml:"notifications_endpoint" toml:"notifications_endpoint"`

	DedupeTTLRaw string        `yaml:"dedupe_ttl" toml:"dedupe_ttl"`
	DedupeTTL    time.Duration `yaml:"-" toml:"-"`
	DedupeSize   int           `yaml:"dedupe_size" toml:"dedupe_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "text" or "json"
}

// Load reads a configuration file. Files ending in .toml are parsed as TOML,
// everything else as YAML. ${VAR_NAME} references are expanded first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return finish(&cfg)
}

// FromEnv builds a configuration from EDGECALL_* variables, for running
// without a config file.
func FromEnv() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			BaseURL: os.Getenv(EnvBaseURL),
			AnonKey: os.Getenv(EnvAnonKey),
		},
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns the config file location.
// Priority: EDGECALL_CONFIG > XDG_CONFIG_HOME/edgecall/config.yaml > ~/.config/edgecall/config.yaml
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "edgecall", "config.yaml")
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "edgecall", "config.yaml")
}

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or "" when unset.
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envPattern.FindStringSubmatch(match)[1])
	})
}

func (c *Config) applyDefaults() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.FunctionsPath == "" {
		c.API.FunctionsPath = DefaultFunctionsPath
	}
	if c.Auth.TokenEnv == "" {
		c.Auth.TokenEnv = DefaultTokenEnv
	}
	if c.Streams.NotificationsEndpoint == "" {
		c.Streams.NotificationsEndpoint = DefaultNotificationsEndpoint
	}
	if c.Streams.DedupeTTL == 0 {
		c.Streams.DedupeTTL = DefaultDedupeTTL
	}
	if c.Streams.DedupeSize == 0 {
		c.Streams.DedupeSize = DefaultDedupeSize
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// Validate checks that required fields are present and valid.
// Returns an error describing the first failure encountered.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url must include a host")
	}
	if c.API.AnonKey == "" {
		return fmt.Errorf("api.anon_key is required")
	}
	if c.API.RequestTimeout < 0 {
		return fmt.Errorf("api.request_timeout must not be negative")
	}
	if c.Streams.DedupeTTL < 0 {
		return fmt.Errorf("streams.dedupe_ttl must not be negative")
	}
	if c.Streams.DedupeSize < 0 {
		return fmt.Errorf("streams.dedupe_size must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.API.RequestTimeoutRaw != "" {
		cfg.API.RequestTimeout, err = time.ParseDuration(cfg.API.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.API.RequestTimeoutRaw, err)
		}
	}

	if cfg.Streams.DedupeTTLRaw != "" {
		cfg.Streams.DedupeTTL, err = time.ParseDuration(cfg.Streams.DedupeTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing dedupe_ttl %q: %w", cfg.Streams.DedupeTTLRaw, err)
		}
	}

	return nil
}

// String renders the config with secrets masked, for logging.
func (c *Config) String() string {
	return fmt.Sprintf("api.base_url=%s api.anon_key=%s auth.token=%s auth.session_db=%s streams.notifications_endpoint=%s logging.level=%s",
		c.API.BaseURL, mask(c.API.AnonKey), mask(c.Auth.Token), strconv.Quote(c.Auth.SessionDB),
		c.Streams.NotificationsEndpoint, c.Logging.Level)
}

func mask(secret string) string {
	if secret == "" {
		return `""`
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}
