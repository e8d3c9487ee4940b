// Package config provides application-wide configuration loaded from env vars,
// an optional YAML file and an optional dotenv file.
// Precedence: flags (applied by the caller) > environment > YAML file > defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredentials is returned by Validate when any backend credential is absent.
var ErrMissingCredentials = errors.New("missing WebCenter Content credentials")

// Config holds runtime configuration for the adapter.
type Config struct {
	// Backend
	BaseURL  string        // WCC_BASE_URL: required
	Username string        // WCC_USERNAME: required
	Password string        // WCC_PASSWORD: required
	APIPath  string        // WCC_API_PATH: default: "/documents/wcc/api/v1.1"
	Timeout  time.Duration // WCC_TIMEOUT: default: 60s

	// Network front end
	HTTPMode  bool   // MCP_HTTP_MODE: default: false (stdio)
	HTTPHost  string // MCP_HTTP_HOST: default: "127.0.0.1"
	HTTPPort  int    // MCP_HTTP_PORT: default: 3000
	HTTPPath  string // MCP_HTTP_PATH: default: "/mcp"
	JWTSecret string // MCP_HTTP_JWT_SECRET: empty disables bearer auth

	// Audit
	AuditDBPath string // MCP_AUDIT_DB: empty disables the audit log

	// Logging
	LogLevel  string // LOG_LEVEL: default: "info"
	LogFormat string // LOG_FORMAT: default: "json"
}

const (
	envKeyBaseURL     = "WCC_BASE_URL"
	envKeyUsername    = "WCC_USERNAME"
	envKeyPassword    = "WCC_PASSWORD"
	envKeyAPIPath     = "WCC_API_PATH"
	envKeyTimeout     = "WCC_TIMEOUT"
	envKeyHTTPMode    = "MCP_HTTP_MODE"
	envKeyHTTPHost    = "MCP_HTTP_HOST"
	envKeyHTTPPort    = "MCP_HTTP_PORT"
	envKeyHTTPPath    = "MCP_HTTP_PATH"
	envKeyJWTSecret   = "MCP_HTTP_JWT_SECRET"
	envKeyAuditDB     = "MCP_AUDIT_DB"
	envKeyLogLevel    = "LOG_LEVEL"
	envKeyLogFormat   = "LOG_FORMAT"
	defaultAPIPath    = "/documents/wcc/api/v1.1"
	defaultTimeout    = 60 * time.Second
	defaultHTTPHost   = "127.0.0.1"
	defaultHTTPPort   = 3000
	defaultHTTPPath   = "/mcp"
	defaultLogLevel   = "info"
	defaultLogFormat  = "json"
	logFormatConsole  = "console"
	httpModeTrueValue = "true"
)

// fileConfig mirrors Config for the YAML overlay. Zero values mean "not set".
type fileConfig struct {
	BaseURL   string `yaml:"base_url"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	APIPath   string `yaml:"api_path"`
	Timeout   string `yaml:"timeout"`
	HTTPMode  *bool  `yaml:"http_mode"`
	HTTPHost  string `yaml:"http_host"`
	HTTPPort  int    `yaml:"http_port"`
	HTTPPath  string `yaml:"http_path"`
	JWTSecret string `yaml:"jwt_secret"`
	AuditDB   string `yaml:"audit_db"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Defaults returns a Config with every optional field set to its default.
func Defaults() Config {
	return Config{
		APIPath:   defaultAPIPath,
		Timeout:   defaultTimeout,
		HTTPHost:  defaultHTTPHost,
		HTTPPort:  defaultHTTPPort,
		HTTPPath:  defaultHTTPPath,
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}

// Load reads configuration from environment variables, applying defaults for missing values.
func Load() Config {
	return overlayEnv(Defaults())
}

// LoadFile reads the YAML file at path on top of the defaults, then applies the environment.
// An empty path behaves like Load.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Load(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	cfg, err := overlayFile(Defaults(), fc)
	if err != nil {
		return Config{}, fmt.Errorf("config: %q: %w", path, err)
	}
	return overlayEnv(cfg), nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process environment.
// Variables already set in the environment are not overridden.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load env file %q: %w", path, err)
	}
	return nil
}

// Validate reports every missing credential at once.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, envKeyBaseURL)
	}
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, envKeyUsername)
	}
	if c.Password == "" {
		missing = append(missing, envKeyPassword)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("config: invalid http port %d", c.HTTPPort)
	}
	return nil
}

// ListenAddr returns host:port for the network front end.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(c.HTTPPort))
}

// ConsoleLogs reports whether human-readable log output was requested.
func (c Config) ConsoleLogs() bool {
	return strings.EqualFold(c.LogFormat, logFormatConsole)
}

func overlayFile(cfg Config, fc fileConfig) (Config, error) {
	cfg.BaseURL = coalesce(fc.BaseURL, cfg.BaseURL)
	cfg.Username = coalesce(fc.Username, cfg.Username)
	cfg.Password = coalesce(fc.Password, cfg.Password)
	cfg.APIPath = coalesce(fc.APIPath, cfg.APIPath)
	cfg.HTTPHost = coalesce(fc.HTTPHost, cfg.HTTPHost)
	cfg.HTTPPath = coalesce(fc.HTTPPath, cfg.HTTPPath)
	cfg.JWTSecret = coalesce(fc.JWTSecret, cfg.JWTSecret)
	cfg.AuditDBPath = coalesce(fc.AuditDB, cfg.AuditDBPath)
	cfg.LogLevel = coalesce(fc.LogLevel, cfg.LogLevel)
	cfg.LogFormat = coalesce(fc.LogFormat, cfg.LogFormat)
	if fc.HTTPMode != nil {
		cfg.HTTPMode = *fc.HTTPMode
	}
	if fc.HTTPPort != 0 {
		cfg.HTTPPort = fc.HTTPPort
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid timeout %q: %w", fc.Timeout, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

func overlayEnv(cfg Config) Config {
	cfg.BaseURL = envOr(envKeyBaseURL, cfg.BaseURL)
	cfg.Username = envOr(envKeyUsername, cfg.Username)
	cfg.Password = envOr(envKeyPassword, cfg.Password)
	cfg.APIPath = envOr(envKeyAPIPath, cfg.APIPath)
	cfg.HTTPHost = envOr(envKeyHTTPHost, cfg.HTTPHost)
	cfg.HTTPPath = envOr(envKeyHTTPPath, cfg.HTTPPath)
	cfg.JWTSecret = envOr(envKeyJWTSecret, cfg.JWTSecret)
	cfg.AuditDBPath = envOr(envKeyAuditDB, cfg.AuditDBPath)
	cfg.LogLevel = envOr(envKeyLogLevel, cfg.LogLevel)
	cfg.LogFormat = envOr(envKeyLogFormat, cfg.LogFormat)

	if v := os.Getenv(envKeyHTTPMode); v != "" {
		cfg.HTTPMode = parseBool(v)
	}
	if v := os.Getenv(envKeyHTTPPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTPPort = port
		}
	}
	if v := os.Getenv(envKeyTimeout); v != "" {
		cfg.Timeout = parseTimeout(v, cfg.Timeout)
	}
	return cfg
}

// parseTimeout accepts a Go duration ("90s") or a bare number of seconds ("90").
// Invalid values fall back to the current setting.
func parseTimeout(v string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == httpModeTrueValue || v == "1" || v == "yes"
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func coalesce(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}
