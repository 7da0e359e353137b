package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the dashboard
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost      string
	ServerPort      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Backend API configuration
	BackendURL     string
	BackendTimeout time.Duration

	// Session configuration
	SessionSecret       string
	SessionCookieSecure bool

	// Redis configuration, optional
	RedisURL       string
	ViewCacheTTL   time.Duration
	LoginRateLimit int

	CORSAllowedOrigins []string
	LogLevel           string
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// source resolves a setting from the process environment, Docker secrets and
// an optional YAML file, in that order.
type source struct {
	file       map[string]string
	secretsDir string
	useSecrets bool
}

func (s source) get(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if s.useSecrets {
		if v := readSecret(s.secretsDir, strings.ToLower(key)); v != "" {
			return v
		}
	}
	return s.file[key]
}

func (s source) getDefault(key, def string) string {
	if v := s.get(key); v != "" {
		return v
	}
	return def
}

// LoadConfig creates a new Config from the environment. configFile is an
// optional YAML file of KEY: value pairs used for anything the environment
// does not set.
func LoadConfig(configFile string) (*Config, error) {
	env := GetEnvironment()

	file, err := loadFile(configFile)
	if err != nil {
		return nil, err
	}

	src := source{file: file, secretsDir: secretsDir()}
	cfg := &Config{Environment: env}

	switch env {
	case CI:
		err = loadCIConfig(cfg, src)
	case Development, Test:
		err = loadDevConfig(cfg, src)
	case Production:
		err = loadProdConfig(cfg, src)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadCIConfig reads only environment variables
func loadCIConfig(cfg *Config, src source) error {
	src.file = nil
	return loadCommon(cfg, src)
}

// loadDevConfig reads a local .env file when present, then the environment
func loadDevConfig(cfg *Config, src source) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}
	return loadCommon(cfg, src)
}

// loadProdConfig reads sensitive values from Docker secrets
func loadProdConfig(cfg *Config, src source) error {
	src.useSecrets = true
	return loadCommon(cfg, src)
}

func loadCommon(cfg *Config, src source) error {
	var err error

	cfg.ServerHost = src.getDefault("SERVER_HOST", "0.0.0.0")
	cfg.ServerPort = src.getDefault("SERVER_PORT", "3000")
	if cfg.ReadTimeout, err = parseDuration(src, "SERVER_READ_TIMEOUT", 15*time.Second); err != nil {
		return err
	}
	if cfg.WriteTimeout, err = parseDuration(src, "SERVER_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return err
	}
	if cfg.ShutdownTimeout, err = parseDuration(src, "SERVER_SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return err
	}

	cfg.BackendURL = src.get("BACKEND_URL")
	if cfg.BackendTimeout, err = parseDuration(src, "BACKEND_TIMEOUT", 10*time.Second); err != nil {
		return err
	}

	cfg.SessionSecret = src.get("SESSION_SECRET")
	secure := src.getDefault("SESSION_COOKIE_SECURE", strconv.FormatBool(cfg.Environment == Production))
	if cfg.SessionCookieSecure, err = strconv.ParseBool(secure); err != nil {
		return fmt.Errorf("SESSION_COOKIE_SECURE: %w", err)
	}

	cfg.RedisURL = src.get("REDIS_URL")
	if cfg.ViewCacheTTL, err = parseDuration(src, "VIEW_CACHE_TTL", 30*time.Second); err != nil {
		return err
	}
	limit := src.getDefault("LOGIN_RATE_LIMIT", "10")
	if cfg.LoginRateLimit, err = strconv.Atoi(limit); err != nil {
		return fmt.Errorf("LOGIN_RATE_LIMIT: %w", err)
	}

	cfg.CORSAllowedOrigins = splitList(src.get("CORS_ALLOWED_ORIGINS"))
	cfg.LogLevel = src.getDefault("LOG_LEVEL", "info")
	return nil
}

func parseDuration(src source, key string, def time.Duration) (time.Duration, error) {
	raw := src.get(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadFile reads a flat YAML file of KEY: value pairs
func loadFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return values, nil
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(dir, name string) string {
	if data, err := os.ReadFile(filepath.Join(dir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
