package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// minSessionSecretLen is the shortest HS256 key accepted outside development
const minSessionSecretLen = 32

var (
	// Environment-specific requirements
	requirements = map[Environment][]string{
		Development: {"BACKEND_URL", "SESSION_SECRET"},
		Test:        {"BACKEND_URL", "SESSION_SECRET"},
		CI:          {"BACKEND_URL", "SESSION_SECRET"},
		Production:  {"BACKEND_URL", "SESSION_SECRET", "SERVER_PORT"},
	}
)

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs []string

	values := map[string]string{
		"BACKEND_URL":    cfg.BackendURL,
		"SESSION_SECRET": cfg.SessionSecret,
		"SERVER_PORT":    cfg.ServerPort,
	}
	for _, key := range requirements[cfg.Environment] {
		if values[key] == "" {
			errs = append(errs, ValidationError{Field: key, Message: "is required"}.Error())
		}
	}

	if cfg.BackendURL != "" {
		u, err := url.Parse(cfg.BackendURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{Field: "BACKEND_URL", Message: "must be an absolute http(s) URL"}.Error())
		}
	}

	if cfg.Environment == Production && cfg.SessionSecret != "" && len(cfg.SessionSecret) < minSessionSecretLen {
		errs = append(errs, ValidationError{
			Field:   "SESSION_SECRET",
			Message: fmt.Sprintf("must be at least %d characters in production", minSessionSecretLen),
		}.Error())
	}

	if cfg.LoginRateLimit < 0 {
		errs = append(errs, ValidationError{Field: "LOGIN_RATE_LIMIT", Message: "must not be negative"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
