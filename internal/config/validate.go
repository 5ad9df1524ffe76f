package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRequired checks that a string field is not empty.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidatePort checks that port is within 1-65535.
func ValidatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidateLogLevel checks that level is a known zap level.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: "logging.level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// ValidateLogFormat checks that format is json or console.
func ValidateLogFormat(format string) error {
	switch format {
	case "json", "console":
		return nil
	default:
		return &ValidationError{Field: "logging.format", Message: "must be one of: json, console"}
	}
}

// ValidateEnvironment checks that env is development or production.
func ValidateEnvironment(env string) error {
	switch env {
	case EnvDevelopment, EnvProduction, "test":
		return nil
	default:
		return &ValidationError{Field: "service.environment", Message: "must be one of: development, production, test"}
	}
}

func validatePositive(field string, v int64) error {
	if v <= 0 {
		return &ValidationError{Field: field, Message: "must be positive"}
	}
	return nil
}

// Validate checks the whole configuration and reports every problem found.
func (c *Config) Validate() error {
	errs := []error{
		ValidateRequired("service.name", c.Service.Name),
		ValidateEnvironment(c.Service.Environment),
		ValidatePort("service.port", c.Service.Port),
		ValidateLogLevel(c.Logging.Level),
		ValidateLogFormat(c.Logging.Format),
		ValidateRequired("auth.jwt_secret", c.Auth.JWTSecret),
		ValidateRequired("auth.token_expiry", c.Auth.TokenExpiry),
		validatePositive("server.body_limit", c.Server.BodyLimit),
		validatePositive("fetch.timeout", int64(c.Fetch.Timeout)),
		validatePositive("fetch.max_body_bytes", c.Fetch.MaxBodyBytes),
	}

	if c.Fetch.MaxRedirects < 0 {
		errs = append(errs, &ValidationError{Field: "fetch.max_redirects", Message: "must not be negative"})
	}

	return errors.Join(errs...)
}
