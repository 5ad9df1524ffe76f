package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DefaultJWTSecret is used when no secret is configured. Production deployments must override it.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// DefaultUserAgent mimics a desktop browser; several novel sites refuse obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	defaultServiceName     = "capy-book-fetch"
	defaultServiceVersion  = "1.0.0"
	defaultHost            = "0.0.0.0"
	defaultPort            = 3000
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 30 * time.Second
	defaultBodyLimit       = 1 << 20
	defaultTokenExpiry     = "7d"
	defaultFetchTimeout    = 30 * time.Second
	defaultMaxRedirects    = 5
	defaultMaxBodyBytes    = 10 << 20
	defaultAcceptLanguage  = "zh-CN,zh;q=0.9,en;q=0.8"
	defaultCORSMaxAge      = 24 * time.Hour
)

// Config is the complete service configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Fetch   FetchConfig   `yaml:"fetch"`
	CORS    CORSConfig    `yaml:"cors"`
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name        string `env:"SERVICE_NAME"    yaml:"name"`
	Version     string `env:"APP_VERSION"     yaml:"version"`
	Environment string `env:"APP_ENV"         yaml:"environment"`
	Host        string `env:"HOST"            yaml:"host"`
	Port        int    `env:"PORT"            yaml:"port"`
	Debug       bool   `env:"APP_DEBUG"       yaml:"debug"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// ServerConfig holds HTTP server tuning.
type ServerConfig struct {
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT"    yaml:"write_timeout"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT"     yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	// BodyLimit caps request bodies in bytes.
	BodyLimit int64 `env:"BODY_LIMIT" yaml:"body_limit"`
}

// AuthConfig holds JWT settings shared by the API and the token CLI.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET" yaml:"jwt_secret"`
	// TokenExpiry uses the "7d" / "12h" / "30m" notation.
	TokenExpiry string `env:"JWT_EXPIRES_IN" yaml:"token_expiry"`
}

// FetchConfig controls outbound page fetches.
type FetchConfig struct {
	Timeout        time.Duration `env:"FETCH_TIMEOUT"         yaml:"timeout"`
	MaxRedirects   int           `env:"FETCH_MAX_REDIRECTS"   yaml:"max_redirects"`
	MaxBodyBytes   int64         `env:"FETCH_MAX_BODY_BYTES"  yaml:"max_body_bytes"`
	UserAgent      string        `env:"FETCH_USER_AGENT"      yaml:"user_agent"`
	AcceptLanguage string        `env:"FETCH_ACCEPT_LANGUAGE" yaml:"accept_language"`
}

// CORSConfig lists allowed origins; "*" allows all.
type CORSConfig struct {
	Origins []string      `env:"CORS_ORIGIN" yaml:"origins"`
	MaxAge  time.Duration `yaml:"max_age"`
}

// LoadConfig reads the configuration at path, applies defaults and environment overrides, and validates it.
func LoadConfig(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path, setDefaults)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns a configuration populated with defaults only.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = defaultServiceName
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = defaultServiceVersion
	}
	if cfg.Service.Environment == "" {
		cfg.Service.Environment = EnvProduction
	}
	if cfg.Service.Host == "" {
		cfg.Service.Host = defaultHost
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = defaultPort
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Server.BodyLimit == 0 {
		cfg.Server.BodyLimit = defaultBodyLimit
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = DefaultJWTSecret
	}
	if cfg.Auth.TokenExpiry == "" {
		cfg.Auth.TokenExpiry = defaultTokenExpiry
	}

	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = defaultFetchTimeout
	}
	if cfg.Fetch.MaxRedirects == 0 {
		cfg.Fetch.MaxRedirects = defaultMaxRedirects
	}
	if cfg.Fetch.MaxBodyBytes == 0 {
		cfg.Fetch.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = DefaultUserAgent
	}
	if cfg.Fetch.AcceptLanguage == "" {
		cfg.Fetch.AcceptLanguage = defaultAcceptLanguage
	}

	if len(cfg.CORS.Origins) == 0 {
		cfg.CORS.Origins = []string{"*"}
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = defaultCORSMaxAge
	}
}

// IsDevelopment reports whether the service runs in the development environment.
// Development disables token verification and exposes the login endpoint.
func (c *Config) IsDevelopment() bool {
	return c.Service.Environment == EnvDevelopment
}

// UsesDefaultSecret reports whether the built-in JWT secret is still in place.
func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.JWTSecret == DefaultJWTSecret
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Service.Host, strconv.Itoa(c.Service.Port))
}
