package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeSecret   = "secret"
)

// Counter representations.
const (
	CounterModeInline = "inline"
	CounterModeLinked = "linked"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
//
// CounterMode selects the cookie counter representation:
//   - "inline" (default): the counter lives as a column on the user row.
//   - "linked": the counter lives in a separate record linked one-to-one
//     with its owning user, created lazily on first write.
type SQLiteConfig struct {
	Path        string `yaml:"path"`
	CounterMode string `yaml:"counter_mode"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	if c.CounterMode == "" {
		c.CounterMode = CounterModeInline
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.CounterMode, validation.Required, validation.In(CounterModeInline, CounterModeLinked)),
	)
}

// AuthConfig holds the shared-secret gate configuration.
//
// Mode controls how requests are gated:
//   - "disabled": no check, suitable for local dev.
//   - "secret" (default config): every request must carry Secret verbatim
//     in the Authorization header.
type AuthConfig struct {
	Mode   string `yaml:"mode"`
	Secret string `yaml:"secret"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeSecret)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeSecret && c.Secret == "" {
		return fmt.Errorf("auth: mode is %q but secret is empty", AuthModeSecret)
	}
	return nil
}

// AuthEnabled returns true when the shared-secret gate is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeSecret
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 4000,
			},
		},
		SQLite: SQLiteConfig{
			Path:        "./cookiejar.db",
			CounterMode: CounterModeInline,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
