package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Assets    AssetsConfig      `yaml:"assets"`
	Templates TemplatesConfig   `yaml:"templates"`
	Session   SessionConfig     `yaml:"session"`
	Avatar    AvatarConfig      `yaml:"avatar"`
	Upload    UploadConfig      `yaml:"upload"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Assets.Validate(); err != nil {
		return err
	}
	if err := c.Templates.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Avatar.Validate(); err != nil {
		return err
	}
	return c.Upload.Validate()
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

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds the posts database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AssetsConfig holds the media assets root directory.
type AssetsConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the assets configuration.
func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TemplatesConfig holds the feed page template location.
// Watch enables hot-reloading the template when it changes on disk.
type TemplatesConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the templates configuration.
func (c *TemplatesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SessionConfig controls the per-visitor status channel. A session
// expires after TTLSeconds of inactivity, taking any unread submission
// status with it.
type SessionConfig struct {
	TTLSeconds  int `yaml:"ttl_seconds"`
	MaxSessions int `yaml:"max_sessions"`
}

// TTL returns the inactivity expiry as a duration.
func (c *SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TTLSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxSessions, validation.Min(0)),
	)
}

// AvatarConfig controls the remote avatar fetch.
type AvatarConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the fetch timeout as a duration.
func (c *AvatarConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate validates the avatar configuration.
func (c *AvatarConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TimeoutSeconds, validation.Min(0)),
	)
}

// UploadConfig bounds inbound request and image sizes.
type UploadConfig struct {
	MaxBodyBytes  int64 `yaml:"max_body_bytes"`
	MaxImageBytes int64 `yaml:"max_image_bytes"`
}

// Validate validates the upload configuration.
func (c *UploadConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.MaxBodyBytes, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxImageBytes, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if c.MaxImageBytes > c.MaxBodyBytes {
		return fmt.Errorf("upload: max_image_bytes (%d) exceeds max_body_bytes (%d)",
			c.MaxImageBytes, c.MaxBodyBytes)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./posts.db",
		},
		Assets: AssetsConfig{
			Path: "./assets",
		},
		Templates: TemplatesConfig{
			Path:  "./templates/index.html",
			Watch: true,
		},
		Session: SessionConfig{
			TTLSeconds:  10,
			MaxSessions: 4096,
		},
		Avatar: AvatarConfig{
			TimeoutSeconds: 10,
		},
		Upload: UploadConfig{
			MaxBodyBytes:  5 << 20,
			MaxImageBytes: 4 << 20,
		},
	}
}
