// Package config loads the server configuration from the environment.
//
// A .env file in the working directory is read first when present, which is
// convenient in development. Real environment variables always win.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config groups the settings by concern.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	Limits   LimitsConfig
}

type ServerConfig struct {
	Host        string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port        int      `env:"SERVER_PORT" envDefault:"9090"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:8081,http://localhost:19006"`
}

// DatabaseConfig.CleanupInterval is how often expired sessions and reset
// tokens are purged.
type DatabaseConfig struct {
	Path            string        `env:"DATABASE_PATH" envDefault:"./data/echoing-hearts.db"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

// JWTConfig controls access and refresh token lifetimes. Secret signs
// access tokens and must be kept private.
type JWTConfig struct {
	Secret        string        `env:"JWT_SECRET,required,notEmpty"`
	AccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
	RefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`
}

// EmailConfig is optional. Without an API key password reset is disabled.
type EmailConfig struct {
	ResendAPIKey  string        `env:"RESEND_API_KEY"`
	FromAddress   string        `env:"RESEND_FROM" envDefault:"noreply@echoinghearts.app"`
	AppURL        string        `env:"APP_URL" envDefault:"http://localhost:8081"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"30m"`
}

// Enabled reports whether outgoing email is configured.
func (e EmailConfig) Enabled() bool {
	return e.ResendAPIKey != ""
}

// LimitsConfig holds abuse limits and the geographic defaults for whispers.
type LimitsConfig struct {
	LoginAttempts   int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow     time.Duration `env:"LOGIN_WINDOW" envDefault:"15m"`
	ForgotAttempts  int           `env:"FORGOT_PASSWORD_MAX_ATTEMPTS" envDefault:"5"`
	MessageBurst    int           `env:"MESSAGE_BURST" envDefault:"5"`
	MessageWindow   time.Duration `env:"MESSAGE_WINDOW" envDefault:"5s"`
	MessageCooldown time.Duration `env:"MESSAGE_COOLDOWN" envDefault:"15s"`
	NearbyRadius    float64       `env:"WHISPER_NEARBY_RADIUS_M" envDefault:"2000"`
	MaxNearbyRadius float64       `env:"WHISPER_MAX_RADIUS_M" envDefault:"20000"`
	LocationTTL     time.Duration `env:"LOCATION_TTL" envDefault:"10m"`
	PushRadius      float64       `env:"WHISPER_PUSH_RADIUS_M" envDefault:"2000"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads only the process environment.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d", c.Server.Port)
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessExpiry <= 0 || c.JWT.RefreshExpiry <= 0 {
		return fmt.Errorf("token expiry must be positive")
	}
	if c.Database.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be positive")
	}
	if c.Limits.NearbyRadius <= 0 || c.Limits.NearbyRadius > c.Limits.MaxNearbyRadius {
		return fmt.Errorf("WHISPER_NEARBY_RADIUS_M must be in (0, WHISPER_MAX_RADIUS_M]")
	}

	origins := c.Server.CORSOrigins[:0]
	for _, o := range c.Server.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.Server.CORSOrigins = origins
	return nil
}

// Addr is the listen address, e.g. "0.0.0.0:9090".
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
