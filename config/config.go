/*
config.go - Server configuration

PURPOSE:
  Loads the settings of the HTTP server from defaults, an optional YAML
  file, a .env file and LEAVE_* environment variables.

PRECEDENCE:
  environment > .env > config file > defaults

  Keys map to variables by upper-casing and replacing dots with
  underscores: server.rate_limit.rps -> LEAVE_SERVER_RATE_LIMIT_RPS.

EXAMPLE (config.yaml):
  server:
    port: 8080
    cors:
      allow_origins: ["http://localhost:5173"]
    rate_limit:
      rps: 10
      burst: 20
    trust_proxy: false
  db:
    path: leave.db
  log:
    level: info
    format: json
  holidays:
    source: static
    region: nl

SEE ALSO:
  - logger/logger.go: Builds the zap logger from Log
  - cmd/server/main.go: Flag overrides
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "LEAVE"

// Holiday sources.
const (
	HolidaySourceStatic   = "static"
	HolidaySourceComputed = "computed"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Holidays HolidayConfig  `mapstructure:"holidays"`
}

type ServerConfig struct {
	Port      int             `mapstructure:"port"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// TrustProxy reads client addresses from X-Forwarded-For. Leave it off
	// unless a reverse proxy in front of the server sets that header.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig limits requests per client IP. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// DatabaseConfig points at the SQLite file; ":memory:" keeps everything in process.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HolidayConfig selects the public holiday calendar. Custom holidays from
// the store are always layered on top.
type HolidayConfig struct {
	Source string `mapstructure:"source"`
	Region string `mapstructure:"region"`
}

// Load reads the configuration. An empty path searches ./config.yaml and
// ./config/config.yaml; a missing file there is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("server.rate_limit.rps", 10)
	v.SetDefault("server.rate_limit.burst", 20)
	v.SetDefault("server.trust_proxy", false)

	v.SetDefault("db.path", "leave.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("holidays.source", HolidaySourceStatic)
	v.SetDefault("holidays.region", "nl")
}

// Default returns the configuration Load produces with no file and no environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimit.RPS < 0 {
		return fmt.Errorf("config: server.rate_limit.rps must not be negative")
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst < 1 {
		return fmt.Errorf("config: server.rate_limit.burst must be at least 1 when rps is set")
	}
	switch c.Holidays.Source {
	case HolidaySourceStatic, HolidaySourceComputed:
	default:
		return fmt.Errorf("config: holidays.source must be %q or %q, got %q",
			HolidaySourceStatic, HolidaySourceComputed, c.Holidays.Source)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("config: db.path must not be empty")
	}
	return nil
}
