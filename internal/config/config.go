// Package config loads server settings from defaults, an optional YAML file,
// and environment variables, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset. A
// missing default file is not an error.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
	Auth     AuthConfig     `koanf:"auth"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Swipe    SwipeConfig    `koanf:"swipe"`
	Groups   GroupsConfig   `koanf:"groups"`
	Cache    CacheConfig    `koanf:"cache"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
}

type AuthConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenDuration time.Duration `koanf:"token_duration"`
}

type TMDBConfig struct {
	BaseURL string `koanf:"base_url"`
	// Token is the v4 read access token. Movie lookups fail as unauthorized
	// without it.
	Token             string        `koanf:"token"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Timeout           time.Duration `koanf:"timeout"`
}

type SwipeConfig struct {
	// Threshold is the horizontal drag distance that commits like/dislike.
	Threshold float64 `koanf:"threshold"`
	// SkipThreshold is the upward drag distance that commits a skip.
	SkipThreshold float64 `koanf:"skip_threshold"`
	// Target is how many non-skip ratings complete a session.
	Target      int           `koanf:"target"`
	SessionIdle time.Duration `koanf:"session_idle"`
}

type GroupsConfig struct {
	JoinCodeMaxAttempts int `koanf:"join_code_max_attempts"`
}

type CacheConfig struct {
	// Coalesce makes concurrent lookups of the same movie share one fetch.
	Coalesce bool `koanf:"coalesce"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "./data/watchtogether.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			JWTSecret:     "",
			TokenDuration: 7 * 24 * time.Hour,
		},
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			RequestsPerSecond: 40,
			Timeout:           10 * time.Second,
		},
		Swipe: SwipeConfig{
			Threshold:     120,
			SkipThreshold: 60,
			Target:        10,
			SessionIdle:   time.Hour,
		},
		Groups: GroupsConfig{
			JoinCodeMaxAttempts: 20,
		},
		Cache: CacheConfig{
			Coalesce: false,
		},
	}
}

// Load builds the configuration from defaults, the config file if one is
// found, and the environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path, err := findConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.TokenDuration <= 0 {
		errs = append(errs, errors.New("token duration must be positive"))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	if c.TMDB.BaseURL == "" {
		errs = append(errs, errors.New("TMDB_BASE_URL is required"))
	}
	if c.TMDB.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("TMDB_RPS must not be negative"))
	}
	if c.Swipe.Threshold <= 0 || c.Swipe.SkipThreshold <= 0 {
		errs = append(errs, errors.New("swipe thresholds must be positive"))
	}
	if c.Swipe.Target <= 0 {
		errs = append(errs, errors.New("RATING_TARGET must be positive"))
	}
	if c.Groups.JoinCodeMaxAttempts <= 0 {
		errs = append(errs, errors.New("JOIN_CODE_MAX_ATTEMPTS must be positive"))
	}
	return errors.Join(errs...)
}

// findConfigFile returns the file named by CONFIG_PATH, or the first default
// path that exists. An explicit path that cannot be read is an error.
func findConfigFile() (string, error) {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file from %s: %w", ConfigPathEnvVar, err)
		}
		return path, nil
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

var envMappings = map[string]string{
	"port":                   "server.port",
	"shutdown_timeout":       "server.shutdown_timeout",
	"db_path":                "database.path",
	"log_level":              "logging.level",
	"jwt_secret":             "auth.jwt_secret",
	"token_duration":         "auth.token_duration",
	"tmdb_base_url":          "tmdb.base_url",
	"tmdb_api_token":         "tmdb.token",
	"tmdb_rps":               "tmdb.requests_per_second",
	"tmdb_timeout":           "tmdb.timeout",
	"swipe_threshold":        "swipe.threshold",
	"skip_threshold":         "swipe.skip_threshold",
	"rating_target":          "swipe.target",
	"session_idle":           "swipe.session_idle",
	"join_code_max_attempts": "groups.join_code_max_attempts",
	"cache_coalesce":         "cache.coalesce",
}

// envTransformFunc maps known environment variables to config paths and
// drops everything else.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
