// Package config loads layered service configuration: built-in defaults,
// then an optional YAML file, then SPACEQUERY_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
var DefaultConfigPaths = []string{
	"space-query.yaml",
	"space-query.yml",
	"/etc/space-query/config.yaml",
	"/etc/space-query/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "SPACEQUERY_CONFIG"

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Auth    AuthConfig    `koanf:"auth"`
	Query   QueryConfig   `koanf:"query"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig governs the HTTP listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	MetricsAddr     string        `koanf:"metrics_addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	TLSCert         string        `koanf:"tls_cert"`
	TLSKey          string        `koanf:"tls_key"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=0"`
	RateWindow      time.Duration `koanf:"rate_window"`
}

// AuthConfig governs login and bearer tokens.
type AuthConfig struct {
	UsersFile        string        `koanf:"users_file" validate:"required"`
	Issuer           string        `koanf:"issuer" validate:"required"`
	TokenTTL         time.Duration `koanf:"token_ttl" validate:"gt=0"`
	RotationInterval time.Duration `koanf:"rotation_interval" validate:"gt=0"`
}

// QueryConfig selects and tunes the transform backend.
type QueryConfig struct {
	Backend         string        `koanf:"backend" validate:"oneof=spice astro"`
	KernelDir       string        `koanf:"kernel_dir"`
	JustInTime      bool          `koanf:"just_in_time"`
	ArchiveURL      string        `koanf:"archive_url"`
	FetchTimeout    time.Duration `koanf:"fetch_timeout"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// LoggingConfig governs the structured logger.
type LoggingConfig struct {
	Level     string `koanf:"level" validate:"oneof=debug info warn error"`
	Format    string `koanf:"format" validate:"oneof=text json"`
	AddSource bool   `koanf:"add_source"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MetricsAddr:     ":9090",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       100,
			RateWindow:      time.Minute,
		},
		Auth: AuthConfig{
			UsersFile:        "users.json",
			Issuer:           "space-query",
			TokenTTL:         time.Hour,
			RotationInterval: 24 * time.Hour,
		},
		Query: QueryConfig{
			Backend:         "spice",
			KernelDir:       "kernels",
			JustInTime:      false,
			FetchTimeout:    5 * time.Minute,
			RefreshInterval: 0, // disabled unless set
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load layers defaults, the config file at path (or the first default path
// when empty), and environment variables, then validates the result.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("SPACEQUERY_", ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	// CORS origins arrive from the environment as a comma-separated string.
	if v, ok := k.Get("server.cors_origins").(string); ok && v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if err := k.Set("server.cors_origins", origins); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks structural constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings binds each recognised environment variable to its config
// path; unmapped variables are ignored so stray SPACEQUERY_* values cannot
// pollute the config.
var envMappings = map[string]string{
	"SPACEQUERY_ADDR":             "server.addr",
	"SPACEQUERY_METRICS_ADDR":     "server.metrics_addr",
	"SPACEQUERY_READ_TIMEOUT":     "server.read_timeout",
	"SPACEQUERY_WRITE_TIMEOUT":    "server.write_timeout",
	"SPACEQUERY_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",
	"SPACEQUERY_TLS_CERT":         "server.tls_cert",
	"SPACEQUERY_TLS_KEY":          "server.tls_key",
	"SPACEQUERY_CORS_ORIGINS":     "server.cors_origins",
	"SPACEQUERY_RATE_LIMIT":       "server.rate_limit",
	"SPACEQUERY_RATE_WINDOW":      "server.rate_window",

	"SPACEQUERY_USERS_FILE":        "auth.users_file",
	"SPACEQUERY_TOKEN_ISSUER":      "auth.issuer",
	"SPACEQUERY_TOKEN_TTL":         "auth.token_ttl",
	"SPACEQUERY_ROTATION_INTERVAL": "auth.rotation_interval",

	"SPACEQUERY_BACKEND":          "query.backend",
	"SPACEQUERY_KERNEL_DIR":       "query.kernel_dir",
	"SPACEQUERY_JUST_IN_TIME":     "query.just_in_time",
	"SPACEQUERY_ARCHIVE_URL":      "query.archive_url",
	"SPACEQUERY_FETCH_TIMEOUT":    "query.fetch_timeout",
	"SPACEQUERY_REFRESH_INTERVAL": "query.refresh_interval",

	"SPACEQUERY_LOG_LEVEL":      "logging.level",
	"SPACEQUERY_LOG_FORMAT":     "logging.format",
	"SPACEQUERY_LOG_ADD_SOURCE": "logging.add_source",
}

func envTransform(key string) string {
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
