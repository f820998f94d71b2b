// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package config loads service configuration from defaults, an optional
// YAML file, environment variables, and command-line flags, in that
// order of precedence (later wins).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// DB holds the discrete Postgres connection settings. They are composed
// into a DSN unless DatabaseURL overrides the whole thing.
type DB struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
}

// Config is the full service configuration.
type Config struct {
	// Port is the HTTP listen port for the API server.
	Port int `koanf:"port"`
	// MetricsAddr is the listen address of the observability server.
	MetricsAddr string `koanf:"metrics_addr"`
	// LogFormat selects "json" or "text" log output.
	LogFormat string `koanf:"log_format"`
	// LogLevel is the minimum level logged (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`

	// JWTSecret signs session tokens. There is no default; the process
	// refuses to start without one.
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// CookieSecure marks the session cookie Secure; enable behind TLS.
	CookieSecure       bool     `koanf:"cookie_secure"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// DatabaseURL, when set, takes precedence over the DB block.
	DatabaseURL string `koanf:"database_url"`
	DB          DB     `koanf:"db"`

	// StoreTimeout bounds each database call made by a request handler.
	StoreTimeout time.Duration `koanf:"store_timeout"`
}

// Default returns the configuration defaults applied before any file,
// environment, or flag input.
func Default() Config {
	return Config{
		Port:         8080,
		MetricsAddr:  "localhost:9090",
		LogFormat:    "json",
		LogLevel:     "info",
		TokenTTL:     time.Hour,
		CookieSecure: false,
		CORSAllowedOrigins: []string{
			"http://localhost:3000",
		},
		DB: DB{
			Host: "localhost",
			Port: 5432,
			User: "postgres",
		},
		StoreTimeout: 5 * time.Second,
	}
}

// envOverrides maps process environment variables onto koanf keys.
var envOverrides = map[string]string{
	"PORT":         "port",
	"JWT_SECRET":   "jwt_secret",
	"DATABASE_URL": "database_url",
	"DB_HOST":      "db.host",
	"DB_PORT":      "db.port",
	"DB_USER":      "db.user",
	"DB_PASSWORD":  "db.password",
	"DB_DATABASE":  "db.database",
}

// Load builds the configuration. A missing config file is only an error
// when the path was given explicitly; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.
				Code("CONFIG_INVALID").
				With("path", path).
				Wrapf(err, "loading config file")
		}
	}

	for env, key := range envOverrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			if err := k.Set(key, v); err != nil {
				return Config{}, oops.
					Code("CONFIG_INVALID").
					With("env", env).
					Wrapf(err, "applying environment override")
			}
		}
	}

	if flags != nil {
		// Flag names use dashes; config keys use underscores.
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.
				Code("CONFIG_INVALID").
				Wrapf(err, "applying flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.
			Code("CONFIG_INVALID").
			Wrapf(err, "unmarshaling config")
	}
	return cfg, nil
}

// DSN returns the Postgres connection string. DatabaseURL wins when set.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Database)
}

// Validate fails closed: the service must never run with a missing
// signing secret or an unresolvable database target.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return oops.
			Code("CONFIG_INVALID").
			Errorf("JWT_SECRET is required; refusing to sign tokens without a secret")
	}
	if c.DatabaseURL == "" && c.DB.Database == "" {
		return oops.
			Code("CONFIG_INVALID").
			Errorf("database configuration is required (DATABASE_URL or DB_DATABASE)")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return oops.
			Code("CONFIG_INVALID").
			With("port", c.Port).
			Errorf("listen port out of range")
	}
	if c.TokenTTL <= 0 {
		return oops.
			Code("CONFIG_INVALID").
			Errorf("token TTL must be positive")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.
			Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log format must be json or text")
	}
	return nil
}
