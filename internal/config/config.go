// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them on top of built-in defaults into structured
// Go types, and validates them so the app fails fast on bad config.
//
// Responsibilities:
//   - Provide defaults for every setting (port 3000, 100KiB body limit, ...).
//   - Map env vars into the structured Config.
//   - Validate values so startup aborts on a bad/missing config.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before any config is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/labstack/gommon/bytes"
)

/*
	Keys are read in three layers, later layers win:
	- defaults (confmap provider)
	- prefixed env vars: DATA_API_<SECTION>__<KEY>, where "__" separates
	  nesting levels, e.g. DATA_API_SERVER__BODY_LIMIT -> server.body_limit
	- the bare PORT variable, mapped to server.port
*/

const (
	// EnvPrefix is the prefix of every structured env variable.
	EnvPrefix = "DATA_API_"

	// PortEnv is the plain port variable honoured for compatibility with
	// PaaS style deployments.
	PortEnv = "PORT"

	// ServiceName identifies the service in logs and APM.
	ServiceName = "data-api"
)

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability" validate:"required"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are seconds; 0 leaves the corresponding net/http timeout unset.
type ServerConfig struct {
	Port         int    `koanf:"port" validate:"min=0,max=65535"`
	ReadTimeout  int    `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout int    `koanf:"write_timeout" validate:"min=0"`
	IdleTimeout  int    `koanf:"idle_timeout" validate:"min=0"`
	BodyLimit    string `koanf:"body_limit" validate:"required"`

	// BodyLimitBytes is BodyLimit parsed by LoadConfig.
	BodyLimitBytes int64 `koanf:"-"`
}

// Defaults returns the flat key/value defaults loaded before the environment.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env": "development",

		"server.port":          3000,
		"server.read_timeout":  0,
		"server.write_timeout": 0,
		"server.idle_timeout":  5,
		"server.body_limit":    "100KiB",

		"observability.service_name":                          ServiceName,
		"observability.logging.level":                         "info",
		"observability.new_relic.app_log_forwarding_enabled":  true,
		"observability.new_relic.distributed_tracing_enabled": true,
		"observability.new_relic.debug_logging":               false,
	}
}

// envKey maps DATA_API_SERVER__BODY_LIMIT to server.body_limit.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// LoadConfig loads defaults and environment variables, unmarshals them into
// Config, validates the result and returns it.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load config defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Only a non-empty PORT; returning "" drops PORTAL, PORT_X, ...
	err := k.Load(env.ProviderWithValue(PortEnv, ".", func(key, value string) (string, interface{}) {
		if key != PortEnv || value == "" {
			return "", nil
		}
		return "server.port", value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", PortEnv, err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Validate runs the struct-tag rules, parses the body limit and checks the
// observability block. A missing observability block gets the defaults.
func (c *Config) Validate() error {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	limit, err := bytes.Parse(c.Server.BodyLimit)
	if err != nil {
		return fmt.Errorf("invalid server body_limit %q: %w", c.Server.BodyLimit, err)
	}
	if limit <= 0 {
		return fmt.Errorf("server body_limit must be positive, got %q", c.Server.BodyLimit)
	}
	c.Server.BodyLimitBytes = limit

	c.Observability.Environment = c.Primary.Env
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}
