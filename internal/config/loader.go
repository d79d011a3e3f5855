package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/ubuntu/decorate"
)

// Configuration file failures.
var (
	// ErrConfigFileNotFound is returned when the given config file doesn't exist.
	ErrConfigFileNotFound = errors.New("configuration file not found")

	// ErrConfigMalformed is returned when the config file cannot be parsed.
	ErrConfigMalformed = errors.New("configuration file malformed")
)

// Environment variables, by configuration key. The unprefixed names are the
// ones existing deployments already set.
var envBindings = map[string]string{
	"backend.base_url":        "BACKEND_BASE_URL",
	"backend.api_version":     "BACKEND_API_VERSION",
	"backend.auth_prefix":     "BACKEND_AUTH_PREFIX",
	"backend.timeout":         "BFF_UPSTREAM_TIMEOUT",
	"server.port":             "BFF_PORT",
	"server.api_prefix":       "BFF_API_PREFIX",
	"server.allow_origin":     "ALLOW_ORIGIN",
	"server.max_upload_bytes": "BFF_MAX_UPLOAD_BYTES",
	"server.max_json_bytes":   "BFF_MAX_JSON_BYTES",
	"server.static_dir":       "BFF_STATIC_DIR",
	"cookie.name":             "AUTH_COOKIE_NAME",
	"cookie.role_name":        "BFF_ROLE_COOKIE_NAME",
	"cookie.secure":           "AUTH_COOKIE_SECURE",
	"cookie.samesite":         "AUTH_COOKIE_SAMESITE",
	"cookie.max_age":          "AUTH_COOKIE_MAX_AGE",
	"cookie.domain":           "AUTH_COOKIE_DOMAIN",
	"log.level":               "BFF_LOG_LEVEL",
	"metrics.enabled":         "BFF_METRICS_ENABLED",
}

var defaults = map[string]any{
	"backend.base_url":        "http://localhost:3000",
	"backend.api_version":     "v1",
	"backend.auth_prefix":     "",
	"backend.timeout":         "30s",
	"server.port":             8787,
	"server.api_prefix":       "/api",
	"server.allow_origin":     "http://localhost:5173",
	"server.max_upload_bytes": "25MiB",
	"server.max_json_bytes":   "2MiB",
	"server.static_dir":       "",
	"cookie.name":             "auth",
	"cookie.role_name":        "role",
	"cookie.secure":           false,
	"cookie.samesite":         "Lax",
	"cookie.max_age":          1800,
	"cookie.domain":           "",
	"log.level":               "info",
	"metrics.enabled":         true,
}

// NewViper returns a viper instance carrying the defaults and environment
// bindings. Callers may bind flags on it before calling Load.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return v, nil
}

// Load reads the optional file at path, decodes everything v knows and
// validates the result. Precedence: flags, environment, file, defaults.
func Load(v *viper.Viper, path string) (cfg *Config, err error) {
	defer decorate.OnError(&err, "can't load configuration")

	if path != "" {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigMalformed, err)
		}
	}

	var c Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		ByteSizeHookFunc(),
	))
	if err := v.Unmarshal(&c, hook); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	c.normalize()

	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFromEnvironment builds the configuration from defaults and the environment.
func LoadFromEnvironment() (*Config, error) {
	v, err := NewViper()
	if err != nil {
		return nil, err
	}
	return Load(v, "")
}
