// Package config loads the bridge configuration once at startup. The result is
// immutable and injected into every component that needs it; request handling
// never reads the environment.
package config

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Config is the effective bridge configuration.
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Server  ServerConfig  `mapstructure:"server"`
	Cookie  CookieConfig  `mapstructure:"cookie"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// BackendConfig locates the signing service.
type BackendConfig struct {
	BaseURL    string `mapstructure:"base_url"    validate:"required,http_url"`
	APIVersion string `mapstructure:"api_version" validate:"omitempty,alphanum"`
	// AuthPrefix is inserted before /auth/login, e.g. "/v1".
	AuthPrefix string        `mapstructure:"auth_prefix" validate:"omitempty,url_path"`
	Timeout    time.Duration `mapstructure:"timeout"     validate:"min=0"`
}

// ServerConfig describes the browser-facing listener.
type ServerConfig struct {
	Port           int      `mapstructure:"port"             validate:"min=1,max=65535"`
	APIPrefix      string   `mapstructure:"api_prefix"       validate:"required,url_path"`
	AllowOrigin    string   `mapstructure:"allow_origin"     validate:"required,http_url"`
	MaxUploadBytes ByteSize `mapstructure:"max_upload_bytes" validate:"min=1"`
	MaxJSONBytes   ByteSize `mapstructure:"max_json_bytes"   validate:"min=1"`
	StaticDir      string   `mapstructure:"static_dir"       validate:"omitempty,dir"`
}

// CookieConfig is the session cookie policy.
type CookieConfig struct {
	Name     string `mapstructure:"name"      validate:"required,cookie_name"`
	RoleName string `mapstructure:"role_name" validate:"required,cookie_name,nefield=Name"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"samesite"  validate:"samesite"`
	MaxAge   int    `mapstructure:"max_age"   validate:"min=0"`
	Domain   string `mapstructure:"domain"`
}

// SameSiteMode maps the configured SameSite name to its net/http value.
func (c CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Address is the listen address for the configured port.
func (c *Config) Address() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// normalize trims the path-like settings so they compose without double slashes.
func (c *Config) normalize() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	c.Backend.APIVersion = strings.Trim(strings.TrimSpace(c.Backend.APIVersion), "/")
	c.Backend.AuthPrefix = strings.TrimRight(strings.TrimSpace(c.Backend.AuthPrefix), "/")
	c.Server.APIPrefix = "/" + strings.Trim(strings.TrimSpace(c.Server.APIPrefix), "/")
	c.Server.AllowOrigin = strings.TrimRight(strings.TrimSpace(c.Server.AllowOrigin), "/")
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}
