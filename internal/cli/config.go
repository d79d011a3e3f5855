package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sufield/signbridge/internal/config"
)

// flagBindings maps configuration keys to the flags that override them.
var flagBindings = map[string]string{
	"server.port":         "port",
	"backend.base_url":    "backend-url",
	"backend.api_version": "api-version",
	"server.static_dir":   "static-dir",
	"log.level":           "log-level",
}

func addConfigFlags(fs *pflag.FlagSet) {
	fs.IntP("port", "p", 0, "listen port (default 8787)")
	fs.String("backend-url", "", "signing service base URL")
	fs.String("api-version", "", "signing service API version segment, empty disables versioned paths")
	fs.String("static-dir", "", "directory of the single-page application to serve")
	fs.String("log-level", "", "log level: debug, info, warn or error")
}

// loadConfig resolves the configuration with flags taking precedence over the
// environment, the optional file and the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v, err := config.NewViper()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	for key, name := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("%w: bind flag %s: %v", ErrInternal, name, err)
		}
	}

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get config flag: %v", ErrUsage, err)
	}

	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return cfg, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate and print the effective configuration",
		Long: `Resolve the configuration from defaults, the optional file, the environment
and flags, validate it, and print the result. Exits non-zero when the
configuration is invalid.`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().String("format", "text", "output format: text or json")
	return cmd
}

func runConfig(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("%w: failed to get format flag: %v", ErrUsage, err)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("%w: unsupported format %q, use 'text' or 'json'", ErrUsage, format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(cfg); err != nil {
			return fmt.Errorf("%w: failed to encode configuration as JSON: %v", ErrInternal, err)
		}
		return nil
	}

	fmt.Fprintf(out, "backend.base_url: %s\n", cfg.Backend.BaseURL)
	fmt.Fprintf(out, "backend.api_version: %s\n", cfg.Backend.APIVersion)
	fmt.Fprintf(out, "backend.auth_prefix: %s\n", cfg.Backend.AuthPrefix)
	fmt.Fprintf(out, "backend.timeout: %s\n", cfg.Backend.Timeout)
	fmt.Fprintf(out, "server.address: %s\n", cfg.Address())
	fmt.Fprintf(out, "server.api_prefix: %s\n", cfg.Server.APIPrefix)
	fmt.Fprintf(out, "server.allow_origin: %s\n", cfg.Server.AllowOrigin)
	fmt.Fprintf(out, "server.max_upload_bytes: %d\n", cfg.Server.MaxUploadBytes)
	fmt.Fprintf(out, "server.max_json_bytes: %d\n", cfg.Server.MaxJSONBytes)
	fmt.Fprintf(out, "server.static_dir: %s\n", cfg.Server.StaticDir)
	fmt.Fprintf(out, "cookie.name: %s\n", cfg.Cookie.Name)
	fmt.Fprintf(out, "cookie.role_name: %s\n", cfg.Cookie.RoleName)
	fmt.Fprintf(out, "cookie.secure: %t\n", cfg.Cookie.Secure)
	fmt.Fprintf(out, "cookie.samesite: %s\n", cfg.Cookie.SameSite)
	fmt.Fprintf(out, "cookie.max_age: %d\n", cfg.Cookie.MaxAge)
	fmt.Fprintf(out, "cookie.domain: %s\n", cfg.Cookie.Domain)
	fmt.Fprintf(out, "log.level: %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "metrics.enabled: %t\n", cfg.Metrics.Enabled)
	return nil
}
