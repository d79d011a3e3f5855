package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sufield/signbridge/internal/adapters/logging"
	"github.com/sufield/signbridge/internal/app"
	"github.com/sufield/signbridge/internal/shutdown"
	"github.com/sufield/signbridge/internal/transport"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway",
		Long: `Run the gateway until SIGINT or SIGTERM, then drain in-flight requests
within the grace period and release upstream connections.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().Duration("grace-period", shutdown.DefaultGracePeriod, "maximum time to drain in-flight requests on shutdown")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	grace, err := cmd.Flags().GetDuration("grace-period")
	if err != nil {
		return fmt.Errorf("%w: failed to get grace-period flag: %v", ErrUsage, err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	bridge, err := app.New(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	server := transport.NewServer(cfg.Address(), bridge.Handler(), logger)
	coordinator := shutdown.NewCoordinator(&shutdown.Config{GracePeriod: grace}, logger)
	coordinator.RegisterServer(server)
	coordinator.RegisterClient(bridge)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("signbridge starting",
		"address", cfg.Address(),
		"backend", cfg.Backend.BaseURL,
		"api_version", cfg.Backend.APIVersion,
		"api_prefix", cfg.Server.APIPrefix)

	serveErr := server.ListenAndServe(ctx)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace+5*time.Second)
	defer cancel()
	shutdownErr := coordinator.Shutdown(shutdownCtx)

	if serveErr != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, serveErr)
	}
	if shutdownErr != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, shutdownErr)
	}
	return nil
}
