// Package shutdown coordinates the graceful stop of the bridge: the HTTP
// server drains in-flight requests, then upstream connections are released.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultGracePeriod is the default maximum time to wait for in-flight requests.
const DefaultGracePeriod = 30 * time.Second

// Config configures graceful shutdown behavior.
type Config struct {
	// GracePeriod is the maximum time to wait for servers to drain.
	// Default is 30 seconds if not specified.
	GracePeriod time.Duration

	// OnShutdownStart is called when shutdown begins.
	OnShutdownStart func()

	// OnShutdownComplete is called when shutdown completes.
	OnShutdownComplete func(err error)
}

// DefaultConfig returns sensible shutdown defaults.
func DefaultConfig() *Config {
	return &Config{GracePeriod: DefaultGracePeriod}
}

// Server is something that stops accepting work and drains, like *http.Server.
type Server interface {
	Shutdown(ctx context.Context) error
}

// Client is an outbound resource released after servers have drained.
type Client interface {
	Close() error
}

// Coordinator coordinates shutdown of all registered resources.
type Coordinator struct {
	config         *Config
	logger         *slog.Logger
	servers        []Server
	clients        []Client
	cleanupFuncs   []func() error
	mu             sync.Mutex
	shutdownOnce   sync.Once
	isShuttingDown bool
	err            error
}

// NewCoordinator creates a new shutdown coordinator.
func NewCoordinator(config *Config, logger *slog.Logger) *Coordinator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = DefaultGracePeriod
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{config: config, logger: logger}
}

// RegisterServer registers a server for graceful shutdown.
func (c *Coordinator) RegisterServer(server Server) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if server != nil && !c.isShuttingDown {
		c.servers = append(c.servers, server)
	}
}

// RegisterClient registers a client closed once servers have drained.
func (c *Coordinator) RegisterClient(client Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client != nil && !c.isShuttingDown {
		c.clients = append(c.clients, client)
	}
}

// RegisterCleanupFunc registers a cleanup function to run last.
func (c *Coordinator) RegisterCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fn != nil && !c.isShuttingDown {
		c.cleanupFuncs = append(c.cleanupFuncs, fn)
	}
}

// Shutdown stops every registered resource once; later calls return the first
// result. Servers drain in parallel within the grace period, then clients and
// cleanup functions run in registration order.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.shutdownOnce.Do(func() {
		c.mu.Lock()
		c.isShuttingDown = true
		servers, clients, cleanups := c.servers, c.clients, c.cleanupFuncs
		c.mu.Unlock()

		if c.config.OnShutdownStart != nil {
			c.config.OnShutdownStart()
		}
		c.logger.Info("Starting graceful shutdown", "grace_period", c.config.GracePeriod)

		graceCtx, cancel := context.WithTimeout(ctx, c.config.GracePeriod)
		defer cancel()

		errs := c.shutdownServers(graceCtx, servers)
		for _, cl := range clients {
			if err := cl.Close(); err != nil {
				errs = append(errs, fmt.Errorf("client close error: %w", err))
			}
		}
		for _, fn := range cleanups {
			if err := fn(); err != nil {
				errs = append(errs, fmt.Errorf("cleanup function error: %w", err))
			}
		}

		c.err = errors.Join(errs...)
		if c.err != nil {
			c.logger.Error("Shutdown finished with errors", "error", c.err)
		} else {
			c.logger.Info("Graceful shutdown completed successfully")
		}

		if c.config.OnShutdownComplete != nil {
			c.config.OnShutdownComplete(c.err)
		}
	})

	return c.err
}

func (c *Coordinator) shutdownServers(ctx context.Context, servers []Server) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, server := range servers {
		wg.Add(1)
		go func(s Server) {
			defer wg.Done()
			if err := s.Shutdown(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("server stop error: %w", err))
				mu.Unlock()
			}
		}(server)
	}
	wg.Wait()
	return errs
}
