package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/teamdates/internal/instrumentation"
	"github.com/teemow/teamdates/internal/resources"
	"github.com/teemow/teamdates/internal/server"
	"github.com/teemow/teamdates/internal/tools/availability_tools"
)

// Transport names accepted by --transport.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// ServeConfig holds the serve command options after flag and env resolution.
type ServeConfig struct {
	Transport string
	HTTPAddr  string
	ReadOnly  bool
	Debug     bool
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
}

// RateLimitConfig holds per-client rate limiting for the HTTP transport.
type RateLimitConfig struct {
	// Rate is requests per second per client; 0 disables limiting
	Rate int

	// Burst is the largest burst allowed per client
	Burst int

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP
	TrustProxy bool
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		readOnly       bool
		metricsEnabled bool
		metricsAddr    string
		rateLimit      int
		rateLimitBurst int
		trustProxy     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server so AI assistants can read
and update the team's availability.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp

Read-only Mode:
  With --read-only the availability_save tool is not registered and the
  server only answers queries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ServeConfig{
				Transport: transport,
				HTTPAddr:  httpAddr,
				ReadOnly:  readOnly,
				Debug:     debugMode,
				Metrics: MetricsConfig{
					Enabled: metricsEnabled,
					Addr:    metricsAddr,
				},
				RateLimit: RateLimitConfig{
					Rate:       rateLimit,
					Burst:      rateLimitBurst,
					TrustProxy: trustProxy,
				},
			}
			loadMetricsEnvVars(cmd, &cfg.Metrics)

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if cfg.Debug {
				settings.LogLevel = "debug"
			}

			return runServe(cmd.Context(), settings, cfg)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Only register read tools; availability cannot be changed")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port (streamable-http only). Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	// Rate limiting (streamable-http only)
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 10, "Requests per second allowed per client on /mcp; 0 disables limiting")
	cmd.Flags().IntVar(&rateLimitBurst, "rate-limit-burst", 20, "Maximum request burst per client on /mcp")
	cmd.Flags().BoolVar(&trustProxy, "trust-proxy", false, "Identify clients by X-Forwarded-For / X-Real-IP. Only enable behind a trusted reverse proxy.")

	return cmd
}

func runServe(ctx context.Context, settings *Settings, cfg ServeConfig) error {
	if cfg.Transport != transportStdio && cfg.Transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := settings.newLogger()
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", "error", err)
		}
	}()

	store, err := settings.openStore(logger, provider.Metrics())
	if err != nil {
		return err
	}

	serverContext, err := server.NewServerContext(shutdownCtx, store,
		server.WithLogger(logger),
		server.WithMetrics(provider.Metrics()),
		server.WithAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)),
		server.WithReadOnly(cfg.ReadOnly),
	)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", "error", err)
		}
	}()

	var metricsServer *server.MetricsServer
	if cfg.Transport != transportStdio && cfg.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(cfg.Metrics, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	mcpSrv := mcpserver.NewMCPServer("teamdates", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	if err := registerAll(mcpSrv, serverContext, cfg.ReadOnly); err != nil {
		return err
	}

	logger.Info("starting teamdates MCP server",
		"transport", cfg.Transport,
		"backend", store.Backend().Name(),
		"read_only", cfg.ReadOnly,
		"version", version)

	switch cfg.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	default:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, cfg, logger)
	}
}

func startMetricsServer(cfg MetricsConfig, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, cfg ServeConfig, logger *slog.Logger) error {
	httpServer := server.NewHTTPServer(mcpSrv, sc)
	if cfg.RateLimit.Rate > 0 {
		httpServer.SetRateLimiter(server.NewRateLimiter(cfg.RateLimit.Rate, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy))
	}

	logger.Info("streamable HTTP endpoints",
		"addr", cfg.HTTPAddr,
		"mcp", server.MCPEndpointPath,
		"health", []string{"/healthz", "/readyz", "/healthz/detailed"},
		"rate_limit", cfg.RateLimit.Rate)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// registerAll registers every tool group and the resources.
func registerAll(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{
			name: "availability tools",
			register: func() error {
				return availability_tools.RegisterAvailabilityTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "availability resources",
			register: func() error {
				return resources.RegisterAvailabilityResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

// loadMetricsEnvVars applies METRICS_ENABLED and METRICS_ADDR when the
// matching flag was not set explicitly.
func loadMetricsEnvVars(cmd *cobra.Command, config *MetricsConfig) {
	if !cmd.Flags().Changed("metrics-enabled") {
		switch os.Getenv("METRICS_ENABLED") {
		case "true":
			config.Enabled = true
		case "false":
			config.Enabled = false
		}
	}

	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			config.Addr = addr
		}
	}
}
