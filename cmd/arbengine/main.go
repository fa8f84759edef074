// Package main is the entry point for the commit-reveal arbitrage engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/arb-engine/business/commitreveal"
	commitrevealDI "github.com/fd1az/arb-engine/business/commitreveal/di"
	"github.com/fd1az/arb-engine/business/execution"
	executionDI "github.com/fd1az/arb-engine/business/execution/di"
	"github.com/fd1az/arb-engine/business/ledger"
	ledgerDI "github.com/fd1az/arb-engine/business/ledger/di"
	"github.com/fd1az/arb-engine/internal/apm"
	"github.com/fd1az/arb-engine/internal/config"
	"github.com/fd1az/arb-engine/internal/di"
	"github.com/fd1az/arb-engine/internal/health"
	"github.com/fd1az/arb-engine/internal/logger"
	"github.com/fd1az/arb-engine/internal/metrics"
	"github.com/fd1az/arb-engine/internal/monolith"
	"github.com/fd1az/arb-engine/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arb-engine %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	// Run application
	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules know
	cfg.Engine.TUIMode = tuiMode

	// Setup logger (only log to stderr in CLI mode)
	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		// In TUI mode, suppress logs (discard output)
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting commit-reveal arbitrage engine",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		// Set service name env var for OTEL
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		// Initialize tracing with Zipkin (local dev friendly)
		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		// Initialize metrics with Prometheus
		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		// Start Prometheus metrics server in background
		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server on port 8081
	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}

	// Define modules in dependency order
	modules := []monolith.Module{
		&ledger.Module{},       // Must be first - provides height and time
		&execution.Module{},    // Depends on ledger for nothing, provides tokens and routers
		&commitreveal.Module{}, // Depends on ledger and execution
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if tuiMode {
		startFunc := func() error {
			if err := mono.StartModules(ctx, modules...); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			return nil
		}
		stopFunc := func() {
			mono.StopModules(context.Background(), modules...)
		}
		return runTUI(ctx, startFunc, stopFunc, mono.Services())
	}

	// CLI mode: Start modules synchronously
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	defer mono.StopModules(context.Background(), modules...)

	return runCLI(ctx, mono.Services(), log)
}

func runCLI(ctx context.Context, sr di.ServiceRegistry, log *logger.Logger) error {
	admin := executionDI.GetAdminService(sr)
	commits := commitrevealDI.GetCommitService(sr)

	log.Info(ctx, "all modules started, engine accepting commitments",
		"owner", admin.Owner().Hex(),
		"account", admin.Account().Hex(),
		"pending", commits.Pending(),
	)

	// Wait for shutdown
	<-ctx.Done()

	log.Info(ctx, "shutting down")
	return nil
}

func runTUI(ctx context.Context, startFunc func() error, stopFunc func(), sr di.ServiceRegistry) error {
	// Create the TUI program immediately so startup progress is visible.
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	// Run engine startup in background (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}
		defer stopFunc()

		feedStatus(ctx, sr)
		errCh <- nil
	}()

	// Run TUI (blocking)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Check for engine errors
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// feedStatus pushes ledger height and engine state into the TUI until
// the context is cancelled.
func feedStatus(ctx context.Context, sr di.ServiceRegistry) {
	ledgerSvc := ledgerDI.GetLedgerService(sr)
	admin := executionDI.GetAdminService(sr)
	registry := executionDI.GetRouterRegistry(sr)
	commits := commitrevealDI.GetCommitService(sr)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if height, err := ledgerSvc.Height(ctx); err == nil {
				ui.Send(ui.HeightMsg{Height: height})
			}
			ui.Send(ui.EngineStatusMsg{
				Paused:  admin.Paused(),
				Pending: commits.Pending(),
				Routers: len(registry.Addresses()),
			})
		}
	}
}
