// Package commitreveal implements the commit-reveal bounded context:
// commitment intake, timed reveal execution, and event reporting.
package commitreveal

import (
	"context"

	"github.com/fd1az/arb-engine/business/commitreveal/app"
	commitrevealDI "github.com/fd1az/arb-engine/business/commitreveal/di"
	"github.com/fd1az/arb-engine/business/commitreveal/infra"
	"github.com/fd1az/arb-engine/business/commitreveal/infra/memory"
	"github.com/fd1az/arb-engine/business/commitreveal/infra/stream"
	"github.com/fd1az/arb-engine/business/commitreveal/infra/webhook"
	executionDI "github.com/fd1az/arb-engine/business/execution/di"
	ledgerDI "github.com/fd1az/arb-engine/business/ledger/di"
	"github.com/fd1az/arb-engine/internal/asset"
	"github.com/fd1az/arb-engine/internal/config"
	"github.com/fd1az/arb-engine/internal/di"
	"github.com/fd1az/arb-engine/internal/logger"
	"github.com/fd1az/arb-engine/internal/monolith"
	"github.com/fd1az/arb-engine/internal/ratelimit"
)

// Infra tokens stay local to the module; only Startup needs them.
var (
	streamHub       = di.NewToken[*stream.Hub]("commitreveal:streamHub")
	consoleReporter = di.NewToken[*infra.ConsoleReporter]("commitreveal:consoleReporter")
)

// Module implements the commit-reveal bounded context.
type Module struct{}

// RegisterServices registers all commit-reveal services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register CommitStore (private - in-memory commitment book)
	di.RegisterToken(c, commitrevealDI.CommitStore, func(sr di.ServiceRegistry) app.CommitStore {
		return memory.NewStore()
	})

	// Register PathValidator (private - structural path checks)
	di.RegisterToken(c, commitrevealDI.PathValidator, func(sr di.ServiceRegistry) *app.PathValidator {
		cfg := sr.Get("config").(*config.Config)
		return app.NewPathValidator(
			executionDI.GetRouterRegistry(sr),
			cfg.Engine.MinHops,
			cfg.Engine.MaxHops,
		)
	})

	// Stream hub and console reporter are registered individually so
	// Startup can manage their lifecycles; nil means not configured.
	di.RegisterToken(c, streamHub, func(sr di.ServiceRegistry) *stream.Hub {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		if !cfg.Stream.Enabled {
			return nil
		}
		return stream.NewHub(log)
	})

	di.RegisterToken(c, consoleReporter, func(sr di.ServiceRegistry) *infra.ConsoleReporter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.Engine.TUIMode {
			return nil
		}
		assets := sr.Get("assetRegistry").(*asset.Registry)
		return infra.NewConsoleReporter(assets)
	})

	// Register Reporter (private - fan-out of all configured sinks)
	di.RegisterToken(c, commitrevealDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		assets := sr.Get("assetRegistry").(*asset.Registry)

		var reporters app.MultiReporter
		if cfg.Engine.TUIMode {
			reporters = append(reporters, infra.NewTUIReporter(assets))
		} else if console := di.GetToken(sr, consoleReporter); console != nil {
			reporters = append(reporters, console)
		}
		if hub := di.GetToken(sr, streamHub); hub != nil {
			reporters = append(reporters, hub)
		}
		if cfg.Webhook.URL != "" {
			notifier, err := webhook.NewNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, log)
			if err != nil {
				panic("failed to create webhook notifier: " + err.Error())
			}
			reporters = append(reporters, notifier)
		}
		return reporters
	})

	// Register CommitService (public - commitment intake)
	di.RegisterToken(c, commitrevealDI.CommitService, func(sr di.ServiceRegistry) *app.CommitService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		svc, err := app.NewCommitService(
			commitrevealDI.GetCommitStore(sr),
			ledgerDI.GetLedgerService(sr),
			executionDI.GetAdminService(sr),
			ratelimit.New(cfg.Engine.BatchCommitsPerMinute),
			commitrevealDI.GetReporter(sr),
			log,
		)
		if err != nil {
			panic("failed to create commit service: " + err.Error())
		}
		return svc
	})

	// Register RevealExecutor (public - the reveal flow)
	di.RegisterToken(c, commitrevealDI.RevealExecutor, func(sr di.ServiceRegistry) *app.RevealExecutor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		exec, err := app.NewRevealExecutor(
			commitrevealDI.GetCommitStore(sr),
			commitrevealDI.GetPathValidator(sr),
			executionDI.GetHopExecutor(sr),
			executionDI.GetTokenLedger(sr),
			executionDI.GetAdminService(sr),
			ledgerDI.GetLedgerService(sr),
			app.TimingConfig{
				MinRevealDelay:    cfg.Engine.MinRevealDelay,
				MaxCommitmentAge:  cfg.Engine.MaxCommitmentAge,
				MaxDeadlineWindow: cfg.Engine.MaxDeadlineWindow,
			},
			commitrevealDI.GetReporter(sr),
			log,
		)
		if err != nil {
			panic("failed to create reveal executor: " + err.Error())
		}
		return exec
	})

	// Register ProfitEstimator (public - read-only path quoting)
	di.RegisterToken(c, commitrevealDI.ProfitEstimator, func(sr di.ServiceRegistry) *app.ProfitEstimator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewProfitEstimator(executionDI.GetRouterRegistry(sr), cfg.Engine.MaxHops, log)
	})

	return nil
}

// Startup brings up the configured reporter sinks.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()

	if console := di.GetToken(mono.Services(), consoleReporter); console != nil {
		if err := console.Start(ctx); err != nil {
			return err
		}
	}

	if hub := di.GetToken(mono.Services(), streamHub); hub != nil {
		if err := hub.Start(cfg.Stream.Port); err != nil {
			return err
		}
	}

	log.Info(ctx, "commit-reveal module started",
		"min_reveal_delay", cfg.Engine.MinRevealDelay,
		"max_commitment_age", cfg.Engine.MaxCommitmentAge,
		"stream", cfg.Stream.Enabled,
	)
	return nil
}

// Shutdown stops reporter sinks that hold resources.
func (m *Module) Shutdown(ctx context.Context, mono monolith.Monolith) error {
	if hub := di.GetToken(mono.Services(), streamHub); hub != nil {
		if err := hub.Stop(ctx); err != nil {
			return err
		}
	}
	if console := di.GetToken(mono.Services(), consoleReporter); console != nil {
		return console.Stop()
	}
	return nil
}
