// Package ledger implements the ledger bounded context: height and time.
package ledger

import (
	"context"

	"github.com/fd1az/arb-engine/business/ledger/app"
	ledgerDI "github.com/fd1az/arb-engine/business/ledger/di"
	"github.com/fd1az/arb-engine/business/ledger/infra/ethereum"
	"github.com/fd1az/arb-engine/internal/config"
	"github.com/fd1az/arb-engine/internal/di"
	"github.com/fd1az/arb-engine/internal/logger"
	"github.com/fd1az/arb-engine/internal/monolith"
)

// Module implements the ledger bounded context.
type Module struct{}

// RegisterServices registers all ledger services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register HeightSource (private - internal dependency)
	di.RegisterToken(c, ledgerDI.HeightSource, func(sr di.ServiceRegistry) app.HeightSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		// No chain endpoint configured means dev mode on a manual ledger.
		if cfg.Ethereum.HTTPURL == "" {
			log.Warn(context.Background(), "no ethereum endpoint configured, using manual ledger")
			return app.NewManualLedger(1)
		}

		trkCfg := ethereum.DefaultTrackerConfig(cfg.Ethereum.HTTPURL)
		if cfg.Ethereum.PollInterval > 0 {
			trkCfg.PollInterval = cfg.Ethereum.PollInterval
		}
		tracker, err := ethereum.NewHeightTracker(trkCfg, log)
		if err != nil {
			panic("failed to create height tracker: " + err.Error())
		}
		return tracker
	})

	// Register Clock (private - internal dependency)
	di.RegisterToken(c, ledgerDI.Clock, func(sr di.ServiceRegistry) app.Clock {
		if manual, ok := ledgerDI.GetHeightSource(sr).(*app.ManualLedger); ok {
			return manual
		}
		return app.SystemClock{}
	})

	// Register LedgerService (public - exposed to other modules)
	di.RegisterToken(c, ledgerDI.LedgerService, func(sr di.ServiceRegistry) *app.LedgerService {
		source := ledgerDI.GetHeightSource(sr)
		clock := ledgerDI.GetClock(sr)
		return app.NewLedgerService(source, clock)
	})

	return nil
}

// Startup initializes the ledger module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	source := ledgerDI.GetHeightSource(mono.Services())

	if connector, ok := source.(interface{ Connect(context.Context) error }); ok {
		if err := connector.Connect(ctx); err != nil {
			log.Error(ctx, "failed to connect height tracker", "error", err)
			// Don't fail - Height serves errors until a head is observed
		}
	}

	log.Info(ctx, "ledger module started")
	return nil
}

// Shutdown stops the height tracker's polling loop.
func (m *Module) Shutdown(ctx context.Context, mono monolith.Monolith) error {
	source := ledgerDI.GetHeightSource(mono.Services())
	if closer, ok := source.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}
