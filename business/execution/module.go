// Package execution implements the execution bounded context: token
// accounting, the router allow-list, and swap hop execution.
package execution

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/arb-engine/business/execution/app"
	executionDI "github.com/fd1az/arb-engine/business/execution/di"
	"github.com/fd1az/arb-engine/business/execution/domain"
	"github.com/fd1az/arb-engine/business/execution/infra/amm"
	"github.com/fd1az/arb-engine/business/execution/infra/uniswap"
	"github.com/fd1az/arb-engine/internal/asset"
	"github.com/fd1az/arb-engine/internal/config"
	"github.com/fd1az/arb-engine/internal/di"
	"github.com/fd1az/arb-engine/internal/logger"
	"github.com/fd1az/arb-engine/internal/monolith"
)

// Module implements the execution bounded context.
type Module struct{}

// RegisterServices registers all execution services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register TokenLedger (public - shared with routers and reveal flow)
	di.RegisterToken(c, executionDI.TokenLedger, func(sr di.ServiceRegistry) *domain.TokenLedger {
		return domain.NewTokenLedger()
	})

	// Register AdminService (public - owner operations)
	di.RegisterToken(c, executionDI.AdminService, func(sr di.ServiceRegistry) *app.AdminService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		minProfit, err := cfg.Engine.MinimumProfitRaw(baseAssetDecimals(sr, cfg))
		if err != nil {
			panic("invalid minimum profit: " + err.Error())
		}

		return app.NewAdminService(
			cfg.Engine.OwnerAddress(),
			cfg.Engine.AccountAddress(),
			minProfit,
			executionDI.GetTokenLedger(sr),
			log,
		)
	})

	// Register RouterRegistry (public - the allow-list)
	di.RegisterToken(c, executionDI.RouterRegistry, func(sr di.ServiceRegistry) *app.RouterRegistry {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewRouterRegistry(executionDI.GetAdminService(sr), log)
	})

	// Register HopExecutor (public - used by the reveal flow)
	di.RegisterToken(c, executionDI.HopExecutor, func(sr di.ServiceRegistry) *app.HopExecutor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewHopExecutor(
			executionDI.GetTokenLedger(sr),
			executionDI.GetRouterRegistry(sr),
			cfg.Engine.AccountAddress(),
			log,
		)
	})

	return nil
}

// Startup seeds the router allow-list from configuration. With a chain
// endpoint the routers price against the Uniswap quoter; without one
// they run as local constant-product venues.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()

	ledger := executionDI.GetTokenLedger(mono.Services())
	registry := executionDI.GetRouterRegistry(mono.Services())
	owner := cfg.Engine.OwnerAddress()

	var client *ethclient.Client
	if cfg.Ethereum.HTTPURL != "" {
		var err error
		client, err = ethclient.DialContext(ctx, cfg.Ethereum.HTTPURL)
		if err != nil {
			log.Error(ctx, "failed to dial ethereum node, routers fall back to local venues", "error", err)
			client = nil
		}
	}

	for _, addr := range cfg.Engine.RouterAddresses() {
		var router app.Router
		if client != nil {
			r, err := uniswap.NewRouter(addr, client, ledger, log)
			if err != nil {
				return err
			}
			router = r
		} else {
			router = amm.NewRouter(addr, ledger)
		}
		if err := registry.Add(ctx, owner, router); err != nil {
			return err
		}
	}

	log.Info(ctx, "execution module started", "routers", len(cfg.Engine.Routers))
	return nil
}

// baseAssetDecimals resolves the base asset's decimals from the shared
// registry, defaulting to 18 for unknown tokens.
func baseAssetDecimals(sr di.ServiceRegistry, cfg *config.Config) uint8 {
	reg, ok := sr.Get("assetRegistry").(*asset.Registry)
	if !ok || reg == nil {
		return 18
	}
	if a, found := reg.Get(cfg.Engine.BaseAssetAddress()); found {
		return a.Decimals()
	}
	return 18
}
