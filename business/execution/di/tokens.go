// Package di contains dependency injection tokens for the execution context.
package di

import (
	"github.com/fd1az/arb-engine/business/execution/app"
	"github.com/fd1az/arb-engine/business/execution/domain"
	"github.com/fd1az/arb-engine/internal/di"
)

// Public service tokens - exposed to other modules
var (
	TokenLedger    = di.NewToken[*domain.TokenLedger]("execution.TokenLedger")
	AdminService   = di.NewToken[*app.AdminService]("execution.AdminService")
	RouterRegistry = di.NewToken[*app.RouterRegistry]("execution.RouterRegistry")
	HopExecutor    = di.NewToken[*app.HopExecutor]("execution.HopExecutor")
)

// Helper functions for type-safe access
func GetTokenLedger(c di.ServiceRegistry) *domain.TokenLedger {
	return di.GetToken(c, TokenLedger)
}

func GetAdminService(c di.ServiceRegistry) *app.AdminService {
	return di.GetToken(c, AdminService)
}

func GetRouterRegistry(c di.ServiceRegistry) *app.RouterRegistry {
	return di.GetToken(c, RouterRegistry)
}

func GetHopExecutor(c di.ServiceRegistry) *app.HopExecutor {
	return di.GetToken(c, HopExecutor)
}
