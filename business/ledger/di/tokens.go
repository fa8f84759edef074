// Package di contains dependency injection tokens for the ledger context.
package di

import (
	"github.com/fd1az/arb-engine/business/ledger/app"
	"github.com/fd1az/arb-engine/internal/di"
)

// Public service tokens - exposed to other modules
var (
	LedgerService = di.NewToken[*app.LedgerService]("ledger.LedgerService")
)

// Private dependency tokens - internal to ledger module
var (
	HeightSource = di.NewToken[app.HeightSource]("ledger:heightSource")
	Clock        = di.NewToken[app.Clock]("ledger:clock")
)

// Helper functions for type-safe access
func GetLedgerService(c di.ServiceRegistry) *app.LedgerService {
	return di.GetToken(c, LedgerService)
}

func GetHeightSource(c di.ServiceRegistry) app.HeightSource {
	return di.GetToken(c, HeightSource)
}

func GetClock(c di.ServiceRegistry) app.Clock {
	return di.GetToken(c, Clock)
}
