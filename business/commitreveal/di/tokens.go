// Package di contains dependency injection tokens for the commit-reveal
// context.
package di

import (
	"github.com/fd1az/arb-engine/business/commitreveal/app"
	"github.com/fd1az/arb-engine/internal/di"
)

// Public service tokens - exposed to other modules
var (
	CommitService   = di.NewToken[*app.CommitService]("commitreveal.CommitService")
	RevealExecutor  = di.NewToken[*app.RevealExecutor]("commitreveal.RevealExecutor")
	ProfitEstimator = di.NewToken[*app.ProfitEstimator]("commitreveal.ProfitEstimator")
)

// Private dependency tokens - internal to commitreveal module
var (
	CommitStore   = di.NewToken[app.CommitStore]("commitreveal:commitStore")
	PathValidator = di.NewToken[*app.PathValidator]("commitreveal:pathValidator")
	Reporter      = di.NewToken[app.Reporter]("commitreveal:reporter")
)

// Helper functions for type-safe access
func GetCommitService(c di.ServiceRegistry) *app.CommitService {
	return di.GetToken(c, CommitService)
}

func GetRevealExecutor(c di.ServiceRegistry) *app.RevealExecutor {
	return di.GetToken(c, RevealExecutor)
}

func GetProfitEstimator(c di.ServiceRegistry) *app.ProfitEstimator {
	return di.GetToken(c, ProfitEstimator)
}

func GetCommitStore(c di.ServiceRegistry) app.CommitStore {
	return di.GetToken(c, CommitStore)
}

func GetPathValidator(c di.ServiceRegistry) *app.PathValidator {
	return di.GetToken(c, PathValidator)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
