package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Protocol timing
	CodeCommitmentTooRecent: "Commitment is too recent to reveal",
	CodeCommitmentExpired:   "Commitment has expired",
	CodeInvalidDeadline:     "Deadline is expired or too far in the future",

	// Authorization
	CodeUnauthorizedRevealer:      "Caller is not the committer of this commitment",
	CodeCommitmentAlreadyExists:   "A commitment with this hash is already outstanding",
	CodeCommitmentAlreadyRevealed: "Commitment has already been revealed",
	CodeCommitmentNotFound:        "Commitment not found",
	CodeOwnerOnly:                 "Operation restricted to the engine owner",
	CodeEnginePaused:              "Engine is paused",

	// Path structure
	CodeEmptySwapPath:                  "Swap path is empty",
	CodePathTooLong:                    "Swap path exceeds the maximum hop count",
	CodeInvalidSwapPath:                "Swap path is invalid",
	CodeSwapPathAssetMismatch:          "Swap path does not start with the committed asset",
	CodeInvalidTokenContinuity:         "Swap path hops are not token-continuous",
	CodeInsufficientSlippageProtection: "Hop has no slippage floor",
	CodePathDoesNotReturnToAsset:       "Swap path does not return to the committed asset",

	// Trust boundary
	CodeRouterNotApproved: "Router is not on the allow-list",

	// Execution
	CodeInsufficientOutputAmount: "Router returned less than the hop slippage floor",
	CodeInsufficientBalance:      "Insufficient token balance",
	CodeInsufficientAllowance:    "Insufficient token allowance",
	CodeSwapExecutionFailed:      "Router swap call failed",
	CodeDeadlineExceeded:         "Swap deadline exceeded",

	// Economic
	CodeInsufficientProfit: "Realized profit below the caller minimum",
	CodeBelowMinimumProfit: "Realized profit below the engine minimum",

	// Infrastructure
	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeContractCallFailed:       "Smart contract call failed",
	CodeCircuitOpen:              "Circuit breaker is open",
	CodeWebhookDeliveryFailed:    "Webhook delivery failed",
}
