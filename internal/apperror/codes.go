package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Protocol-timing failures. Recoverable with fresh commit/reveal timing;
// never retryable with the same reveal call.
const (
	CodeCommitmentTooRecent Code = "COMMITMENT_TOO_RECENT"
	CodeCommitmentExpired   Code = "COMMITMENT_EXPIRED"
	CodeInvalidDeadline     Code = "INVALID_DEADLINE"
)

// Authorization failures. Logic errors in the caller's bookkeeping.
const (
	CodeUnauthorizedRevealer    Code = "UNAUTHORIZED_REVEALER"
	CodeCommitmentAlreadyExists Code = "COMMITMENT_ALREADY_EXISTS"
	// Revealed commitments are deleted from the store, so a second
	// reveal of the same hash reports COMMITMENT_NOT_FOUND. The code is
	// reserved for callers that keep their own reveal history.
	CodeCommitmentAlreadyRevealed Code = "COMMITMENT_ALREADY_REVEALED"
	CodeCommitmentNotFound        Code = "COMMITMENT_NOT_FOUND"
	CodeOwnerOnly                 Code = "OWNER_ONLY"
	CodeEnginePaused              Code = "ENGINE_PAUSED"
)

// Path-structure failures. The caller-constructed path is malformed;
// fix and resubmit, no state was touched.
const (
	CodeEmptySwapPath                    Code = "EMPTY_SWAP_PATH"
	CodePathTooLong                      Code = "PATH_TOO_LONG"
	CodeInvalidSwapPath                  Code = "INVALID_SWAP_PATH"
	CodeSwapPathAssetMismatch            Code = "SWAP_PATH_ASSET_MISMATCH"
	CodeInvalidTokenContinuity           Code = "INVALID_TOKEN_CONTINUITY"
	CodeInsufficientSlippageProtection   Code = "INSUFFICIENT_SLIPPAGE_PROTECTION"
	CodePathDoesNotReturnToAsset         Code = "PATH_DOES_NOT_RETURN_TO_ASSET"
)

// Trust-boundary failures.
const (
	CodeRouterNotApproved Code = "ROUTER_NOT_APPROVED"
)

// Execution failures.
const (
	CodeInsufficientOutputAmount Code = "INSUFFICIENT_OUTPUT_AMOUNT"
	CodeInsufficientBalance      Code = "INSUFFICIENT_BALANCE"
	CodeInsufficientAllowance    Code = "INSUFFICIENT_ALLOWANCE"
	CodeSwapExecutionFailed      Code = "SWAP_EXECUTION_FAILED"
	CodeDeadlineExceeded         Code = "DEADLINE_EXCEEDED"
)

// Economic failures. Path and routers were valid but the trade is not
// worth executing; distinct from structural failures so strategies can
// apply different backoff policies.
const (
	CodeInsufficientProfit Code = "INSUFFICIENT_PROFIT"
	CodeBelowMinimumProfit Code = "BELOW_MINIMUM_PROFIT"
)

// Infrastructure errors
const (
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeContractCallFailed       Code = "CONTRACT_CALL_FAILED"
	CodeCircuitOpen              Code = "CIRCUIT_OPEN"
	CodeWebhookDeliveryFailed    Code = "WEBHOOK_DELIVERY_FAILED"
)
