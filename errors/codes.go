package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Provider/session errors
const (
	// ErrCodeProviderUnavailable indicates a provider SDK failed to become ready.
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	// ErrCodeTokenUnavailable indicates no valid session token could be produced.
	ErrCodeTokenUnavailable ErrorCode = "TOKEN_UNAVAILABLE"
	// ErrCodeMalformedUserPayload indicates a provider returned an incomplete user payload.
	ErrCodeMalformedUserPayload ErrorCode = "MALFORMED_USER_PAYLOAD"
	// ErrCodeRemoteSignOut indicates the provider's remote sign-out call failed.
	ErrCodeRemoteSignOut ErrorCode = "REMOTE_SIGNOUT_FAILED"
	// ErrCodeSignInFailed indicates an interactive sign-in flow did not complete.
	ErrCodeSignInFailed ErrorCode = "SIGNIN_FAILED"
	// ErrCodeStateMismatch indicates the OAuth state parameter did not match.
	ErrCodeStateMismatch ErrorCode = "STATE_MISMATCH"
)

// Connection/availability errors (retryable)
const (
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Authentication errors
const (
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeTokenExpired indicates the session token has expired.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeInvalidToken indicates the session token is invalid.
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeStorageError indicates a token store read/write error.
	ErrCodeStorageError ErrorCode = "STORAGE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeProviderUnavailable: true,
	ErrCodeRemoteSignOut:       true,
	ErrCodeTimeout:             true,
	ErrCodeExternalService:     true,
	ErrCodeStorageError:        true,
}

// IsRetryableCode reports whether operations failing with the given code
// may be retried.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
