package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Capture and configuration errors.
const (
	// ErrCodePermissionDenied indicates the audio input device could not be acquired.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeCredentialMissing indicates the selected provider has no credential configured.
	ErrCodeCredentialMissing ErrorCode = "CREDENTIAL_MISSING"
	// ErrCodeInvalidState indicates an operation is not allowed in the current state.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
)

// Upstream errors.
const (
	// ErrCodeUpstreamRequest indicates an external call answered with a non-success status.
	ErrCodeUpstreamRequest ErrorCode = "UPSTREAM_REQUEST_ERROR"
	// ErrCodeUpstreamReported indicates a response payload carried an explicit error status.
	ErrCodeUpstreamReported ErrorCode = "UPSTREAM_REPORTED_ERROR"
	// ErrCodeMalformedResponse indicates expected fields were absent from a response.
	ErrCodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	// ErrCodeTranscriptionTimeout indicates the poll budget was exhausted.
	ErrCodeTranscriptionTimeout ErrorCode = "TRANSCRIPTION_TIMEOUT"
	// ErrCodeConnectionFailed indicates a failed connection to a service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Request errors.
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Every code here is recoverable by the user re-initiating the action, but
// only transport-level failures are worth an immediate retry.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed:     true,
	ErrCodeTimeout:              true,
	ErrCodeTranscriptionTimeout: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
