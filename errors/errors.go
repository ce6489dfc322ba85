package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Capture / configuration ---

// PermissionDenied reports that the audio input device could not be acquired.
func PermissionDenied(cause error) *AppError {
	return &AppError{
		Code: ErrCodePermissionDenied, Message: "Microphone access was denied or is unavailable.",
		HTTPStatus: http.StatusForbidden, Cause: cause,
	}
}

// CredentialMissing reports that a provider cannot be used because it has no credential.
func CredentialMissing(provider string) *AppError {
	return &AppError{
		Code: ErrCodeCredentialMissing, Message: fmt.Sprintf("The %s provider is not configured.", provider),
		HTTPStatus: http.StatusPreconditionFailed,
		Details:    map[string]any{"provider": provider},
	}
}

// InvalidState reports an operation that is not allowed right now.
func InvalidState(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidState, Message: reason,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Upstream ---

// UpstreamRequest reports a non-success HTTP status from an external call.
func UpstreamRequest(service string, status int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeUpstreamRequest, Message: fmt.Sprintf("The %s service answered with HTTP %d.", service, status),
		HTTPStatus: http.StatusBadGateway, Cause: cause,
		Details: map[string]any{"service": service, "status": status},
	}
}

// UpstreamReported reports an explicit error status inside a response payload.
func UpstreamReported(service, reason string) *AppError {
	return &AppError{
		Code: ErrCodeUpstreamReported, Message: fmt.Sprintf("The %s service reported an error: %s", service, reason),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"service": service, "reason": reason},
	}
}

// MalformedResponse reports a response that lacks the expected fields.
func MalformedResponse(service, detail string) *AppError {
	return &AppError{
		Code: ErrCodeMalformedResponse, Message: fmt.Sprintf("The %s service returned an unexpected response: %s", service, detail),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"service": service},
	}
}

// TranscriptionTimeout reports that a transcription job did not finish within the poll budget.
func TranscriptionTimeout(jobID string, attempts int) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionTimeout, Message: "Transcription did not finish in time. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"job_id": jobID, "attempts": attempts},
	}
}

// ConnectionFailed creates a new AppError for a failed connection to a service.
func ConnectionFailed(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true, Cause: cause,
		Details: map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true, Cause: cause,
		Details: map[string]any{"operation": operation},
	}
}

// --- Request ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// Wrap returns err as an AppError, wrapping non-application errors as Internal.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether err's chain contains an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
