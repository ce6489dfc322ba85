// Package errors provides the structured error type shared by every
// smartsearch pipeline.
//
// Each failure carries a machine-readable ErrorCode (permission denied,
// credential missing, upstream request error, transcription timeout, ...),
// a user-facing message, a retryable hint and the HTTP status the session
// host answers with. Errors compose with the standard library: Unwrap
// exposes the cause, so errors.Is and errors.As keep working.
package errors
