// Package server hosts smart search sessions over HTTP.
//
// Each session owns a searchinput.Controller. The page types through
// PUT /query, records by opening /recording and streaming audio chunks,
// uploads photos to /image, and follows countdown, query and notice
// events on the /events stream. The Gin engine sits behind an h2c handler
// and a net/http middleware chain:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request ID generation and propagation
//   - CORS: cross-origin configuration
//   - BodySizeLimit: request body cap covering image uploads
//   - RequestLogger: request logging with duration tracking
//
// Built-in endpoints (server/endpoint) are /health, which reports each
// transcription provider, /alive and /info.
package server
