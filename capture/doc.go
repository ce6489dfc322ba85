// Package capture records audio for the search input.
//
// A Session opens a Device, accumulates the fragments its Stream delivers in
// arrival order, and assembles them into an Artifact when stopped. At most
// one recording is active per Session.
//
// Countdown bounds a recording: it ticks once per interval and fires its
// expire callback exactly once when the remaining count reaches zero.
//
// PushDevice is a Device whose fragments are supplied by an outside
// producer, such as a browser posting MediaRecorder chunks to the host.
package capture
