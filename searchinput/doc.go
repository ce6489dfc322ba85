// Package searchinput owns the query field of a smart search box and the
// pipelines that fill it.
//
// A Controller accepts typed text, voice recordings and photo uploads.
// Recordings are captured from a capture.Device, bounded by a countdown and
// transcribed by the selected transcription provider; photos are turned into
// text by an image query extractor. Whatever finishes last writes the query.
// Submit hands the current query to the search endpoint.
//
// Pipeline failures never escape as panics or stuck state: they are logged,
// counted and reported to the Notifier as notice events, and the query is
// left as it was.
package searchinput
