// Package observability wires OpenTelemetry tracing and metrics for the
// search input pipelines.
//
// Setup installs OTLP/HTTP exporters when enabled and returns a shutdown
// function:
//
//	shutdown, err := observability.Setup(ctx, "smartsearch", version.Version, env, cfg.Observability)
//	defer shutdown(ctx)
//
// Each pipeline run (transcription, image extraction, submission) is wrapped
// in an Operation, which opens a span and records the outcome:
//
//	ctx, op := observability.StartOperation(ctx, metrics, observability.PipelineTranscription)
//	text, err := provider.Transcribe(ctx, req)
//	op.End(err)
package observability
