package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/smartsearch/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Pipeline names used as metric and span attributes.
const (
	PipelineTranscription = "transcription"
	PipelineImage         = "image"
	PipelineSearch        = "search"
)

// Metrics holds the instruments for the search input pipelines. A nil
// *Metrics records nothing.
type Metrics struct {
	pipelineTotal    metric.Int64Counter
	pipelineDuration metric.Float64Histogram
	pollAttempts     metric.Int64Counter
	recordingsActive metric.Int64UpDownCounter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	pipelineTotal, err := meter.Int64Counter("smartsearch.pipeline.total",
		metric.WithDescription("Pipeline runs by pipeline and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.total counter: %w", err)
	}

	pipelineDuration, err := meter.Float64Histogram("smartsearch.pipeline.duration",
		metric.WithDescription("Duration of pipeline runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.duration histogram: %w", err)
	}

	pollAttempts, err := meter.Int64Counter("smartsearch.transcription.poll_attempts",
		metric.WithDescription("Transcription status requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating poll_attempts counter: %w", err)
	}

	recordingsActive, err := meter.Int64UpDownCounter("smartsearch.recordings.active",
		metric.WithDescription("Recordings in progress"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating recordings.active gauge: %w", err)
	}

	errorTotal, err := meter.Int64Counter("smartsearch.error.total",
		metric.WithDescription("Errors by code and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		pipelineTotal:    pipelineTotal,
		pipelineDuration: pipelineDuration,
		pollAttempts:     pollAttempts,
		recordingsActive: recordingsActive,
		errorTotal:       errorTotal,
	}, nil
}

// RecordPipeline records a finished pipeline run.
func (m *Metrics) RecordPipeline(ctx context.Context, pipeline, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.pipelineTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", status),
	))
	m.pipelineDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("pipeline", pipeline),
	))
}

// RecordPollAttempt counts one transcription status request.
func (m *Metrics) RecordPollAttempt(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.pollAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordingStarted increments the active recording count.
func (m *Metrics) RecordingStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.recordingsActive.Add(ctx, 1)
}

// RecordingEnded decrements the active recording count.
func (m *Metrics) RecordingEnded(ctx context.Context) {
	if m == nil {
		return
	}
	m.recordingsActive.Add(ctx, -1)
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
