package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"accidentcli/internal/config"
)

const (
	ServiceName = "accidentcli"
	MeterName   = "accidentcli"
)

// PipelineMetrics holds the instruments recorded by the pipeline stages
type PipelineMetrics struct {
	StageRuns     metric.Int64Counter
	StageDuration metric.Float64Histogram
	RowsLoaded    metric.Int64Counter
	RowsDropped   metric.Int64Counter
	FilesWritten  metric.Int64Counter
}

// Telemetry bundles tracing and metrics for one process. When tracing or
// metrics are disabled the corresponding providers are nil and no-op
// implementations stand in, so callers never branch on configuration.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
	Tracer         trace.Tracer
	Metrics        *PipelineMetrics

	logger  *slog.Logger
	closers []io.Closer
}

// InitializeTelemetry sets up tracing and metrics according to cfg
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	res, err := createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t := &Telemetry{
		Tracer: noop.NewTracerProvider().Tracer(MeterName),
		logger: logger,
	}

	if cfg.EnableTracing && cfg.TraceExporter != "none" {
		if err := t.initializeTracing(cfg, res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	var meter metric.Meter = metricnoop.NewMeterProvider().Meter(MeterName)
	if cfg.EnableMetrics {
		t.Registry = prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(t.Registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		t.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		meter = t.MeterProvider.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
	}

	t.Metrics, err = CreatePipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	logger.DebugContext(ctx, "Telemetry initialized",
		slog.Bool("tracing_enabled", t.TracerProvider != nil),
		slog.Bool("metrics_enabled", t.MeterProvider != nil))

	return t, nil
}

// createResource creates the OpenTelemetry resource
func createResource() (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		attribute.String("service.instance.id", GenerateTraceID()),
	), nil
}

// initializeTracing sets up the span exporter and tracer provider
func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	var out io.Writer = os.Stdout
	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		file, err := os.Create(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		t.closers = append(t.closers, file)
		out = file
	}

	var exporter sdktrace.SpanExporter
	var err error
	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(out),
			stdouttrace.WithPrettyPrint(),
		)
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	t.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)
	t.Tracer = t.TracerProvider.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))

	return nil
}

// CreatePipelineMetrics creates the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	stageRuns, err := meter.Int64Counter(
		"pipeline_stage_runs",
		metric.WithDescription("Number of pipeline stage executions"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"pipeline_stage_duration",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsLoaded, err := meter.Int64Counter(
		"dataset_rows_loaded",
		metric.WithDescription("Rows read from input tables"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"dataset_rows_dropped",
		metric.WithDescription("Aggregate rows removed by cleaning"),
	)
	if err != nil {
		return nil, err
	}

	filesWritten, err := meter.Int64Counter(
		"output_files_written",
		metric.WithDescription("Export and chart files written"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		StageRuns:     stageRuns,
		StageDuration: stageDuration,
		RowsLoaded:    rowsLoaded,
		RowsDropped:   rowsDropped,
		FilesWritten:  filesWritten,
	}, nil
}

// StartStage opens a span for a pipeline stage
func (t *Telemetry) StartStage(ctx context.Context, stageID string) (context.Context, trace.Span) {
	return t.Tracer.Start(ctx, "pipeline."+stageID,
		trace.WithAttributes(attribute.String("stage", stageID)))
}

// EndStage records the outcome of a stage and closes its span
func (t *Telemetry) EndStage(ctx context.Context, span trace.Span, stageID string, started time.Time, err error) {
	status := "completed"
	if err != nil {
		status = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	attrs := metric.WithAttributes(
		attribute.String("stage", stageID),
		attribute.String("status", status),
	)
	t.Metrics.StageRuns.Add(ctx, 1, attrs)
	t.Metrics.StageDuration.Record(ctx, time.Since(started).Seconds(), attrs)
	span.End()
}

// RecordRows records rows loaded and rows dropped for a dataset
func (t *Telemetry) RecordRows(ctx context.Context, dataset string, loaded, dropped int) {
	attrs := metric.WithAttributes(attribute.String("dataset", dataset))
	t.Metrics.RowsLoaded.Add(ctx, int64(loaded), attrs)
	if dropped > 0 {
		t.Metrics.RowsDropped.Add(ctx, int64(dropped), attrs)
	}
}

// RecordFile counts a written output file by kind ("csv", "xlsx", "png", ...)
func (t *Telemetry) RecordFile(ctx context.Context, kind string) {
	t.Metrics.FilesWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// WriteTextfile writes the current metrics in Prometheus text format, for
// pickup by a node_exporter textfile collector. No-op when metrics are off.
func (t *Telemetry) WriteTextfile(path string) error {
	if t.Registry == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	return prometheus.WriteToTextfile(path, t.Registry)
}

// Shutdown flushes pending spans and releases exporters
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.TracerProvider != nil {
		errs = append(errs, t.TracerProvider.Shutdown(ctx))
	}
	if t.MeterProvider != nil {
		errs = append(errs, t.MeterProvider.Shutdown(ctx))
	}
	for _, c := range t.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
