package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	reports        metric.Int64Counter
	reportDuration metric.Float64Histogram
	importedRows   metric.Int64Counter
	exports        metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "churnlytics"
	}
	meter := provider.Meter(name)

	reports, err := meter.Int64Counter("churnlytics_report_computations_total")
	if err != nil {
		return nil, err
	}
	reportDuration, err := meter.Float64Histogram("churnlytics_report_duration_seconds", metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	importedRows, err := meter.Int64Counter("churnlytics_imported_rows_total")
	if err != nil {
		return nil, err
	}
	exports, err := meter.Int64Counter("churnlytics_exports_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		reports:        reports,
		reportDuration: reportDuration,
		importedRows:   importedRows,
		exports:        exports,
	}, nil
}

// RecordReport counts one report computation and its latency.
func (m *Metrics) RecordReport(ctx context.Context, report, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("report", strings.TrimSpace(report)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	m.reports.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.reportDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordImport adds the rows written by one import.
func (m *Metrics) RecordImport(ctx context.Context, entity, mode string, rows int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("entity", strings.TrimSpace(entity)),
		attribute.String("mode", strings.TrimSpace(mode)),
	)
	m.importedRows.Add(ctx, int64(rows), metric.WithAttributes(attrs...))
}

// RecordExport counts rendered export files.
func (m *Metrics) RecordExport(ctx context.Context, kind, format string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("kind", strings.TrimSpace(kind)),
		attribute.String("format", strings.TrimSpace(format)),
	)
	m.exports.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"report":      {},
	"status":      {},
	"entity":      {},
	"mode":        {},
	"kind":        {},
	"format":      {},
	"route":       {},
	"method":      {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
