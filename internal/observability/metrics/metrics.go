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
	dealsCreated       metric.Int64Counter
	snapshotsCaptured  metric.Int64Counter
	depthCeilingHits   metric.Int64Counter
	uplineReassigns    metric.Int64Counter
	payoutComputations metric.Int64Counter
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
		name = "agentspace"
	}
	meter := provider.Meter(name)

	dealsCreated, err := meter.Int64Counter("agentspace_deals_created_total")
	if err != nil {
		return nil, err
	}
	snapshotsCaptured, err := meter.Int64Counter("agentspace_hierarchy_snapshots_total")
	if err != nil {
		return nil, err
	}
	depthCeilingHits, err := meter.Int64Counter("agentspace_hierarchy_depth_ceiling_total")
	if err != nil {
		return nil, err
	}
	uplineReassigns, err := meter.Int64Counter("agentspace_upline_reassignments_total")
	if err != nil {
		return nil, err
	}
	payoutComputations, err := meter.Int64Counter("agentspace_payout_computations_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		dealsCreated:       dealsCreated,
		snapshotsCaptured:  snapshotsCaptured,
		depthCeilingHits:   depthCeilingHits,
		uplineReassigns:    uplineReassigns,
		payoutComputations: payoutComputations,
	}, nil
}

// RecordDealCreated increments deal creation counts.
func (m *Metrics) RecordDealCreated(ctx context.Context, agencyID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("agency_id", strings.TrimSpace(agencyID)))
	m.dealsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSnapshotsCaptured adds the number of ledger rows written for a deal.
func (m *Metrics) RecordSnapshotsCaptured(ctx context.Context, agencyID string, count int) {
	if m == nil || count <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("agency_id", strings.TrimSpace(agencyID)))
	m.snapshotsCaptured.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

// RecordDepthCeilingHit increments truncated-traversal counts. Hitting the
// ceiling means the stored hierarchy is deeper than supported or cyclic.
func (m *Metrics) RecordDepthCeilingHit(ctx context.Context, agencyID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("agency_id", strings.TrimSpace(agencyID)))
	m.depthCeilingHits.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordUplineReassignment increments reassignment counts by outcome.
func (m *Metrics) RecordUplineReassignment(ctx context.Context, agencyID, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("agency_id", strings.TrimSpace(agencyID)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.uplineReassigns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPayoutComputation increments payout calculation counts.
func (m *Metrics) RecordPayoutComputation(ctx context.Context, agencyID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("agency_id", strings.TrimSpace(agencyID)))
	m.payoutComputations.Add(ctx, 1, metric.WithAttributes(attrs...))
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
	"agency_id":   {},
	"carrier_id":  {},
	"endpoint":    {},
	"status_code": {},
	"outcome":     {},
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
