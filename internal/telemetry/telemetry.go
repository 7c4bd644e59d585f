// Package telemetry exports engine counters over OTLP.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "doany/engine"

type Config struct {
	ServiceName  string
	Environment  string
	OTLPEndpoint string // host:port; empty keeps the global no-op provider
	Insecure     bool
	Interval     time.Duration
}

// Provider owns the meter provider when an exporter is configured.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	Metrics       *Metrics
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	p := &Provider{}

	if cfg.OTLPEndpoint == "" {
		slog.Info("metrics export disabled")
		m, err := NewMetrics(otel.GetMeterProvider().Meter(meterName))
		if err != nil {
			return nil, err
		}
		p.Metrics = m
		return p, nil
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	)

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(interval),
		)),
	)
	otel.SetMeterProvider(p.meterProvider)

	p.Metrics, err = NewMetrics(p.meterProvider.Meter(meterName))
	if err != nil {
		return nil, err
	}

	slog.Info("metrics export enabled", "endpoint", cfg.OTLPEndpoint, "interval", interval)
	return p, nil
}

// Shutdown flushes pending metrics.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	err := p.meterProvider.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("failed to shut down meter provider: %w", err)
	}
	return nil
}
