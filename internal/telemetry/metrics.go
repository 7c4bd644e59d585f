package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/SNU-Hackathon/Doany-sub000/internal/offline"
)

const (
	OutcomePass      = "pass"
	OutcomeFail      = "fail"
	OutcomeDuplicate = "duplicate"
)

// Metrics holds the engine counters. A nil *Metrics records nothing.
type Metrics struct {
	submissions metric.Int64Counter
	transitions metric.Int64Counter
	flushes     metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	m.submissions, err = meter.Int64Counter("verification.submissions",
		metric.WithDescription("Verification attempts evaluated, by goal type and outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create submissions counter: %w", err)
	}

	m.transitions, err = meter.Int64Counter("offline.transitions",
		metric.WithDescription("Offline attempt state transitions, by target state"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transitions counter: %w", err)
	}

	m.flushes, err = meter.Int64Counter("offline.flushes",
		metric.WithDescription("Completed offline queue flushes"),
		metric.WithUnit("{flush}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create flushes counter: %w", err)
	}

	return &m, nil
}

func (m *Metrics) RecordSubmission(ctx context.Context, goalType, outcome string) {
	if m == nil {
		return
	}
	m.submissions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("goal_type", goalType),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordFlush(ctx context.Context, queue string) {
	if m == nil {
		return
	}
	m.flushes.Add(ctx, 1, metric.WithAttributes(attribute.String("queue", queue)))
}

// OfflineObserver counts queue transitions.
func (m *Metrics) OfflineObserver() offline.Observer {
	return func(t offline.Transition) {
		if m == nil {
			return
		}
		m.transitions.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("to", t.To.String()),
		))
	}
}
