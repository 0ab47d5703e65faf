package ticket

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/thenoetrevino/lanes/internal/telemetry"
)

const orderingScopeName = "github.com/thenoetrevino/lanes/ordering"

// engineMetrics counts ordering decisions. Instruments come from the global
// provider, so they are no-ops until telemetry.Init enables it.
type engineMetrics struct {
	tracer         trace.Tracer
	reorders       metric.Int64Counter
	moves          metric.Int64Counter
	rowsWritten    metric.Int64Counter
	rebalances     metric.Int64Counter
	autoRebalances metric.Int64Counter
}

func newEngineMetrics() *engineMetrics {
	return newEngineMetricsFrom(telemetry.Meter(orderingScopeName), telemetry.Tracer(orderingScopeName))
}

func newEngineMetricsFrom(m metric.Meter, tracer trace.Tracer) *engineMetrics {
	reorders, _ := m.Int64Counter("lanes.ordering.reorders",
		metric.WithDescription("Reorder operations by outcome"),
	)
	moves, _ := m.Int64Counter("lanes.ordering.moves",
		metric.WithDescription("Move operations by kind"),
	)
	rowsWritten, _ := m.Int64Counter("lanes.ordering.rows_written",
		metric.WithDescription("Ticket rows rewritten by ordering operations"),
	)
	rebalances, _ := m.Int64Counter("lanes.ordering.rebalances",
		metric.WithDescription("Column rebalances executed"),
	)
	autoRebalances, _ := m.Int64Counter("lanes.ordering.auto_rebalances",
		metric.WithDescription("Rebalances triggered by gap exhaustion"),
	)
	return &engineMetrics{
		tracer:         tracer,
		reorders:       reorders,
		moves:          moves,
		rowsWritten:    rowsWritten,
		rebalances:     rebalances,
		autoRebalances: autoRebalances,
	}
}

func (m *engineMetrics) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "ordering."+name, trace.WithAttributes(attrs...))
}

func (m *engineMetrics) end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (m *engineMetrics) wrote(ctx context.Context, op string, rows int) {
	if rows > 0 {
		m.rowsWritten.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("op", op)))
	}
}
