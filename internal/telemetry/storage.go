package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/thenoetrevino/lanes/internal/database"
	"github.com/thenoetrevino/lanes/internal/models"
)

const storageScopeName = "github.com/thenoetrevino/lanes/storage"

// InstrumentedStore wraps database.DataStore with OTel tracing and metrics.
// Each transaction and each statement issued through its Tx gets a span.
type InstrumentedStore struct {
	inner  database.DataStore
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapStore returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is.
func WrapStore(s database.DataStore) database.DataStore {
	if !Enabled() {
		return s
	}
	m := Meter(storageScopeName)
	ops, _ := m.Int64Counter("lanes.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("lanes.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("lanes.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	return &InstrumentedStore{
		inner:  s,
		tracer: Tracer(storageScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedStore) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStore) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Microseconds()) / 1000
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

// ── Transactions ────────────────────────────────────────────────────────────

func (s *InstrumentedStore) WithTx(ctx context.Context, fn func(tx database.Tx) error) error {
	ctx, span, t := s.op(ctx, "WithTx")
	attempts := 0
	err := s.inner.WithTx(ctx, func(tx database.Tx) error {
		attempts++
		return fn(&instrumentedTx{inner: tx, store: s})
	})
	span.SetAttributes(attribute.Int("lanes.tx.attempts", attempts))
	s.done(ctx, span, t, err)
	return err
}

// instrumentedTx traces statements issued inside one transaction
type instrumentedTx struct {
	inner database.Tx
	store *InstrumentedStore
}

func (t *instrumentedTx) FindMany(ctx context.Context, filter database.TicketFilter, order ...database.OrderBy) ([]*models.Ticket, error) {
	ctx, span, start := t.store.op(ctx, "FindMany")
	v, err := t.inner.FindMany(ctx, filter, order...)
	span.SetAttributes(attribute.Int("lanes.ticket.count", len(v)))
	t.store.done(ctx, span, start, err)
	return v, err
}

func (t *instrumentedTx) FindOne(ctx context.Context, filter database.TicketFilter, order ...database.OrderBy) (*models.Ticket, error) {
	ctx, span, start := t.store.op(ctx, "FindOne")
	v, err := t.inner.FindOne(ctx, filter, order...)
	t.store.done(ctx, span, start, err)
	return v, err
}

func (t *instrumentedTx) Count(ctx context.Context, filter database.TicketFilter) (int, error) {
	ctx, span, start := t.store.op(ctx, "Count")
	v, err := t.inner.Count(ctx, filter)
	t.store.done(ctx, span, start, err)
	return v, err
}

func (t *instrumentedTx) Insert(ctx context.Context, ticket *models.Ticket) error {
	attrs := []attribute.KeyValue{attribute.String("lanes.ticket.status", string(ticket.Status))}
	ctx, span, start := t.store.op(ctx, "Insert", attrs...)
	err := t.inner.Insert(ctx, ticket)
	t.store.done(ctx, span, start, err, attrs...)
	return err
}

func (t *instrumentedTx) UpdateMany(ctx context.Context, updates []database.TicketUpdate) error {
	ctx, span, start := t.store.op(ctx, "UpdateMany", attribute.Int("lanes.update.count", len(updates)))
	err := t.inner.UpdateMany(ctx, updates)
	t.store.done(ctx, span, start, err)
	return err
}

func (t *instrumentedTx) Delete(ctx context.Context, id string) error {
	attrs := []attribute.KeyValue{attribute.String("lanes.ticket.id", id)}
	ctx, span, start := t.store.op(ctx, "Delete", attrs...)
	err := t.inner.Delete(ctx, id)
	t.store.done(ctx, span, start, err, attrs...)
	return err
}

func (t *instrumentedTx) GetProject(ctx context.Context, id string) (*models.Project, error) {
	ctx, span, start := t.store.op(ctx, "TxGetProject")
	v, err := t.inner.GetProject(ctx, id)
	t.store.done(ctx, span, start, err)
	return v, err
}

func (t *instrumentedTx) UpdateProject(ctx context.Context, project *models.Project) error {
	attrs := []attribute.KeyValue{attribute.String("lanes.project.id", project.ID)}
	ctx, span, start := t.store.op(ctx, "TxUpdateProject", attrs...)
	err := t.inner.UpdateProject(ctx, project)
	t.store.done(ctx, span, start, err, attrs...)
	return err
}

func (t *instrumentedTx) DeleteProject(ctx context.Context, id string) error {
	attrs := []attribute.KeyValue{attribute.String("lanes.project.id", id)}
	ctx, span, start := t.store.op(ctx, "TxDeleteProject", attrs...)
	err := t.inner.DeleteProject(ctx, id)
	t.store.done(ctx, span, start, err, attrs...)
	return err
}

// ── Projects ────────────────────────────────────────────────────────────────

func (s *InstrumentedStore) CreateProject(ctx context.Context, project *models.Project) error {
	ctx, span, t := s.op(ctx, "CreateProject")
	err := s.inner.CreateProject(ctx, project)
	s.done(ctx, span, t, err)
	return err
}

func (s *InstrumentedStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	attrs := []attribute.KeyValue{attribute.String("lanes.project.id", id)}
	ctx, span, t := s.op(ctx, "GetProject", attrs...)
	v, err := s.inner.GetProject(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStore) ListProjects(ctx context.Context) ([]*models.Project, error) {
	ctx, span, t := s.op(ctx, "ListProjects")
	v, err := s.inner.ListProjects(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStore) DeleteProject(ctx context.Context, id string) error {
	attrs := []attribute.KeyValue{attribute.String("lanes.project.id", id)}
	ctx, span, t := s.op(ctx, "DeleteProject", attrs...)
	err := s.inner.DeleteProject(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStore) Close() error {
	return s.inner.Close()
}

var _ database.DataStore = (*InstrumentedStore)(nil)
var _ database.Tx = (*instrumentedTx)(nil)
