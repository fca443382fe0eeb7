package tracing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/sessiond/internal/logging"
	"github.com/GriffinCanCode/AgentOS/sessiond/internal/shared/id"
)

const (
	tracePrefix = "trace"
	spanPrefix  = "span"

	bufferSize = 256
)

// Span represents a single timed phase in a trace
type Span struct {
	TraceID   string
	SpanID    string
	ParentID  string
	Name      string
	StartTime time.Time
	Duration  time.Duration
	Tags      map[string]string
	Err       error

	tracer *Tracer
	once   sync.Once
}

// Tracer collects finished spans and logs them
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// New creates a tracer and starts its collector
func New(service string, logger *zap.Logger) *Tracer {
	t := &Tracer{
		service: service,
		logger:  logging.OrNop(logger),
		spans:   make(chan *Span, bufferSize),
		done:    make(chan struct{}),
	}
	go t.collectSpans()
	return t
}

// StartSpan starts a span, as a child of the span in ctx if there is one
func (t *Tracer) StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if t == nil {
		return ctx, nil
	}

	parent, _ := ctx.Value(spanKey).(*Span)
	span := &Span{
		SpanID:    id.Default().GenerateWithPrefix(spanPrefix),
		Name:      name,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
		tracer:    t,
	}
	if parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	} else {
		span.TraceID = id.Default().GenerateWithPrefix(tracePrefix)
	}

	return context.WithValue(ctx, spanKey, span), span
}

// SetTag adds a tag to the span
func (s *Span) SetTag(key, value string) {
	if s == nil {
		return
	}
	s.Tags[key] = value
}

// SetError records an error in the span
func (s *Span) SetError(err error) {
	if s == nil {
		return
	}
	s.Err = err
}

// End finishes the span and submits it. Only the first call counts.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.Duration = time.Since(s.StartTime)
		s.tracer.submit(s)
	})
}

// submit sends a span to the collector
func (t *Tracer) submit(span *Span) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}

	select {
	case t.spans <- span:
	default:
		t.logger.Warn("Span buffer full, dropping span",
			zap.String("trace_id", span.TraceID),
			zap.String("span_id", span.SpanID))
	}
}

// Close stops accepting spans and waits for the collector to drain
func (t *Tracer) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.spans)
	t.mu.Unlock()
	<-t.done
}

func (t *Tracer) collectSpans() {
	defer close(t.done)
	for span := range t.spans {
		t.processSpan(span)
	}
}

func (t *Tracer) processSpan(span *Span) {
	fields := []zap.Field{
		zap.String("trace_id", span.TraceID),
		zap.String("span_id", span.SpanID),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
		zap.String("service", t.service),
	}
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", span.ParentID))
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String(k, v))
	}

	if span.Err != nil {
		fields = append(fields, zap.Error(span.Err))
		t.logger.Warn("Span completed with error", fields...)
		return
	}
	t.logger.Debug("Span completed", fields...)
}

type contextKey struct{}

var spanKey contextKey

// TraceID returns the trace ID carried by ctx
func TraceID(ctx context.Context) string {
	if span, ok := ctx.Value(spanKey).(*Span); ok {
		return span.TraceID
	}
	return ""
}
