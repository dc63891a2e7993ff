package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	globalSeq   uint64
	globalSpans uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return atomic.AddUint64(&globalSeq, 1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return atomic.AddUint64(&globalSpans, 1) }

// Span tracks one timed operation. A Span from a disabled tracer still
// measures time so callers can report durations without tracing.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

// Begin starts a span and emits its begin event when the tracer's level
// covers scope. parent is the parent span ID (0 if root).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	now := time.Now()
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop, scope: scope, name: name, started: now, parentID: parent}
	}

	id := NextSpanID()
	t.Emit(&Event{
		Time:     now,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   id,
		ParentID: parent,
		Name:     name,
	})
	return &Span{
		tracer:   t,
		id:       id,
		parentID: parent,
		scope:    scope,
		name:     name,
		started:  now,
	}
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	dur := time.Since(s.started)
	if s.tracer == nil || !s.tracer.Enabled() {
		return dur
	}
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Name:     s.name,
		Detail:   detail,
		Elapsed:  dur,
		Extra:    s.extra,
	})
	return dur
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, or the parent's when the span is not recorded,
// so children still attach to the nearest recorded ancestor.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	if s.id == 0 {
		return s.parentID
	}
	return s.id
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}

type ctxKey struct{}

// FromContext extracts the Tracer from context, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

type spanKey struct{}

// CurrentSpan returns the span ID stored in ctx, or 0.
func CurrentSpan(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(spanKey{}).(uint64)
	return id
}

// WithSpan stores a span ID as the parent for spans started below ctx.
func WithSpan(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, spanKey{}, id)
}
