// Package tracing starts child spans for inner layers. Requests that arrive
// without a recording parent, such as filtered health checks, produce no
// spans at all.
package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var noop = trace.SpanFromContext(context.Background())

// Scope starts spans whose names carry prefix. Names outside the prefix are
// ignored so helpers sharing a package do not add noise.
type Scope struct {
	tracer trace.Tracer
	prefix string
}

func NewScope(instrumentation, prefix string) Scope {
	return Scope{tracer: otel.Tracer(instrumentation), prefix: prefix}
}

func (s Scope) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !s.Accepts(name) || !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noop
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(s.prefix)
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s Scope) Accepts(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && strings.HasPrefix(name, s.prefix)
}

// Fail marks span as errored. A nil err leaves the span untouched.
func Fail(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
