package trace

import "context"

type ctxKey struct{}

// FromContext extracts the Tracer from context, Nop if there is none.
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

type spanCtxKey struct{}

// CurrentSpan returns the ID of the active span, 0 if none.
func CurrentSpan(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(spanCtxKey{}).(uint64) //nolint:errcheck
	return id
}

// WithSpan records span as the parent for spans started under ctx.
func WithSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, spanCtxKey{}, span.ID())
}
