// Package trace is the structured logging layer of quill.
//
// Events are spans (begin/end pairs) and points. They are filtered by a
// Level and tagged with a Scope describing their granularity:
//
//   - ScopeDriver: a CLI command or a directory run
//   - ScopeFile: tokenization of one template
//   - ScopeToken: individual tokenizer decisions, such as fail-through
//     activations
//
// Tracers are propagated via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, "tokenize", 0)
//	defer span.End("")
//
// Enable from the command line:
//
//	quill tokenize --trace=- --trace-level=debug page.html
package trace
