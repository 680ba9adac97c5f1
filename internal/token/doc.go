// Package token defines the lexical units produced by the template tokenizer.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Only Sensor tokens with Sense LangStart/LangEnd may have an empty span;
//     every other emitted token covers at least one byte.
//   - Concatenating Text of all tokens in emission order reproduces the source.
//   - Format is an out-of-band hint for the consumer, never part of Token.
package token
