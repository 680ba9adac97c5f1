// Package diag defines the diagnostic model shared by the tokenizer, the
// configuration loader and the driver.
//
// Diagnostic is the central record: Severity, a compact numeric Code with a
// stable string form (LEX1001, CFG5001, ...), a short Message, the Primary
// source.Span and optional Notes.
//
// Producers emit through a Reporter so they stay decoupled from storage.
// BagReporter aggregates into a Bag, which supports limits, sorting and
// deduplication. Rendering lives in internal/diagfmt.
//
// The tokenizer never reports malformed template syntax as an error: input
// no sub-parser recognizes is absorbed by the fail-through guard and shows up
// here only as a LexUnrecognizedInput warning.
package diag
