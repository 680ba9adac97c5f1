// Package fuzztests houses Go fuzz harnesses for the tokenizer. They feed
// arbitrary bytes through every chain configuration and check the stream
// invariants: full coverage of the input, forward progress, termination.
//
// Назначение: ловить зависания, паники и дыры в покрытии исходника.
//
// Зависимости: internal/source, internal/lexer, internal/lang, internal/diag,
// internal/testkit.
package fuzztests
