// Package assemble is the reference consumer of the token stream. It folds
// tokens into a flat list of parts (merged literal text and directive
// placeholders) and applies the formatting hints tokens carry to the text
// that precedes them, the way a code builder does before emitting program
// text.
package assemble
