package lexer

import (
	"quill/internal/token"
)

// Result is what a sub-parser hands back when it recognizes input: the token
// and the formatting hint the consumer should apply before appending it.
type Result struct {
	Token  token.Token
	Format token.Format
	Parser string // name of the concrete parser that produced Token
}

// SubParser is one link of the tokenizer chain.
//
// Attempt inspects ctx at the cursor and either returns a Result with ok ==
// true, having advanced the cursor by exactly the consumed length, or returns
// ok == false leaving ctx untouched. Declining is the only way to say "not
// mine"; sub-parsers never fail.
type SubParser interface {
	Name() string
	Attempt(ctx *Context) (Result, bool)
}

func result(tok token.Token, format token.Format, parser string) (Result, bool) {
	return Result{Token: tok, Format: format, Parser: parser}, true
}
