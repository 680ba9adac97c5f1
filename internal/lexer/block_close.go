package lexer

import (
	"bytes"

	"quill/internal/token"
)

// blockCloseParser recognizes the block close delimiter. It matches whether
// or not a block is open; an unbalanced close is the consumer's concern.
type blockCloseParser struct{}

func (blockCloseParser) Name() string { return StageBlockClose.String() }

func (p blockCloseParser) Attempt(ctx *Context) (Result, bool) {
	closing := ctx.Syntax().BlockClose
	if !bytes.HasPrefix(ctx.Remain(), []byte(closing)) {
		return Result{}, false
	}
	m := ctx.Mark()
	ctx.Advance(len(closing))
	ctx.CloseBlock()
	return result(ctx.TokenFrom(m, token.BlockClose, ""), token.FormatTrimSpacesIfLineBreak, p.Name())
}
