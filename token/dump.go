package token

import (
	"fmt"
	"io"
)

// Source is the minimal token-producing interface Dump drives: the
// lexer.Lexer shape, named here to avoid an import cycle back to lexer.
type Source interface {
	Next() (Token, error)
}

// Dump writes one line per token from src to w, in order, stopping at the
// first EOF or error. It underlies the CLI's --all diagnostic dump, the
// token-stream sibling of (*ast.Program).Print and (*symtab.Context).Print.
func Dump(w io.Writer, src Source) error {
	for {
		tok, err := src.Next()
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintln(w, tok.String()); err != nil {
			return err
		}

		if tok.Kind == EOF {
			return nil
		}
	}
}
