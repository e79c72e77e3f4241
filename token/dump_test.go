package token_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/exr/token"
)

// sliceSource replays a fixed token sequence, the minimal token.Source a
// dump test needs.
type sliceSource struct {
	toks []token.Token
	i    int
}

func (s *sliceSource) Next() (token.Token, error) {
	if s.i >= len(s.toks) {
		return token.Token{Kind: token.EOF}, nil
	}

	tok := s.toks[s.i]
	s.i++

	return tok, nil
}

func TestDumpStopsAtEOF(t *testing.T) {
	src := &sliceSource{toks: []token.Token{
		{Kind: token.Ident, Literal: "a", Pos: token.Position{Line: 1, Column: 1}},
		{Kind: token.EOF, Pos: token.Position{Line: 1, Column: 2}},
		{Kind: token.Ident, Literal: "unreachable", Pos: token.Position{Line: 1, Column: 3}},
	}}

	var buf strings.Builder

	require.NoError(t, token.Dump(&buf, src))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "IDENT")
	assert.Contains(t, lines[1], "EOF")
}
