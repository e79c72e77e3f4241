package xerr_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/exr/token"
	"github.com/ardnew/exr/xerr"
)

func TestErrorMessageJoinsMsgAndCause(t *testing.T) {
	bare := xerr.New("lexing failed")
	assert.Equal(t, "lexing failed", bare.Error())

	wrapped := bare.Wrap(xerr.Plain("unterminated string"))
	assert.Equal(t, "lexing failed: unterminated string", wrapped.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := xerr.Plain("boom")
	wrapped := xerr.New("lexing failed").Wrap(cause)

	assert.ErrorIs(t, wrapped, cause)
}

func TestErrorWithIsImmutable(t *testing.T) {
	base := xerr.New("unknown mapping")
	withAttrs := base.With(slog.String("name", "foo"))

	// The receiver itself must be untouched by With, so sentinel errors
	// stay reusable across call sites.
	assert.Equal(t, "unknown mapping", base.Error())
	assert.Equal(t, "unknown mapping", withAttrs.Error())
	assert.NotSame(t, base, withAttrs)
}

func TestErrorLogValueGroupsAttrs(t *testing.T) {
	err := xerr.New("unknown mapping").
		With(slog.String("name", "foo")).
		Wrap(xerr.Plain("no overload accepts the given arguments"))

	v := err.LogValue()
	require.Equal(t, slog.KindGroup, v.Kind())

	var names []string
	for _, a := range v.Group() {
		names = append(names, a.Key)
	}

	assert.Contains(t, names, "error")
	assert.Contains(t, names, "cause")
	assert.Contains(t, names, "name")
}

func TestUserSiteFormatsPosition(t *testing.T) {
	attr := xerr.UserSite(token.Position{File: "a.exr", Line: 2, Column: 4})
	assert.Equal(t, "user_site", attr.Key)
	assert.Equal(t, "a.exr:2:4", attr.Value.String())
}

func TestSentinelsAreDistinctErrors(t *testing.T) {
	assert.False(t, errors.Is(xerr.ErrLexing, xerr.ErrUnexpectedToken))
}

func TestDiagnosticStringRendersCaret(t *testing.T) {
	d := xerr.Diagnostic{
		Source: "map dbl [x] => '[x][x]'\n[dbl 'z']",
		Pos:    token.Position{Line: 2, Column: 2},
		Reason: "unknown mapping",
	}

	out := d.String()

	assert.Contains(t, out, "unknown mapping at 2:2")
	assert.Contains(t, out, "[dbl 'z']")
	assert.Contains(t, out, "^")
}

func TestDiagnosticStringOutOfRangeLineOmitsSnippet(t *testing.T) {
	d := xerr.Diagnostic{
		Source: "one line",
		Pos:    token.Position{Line: 5, Column: 1},
		Reason: "boom",
	}

	out := d.String()
	assert.Equal(t, "boom at 5:1:\n", out)
}
