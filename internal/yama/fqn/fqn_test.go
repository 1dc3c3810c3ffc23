package fqn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiriscoded/yama/internal/yama/signal"
)

func TestParseValidForms(t *testing.T) {
	q, err := Parse("yama:Int")
	require.NoError(t, err)
	assert.Equal(t, "yama", q.Path.Head)
	assert.Empty(t, q.Path.Segments)
	assert.Equal(t, "Int", q.Unqualfied)
	assert.False(t, q.IsMethod())
	assert.Equal(t, "yama:Int", q.String())

	q, err = Parse("acme.util:Point::norm")
	require.NoError(t, err)
	assert.Equal(t, "acme", q.Path.Head)
	assert.Equal(t, []string{"util"}, q.Path.Segments)
	assert.Equal(t, "Point", q.Unqualfied)
	assert.Equal(t, "norm", q.Member)
	assert.True(t, q.IsMethod())
	assert.Equal(t, "Point::norm", q.UnqualifiedName())
	assert.Equal(t, "acme.util:Point::norm", q.String())
}

func TestParseRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"noseparator",
		":Missing",
		"yama:",
		"yama::",
		"yama:Foo::",
		"yama:Foo::bar::baz",
		"1bad:Foo",
		"yama.1bad:Foo",
		"yama:1Foo",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			d, ok := signal.As(err)
			require.True(t, ok)
			assert.Equal(t, signal.ImportModuleNotFound, d.Signal)
		})
	}
}

func TestParseImportPath(t *testing.T) {
	p, err := ParseImportPath("self")
	require.NoError(t, err)
	assert.Equal(t, "self", p.Head)
	assert.Empty(t, p.Segments)
	assert.Equal(t, "self", p.String())
	assert.Equal(t, "", p.Tail())

	p, err = ParseImportPath("dep.sub.mod")
	require.NoError(t, err)
	assert.Equal(t, "dep", p.Head)
	assert.Equal(t, []string{"sub", "mod"}, p.Segments)
	assert.Equal(t, "sub.mod", p.Tail())
	assert.Equal(t, "dep.sub.mod", p.String())

	_, err = ParseImportPath("")
	assert.Error(t, err)

	_, err = ParseImportPath("bad..segment")
	assert.Error(t, err)
}
