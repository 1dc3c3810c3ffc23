package parcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataValid(t *testing.T) {
	cases := []struct {
		name string
		md   Metadata
		want bool
	}{
		{"ok", Metadata{SelfName: "acme", DepNames: []string{"base"}}, true},
		{"no self name", Metadata{DepNames: []string{"base"}}, false},
		{"self among deps", Metadata{SelfName: "acme", DepNames: []string{"acme"}}, false},
		{"no deps", Metadata{SelfName: "acme"}, true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.md.Valid())
		})
	}
}

func TestEnvironmentResolve(t *testing.T) {
	e := newEnvironment()
	e.m[SelfName] = "acme"
	e.m["base"] = "yama"

	got, ok := e.Resolve(SelfName)
	assert.True(t, ok)
	assert.Equal(t, "acme", got)

	got, ok = e.Resolve("base")
	assert.True(t, ok)
	assert.Equal(t, "yama", got)

	_, ok = e.Resolve("missing")
	assert.False(t, ok)
}
