package parcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiriscoded/yama/internal/yama/signal"
)

type fakeParcel struct {
	md Metadata
}

func (p fakeParcel) Metadata() Metadata { return p.md }
func (p fakeParcel) Import(string) (ImportResult, error) {
	return ImportResult{NotFound: true}, nil
}

func TestInstallCommitsAtomically(t *testing.T) {
	r := New()
	batch := Batch{
		Entries: []Entry{
			{InstallName: "base", Parcel: fakeParcel{md: Metadata{SelfName: "base"}}},
			{InstallName: "acme", Parcel: fakeParcel{md: Metadata{SelfName: "acme", DepNames: []string{"dep"}}}},
		},
		Mappings: []DepMapping{
			{InstallerName: "acme", DepName: "dep", Target: "base"},
		},
	}

	require.NoError(t, r.Install(batch, nil))
	assert.True(t, r.Has("base"))
	assert.True(t, r.Has("acme"))

	_, env, ok := r.Lookup("acme")
	require.True(t, ok)
	target, ok := env.Resolve("dep")
	require.True(t, ok)
	assert.Equal(t, "base", target)
}

func TestInstallRejectsInvalidMetadata(t *testing.T) {
	r := New()
	batch := Batch{Entries: []Entry{
		{InstallName: "bad", Parcel: fakeParcel{md: Metadata{SelfName: "bad", DepNames: []string{"bad"}}}},
	}}
	err := r.Install(batch, nil)
	require.Error(t, err)
	d, ok := signal.As(err)
	require.True(t, ok)
	assert.Equal(t, signal.InstallInvalidParcel, d.Signal)
	assert.False(t, r.Has("bad"), "a failed install must leave the registry untouched")
}

func TestInstallRejectsNameConflict(t *testing.T) {
	r := New()
	require.NoError(t, r.Install(Batch{Entries: []Entry{
		{InstallName: "acme", Parcel: fakeParcel{md: Metadata{SelfName: "acme"}}},
	}}, nil))

	err := r.Install(Batch{Entries: []Entry{
		{InstallName: "acme", Parcel: fakeParcel{md: Metadata{SelfName: "acme"}}},
	}}, nil)
	require.Error(t, err)
	d, _ := signal.As(err)
	assert.Equal(t, signal.InstallInstallNameConflict, d.Signal)
}

func TestInstallRejectsMissingDepMapping(t *testing.T) {
	r := New()
	err := r.Install(Batch{Entries: []Entry{
		{InstallName: "acme", Parcel: fakeParcel{md: Metadata{SelfName: "acme", DepNames: []string{"base"}}}},
	}}, nil)
	require.Error(t, err)
	d, _ := signal.As(err)
	assert.Equal(t, signal.InstallMissingDepMapping, d.Signal)
}

func TestInstallRejectsInvalidDepMappingTarget(t *testing.T) {
	r := New()
	err := r.Install(Batch{
		Entries: []Entry{
			{InstallName: "acme", Parcel: fakeParcel{md: Metadata{SelfName: "acme", DepNames: []string{"base"}}}},
		},
		Mappings: []DepMapping{{InstallerName: "acme", DepName: "base", Target: "nowhere"}},
	}, nil)
	require.Error(t, err)
	d, _ := signal.As(err)
	assert.Equal(t, signal.InstallInvalidDepMapping, d.Signal)
}

func TestInstallRejectsDepGraphCycle(t *testing.T) {
	r := New()
	err := r.Install(Batch{
		Entries: []Entry{
			{InstallName: "a", Parcel: fakeParcel{md: Metadata{SelfName: "a", DepNames: []string{"b"}}}},
			{InstallName: "b", Parcel: fakeParcel{md: Metadata{SelfName: "b", DepNames: []string{"a"}}}},
		},
		Mappings: []DepMapping{
			{InstallerName: "a", DepName: "b", Target: "b"},
			{InstallerName: "b", DepName: "a", Target: "a"},
		},
	}, nil)
	require.Error(t, err)
	d, _ := signal.As(err)
	assert.Equal(t, signal.InstallDepGraphCycle, d.Signal)
	assert.False(t, r.Has("a"))
	assert.False(t, r.Has("b"))
}

func TestInstallAcyclicAcrossMultipleBatches(t *testing.T) {
	r2 := New()
	require.NoError(t, r2.Install(Batch{
		Entries: []Entry{{InstallName: "b", Parcel: fakeParcel{md: Metadata{SelfName: "b"}}}},
	}, nil))
	require.NoError(t, r2.Install(Batch{
		Entries: []Entry{{InstallName: "a", Parcel: fakeParcel{md: Metadata{SelfName: "a", DepNames: []string{"dep"}}}}},
		Mappings: []DepMapping{{InstallerName: "a", DepName: "dep", Target: "b"}},
	}, nil))

	err := r2.Install(Batch{
		Entries: []Entry{{InstallName: "c", Parcel: fakeParcel{md: Metadata{SelfName: "c", DepNames: []string{"dep"}}}}},
		Mappings: []DepMapping{{InstallerName: "c", DepName: "dep", Target: "a"}},
	}, nil)
	assert.NoError(t, err, "a -> b, c -> a is acyclic and must install cleanly")
}
