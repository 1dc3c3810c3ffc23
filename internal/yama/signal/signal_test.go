package signal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allSignals lists every constant declared in signal.go. There is no way to
// enumerate a Go const block via reflection, so this list is maintained by
// hand alongside it — this test is the "codes_test.go equivalent" the
// Registry doc comment in signal.go calls for: it catches a Signal added
// without a matching Registry entry.
var allSignals = []Signal{
	InstallInvalidParcel,
	InstallInstallNameConflict,
	InstallMissingDepMapping,
	InstallInvalidDepMapping,
	InstallDepGraphCycle,

	ImportModuleNotFound,
	ImportInvalidModule,

	LoadTypeNotFound,
	LoadKindMismatch,
	LoadCallsigMismatch,

	VerifBinaryIsEmpty,
	VerifRAOutOfBounds,
	VerifRBOutOfBounds,
	VerifKoBOutOfBounds,
	VerifKoBNotObjectConst,
	VerifKtBOutOfBounds,
	VerifKtBNotTypeConst,
	VerifRAWrongType,
	VerifRAAndRBTypesDiffer,
	VerifRAAndKoBTypesDiffer,
	VerifRAAndKtBTypesDiffer,
	VerifRAAndArgBTypesDiffer,
	VerifRBAndKtCTypesDiffer,
	VerifArgBOutOfBounds,
	VerifArgRsOutOfBounds,
	VerifArgRsZeroObjects,
	VerifArgRsIllegalCallobj,
	VerifParamArgRsWrongNumber,
	VerifParamArgRsWrongTypes,
	VerifPushingOverflows,
	VerifPutsPCOutOfBounds,
	VerifFallthroughPutsPCOutOfBounds,
	VerifViolatesRegisterCoherence,
	VerifRTopDoesNotExist,
	VerifRTopWrongType,
}

func TestRegistryCoversEverySignal(t *testing.T) {
	for _, sig := range allSignals {
		t.Run(string(sig), func(t *testing.T) {
			info, ok := Registry[sig]
			require.True(t, ok, "signal %q has no Registry entry", sig)
			assert.Equal(t, sig, info.Signal)
			assert.NotEmpty(t, info.Component)
			assert.NotEmpty(t, info.Description)
		})
	}
}

func TestRegistryHasNoExtraEntries(t *testing.T) {
	known := make(map[Signal]bool, len(allSignals))
	for _, sig := range allSignals {
		known[sig] = true
	}
	for sig := range Registry {
		assert.True(t, known[sig], "Registry has an entry for %q not listed in allSignals", sig)
	}
}

func TestRegistryComponentsAreTheExpectedFour(t *testing.T) {
	valid := map[string]bool{"install": true, "import": true, "load": true, "verif": true}
	for sig, info := range Registry {
		assert.True(t, valid[info.Component], "signal %q has unexpected component %q", sig, info.Component)
	}
}

func TestDiagnosticErrorFormatsSignalAndMessage(t *testing.T) {
	d := New(LoadTypeNotFound, "no such item", nil)
	assert.Equal(t, "load_type_not_found: no such item", d.Error())
}

func TestDiagnosticErrorHandlesNilReceiver(t *testing.T) {
	var d *Diagnostic
	assert.Equal(t, "<nil diagnostic>", d.Error())
}

func TestAsRecoversTheDiagnosticFromAnErrorChain(t *testing.T) {
	d := New(ImportModuleNotFound, "not found", map[string]any{"path": "m:Foo"})
	wrapped := fmt.Errorf("importing: %w", error(d))

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, d, got)
}

func TestAsFailsOnAnUnrelatedError(t *testing.T) {
	_, ok := As(errors.New("plain error"))
	assert.False(t, ok)
}

func TestToJSONRoundTrips(t *testing.T) {
	d := New(VerifRAWrongType, "wrong type", map[string]any{"register": float64(3)})

	text, err := d.ToJSON(false)
	require.NoError(t, err)

	var decoded Diagnostic
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.Equal(t, *d, decoded)
	assert.Equal(t, Schema, decoded.Schema)
}

func TestToJSONIndentedDiffersFromCompact(t *testing.T) {
	d := New(VerifRAWrongType, "wrong type", nil)

	compact, err := d.ToJSON(false)
	require.NoError(t, err)
	indented, err := d.ToJSON(true)
	require.NoError(t, err)

	assert.NotEqual(t, compact, indented)
	assert.Contains(t, indented, "\n")
}

func TestNullSinkDiscardsEverythingAndReportsNothingEnabled(t *testing.T) {
	var s NullSink
	assert.False(t, s.Enabled(CatAll))
	s.Log(CatGeneral, "should be a no-op")
	s.Raise(CatVerif, New(VerifRAWrongType, "x", nil))
}

func TestTextSinkGatesOnCategoryMask(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf, CatImport|CatVerif)

	assert.True(t, s.Enabled(CatImport))
	assert.True(t, s.Enabled(CatVerif))
	assert.False(t, s.Enabled(CatLoad))

	s.Log(CatLoad, "filtered out")
	assert.Empty(t, buf.String())

	s.Log(CatImport, "hello")
	assert.Contains(t, buf.String(), "[import] hello")
}

func TestTextSinkRaiseWritesSignalAndMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf, CatAll)

	s.Raise(CatVerif, New(VerifBinaryIsEmpty, "empty body", nil))
	assert.Contains(t, buf.String(), "[verif] verif_binary_is_empty: empty body")
}

func TestTextSinkRaiseIgnoresNilDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf, CatAll)

	s.Raise(CatVerif, nil)
	assert.Empty(t, buf.String())
}

func TestRaiseIsSafeWithANilSink(t *testing.T) {
	d := New(LoadKindMismatch, "kind mismatch", nil)
	err := Raise(nil, CatLoad, d)
	require.Error(t, err)
	assert.Same(t, error(d), err)
}

func TestRaiseForwardsToANonNilSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewTextSink(&buf, CatAll)

	err := Raise(s, CatInstall, New(InstallDepGraphCycle, "cycle", nil))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "install_dep_graph_cycle")
}
