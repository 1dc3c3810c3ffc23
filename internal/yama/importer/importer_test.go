package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiriscoded/yama/internal/yama/bcode"
	"github.com/tiriscoded/yama/internal/yama/fqn"
	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/parcel"
	"github.com/tiriscoded/yama/internal/yama/signal"
	"github.com/tiriscoded/yama/testutil"
)

type countingCompiler struct {
	calls int
	mod   *model.Module
	err   error
}

func (c *countingCompiler) Compile(services Services, source, sourceImportPath string) (*model.Module, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.mod, nil
}

// sourceParcel always hands back Source for its root module, so Import goes
// through the compiler collaborator rather than returning a Module directly.
type sourceParcel struct {
	md   parcel.Metadata
	text string
}

func (p sourceParcel) Metadata() parcel.Metadata { return p.md }
func (p sourceParcel) Import(relativePath string) (parcel.ImportResult, error) {
	if relativePath != "" {
		return parcel.ImportResult{NotFound: true}, nil
	}
	return parcel.ImportResult{Source: &parcel.SourceBlob{Text: p.text, SourceImportID: p.md.SelfName}}, nil
}

// emptyBodyModule builds a callable whose bcode program has no instructions,
// which verify.Module rejects with VerifBinaryIsEmpty.
func emptyBodyModule() *model.Module {
	m := model.New()
	_, _ = m.AddFunction("bad", model.NewConstTable(), model.CallSig{}, 0, model.BcodeToken)
	m.BindBcode("bad", &bcode.Program{})
	m.Finalize()
	return m
}

func setupRegistry(t *testing.T) (*parcel.Registry, parcel.Environment) {
	t.Helper()
	r := parcel.New()
	mod, _ := testutil.IdentityFunction()
	base := testutil.StubParcel{
		Meta:    parcel.Metadata{SelfName: "base"},
		Modules: map[string]*model.Module{"": mod},
	}
	consumer := sourceParcel{
		md:   parcel.Metadata{SelfName: "consumer", DepNames: []string{"dep"}},
		text: "irrelevant to this compiler stub",
	}

	require.NoError(t, r.Install(parcel.Batch{
		Entries: []parcel.Entry{
			{InstallName: "base", Parcel: base},
			{InstallName: "consumer", Parcel: consumer},
		},
		Mappings: []parcel.DepMapping{{InstallerName: "consumer", DepName: "dep", Target: "base"}},
	}, nil))

	_, env, ok := r.Lookup("consumer")
	require.True(t, ok)
	return r, env
}

func TestImportResolvesModuleDirectlyAndMemoises(t *testing.T) {
	r, env := setupRegistry(t)
	imp := New(r, &countingCompiler{}, nil)

	path := fqn.ImportPath{Head: "dep"}
	mod1, err := imp.Import(path, env)
	require.NoError(t, err)
	require.NotNil(t, mod1)

	mod2, err := imp.Import(path, env)
	require.NoError(t, err)
	assert.Same(t, mod1, mod2, "a second import of the same path must return the memoised module")

	hits, misses := imp.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestImportAbsoluteSharesTheSameMemoTableAsImport(t *testing.T) {
	r, env := setupRegistry(t)
	imp := New(r, &countingCompiler{}, nil)

	viaEnv, err := imp.Import(fqn.ImportPath{Head: "dep"}, env)
	require.NoError(t, err)

	viaAbsolute, err := imp.ImportAbsolute(fqn.ImportPath{Head: "base"})
	require.NoError(t, err)

	assert.Same(t, viaEnv, viaAbsolute, "both forms resolve install-name \"base\" and must share one memo entry")
	_, misses := imp.Stats()
	assert.Equal(t, 1, misses)
}

func TestImportInvokesCompilerForSourceAndMemoisesResult(t *testing.T) {
	r, env := setupRegistry(t)
	mod, _ := testutil.IdentityFunction()
	compiler := &countingCompiler{mod: mod}
	imp := New(r, compiler, nil)

	path := fqn.ImportPath{Head: "self"}
	got, err := imp.Import(path, env)
	require.NoError(t, err)
	assert.Same(t, mod, got)
	assert.Equal(t, 1, compiler.calls)

	_, err = imp.Import(path, env)
	require.NoError(t, err)
	assert.Equal(t, 1, compiler.calls, "a memoised path must not invoke the compiler again")
}

func TestImportHeadNotInEnvironmentIsModuleNotFound(t *testing.T) {
	r, env := setupRegistry(t)
	imp := New(r, &countingCompiler{}, nil)

	_, err := imp.Import(fqn.ImportPath{Head: "nosuchdep"}, env)
	require.Error(t, err)
	d, ok := signal.As(err)
	require.True(t, ok)
	assert.Equal(t, signal.ImportModuleNotFound, d.Signal)
}

func TestImportAbsoluteUnregisteredInstallNameIsModuleNotFound(t *testing.T) {
	r, _ := setupRegistry(t)
	imp := New(r, &countingCompiler{}, nil)

	_, err := imp.ImportAbsolute(fqn.ImportPath{Head: "nowhere"})
	require.Error(t, err)
	d, ok := signal.As(err)
	require.True(t, ok)
	assert.Equal(t, signal.ImportModuleNotFound, d.Signal)
}

func TestImportMissingRelativePathIsModuleNotFound(t *testing.T) {
	r, _ := setupRegistry(t)
	imp := New(r, &countingCompiler{}, nil)

	_, err := imp.ImportAbsolute(fqn.ImportPath{Head: "base", Segments: []string{"missing"}})
	require.Error(t, err)
	d, ok := signal.As(err)
	require.True(t, ok)
	assert.Equal(t, signal.ImportModuleNotFound, d.Signal)
}

func TestImportRejectsModuleFailingVerification(t *testing.T) {
	r, env := setupRegistry(t)
	compiler := &countingCompiler{mod: emptyBodyModule()}
	imp := New(r, compiler, nil)

	_, err := imp.Import(fqn.ImportPath{Head: "self"}, env)
	require.Error(t, err)
	d, ok := signal.As(err)
	require.True(t, ok)
	assert.Equal(t, signal.ImportInvalidModule, d.Signal)
}

// TestDiffModulesIsEmptyForStructurallyEquivalentIndependentlyBuiltModules
// checks testutil's go-cmp-backed module diff against two separately
// constructed (not shared-pointer) modules with the same item shape.
func TestDiffModulesIsEmptyForStructurallyEquivalentIndependentlyBuiltModules(t *testing.T) {
	mod1, _ := testutil.IdentityFunction()
	mod2, _ := testutil.IdentityFunction()
	require.NotSame(t, mod1, mod2)

	assert.Empty(t, testutil.DiffModules(mod1, mod2))
}

func TestDiffModulesReportsAMissingItem(t *testing.T) {
	mod1, _ := testutil.IdentityFunction()
	mod2 := model.New()
	mod2.Finalize()

	assert.NotEmpty(t, testutil.DiffModules(mod1, mod2))
}

func TestServicesImportRecursesThroughTheCompilingParcelsEnvironment(t *testing.T) {
	r, env := setupRegistry(t)
	imp := New(r, &countingCompiler{}, nil)

	svc := &services{imp: imp, env: env}
	mod, err := svc.Import("dep")
	require.NoError(t, err)
	require.NotNil(t, mod)
	assert.Equal(t, env, svc.Env())
}
