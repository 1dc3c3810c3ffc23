// Package builtin implements the pre-installed parcel hosting the core
// primitive types (spec.md §4.2): None, Int, UInt, Float, Bool, Char, Type.
// Grounded on the teacher's internal/iface/builtin_freeze.go, which freezes a
// fixed builtin interface once at startup rather than recomputing it per
// request.
package builtin

import (
	"sync"

	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/parcel"
)

// InstallName is the fixed name every user parcel must map a dep-name to in
// order to reference primitives (spec.md §4.2).
const InstallName = "yama"

var (
	once sync.Once
	root *model.Module
)

// names of the seven builtin primitives, in the order spec.md §3 lists the
// primitive-kind tag set.
var primitiveNames = []struct {
	name string
	kind model.PrimKind
}{
	{"None", model.PrimNone},
	{"Int", model.PrimInt},
	{"UInt", model.PrimUInt},
	{"Float", model.PrimFloat},
	{"Bool", model.PrimBool},
	{"Char", model.PrimChar},
	{"Type", model.PrimType},
}

func buildRootModule() *model.Module {
	m := model.New()
	for _, p := range primitiveNames {
		m.AddPrimitive(p.name, model.NewConstTable(), p.kind)
	}
	m.Finalize()
	return m
}

// rootModule returns the frozen root module, building it exactly once.
func rootModule() *model.Module {
	once.Do(func() {
		root = buildRootModule()
	})
	return root
}

// Parcel is the builtin parcel implementation. Its root module ("") carries
// the seven primitives; any other path is NotFound.
type Parcel struct{}

// New returns the builtin parcel.
func New() Parcel { return Parcel{} }

func (Parcel) Metadata() parcel.Metadata {
	return parcel.Metadata{SelfName: InstallName}
}

func (Parcel) Import(relativePath string) (parcel.ImportResult, error) {
	if relativePath != "" {
		return parcel.ImportResult{NotFound: true}, nil
	}
	return parcel.ImportResult{Module: rootModule()}, nil
}

// FQName returns the fully-qualified name of a builtin primitive, e.g.
// "yama:Int".
func FQName(name string) string {
	return InstallName + ":" + name
}
