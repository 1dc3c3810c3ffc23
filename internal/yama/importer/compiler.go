package importer

import (
	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/parcel"
)

// Services is what the compiler collaborator (§6) receives: a scoped import
// function for resolving "self.X"/"dep.X" during compilation, plus the
// current parcel's environment.
type Services interface {
	// Import recursively resolves path (relative to Env()) into a module.
	Import(path string) (*model.Module, error)
	Env() parcel.Environment
}

// Compiler is the external collaborator that turns a source blob into a
// fully-formed (but not yet verified) module (§6).
type Compiler interface {
	Compile(services Services, source string, sourceImportPath string) (*model.Module, error)
}
