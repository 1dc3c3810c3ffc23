package typeload

import (
	"fmt"

	"github.com/tiriscoded/yama/internal/yama/fqn"
	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/signal"
)

// Importer is the subset of *importer.Importer the loader needs: resolving a
// wire-format import path (whose head is already an install-name) to an
// imported, verified module.
type Importer interface {
	ImportAbsolute(path fqn.ImportPath) (*model.Module, error)
}

// Loader resolves fully-qualified item names to linked TypeRef handles,
// memoising by name for the life of the domain (spec.md §4.4). Like
// *importer.Importer, it performs no locking of its own — the domain
// serialises all loader calls under its new-data lock (spec.md §5).
type Loader struct {
	imp  Importer
	sink signal.Sink

	memo map[string]TypeRef
}

// New returns a loader backed by imp.
func New(imp Importer, sink signal.Sink) *Loader {
	return &Loader{imp: imp, sink: sink, memo: make(map[string]TypeRef)}
}

// Load resolves fqName to a fully-linked TypeRef, walking every
// type-constant reachable from its constant table transitively (spec.md
// §4.4). Two calls with the same fqName return handles that compare equal
// (spec.md §8 "Load determinism").
func (l *Loader) Load(fqName string) (TypeRef, error) {
	if tr, ok := l.memo[fqName]; ok {
		return tr, nil
	}

	inflight := make(map[string]*node)
	tr, err := l.resolve(fqName, inflight)
	if err != nil {
		return TypeRef{}, err
	}

	// Success: publish every newly created node atomically (spec.md §4.4
	// step 5 — "publish all newly created loaded-type handles atomically").
	for name, n := range inflight {
		l.memo[name] = TypeRef{n: n}
	}
	return tr, nil
}

// resolve returns the TypeRef for fqName, creating and linking a new node if
// one doesn't already exist in the domain's published memo or the current
// load's in-flight work-set. inflight is consulted before creating a new
// stub so a cycle resolves to the already-created-but-not-yet-fully-linked
// handle rather than recursing forever (spec.md §4.4 step 2, §9).
func (l *Loader) resolve(fqName string, inflight map[string]*node) (TypeRef, error) {
	if tr, ok := l.memo[fqName]; ok {
		return tr, nil
	}
	if n, ok := inflight[fqName]; ok {
		return TypeRef{n: n}, nil
	}

	q, err := fqn.Parse(fqName)
	if err != nil {
		return TypeRef{}, err
	}
	mod, err := l.imp.ImportAbsolute(q.Path)
	if err != nil {
		return TypeRef{}, err
	}
	id, ok := mod.IDByName(q.UnqualifiedName())
	if !ok {
		return TypeRef{}, l.raise(signal.LoadTypeNotFound,
			fmt.Sprintf("%q names no item in module %q", fqName, q.Path.String()),
			map[string]any{"name": fqName})
	}
	item := mod.MustItem(id)

	n := &node{fqName: fqName, kind: item.Kind, consts: item.Consts}
	inflight[fqName] = n // publish the stub before recursing, so cycles see it

	if item.Kind == model.KindPrimitive {
		n.primKind = mod.MustPrim(id).Prim
	}

	if item.Kind.IsCallable() {
		cd := mod.MustCall(id)
		params := make([]TypeRef, len(cd.Sig.ParamTypeIndices))
		for i, idx := range cd.Sig.ParamTypeIndices {
			ptr, err := l.resolveConst(item.Consts, idx, inflight)
			if err != nil {
				return TypeRef{}, err
			}
			params[i] = ptr
		}
		ret, err := l.resolveConst(item.Consts, cd.Sig.ReturnTypeIndex, inflight)
		if err != nil {
			return TypeRef{}, err
		}
		n.sig = CallSigRef{Params: params, Return: ret}
	}

	return TypeRef{n: n}, nil
}

// resolveConst resolves the type-constant at idx in consts to a linked
// TypeRef, and enforces the two agreement checks spec.md §4.4 step 3
// requires of every linked type-constant.
func (l *Loader) resolveConst(consts *model.ConstTable, idx int, inflight map[string]*node) (TypeRef, error) {
	c, ok := consts.TypeConst(idx)
	if !ok {
		return TypeRef{}, l.raise(signal.LoadTypeNotFound,
			fmt.Sprintf("constant table index %d is not a type-constant", idx),
			map[string]any{"index": idx})
	}

	target, err := l.resolve(c.TypeName, inflight)
	if err != nil {
		return TypeRef{}, err
	}

	if !kindAgrees(c.Kind, target) {
		return TypeRef{}, l.raise(signal.LoadKindMismatch,
			fmt.Sprintf("type-constant %q advertises kind %s but the target is %s", c.TypeName, c.Kind, target.Kind()),
			map[string]any{"name": c.TypeName, "advertised_kind": c.Kind.String(), "actual_kind": target.Kind().String()})
	}

	if c.Kind == model.ConstFunctionType || c.Kind == model.ConstMethodType {
		if !callsigAgrees(*c.Sig, consts, target.Sig()) {
			return TypeRef{}, l.raise(signal.LoadCallsigMismatch,
				fmt.Sprintf("type-constant %q's advertised callsig disagrees with the target's actual callsig by value", c.TypeName),
				map[string]any{"name": c.TypeName})
		}
	}

	return target, nil
}

// kindAgrees checks a type-constant's advertised kind against the actual
// item kind of its resolved target (spec.md §4.4 step 3 "kind_mismatch").
// The four type-constant kinds map 1:1 onto the four item kinds; which
// primitive a primitive_type constant names is not compared here.
func kindAgrees(advertised model.ConstKind, target TypeRef) bool {
	switch advertised {
	case model.ConstPrimitiveType:
		return target.Kind() == model.KindPrimitive
	case model.ConstFunctionType:
		return target.Kind() == model.KindFunction
	case model.ConstMethodType:
		return target.Kind() == model.KindMethod
	case model.ConstStructType:
		return target.Kind() == model.KindStruct
	default:
		return false
	}
}

// callsigAgrees compares a callable type-constant's advertised callsig,
// resolved via srcConsts, against the target's actual callsig by value:
// parameter count, each parameter type, and return type (spec.md §4.4 step 3
// "callsig_mismatch") — comparing each source type-constant's TypeName with
// the FQName() of the target's corresponding TypeRef rather than raw
// indices, since the two sides' constant tables are unrelated.
func callsigAgrees(advertised model.CallSig, srcConsts *model.ConstTable, actual CallSigRef) bool {
	if len(advertised.ParamTypeIndices) != len(actual.Params) {
		return false
	}
	for i, idx := range advertised.ParamTypeIndices {
		c, ok := srcConsts.TypeConst(idx)
		if !ok || c.TypeName != actual.Params[i].FQName() {
			return false
		}
	}
	retC, ok := srcConsts.TypeConst(advertised.ReturnTypeIndex)
	return ok && retC.TypeName == actual.Return.FQName()
}

func (l *Loader) raise(sig signal.Signal, msg string, data map[string]any) error {
	return signal.Raise(l.sink, signal.CatLoad, signal.New(sig, msg, data))
}
