package verify

import (
	"fmt"

	"github.com/tiriscoded/yama/internal/yama/bcode"
	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/signal"
)

// execOp applies one non-branch opcode's typing rule to env, mutating it in
// place. jump/jump_true/jump_false are handled by the caller (execBlock)
// since their semantics are entangled with block edges.
func (v *verifier) execOp(pc int, ins bcode.Instruction, env *regEnv) error {
	switch ins.Op {
	case bcode.OpNoop:
		return nil

	case bcode.OpPop:
		if ins.ArgsA < 0 || ins.ArgsA > env.top {
			return v.errf(signal.VerifRTopDoesNotExist, pc, "pop pops more than the live stack holds")
		}
		env.top -= ins.ArgsA
		return nil

	case bcode.OpPutNone:
		return v.putSlot(pc, ins, env, descNone)

	case bcode.OpPutConst:
		c, ok := v.consts.At(ins.KoB)
		if !ok {
			return v.errf(signal.VerifKoBOutOfBounds, pc, "KoB index %d out of bounds", ins.KoB)
		}
		if !c.Kind.IsObjectConst() {
			return v.errf(signal.VerifKoBNotObjectConst, pc, "KoB index %d names a type-constant, not an object constant", ins.KoB)
		}
		return v.putSlotCmp(pc, ins, env, objectConstType(c), signal.VerifRAAndKoBTypesDiffer)

	case bcode.OpPutTypeConst:
		if _, err := v.typeConstOperand(pc, ins.KtB); err != nil {
			return err
		}
		return v.putSlot(pc, ins, env, descType)

	case bcode.OpPutArg:
		if ins.ArgB < 0 || ins.ArgB >= len(v.paramTypes) {
			return v.errf(signal.VerifArgBOutOfBounds, pc, "ArgB index %d out of bounds", ins.ArgB)
		}
		return v.putSlotCmp(pc, ins, env, v.paramTypes[ins.ArgB], signal.VerifRAAndArgBTypesDiffer)

	case bcode.OpCopy:
		if !env.inBounds(ins.RB) {
			return v.errf(signal.VerifRBOutOfBounds, pc, "RB index %d out of bounds", ins.RB)
		}
		return v.putSlotCmp(pc, ins, env, env.types[ins.RB], signal.VerifRAAndRBTypesDiffer)

	case bcode.OpDefaultInit:
		td, err := v.typeConstOperand(pc, ins.KtB)
		if err != nil {
			return err
		}
		return v.putSlotCmp(pc, ins, env, td, signal.VerifRAAndKtBTypesDiffer)

	case bcode.OpConv:
		if !env.inBounds(ins.RA) {
			return v.errf(signal.VerifRAOutOfBounds, pc, "RA index %d out of bounds", ins.RA)
		}
		destType, err := v.typeConstOperand(pc, ins.KtC)
		if err != nil {
			return err
		}
		return v.putDest(pc, ins.RB, ins.Reinit, env, destType, signal.VerifRBAndKtCTypesDiffer)

	case bcode.OpRet:
		if !env.inBounds(ins.RA) {
			return v.errf(signal.VerifRAOutOfBounds, pc, "RA index %d out of bounds", ins.RA)
		}
		if !env.types[ins.RA].Equal(v.returnType) {
			return v.errf(signal.VerifRAWrongType, pc, "ret register %d has the wrong type for the declared return type", ins.RA)
		}
		return nil

	case bcode.OpCall, bcode.OpCallNR:
		return v.execCall(pc, ins, env)

	default:
		return v.errf(signal.VerifRAWrongType, pc, "unrecognized opcode")
	}
}

// putSlot writes newType into RA unconditionally (used for put_none/
// put_type_const, whose resulting type never depends on an existing slot).
func (v *verifier) putSlot(pc int, ins bcode.Instruction, env *regEnv, newType TypeDesc) error {
	return v.putDest(pc, ins.RA, ins.Reinit, env, newType, signal.VerifRAWrongType)
}

// putSlotCmp writes newType into RA, requiring (without reinit) that any
// existing slot already had exactly newType.
func (v *verifier) putSlotCmp(pc int, ins bcode.Instruction, env *regEnv, newType TypeDesc, mismatchSignal signal.Signal) error {
	return v.putDest(pc, ins.RA, ins.Reinit, env, newType, mismatchSignal)
}

// putDest is the shared "write a value into a register operand" rule used
// by every opcode that produces a value: if the operand is NewTop, push
// (checking max_locals); otherwise the register must be in-bounds, and
// without reinit its existing type must already equal newType.
func (v *verifier) putDest(pc int, reg int, reinit bool, env *regEnv, newType TypeDesc, mismatchSignal signal.Signal) error {
	if reg == bcode.NewTop {
		if env.top >= v.maxLocals {
			return v.errf(signal.VerifPushingOverflows, pc, "pushing a new register would exceed max_locals (%d)", v.maxLocals)
		}
		env.types[env.top] = newType
		env.top++
		return nil
	}
	if !env.inBounds(reg) {
		return v.errf(signal.VerifRAOutOfBounds, pc, "register %d out of bounds", reg)
	}
	if !reinit && !env.types[reg].Equal(newType) {
		return v.errf(mismatchSignal, pc, "register %d's existing type disagrees with the written type (reinit not set)", reg)
	}
	env.types[reg] = newType
	return nil
}

func (v *verifier) typeConstOperand(pc, idx int) (TypeDesc, error) {
	c, ok := v.consts.At(idx)
	if !ok {
		return TypeDesc{}, v.errf(signal.VerifKtBOutOfBounds, pc, "KtB/KtC index %d out of bounds", idx)
	}
	if !c.Kind.IsTypeConst() {
		return TypeDesc{}, v.errf(signal.VerifKtBNotTypeConst, pc, "KtB/KtC index %d names an object constant, not a type-constant", idx)
	}
	return namedFromConst(c), nil
}

// objectConstType maps an object constant's kind to the fixed builtin
// sentinel type it produces when loaded into a register.
func objectConstType(c model.Const) TypeDesc {
	switch c.Kind {
	case model.ConstInt:
		return descInt
	case model.ConstUInt:
		return descUInt
	case model.ConstFloat:
		return descFloat
	case model.ConstBool:
		return descBool
	case model.ConstChar:
		return descChar
	default:
		return descNone
	}
}

// execCall handles call/call_nr: ArgsA registers are sliced off the top of
// the stack as [callobj, arg0, arg1, ...]; call writes the callee's return
// type into RB, call_nr discards it (spec.md §4.5 "call"/"call_nr").
func (v *verifier) execCall(pc int, ins bcode.Instruction, env *regEnv) error {
	if ins.ArgsA < 1 {
		return v.errf(signal.VerifArgRsZeroObjects, pc, "%s slices zero objects off the stack; a call-object is required", ins.Op)
	}
	if ins.ArgsA > env.top {
		return v.errf(signal.VerifArgRsOutOfBounds, pc, "%s's ArgsA (%d) slices beyond the live stack top (%d)", ins.Op, ins.ArgsA, env.top)
	}
	base := env.top - ins.ArgsA
	callobj := env.types[base]
	if !callobj.IsCallable() {
		return v.errf(signal.VerifArgRsIllegalCallobj, pc, "%s's call-object is not a callable type", ins.Op)
	}

	sig := callobj.Sig()
	nargs := ins.ArgsA - 1
	if nargs != sig.Arity() {
		return v.errf(signal.VerifParamArgRsWrongNumber, pc, "%s passes %d argument(s) but the callee takes %d", ins.Op, nargs, sig.Arity())
	}
	for i, idx := range sig.ParamTypeIndices {
		want, err := v.typeConstOperand(pc, idx)
		if err != nil {
			return err
		}
		if !env.types[base+1+i].Equal(want) {
			return v.errf(signal.VerifParamArgRsWrongTypes, pc, "%s's argument %d disagrees with the callee's parameter type", ins.Op, i)
		}
	}

	env.top = base

	if ins.Op == bcode.OpCallNR {
		return nil
	}
	retType, err := v.typeConstOperand(pc, sig.ReturnTypeIndex)
	if err != nil {
		return err
	}
	return v.putDest(pc, ins.RB, ins.Reinit, env, retType, signal.VerifRAWrongType)
}

func (v *verifier) errf(sig signal.Signal, pc int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return raise(v.sink, sig, fmt.Sprintf("%s: at pc=%d: %s", v.name, pc, msg), map[string]any{"item": v.name, "pc": pc})
}
