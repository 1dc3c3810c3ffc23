package verify

import (
	"fmt"

	"github.com/tiriscoded/yama/internal/yama/bcode"
	"github.com/tiriscoded/yama/internal/yama/model"
	"github.com/tiriscoded/yama/internal/yama/signal"
)

// Module verifies every callable in m that carries both a call_desc and a
// bcode_desc (i.e. every item whose CallFn is the reserved bcode token), in
// ascending ItemID order. It is deterministic and side-effect-free beyond
// emitting to sink (§4.5 "Determinism").
func Module(m *model.Module, sink signal.Sink) error {
	for _, id := range m.View(model.DescCall) {
		cd := m.MustCall(id)
		if !cd.CallFn.IsBcode() {
			continue
		}
		bd, ok := m.Bcode(id)
		if !ok {
			continue
		}
		name, _ := m.NameByID(id)
		if err := callable(m.MustItem(id).Consts, cd, bd, sink, name); err != nil {
			return err
		}
	}
	return nil
}

func raise(sink signal.Sink, sig signal.Signal, msg string, data map[string]any) error {
	return signal.Raise(sink, signal.CatVerif, signal.New(sig, msg, data))
}

// callable runs the full verification pass over one function/method body.
func callable(consts *model.ConstTable, cd *model.CallDesc, bd *model.BcodeDesc, sink signal.Sink, name string) error {
	prog := bd.Program
	if len(prog.Instructions) == 0 {
		return raise(sink, signal.VerifBinaryIsEmpty, fmt.Sprintf("%s: callable body is empty", name), map[string]any{"item": name})
	}

	blocks := buildBlocks(prog)

	paramTypes := make([]TypeDesc, len(cd.Sig.ParamTypeIndices))
	for i, idx := range cd.Sig.ParamTypeIndices {
		td, err := typeConstAt(consts, idx, sink, name)
		if err != nil {
			return err
		}
		paramTypes[i] = td
	}
	returnType, err := typeConstAt(consts, cd.Sig.ReturnTypeIndex, sink, name)
	if err != nil {
		return err
	}

	v := &verifier{
		consts:     consts,
		maxLocals:  cd.MaxLocals,
		paramTypes: paramTypes,
		returnType: returnType,
		sink:       sink,
		name:       name,
		prog:       prog,
		blocks:     blocks,
	}
	return v.run()
}

func typeConstAt(consts *model.ConstTable, idx int, sink signal.Sink, name string) (TypeDesc, error) {
	c, ok := consts.TypeConst(idx)
	if !ok {
		return TypeDesc{}, raise(sink, signal.VerifKtBOutOfBounds, fmt.Sprintf("%s: callsig references non-type-constant index %d", name, idx), map[string]any{"item": name, "index": idx})
	}
	return namedFromConst(c), nil
}

type verifier struct {
	consts     *model.ConstTable
	maxLocals  int
	paramTypes []TypeDesc
	returnType TypeDesc
	sink       signal.Sink
	name       string
	prog       *bcode.Program
	blocks     []block

	entry map[int]regEnv // block index -> entry environment
	done  map[int]bool
}

func (v *verifier) run() error {
	v.entry = make(map[int]regEnv)
	v.done = make(map[int]bool)

	startBlock := blockContaining(v.blocks, 0)
	v.entry[startBlock] = newRegEnv(v.maxLocals)

	queue := []int{startBlock}
	for len(queue) > 0 {
		bi := queue[0]
		queue = queue[1:]
		if v.done[bi] {
			continue
		}
		v.done[bi] = true

		exitEnv, edges, err := v.execBlock(bi)
		if err != nil {
			return err
		}
		for _, e := range edges {
			env := exitEnv.clone()
			if e.extraPop > 0 {
				env.top -= e.extraPop
			}
			if cur, ok := v.entry[e.to]; ok {
				if !cur.equal(env) {
					return raise(v.sink, signal.VerifViolatesRegisterCoherence,
						fmt.Sprintf("%s: block entry environments disagree at instruction %d", v.name, v.blocks[e.to].start),
						map[string]any{"item": v.name, "pc": v.blocks[e.to].start})
				}
			} else {
				v.entry[e.to] = env
				queue = append(queue, e.to)
			}
		}
	}
	return nil
}

type edge struct {
	to       int
	extraPop int
}

// execBlock symbolically executes one block starting from its recorded
// entry environment and returns the environment just before branching, plus
// the successor edges to propagate it along.
func (v *verifier) execBlock(bi int) (regEnv, []edge, error) {
	b := v.blocks[bi]
	env := v.entry[bi].clone()

	var last bcode.Instruction
	for pc := b.start; pc < b.end; pc++ {
		ins := v.prog.Instructions[pc]
		last = ins
		// jump/jump_true/jump_false are only ever the final instruction of a
		// block (buildBlocks guarantees this) and are handled below, after
		// this loop, since their typing rules are entangled with CFG edges.
		switch ins.Op {
		case bcode.OpJump, bcode.OpJumpTrue, bcode.OpJumpFalse:
			continue
		}
		if err := v.execOp(pc, ins, &env); err != nil {
			return regEnv{}, nil, err
		}
	}

	if !isTerminal(last.Op) {
		if b.end >= len(v.prog.Instructions) {
			return regEnv{}, nil, raise(v.sink, signal.VerifFallthroughPutsPCOutOfBounds,
				fmt.Sprintf("%s: control falls off the end of the instruction array", v.name),
				map[string]any{"item": v.name})
		}
		nb := blockContaining(v.blocks, b.end)
		return env, []edge{{to: nb}}, nil
	}

	switch last.Op {
	case bcode.OpRet:
		return env, nil, nil
	case bcode.OpJump:
		pc := b.end - 1
		target := branchTarget(pc, last.Delta)
		if !v.prog.InBounds(target) {
			return regEnv{}, nil, raise(v.sink, signal.VerifPutsPCOutOfBounds,
				fmt.Sprintf("%s: jump at %d targets out-of-bounds instruction %d", v.name, pc, target),
				map[string]any{"item": v.name, "pc": pc, "target": target})
		}
		nb := blockContaining(v.blocks, target)
		return env, []edge{{to: nb}}, nil
	case bcode.OpJumpTrue, bcode.OpJumpFalse:
		pc := b.end - 1
		if env.top == 0 {
			return regEnv{}, nil, raise(v.sink, signal.VerifRTopDoesNotExist,
				fmt.Sprintf("%s: %s at %d with empty stack", v.name, last.Op, pc),
				map[string]any{"item": v.name, "pc": pc})
		}
		if !env.types[env.top-1].IsBool() {
			return regEnv{}, nil, raise(v.sink, signal.VerifRTopWrongType,
				fmt.Sprintf("%s: %s at %d requires Bool on top of stack", v.name, last.Op, pc),
				map[string]any{"item": v.name, "pc": pc})
		}
		env.top--

		if b.end >= len(v.prog.Instructions) {
			return regEnv{}, nil, raise(v.sink, signal.VerifFallthroughPutsPCOutOfBounds,
				fmt.Sprintf("%s: %s at %d has no fallthrough instruction", v.name, last.Op, pc),
				map[string]any{"item": v.name, "pc": pc})
		}
		fallthroughBlock := blockContaining(v.blocks, b.end)

		target := branchTarget(pc, last.Delta)
		if !v.prog.InBounds(target) {
			return regEnv{}, nil, raise(v.sink, signal.VerifPutsPCOutOfBounds,
				fmt.Sprintf("%s: %s at %d targets out-of-bounds instruction %d", v.name, last.Op, pc, target),
				map[string]any{"item": v.name, "pc": pc, "target": target})
		}
		if last.PopA > env.top {
			return regEnv{}, nil, raise(v.sink, signal.VerifArgRsOutOfBounds,
				fmt.Sprintf("%s: %s at %d pops more than the live stack holds", v.name, last.Op, pc),
				map[string]any{"item": v.name, "pc": pc})
		}
		targetBlock := blockContaining(v.blocks, target)
		return env, []edge{{to: fallthroughBlock}, {to: targetBlock, extraPop: last.PopA}}, nil
	}
	return env, nil, nil
}
