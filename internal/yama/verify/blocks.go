package verify

import (
	"sort"

	"github.com/tiriscoded/yama/internal/yama/bcode"
)

// block is a maximal straight-line run of instructions with a single entry
// (spec.md GLOSSARY "Basic block").
type block struct {
	start, end int // [start, end) into prog.Instructions
}

func isTerminal(op bcode.Op) bool {
	switch op {
	case bcode.OpRet, bcode.OpJump, bcode.OpJumpTrue, bcode.OpJumpFalse:
		return true
	default:
		return false
	}
}

// branchTarget returns the absolute instruction index a branch at pc with
// delta lands on.
func branchTarget(pc, delta int) int {
	return pc + 1 + delta
}

// buildBlocks partitions the program into basic blocks, splitting at every
// in-bounds branch target in addition to every instruction right after a
// terminal opcode. Out-of-bounds targets are intentionally not added as
// boundaries here — they are flagged as puts_PC_out_of_bounds at symbolic-
// execution time, and only for blocks actually reached (§4.5 "Blocks
// reachable by any control path are checked; unreachable blocks are
// tolerated").
func buildBlocks(prog *bcode.Program) []block {
	n := len(prog.Instructions)
	isStart := make(map[int]bool, n)
	isStart[0] = true

	for pc, ins := range prog.Instructions {
		switch ins.Op {
		case bcode.OpJump, bcode.OpJumpTrue, bcode.OpJumpFalse:
			if t := branchTarget(pc, ins.Delta); prog.InBounds(t) {
				isStart[t] = true
			}
		}
		if isTerminal(ins.Op) && pc+1 < n {
			isStart[pc+1] = true
		}
	}

	starts := make([]int, 0, len(isStart))
	for s := range isStart {
		starts = append(starts, s)
	}
	sort.Ints(starts)

	blocks := make([]block, 0, len(starts))
	for i, s := range starts {
		e := n
		if i+1 < len(starts) {
			e = starts[i+1]
		}
		blocks = append(blocks, block{start: s, end: e})
	}
	return blocks
}

// blockContaining returns the index of the block whose range contains pc.
func blockContaining(blocks []block, pc int) int {
	for i, b := range blocks {
		if pc >= b.start && pc < b.end {
			return i
		}
	}
	return -1
}
