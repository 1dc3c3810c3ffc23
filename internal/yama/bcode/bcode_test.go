package bcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpStringCoversEveryOpcode(t *testing.T) {
	ops := []Op{
		OpNoop, OpPop, OpPutNone, OpPutConst, OpPutTypeConst, OpPutArg,
		OpCopy, OpDefaultInit, OpConv, OpCall, OpCallNR, OpRet,
		OpJump, OpJumpTrue, OpJumpFalse,
	}
	seen := make(map[string]bool)
	for _, op := range ops {
		s := op.String()
		assert.NotEqual(t, "?", s, "opcode %d has no String() case", op)
		assert.False(t, seen[s], "duplicate String() text %q", s)
		seen[s] = true
	}
}

func TestProgramInBounds(t *testing.T) {
	p := &Program{Instructions: []Instruction{{Op: OpNoop}, {Op: OpRet}}}
	assert.True(t, p.InBounds(0))
	assert.True(t, p.InBounds(1))
	assert.False(t, p.InBounds(2))
	assert.False(t, p.InBounds(-1))
}

func TestNewTopIsNegative(t *testing.T) {
	assert.Less(t, NewTop, 0)
}
