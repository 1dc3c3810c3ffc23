package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tiriscoded/yama/internal/yama/bcode"
	"github.com/tiriscoded/yama/internal/yama/model"
)

// parser turns a token stream into a *model.Module. Grammar (one item per
// block, blocks terminated by a bare "end" line):
//
//	prim <Name> <primkind>
//	struct <Name>
//	func <Name> maxlocals <N> params <i,i,...> ret <i>
//	method <Owner> <Member> maxlocals <N> params <i,i,...> ret <i>
//	  const <kind> <payload...>      (repeatable, builds this item's consts)
//	  code                            (callables only, opens the instruction block)
//	    <op> <operands...> [reinit]
//	  end
//
// This is a purpose-built format for the core's own tests/CLI, not a
// reproduction of any source-language syntax (spec.md §1 places the concrete
// grammar out of core scope) — it exists only to drive the Compiler
// collaborator seam (spec.md §6) without a real front end.
type parser struct {
	lines  [][]token
	lineNo int // index into lines
	errs   []string
}

func newParser(src string) *parser {
	sc := newScanner(string(normalize([]byte(src))))
	var lines [][]token
	var cur []token
	for {
		t := sc.next()
		if t.kind == tokEOF {
			if len(cur) > 0 {
				lines = append(lines, cur)
			}
			break
		}
		if t.kind == tokNewline {
			if len(cur) > 0 {
				lines = append(lines, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	return &parser{lines: lines}
}

func (p *parser) errf(format string, args ...any) {
	p.errs = append(p.errs, fmt.Sprintf(format, args...))
}

// Parse builds the module. Parse errors are collected, not fatal-per-line,
// mirroring the teacher parser's "collect errors, report all at once" habit
// (internal/parser's p.Errors()).
func (p *parser) Parse() (*model.Module, error) {
	m := model.New()
	for p.lineNo < len(p.lines) {
		line := p.lines[p.lineNo]
		head := word(line, 0)
		switch head {
		case "prim":
			p.parsePrim(m, line)
		case "struct":
			p.parseStruct(m, line)
		case "func":
			p.parseCallable(m, line, false)
		case "method":
			p.parseCallable(m, line, true)
		default:
			p.errf("line %d: unexpected top-level keyword %q", line[0].line, head)
			p.lineNo++
		}
	}
	if len(p.errs) > 0 {
		return nil, fmt.Errorf("asm: %s", strings.Join(p.errs, "; "))
	}
	m.Finalize()
	return m, nil
}

func word(line []token, i int) string {
	if i < 0 || i >= len(line) {
		return ""
	}
	return line[i].text
}

// collectConsts consumes "const <kind> <payload...>" lines starting at
// p.lineNo, stopping at the first line that isn't a const declaration.
func (p *parser) collectConsts() *model.ConstTable {
	ct := model.NewConstTable()
	for p.lineNo < len(p.lines) {
		line := p.lines[p.lineNo]
		if word(line, 0) != "const" {
			break
		}
		p.lineNo++
		kind := word(line, 1)
		switch kind {
		case "int":
			v, _ := strconv.ParseInt(word(line, 2), 10, 64)
			ct.Append(model.Int(v))
		case "uint":
			v, _ := strconv.ParseUint(word(line, 2), 10, 64)
			ct.Append(model.UInt(v))
		case "float":
			v, _ := strconv.ParseFloat(word(line, 2), 64)
			ct.Append(model.Float(v))
		case "bool":
			ct.Append(model.Bool(word(line, 2) == "true"))
		case "char":
			r := []rune(word(line, 2))
			var c rune
			if len(r) > 0 {
				c = r[0]
			}
			ct.Append(model.Char(c))
		case "primitive_type":
			ct.Append(model.PrimitiveType(word(line, 2)))
		case "struct_type":
			ct.Append(model.StructType(word(line, 2)))
		case "function_type", "method_type":
			fqName := word(line, 2)
			sig := parseInlineSig(line, 3)
			if kind == "function_type" {
				ct.Append(model.FunctionType(fqName, sig))
			} else {
				ct.Append(model.MethodType(fqName, sig))
			}
		default:
			p.errf("line %d: unknown const kind %q", line[0].line, kind)
		}
	}
	return ct
}

// sigKeyword reports whether s is one of the keywords that can follow a
// "params" list, i.e. where the list of space-separated integer operands
// ends.
func sigKeyword(s string) bool {
	switch s {
	case "params", "ret", "maxlocals", "const", "code", "end":
		return true
	default:
		return false
	}
}

// scanInts reads consecutive integer tokens starting at i, stopping at the
// next keyword or end of line, and returns the parsed list plus the index
// just past it.
func scanInts(line []token, i int) ([]int, int) {
	var out []int
	for i < len(line) && !sigKeyword(word(line, i)) {
		if n, err := strconv.Atoi(word(line, i)); err == nil {
			out = append(out, n)
		}
		i++
	}
	return out, i
}

// parseInlineSig reads "params <i> <i> ... ret <i>" starting at index i in
// line (used for function_type/method_type const payloads, which carry a
// callsig inline rather than referencing separate item fields).
func parseInlineSig(line []token, i int) model.CallSig {
	var sig model.CallSig
	for i < len(line) {
		switch word(line, i) {
		case "params":
			sig.ParamTypeIndices, i = scanInts(line, i+1)
		case "ret":
			sig.ReturnTypeIndex, _ = strconv.Atoi(word(line, i+1))
			i += 2
		default:
			i++
		}
	}
	return sig
}

func (p *parser) parsePrim(m *model.Module, line []token) {
	p.lineNo++
	name := word(line, 1)
	primKind := parsePrimKind(word(line, 2))
	consts := p.collectConsts()
	if _, ok := m.AddPrimitive(name, consts, primKind); !ok {
		p.errf("line %d: duplicate item name %q", line[0].line, name)
	}
	p.expectEnd(name)
}

func (p *parser) parseStruct(m *model.Module, line []token) {
	p.lineNo++
	name := word(line, 1)
	consts := p.collectConsts()
	if _, ok := m.AddStruct(name, consts); !ok {
		p.errf("line %d: duplicate item name %q", line[0].line, name)
	}
	p.expectEnd(name)
}

// parseCallable handles both "func <Name> ..." and "method <Owner> <Member> ...".
func (p *parser) parseCallable(m *model.Module, line []token, isMethod bool) {
	p.lineNo++
	var name, owner, member string
	idx := 1
	if isMethod {
		owner = word(line, 1)
		member = word(line, 2)
		name = owner + "::" + member
		idx = 3
	} else {
		name = word(line, 1)
		idx = 2
	}

	var maxLocals int
	var sig model.CallSig
	for idx < len(line) {
		switch word(line, idx) {
		case "maxlocals":
			maxLocals, _ = strconv.Atoi(word(line, idx+1))
			idx += 2
		case "params":
			sig.ParamTypeIndices, idx = scanInts(line, idx+1)
		case "ret":
			sig.ReturnTypeIndex, _ = strconv.Atoi(word(line, idx+1))
			idx += 2
		default:
			idx++
		}
	}

	consts := p.collectConsts()

	var id model.ItemID
	var ok bool
	if isMethod {
		id, ok = m.AddMethod(owner, member, consts, sig, maxLocals, model.BcodeToken)
	} else {
		id, ok = m.AddFunction(name, consts, sig, maxLocals, model.BcodeToken)
	}
	if !ok {
		p.errf("line %d: duplicate item name %q", line[0].line, name)
		p.skipToEnd()
		return
	}

	if p.lineNo < len(p.lines) && word(p.lines[p.lineNo], 0) == "code" {
		p.lineNo++
		prog := p.parseCode()
		m.BindBcode(m.MustItem(id).Name, prog)
	}
	p.expectEnd(name)
}

func (p *parser) parseCode() *bcode.Program {
	prog := &bcode.Program{}
	for p.lineNo < len(p.lines) {
		line := p.lines[p.lineNo]
		if word(line, 0) == "end" {
			break
		}
		p.lineNo++
		ins, err := parseInstruction(line)
		if err != nil {
			p.errf("line %d: %v", line[0].line, err)
			continue
		}
		prog.Instructions = append(prog.Instructions, ins)
	}
	return prog
}

func parseReg(s string) int {
	if s == "new" {
		return bcode.NewTop
	}
	n, _ := strconv.Atoi(s)
	return n
}

func hasReinit(line []token) bool {
	for _, t := range line {
		if t.text == "reinit" {
			return true
		}
	}
	return false
}

func parseInstruction(line []token) (bcode.Instruction, error) {
	op := word(line, 0)
	reinit := hasReinit(line)
	switch op {
	case "noop":
		return bcode.Instruction{Op: bcode.OpNoop}, nil
	case "pop":
		return bcode.Instruction{Op: bcode.OpPop, ArgsA: atoi(word(line, 1))}, nil
	case "put_none":
		return bcode.Instruction{Op: bcode.OpPutNone, RA: parseReg(word(line, 1)), Reinit: reinit}, nil
	case "put_const":
		return bcode.Instruction{Op: bcode.OpPutConst, RA: parseReg(word(line, 1)), KoB: atoi(word(line, 3)), Reinit: reinit}, nil
	case "put_type_const":
		return bcode.Instruction{Op: bcode.OpPutTypeConst, RA: parseReg(word(line, 1)), KtB: atoi(word(line, 3)), Reinit: reinit}, nil
	case "put_arg":
		return bcode.Instruction{Op: bcode.OpPutArg, RA: parseReg(word(line, 1)), ArgB: atoi(word(line, 3)), Reinit: reinit}, nil
	case "copy":
		return bcode.Instruction{Op: bcode.OpCopy, RA: parseReg(word(line, 1)), RB: parseReg(word(line, 3)), Reinit: reinit}, nil
	case "default_init":
		return bcode.Instruction{Op: bcode.OpDefaultInit, RA: parseReg(word(line, 1)), KtB: atoi(word(line, 3)), Reinit: reinit}, nil
	case "conv":
		return bcode.Instruction{Op: bcode.OpConv, RA: parseReg(word(line, 1)), RB: parseReg(word(line, 3)), KtC: atoi(word(line, 5)), Reinit: reinit}, nil
	case "call":
		return bcode.Instruction{Op: bcode.OpCall, ArgsA: atoi(word(line, 1)), RB: parseReg(word(line, 3)), Reinit: reinit}, nil
	case "call_nr":
		return bcode.Instruction{Op: bcode.OpCallNR, ArgsA: atoi(word(line, 1))}, nil
	case "ret":
		return bcode.Instruction{Op: bcode.OpRet, RA: parseReg(word(line, 1))}, nil
	case "jump":
		return bcode.Instruction{Op: bcode.OpJump, Delta: atoi(word(line, 1))}, nil
	case "jump_true":
		return bcode.Instruction{Op: bcode.OpJumpTrue, PopA: atoi(word(line, 1)), Delta: atoi(word(line, 3))}, nil
	case "jump_false":
		return bcode.Instruction{Op: bcode.OpJumpFalse, PopA: atoi(word(line, 1)), Delta: atoi(word(line, 3))}, nil
	default:
		return bcode.Instruction{}, fmt.Errorf("unrecognized opcode %q", op)
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func parsePrimKind(s string) model.PrimKind {
	switch s {
	case "none":
		return model.PrimNone
	case "int":
		return model.PrimInt
	case "uint":
		return model.PrimUInt
	case "float":
		return model.PrimFloat
	case "bool":
		return model.PrimBool
	case "char":
		return model.PrimChar
	case "type":
		return model.PrimType
	default:
		return model.PrimNone
	}
}

func (p *parser) expectEnd(name string) {
	if p.lineNo < len(p.lines) && word(p.lines[p.lineNo], 0) == "end" {
		p.lineNo++
		return
	}
	p.errf("item %q: expected \"end\"", name)
}

func (p *parser) skipToEnd() {
	for p.lineNo < len(p.lines) && word(p.lines[p.lineNo], 0) != "end" {
		p.lineNo++
	}
	if p.lineNo < len(p.lines) {
		p.lineNo++
	}
}
