// parser.go provides a recursive descent parser that builds a vir.Module from the item stream of the lexer. The
// grammar is the one produced by vir.Module.String:
//
//	module   := function*
//	function := "func" GLOBAL "(" [param {"," param}] ")" ["->" type] "{" block* "}"
//	param    := LOCAL ":" type
//	block    := WORD ":" instruction*
//	type     := WORD | "<" NUMBER "x" WORD ">" | "varying" WORD
//	operand  := LOCAL | type literal
//
// A varying type is a vector of the program width of the target given with WithTarget, "varying mask" is its mask
// type. Mask typed literals may be written as "on" or "off".
//
// Blocks are declared before the body of a function is parsed, so branches and phis may name any block. Phi
// operands may be forward references; every other operand must be defined earlier in the text.

package frontend

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"lanec/src/diag"
	"lanec/src/ir/vir"
	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// parser holds the state of one Parse call.
type parser struct {
	items []item        // Items of the source, ending in itemEOF.
	pos   int           // Index of the next item.
	last  item          // Last consumed item, used to position build errors.
	ctx   *vir.Context  // Context owning the constants of the module.
	m     *vir.Module   // Module being built.
	f     *vir.Function // Function being built.
	bld   *vir.Builder  // Builder positioned at the end of the current block.
	phis  []pendingPhi  // Phis of f whose incoming edges are resolved when f is complete.
	tt    *vir.Types    // Type table of the target, <nil> if varying types are not allowed.

	target *vir.Target // Target set by WithTarget.
}

// Option configures Parse.
type Option func(*parser)

// pendingEdge is an incoming edge of a phi whose value may not be defined yet.
type pendingEdge struct {
	name  item      // Local naming the value, if lit is <nil>.
	lit   vir.Value // Literal value of the edge.
	block *vir.Block
}

// pendingPhi is a phi awaiting its incoming edges.
type pendingPhi struct {
	phi   *vir.PhiInstruction
	edges []pendingEdge
}

// ---------------------
// ----- Functions -----
// ---------------------

// WithTarget resolves varying types and mask literals for target t.
func WithTarget(t vir.Target) Option {
	return func(p *parser) {
		p.target = &t
	}
}

// Parse parses the textual VIR source src into a new module called name. The module is not validated, see
// vir.Validate. Errors are *diag.Error values carrying the source position.
func Parse(name, src string, opts ...Option) (m *vir.Module, err error) {
	items := lex(src)
	if last := items[len(items)-1]; last.typ == itemError {
		return nil, diag.Syntax(last.line, last.pos, "%s", last.val)
	}

	ctx := vir.NewContext()
	p := &parser{
		items: items,
		ctx:   ctx,
		m:     ctx.NewModule(name),
		bld:   vir.NewBuilder(),
	}
	for _, e1 := range opts {
		e1(p)
	}
	if p.target != nil {
		if err := p.target.Validate(); err != nil {
			return nil, diag.New(diag.PhaseConfig, diag.KindInvalidInput).Cause(err).Build()
		}
		p.tt = vir.NewTypes(ctx, *p.target)
	}
	defer p.recover(&err)
	for p.peek(0).typ != itemEOF {
		p.parseFunction()
	}
	return p.m, nil
}

// Tokens returns a table of the items scanned from src, one per line.
func Tokens(src string) (string, error) {
	sb := strings.Builder{}
	tw := tabwriter.NewWriter(&sb, 10, 20, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Value\tType\tPosition\n")
	for _, t := range lex(src) {
		switch t.typ {
		case itemEOF:
			err := tw.Flush()
			return sb.String(), err
		case itemError:
			_ = tw.Flush()
			return sb.String(), diag.Syntax(t.line, t.pos, "%s", t.val)
		default:
			if len(t.val) > 20 {
				_, _ = fmt.Fprintf(tw, "%.17q...\t%s\tline: %d:%d\n", t.val, t.typ, t.line, t.pos)
			} else {
				_, _ = fmt.Fprintf(tw, "%q\t%s\tline: %d:%d\n", t.val, t.typ, t.line, t.pos)
			}
		}
	}
	return sb.String(), tw.Flush()
}

// recover turns a *diag.Error panic into a parse error stored in err. Errors raised while building the IR get the
// position of the last consumed item.
func (p *parser) recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	e, ok := r.(*diag.Error)
	if !ok {
		panic(r)
	}
	if e.Phase != diag.PhaseParse {
		e = diag.New(diag.PhaseParse, e.Kind).
			At(p.last.line, p.last.pos).
			Value(e.Value).
			Detail("%s", e.Detail).
			Cause(e).
			Build()
	}
	*err = e
}

// errorf panics with a syntax error at the position of item it.
func (p *parser) errorf(it item, format string, args ...interface{}) {
	panic(diag.Syntax(it.line, it.pos, format, args...))
}

// peek returns the item n positions ahead without consuming it.
func (p *parser) peek(n int) item {
	if p.pos+n >= len(p.items) {
		return p.items[len(p.items)-1]
	}
	return p.items[p.pos+n]
}

// next consumes and returns the next item.
func (p *parser) next() item {
	it := p.peek(0)
	if p.pos < len(p.items)-1 {
		p.pos++
	}
	p.last = it
	return it
}

// expect consumes the next item, which must be of type typ.
func (p *parser) expect(typ itemType) item {
	it := p.next()
	if it.typ != typ {
		p.errorf(it, "expected %s, got %s", typ, describe(it))
	}
	return it
}

// accept consumes the next item if it is of type typ.
func (p *parser) accept(typ itemType) bool {
	if p.peek(0).typ == typ {
		p.next()
		return true
	}
	return false
}

// describe returns the item as it should appear in error messages.
func describe(it item) string {
	if it.typ == itemEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", it.val)
}

// ---------------------------------
// ----- Functions and blocks -----
// ---------------------------------

// parseFunction parses one function definition.
func (p *parser) parseFunction() {
	p.expect(itemFunc)
	name := p.expect(itemGlobal)

	type param struct {
		name item
		typ  types.Type
	}
	params := make([]param, 0, 4)
	p.expect('(')
	for p.peek(0).typ != ')' {
		if len(params) > 0 {
			p.expect(',')
		}
		n := p.expect(itemLocal)
		p.expect(':')
		params = append(params, param{name: n, typ: p.parseType()})
	}
	p.expect(')')
	ret := types.VoidType
	if p.accept(itemArrow) {
		ret = p.parseType()
	}

	f, err := p.m.CreateFunction(name.val, ret)
	if err != nil {
		p.errorf(name, "%s", err)
	}
	p.f = f
	p.phis = p.phis[:0]
	for _, e1 := range params {
		if f.Value(e1.name.val) != nil {
			p.errorf(e1.name, "parameter %%%s redefined", e1.name.val)
		}
		p.last = e1.name
		f.CreateParam(e1.name.val, e1.typ)
	}

	p.expect('{')
	p.declareBlocks()
	for p.peek(0).typ != '}' {
		label := p.expect(itemWord)
		p.expect(':')
		p.bld.SetInsertPointAtEnd(f.Block(label.val))
		for !p.atLabel() && p.peek(0).typ != '}' {
			if p.peek(0).typ == itemEOF {
				p.errorf(p.peek(0), "unexpected end of input in function @%s", f.Name())
			}
			p.parseInstruction()
		}
	}
	p.expect('}')
	p.resolvePhis()
}

// declareBlocks creates a block for every label of the function body that starts at the next item.
func (p *parser) declareBlocks() {
	for i1 := 0; ; i1++ {
		it := p.peek(i1)
		if it.typ == '}' || it.typ == itemEOF {
			return
		}
		if it.typ != itemWord || p.peek(i1+1).typ != ':' {
			continue
		}
		if p.f.Block(it.val) != nil {
			p.errorf(it, "label %s redefined", it.val)
		}
		p.f.CreateBlock(it.val)
	}
}

// atLabel returns true if the next items start a new block.
func (p *parser) atLabel() bool {
	return p.peek(0).typ == itemWord && p.peek(1).typ == ':'
}

// parseLabel parses a reference to a block.
func (p *parser) parseLabel() *vir.Block {
	it := p.expect(itemWord)
	b := p.f.Block(it.val)
	if b == nil {
		p.errorf(it, "undefined label %s", it.val)
	}
	return b
}

// resolvePhis adds the incoming edges of all phis of the current function.
func (p *parser) resolvePhis() {
	for _, e1 := range p.phis {
		for _, e2 := range e1.edges {
			v := e2.lit
			if v == nil {
				p.last = e2.name
				if v = p.f.Value(e2.name.val); v == nil {
					p.errorf(e2.name, "undefined value %%%s", e2.name.val)
				}
			}
			e1.phi.AddIncoming(v, e2.block)
		}
	}
}

// ------------------------
// ----- Instructions -----
// ------------------------

// parseInstruction parses one instruction and appends it to the current block.
func (p *parser) parseInstruction() {
	it := p.peek(0)
	switch it.typ {
	case itemLocal:
		p.next()
		if p.f.Value(it.val) != nil {
			p.errorf(it, "value %%%s redefined", it.val)
		}
		p.expect('=')
		p.parseDefinition(it)
	case itemCall:
		p.next()
		p.parseCall("")
	case itemBr:
		p.next()
		p.parseBranch()
	case itemRet:
		p.next()
		if p.f.ReturnType().IsVoid() {
			p.bld.CreateReturn(nil)
		} else {
			p.bld.CreateReturn(p.parseOperand())
		}
	default:
		p.errorf(it, "expected instruction, got %s", describe(it))
	}
}

// parseDefinition parses the right hand side of an instruction defining the local name.
func (p *parser) parseDefinition(name item) {
	op := p.next()
	switch op.typ {
	case itemWord:
		if bop, ok := types.ParseBinaryOperation(op.val); ok {
			lhs := p.parseOperand()
			p.expect(',')
			rhs := p.parseOperand()
			p.bld.CreateBinary(bop, lhs, rhs, name.val)
			return
		}
		if cop, ok := types.ParseCastOperation(op.val); ok {
			v := p.parseOperand()
			p.expect(itemTo)
			p.bld.CreateCast(cop, v, p.parseType(), name.val)
			return
		}
		p.errorf(op, "unknown opcode %s", op.val)
	case itemPhi:
		p.parsePhi(name)
	case itemInsert:
		vec := p.parseOperand()
		p.expect(',')
		s := p.parseOperand()
		p.expect(',')
		p.bld.CreateInsert(vec, s, p.parseInt(), name.val)
	case itemExtract:
		vec := p.parseOperand()
		p.expect(',')
		p.bld.CreateExtract(vec, p.parseInt(), name.val)
	case itemShuffle:
		v1 := p.parseOperand()
		p.expect(',')
		v2 := p.parseOperand()
		p.expect(',')
		p.expect('[')
		mask := make([]int, 0, 16)
		for p.peek(0).typ != ']' {
			if len(mask) > 0 {
				p.expect(',')
			}
			mask = append(mask, p.parseInt())
		}
		p.expect(']')
		p.bld.CreateShuffle(v1, v2, mask, name.val)
	case itemCall:
		p.parseCall(name.val)
	default:
		p.errorf(op, "expected opcode, got %s", describe(op))
	}
}

// parsePhi parses a phi type and its incoming edges. The edges are added once the function is complete.
func (p *parser) parsePhi(name item) {
	typ := p.parseType()
	pp := pendingPhi{phi: p.bld.CreatePhi(typ, name.val)}
	if p.peek(0).typ == '[' {
		for {
			p.expect('[')
			e := pendingEdge{}
			if p.peek(0).typ == itemLocal {
				e.name = p.next()
			} else {
				e.lit = p.parseOperand()
			}
			p.expect(',')
			e.block = p.parseLabel()
			p.expect(']')
			pp.edges = append(pp.edges, e)
			if !p.accept(',') {
				break
			}
		}
	}
	p.phis = append(p.phis, pp)
}

// parseCall parses the type, callee and arguments of a call.
func (p *parser) parseCall(name string) {
	typ := p.parseType()
	callee := p.expect(itemGlobal)
	p.expect('(')
	args := make([]vir.Value, 0, 4)
	for p.peek(0).typ != ')' {
		if len(args) > 0 {
			p.expect(',')
		}
		args = append(args, p.parseOperand())
	}
	p.expect(')')
	p.bld.CreateOpaque(callee.val, typ, args, name)
}

// parseBranch parses an unconditional or conditional branch.
func (p *parser) parseBranch() {
	it := p.peek(0)
	if it.typ == itemLocal || (it.typ == itemWord && p.peek(1).typ == itemNumber) {
		cond := p.parseOperand()
		p.expect(',')
		thn := p.parseLabel()
		p.expect(',')
		els := p.parseLabel()
		p.bld.CreateCondBranch(cond, thn, els)
		return
	}
	p.bld.CreateBranch(p.parseLabel())
}

// ------------------------------
// ----- Types and operands -----
// ------------------------------

// parseType parses a scalar or vector type.
func (p *parser) parseType() types.Type {
	if p.peek(0).typ == itemVarying {
		return p.parseVarying()
	}
	if p.accept('<') {
		n := p.expect(itemNumber)
		lanes, err := strconv.Atoi(n.val)
		if err != nil || lanes < 1 || lanes > types.MaxLanes {
			p.errorf(n, "vector lane count must be in [1, %d], got %s", types.MaxLanes, n.val)
		}
		if x := p.expect(itemWord); x.val != "x" {
			p.errorf(x, "expected \"x\", got %q", x.val)
		}
		k := p.parseKind()
		if k == types.Void {
			p.errorf(p.last, "vector of void")
		}
		p.expect('>')
		return types.Vector(k, lanes)
	}
	return types.Scalar(p.parseKind())
}

// parseVarying parses a program width vector type.
func (p *parser) parseVarying() types.Type {
	it := p.expect(itemVarying)
	if p.tt == nil {
		p.errorf(it, "varying type without a target vector width")
	}
	if p.peek(0).typ == itemWord && p.peek(0).val == "mask" {
		p.next()
		return p.tt.Mask
	}
	k := p.parseKind()
	if k == types.Void {
		p.errorf(p.last, "vector of void")
	}
	return p.tt.VectorOf(k)
}

// parseKind parses an element type name.
func (p *parser) parseKind() types.Kind {
	it := p.expect(itemWord)
	k, ok := types.ParseKind(it.val)
	if !ok {
		p.errorf(it, "unknown type %s", it.val)
	}
	return k
}

// parseInt parses a decimal integer.
func (p *parser) parseInt() int {
	it := p.expect(itemNumber)
	v, err := strconv.Atoi(it.val)
	if err != nil {
		p.errorf(it, "expected integer, got %s", it.val)
	}
	return v
}

// parseOperand parses a reference to a defined local or a typed literal.
func (p *parser) parseOperand() vir.Value {
	if p.peek(0).typ == itemLocal {
		it := p.next()
		v := p.f.Value(it.val)
		if v == nil {
			p.errorf(it, "undefined value %%%s", it.val)
		}
		return v
	}
	return p.parseLiteral(p.parseType())
}

// parseLiteral parses a literal of type typ.
func (p *parser) parseLiteral(typ types.Type) vir.Value {
	if typ.IsVoid() {
		p.errorf(p.last, "literal of type void")
	}
	if p.accept(itemUndef) {
		return p.ctx.Undef(typ)
	}
	if !typ.IsVector() {
		return p.parseScalar(typ)
	}

	switch it := p.next(); it.typ {
	case itemZero:
		return p.ctx.ConstZero(typ)
	case itemSplat:
		return p.ctx.ConstSplat(p.parseScalar(typ.Elem()), typ.Lanes)
	case itemWord:
		if p.tt != nil && typ == p.tt.Mask {
			switch it.val {
			case "on":
				return p.tt.MaskAllOn
			case "off":
				return p.tt.MaskAllOff
			}
		}
		p.errorf(it, "expected %s literal, got %s", typ, describe(it))
	case '<':
		elems := make([]*vir.Constant, 0, typ.Lanes)
		for p.peek(0).typ != '>' {
			if len(elems) > 0 {
				p.expect(',')
			}
			if p.accept(itemUndef) {
				elems = append(elems, nil)
			} else {
				elems = append(elems, p.parseScalar(typ.Elem()))
			}
		}
		end := p.expect('>')
		if len(elems) != typ.Lanes {
			p.errorf(end, "%s literal with %d lanes", typ, len(elems))
		}
		return p.ctx.ConstVector(elems)
	default:
		p.errorf(it, "expected %s literal, got %s", typ, describe(it))
	}
	return nil
}

// parseScalar parses a scalar constant of type typ.
func (p *parser) parseScalar(typ types.Type) *vir.Constant {
	it := p.next()
	if it.typ != itemNumber && it.typ != itemWord {
		p.errorf(it, "expected %s literal, got %s", typ, describe(it))
	}
	if typ.IsFloat() {
		f, err := strconv.ParseFloat(it.val, 64)
		if err != nil {
			p.errorf(it, "bad %s literal %s", typ, it.val)
		}
		return p.ctx.ConstFloat(typ, f)
	}
	v, err := strconv.ParseInt(it.val, 10, 64)
	if err != nil {
		p.errorf(it, "bad %s literal %s", typ, it.val)
	}
	return p.ctx.ConstInt(typ, v)
}
