package vir

import (
	"fmt"

	"lanec/src/diag"
	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Builder creates instructions at an insertion point. The insertion point is either the end of a basic block or the
// position right before an existing instruction.
type Builder struct {
	b      *Block      // Block new instructions are placed in.
	before Instruction // Instruction new instructions are placed before, <nil> to append to b.
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewBuilder returns a Builder without insertion point.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetInsertPointAtEnd positions the Builder after the last instruction of block b.
func (bld *Builder) SetInsertPointAtEnd(b *Block) {
	bld.b = b
	bld.before = nil
}

// SetInsertPointBefore positions the Builder right before inst.
func (bld *Builder) SetInsertPointBefore(inst Instruction) {
	if inst.Block() == nil || inst.Block().index(inst) < 0 {
		panic(diag.New(diag.PhaseBuild, diag.KindNotFound).
			Value(inst.Ref()).Detail("instruction is not placed in a basic block").Build())
	}
	bld.b = inst.Block()
	bld.before = inst
}

// SetInsertPointAtStart positions the Builder before the first instruction of block b, or at its end if b is empty.
func (bld *Builder) SetInsertPointAtStart(b *Block) {
	bld.b = b
	bld.before = nil
	if len(b.instructions) > 0 {
		bld.before = b.instructions[0]
	}
}

// CreateBinary creates a lane by lane binary operation. Both operands must have the same type, and floating point
// opcodes require floating point operands.
func (bld *Builder) CreateBinary(op types.BinaryOperation, lhs, rhs Value, name string) *BinaryInstruction {
	bld.checkOperands(lhs, rhs)
	if lhs.Type() != rhs.Type() {
		panic(diag.TypeMismatch(diag.PhaseBuild, rhs.Ref(), lhs.Type(), rhs.Type()))
	}
	typ := lhs.Type()
	if typ.IsVoid() || op.IsFloat() != typ.IsFloat() {
		panic(diag.New(diag.PhaseBuild, diag.KindTypeMismatch).
			Value(lhs.Ref()).Detail("operation %s cannot be applied to %s", op, typ).Build())
	}
	inst := &BinaryInstruction{
		op:  op,
		lhs: lhs,
		rhs: rhs,
	}
	inst.typ = typ
	bld.insert(inst, &inst.instruction, name)
	return inst
}

// CreateCast creates a conversion of v to type to. The lane count of v and to must match.
func (bld *Builder) CreateCast(op types.CastOperation, v Value, to types.Type, name string) *CastInstruction {
	bld.checkOperands(v)
	from := v.Type()
	if from.Lanes != to.Lanes || !castValid(op, from.Kind, to.Kind) {
		panic(diag.New(diag.PhaseBuild, diag.KindTypeMismatch).
			Value(v.Ref()).Detail("cannot %s %s to %s", op, from, to).Build())
	}
	inst := &CastInstruction{
		op:  op,
		src: v,
	}
	inst.typ = to
	bld.insert(inst, &inst.instruction, name)
	return inst
}

// CreatePhi creates a phi of type typ without incoming edges. Phis must lead their block: the insertion point must
// only be preceded by other phis.
func (bld *Builder) CreatePhi(typ types.Type, name string) *PhiInstruction {
	if typ.IsVoid() {
		panic(diag.New(diag.PhaseBuild, diag.KindInvalidInput).Detail("phi of type void").Build())
	}
	inst := &PhiInstruction{
		incoming: make([]Incoming, 0, 2),
	}
	inst.typ = typ
	bld.insert(inst, &inst.instruction, name)
	return inst
}

// CreateInsert creates a copy of vector vec with the given lane replaced by scalar.
func (bld *Builder) CreateInsert(vec, scalar Value, lane int, name string) *InsertInstruction {
	bld.checkOperands(vec, scalar)
	typ := vec.Type()
	if !typ.IsVector() {
		panic(diag.New(diag.PhaseBuild, diag.KindTypeMismatch).
			Value(vec.Ref()).Detail("insert into non-vector %s", typ).Build())
	}
	if scalar.Type() != typ.Elem() {
		panic(diag.TypeMismatch(diag.PhaseBuild, scalar.Ref(), typ.Elem(), scalar.Type()))
	}
	if lane < 0 || lane >= typ.Lanes {
		panic(diag.OutOfBounds(diag.PhaseBuild, vec.Ref(), lane, typ.Lanes))
	}
	inst := &InsertInstruction{
		base:   vec,
		scalar: scalar,
		lane:   lane,
	}
	inst.typ = typ
	bld.insert(inst, &inst.instruction, name)
	return inst
}

// CreateExtract creates the scalar read of one lane of vector vec.
func (bld *Builder) CreateExtract(vec Value, lane int, name string) *ExtractInstruction {
	bld.checkOperands(vec)
	typ := vec.Type()
	if !typ.IsVector() {
		panic(diag.New(diag.PhaseBuild, diag.KindTypeMismatch).
			Value(vec.Ref()).Detail("extract from non-vector %s", typ).Build())
	}
	if lane < 0 || lane >= typ.Lanes {
		panic(diag.OutOfBounds(diag.PhaseBuild, vec.Ref(), lane, typ.Lanes))
	}
	inst := &ExtractInstruction{
		base: vec,
		lane: lane,
	}
	inst.typ = typ.Elem()
	bld.insert(inst, &inst.instruction, name)
	return inst
}

// CreateShuffle creates a vector with len(mask) lanes selected from the concatenation of v1 and v2. A mask entry of
// UndefLane leaves the lane undefined.
func (bld *Builder) CreateShuffle(v1, v2 Value, mask []int, name string) *ShuffleInstruction {
	bld.checkOperands(v1, v2)
	typ := v1.Type()
	if !typ.IsVector() {
		panic(diag.New(diag.PhaseBuild, diag.KindTypeMismatch).
			Value(v1.Ref()).Detail("shuffle of non-vector %s", typ).Build())
	}
	if v2.Type() != typ {
		panic(diag.TypeMismatch(diag.PhaseBuild, v2.Ref(), typ, v2.Type()))
	}
	if len(mask) < 1 || len(mask) > types.MaxLanes {
		panic(diag.OutOfBounds(diag.PhaseBuild, v1.Ref(), len(mask), types.MaxLanes+1))
	}
	for _, e1 := range mask {
		if e1 < UndefLane || e1 >= 2*typ.Lanes {
			panic(diag.OutOfBounds(diag.PhaseBuild, v1.Ref(), e1, 2*typ.Lanes))
		}
	}
	inst := &ShuffleInstruction{
		v1:   v1,
		v2:   v2,
		mask: append([]int(nil), mask...),
	}
	inst.typ = typ.WithLanes(len(mask))
	bld.insert(inst, &inst.instruction, name)
	return inst
}

// CreateOpaque creates a call to the external function callee returning typ. A void call produces no value and
// is not named.
func (bld *Builder) CreateOpaque(callee string, typ types.Type, args []Value, name string) *OpaqueInstruction {
	bld.checkOperands(args...)
	inst := &OpaqueInstruction{
		callee: callee,
		args:   append([]Value(nil), args...),
	}
	inst.typ = typ
	if typ.IsVoid() {
		name = ""
	}
	bld.insert(inst, &inst.instruction, name)
	return inst
}

// CreateBranch creates an unconditional branch to dst, effectively terminating the current block.
func (bld *Builder) CreateBranch(dst *Block) *BranchInstruction {
	bld.checkTarget(dst)
	inst := &BranchInstruction{
		thn: dst,
	}
	inst.typ = types.VoidType
	bld.insert(inst, &inst.instruction, "")
	return inst
}

// CreateCondBranch creates a conditional branch on the i1 value cond, effectively terminating the current block.
func (bld *Builder) CreateCondBranch(cond Value, thn, els *Block) *BranchInstruction {
	bld.checkOperands(cond)
	if cond.Type() != types.BoolType {
		panic(diag.TypeMismatch(diag.PhaseBuild, cond.Ref(), types.BoolType, cond.Type()))
	}
	bld.checkTarget(thn)
	bld.checkTarget(els)
	inst := &BranchInstruction{
		cond: cond,
		thn:  thn,
		els:  els,
	}
	inst.typ = types.VoidType
	bld.insert(inst, &inst.instruction, "")
	return inst
}

// CreateReturn creates a return instruction, effectively terminating the current block. val is <nil> for void
// functions.
func (bld *Builder) CreateReturn(val Value) *ReturnInstruction {
	bld.checkBlock()
	ret := bld.b.f.typ
	if val == nil {
		if !ret.IsVoid() {
			panic(diag.New(diag.PhaseBuild, diag.KindTypeMismatch).
				Detail("missing return value of type %s", ret).Build())
		}
	} else {
		bld.checkOperands(val)
		if val.Type() != ret {
			panic(diag.TypeMismatch(diag.PhaseBuild, val.Ref(), ret, val.Type()))
		}
	}
	inst := &ReturnInstruction{
		val: val,
	}
	inst.typ = types.VoidType
	bld.insert(inst, &inst.instruction, "")
	return inst
}

// insert assigns identity to inst and places it at the insertion point.
func (bld *Builder) insert(inst Instruction, base *instruction, name string) {
	bld.checkBlock()
	b := bld.b
	f := b.f
	base.b = b
	base.id = f.m.ctx.getId()

	pos := len(b.instructions)
	if bld.before != nil {
		pos = b.index(bld.before)
		if isTerminator(inst) {
			panic(diag.New(diag.PhaseBuild, diag.KindInvalidInput).
				Detail("terminator inserted before %s in block %s", bld.before.String(), b.name).Build())
		}
	} else if b.term != nil {
		panic(diag.New(diag.PhaseBuild, diag.KindInvalidInput).
			Detail("block %s of function %s is already terminated", b.name, f.name).Build())
	}
	if _, ok := inst.(*PhiInstruction); ok {
		for _, e1 := range b.instructions[:pos] {
			if _, ok := e1.(*PhiInstruction); !ok {
				panic(diag.New(diag.PhaseBuild, diag.KindInvalidInput).
					Detail("phi placed after %s in block %s", e1.String(), b.name).Build())
			}
		}
	}

	if !base.typ.IsVoid() {
		base.name = f.uniqueName(name, base.id)
		f.values[base.name] = inst
	}
	b.insert(inst, pos)
}

// checkBlock panics if the Builder has no insertion point.
func (bld *Builder) checkBlock() {
	if bld.b == nil {
		panic(diag.New(diag.PhaseBuild, diag.KindInvalidInput).Detail("builder has no insertion point").Build())
	}
}

// checkTarget panics if dst is not a block of the function being built.
func (bld *Builder) checkTarget(dst *Block) {
	bld.checkBlock()
	if dst == nil || dst.f != bld.b.f {
		panic(diag.New(diag.PhaseBuild, diag.KindBlockMismatch).
			Detail("branch target is not part of function %s", bld.b.f.name).Build())
	}
}

// checkOperands panics if any operand is a local value of another function.
func (bld *Builder) checkOperands(ops ...Value) {
	bld.checkBlock()
	for _, e1 := range ops {
		if e1 == nil {
			panic(diag.New(diag.PhaseBuild, diag.KindInvalidInput).Detail("<nil> operand").Build())
		}
		if f := owner(e1); f != nil && f != bld.b.f {
			panic(diag.New(diag.PhaseBuild, diag.KindInvalidInput).
				Value(e1.Ref()).Detail("operand of function %s used in %s", f.name, bld.b.f.name).Build())
		}
	}
}

// owner returns the function that defines v, or <nil> for constants and undefined values.
func owner(v Value) *Function {
	switch v := v.(type) {
	case *Param:
		return v.f
	case Instruction:
		if v.Block() != nil {
			return v.Block().f
		}
	}
	return nil
}

// castValid returns true if op converts values of kind from to kind to.
func castValid(op types.CastOperation, from, to types.Kind) bool {
	switch op {
	case types.Trunc:
		return from.IsInteger() && to.IsInteger() && from.Bits() > to.Bits()
	case types.ZExt, types.SExt:
		return from.IsInteger() && to.IsInteger() && from.Bits() < to.Bits()
	case types.FPToUI, types.FPToSI:
		return from.IsFloat() && to.IsInteger()
	case types.UIToFP, types.SIToFP:
		return from.IsInteger() && to.IsFloat()
	case types.FPTrunc:
		return from.IsFloat() && to.IsFloat() && from.Bits() > to.Bits()
	case types.FPExt:
		return from.IsFloat() && to.IsFloat() && from.Bits() < to.Bits()
	case types.BitCast:
		return from != types.Void && from.Bits() == to.Bits()
	}
	panic(fmt.Sprintf("unexpected cast operation %d", op))
}
