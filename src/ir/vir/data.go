package vir

import (
	"fmt"

	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// BinaryInstruction defines an arithmetic or bitwise instruction that leaves the result in a new virtual register.
// Operating on vectors, the operation is applied lane by lane.
type BinaryInstruction struct {
	instruction
	op       types.BinaryOperation // op defines the type of arithmetic operation of this instruction.
	lhs, rhs Value                 // lhs and rhs holds the first and second operands respectively.
}

// CastInstruction defines an instruction that converts its operand to another type with the same lane count.
type CastInstruction struct {
	instruction
	op  types.CastOperation // op defines the conversion.
	src Value               // src is the source Value that was cast.
}

// ---------------------
// ----- Functions -----
// ---------------------

// Kind returns types.Binary.
func (inst *BinaryInstruction) Kind() types.ValueKind {
	return types.Binary
}

// String returns the textual VIR representation of the BinaryInstruction.
func (inst *BinaryInstruction) String() string {
	return fmt.Sprintf("%s = %s %s, %s", inst.Ref(), inst.op.String(), inst.lhs.Ref(), inst.rhs.Ref())
}

// Operands returns the two operands of the BinaryInstruction.
func (inst *BinaryInstruction) Operands() []Value {
	return []Value{inst.lhs, inst.rhs}
}

// Operator returns the opcode of the BinaryInstruction.
func (inst *BinaryInstruction) Operator() types.BinaryOperation {
	return inst.op
}

// LHS returns the first operand.
func (inst *BinaryInstruction) LHS() Value {
	return inst.lhs
}

// RHS returns the second operand.
func (inst *BinaryInstruction) RHS() Value {
	return inst.rhs
}

// Kind returns types.Cast.
func (inst *CastInstruction) Kind() types.ValueKind {
	return types.Cast
}

// String returns the textual VIR representation of the CastInstruction.
func (inst *CastInstruction) String() string {
	return fmt.Sprintf("%s = %s %s to %s", inst.Ref(), inst.op.String(), inst.src.Ref(), inst.typ.String())
}

// Operands returns the source operand of the CastInstruction.
func (inst *CastInstruction) Operands() []Value {
	return []Value{inst.src}
}

// Operator returns the opcode of the CastInstruction.
func (inst *CastInstruction) Operator() types.CastOperation {
	return inst.op
}

// Operand returns the source Value that is converted.
func (inst *CastInstruction) Operand() Value {
	return inst.src
}
