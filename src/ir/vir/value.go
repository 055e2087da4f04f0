// Package vir provides the vector intermediate representation: an SSA graph of typed scalar and fixed-width vector
// values, basic blocks, functions and modules, plus a Builder for appending new instructions.
//
// Value is a closed set of variants. Only types of this package implement it, so a type switch over the concrete
// types below is exhaustive:
//
//	*Constant, *Undefined, *Param,
//	*BinaryInstruction, *CastInstruction, *PhiInstruction,
//	*InsertInstruction, *ExtractInstruction, *ShuffleInstruction,
//	*OpaqueInstruction, *BranchInstruction, *ReturnInstruction
//
// Nodes are never deleted or rewritten in place once created.
package vir

import (
	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Value defines an operand of a VIR instruction.
type Value interface {
	Id() int               // Unique identifier assigned to Value when it's created.
	Name() string          // Name of Value, without sigil.
	Type() types.Type      // Type of the value.
	Kind() types.ValueKind // Variant of the value.
	Ref() string           // Textual representation of Value when used as an operand.
	String() string        // Textual representation of the definition of Value.
	isValue()              // Seals the interface to this package.
}

// Instruction defines a Value that is computed by an instruction placed in a basic block.
type Instruction interface {
	Value
	Block() *Block     // Basic block that owns the instruction.
	Operands() []Value // Ordered operands of the instruction.
}

// instruction holds the fields every instruction shares.
type instruction struct {
	b    *Block     // b is the basic block element that owns this instruction.
	id   int        // id is the unique identifier of this instruction in function body.
	name string     // name is the unique name of the virtual register within the function.
	typ  types.Type // typ is the type of the produced value.
}

// ---------------------
// ----- Constants -----
// ---------------------

// localSigil prefixes local value names in the textual representation.
const localSigil = "%"

// ---------------------
// ----- Functions -----
// ---------------------

// Id returns the unique id of the instruction.
func (inst *instruction) Id() int {
	return inst.id
}

// Name returns the name of the virtual register written by the instruction.
func (inst *instruction) Name() string {
	return inst.name
}

// Type returns the type of the value produced by the instruction.
func (inst *instruction) Type() types.Type {
	return inst.typ
}

// Block returns the basic block that owns the instruction.
func (inst *instruction) Block() *Block {
	return inst.b
}

// Ref returns the operand representation of the instruction.
func (inst *instruction) Ref() string {
	return localSigil + inst.name
}

func (inst *instruction) isValue() {}

// IsInstruction returns v as an Instruction if it is one.
func IsInstruction(v Value) (Instruction, bool) {
	inst, ok := v.(Instruction)
	return inst, ok
}
