package vir

import (
	"fmt"

	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// BranchInstruction defines an unconditional or conditional branch instruction.
type BranchInstruction struct {
	instruction
	cond Value  // cond is the i1 condition of a conditional branch. Is <nil> for unconditional branches.
	thn  *Block // thn is the target for unconditional and the target THEN block of conditional branches.
	els  *Block // els is the target for conditional ELSE block. Is <nil> for unconditional branches.
}

// ReturnInstruction defines a return statement.
type ReturnInstruction struct {
	instruction
	val Value // val is the returned value of the return statement, <nil> for void functions.
}

// ---------------------
// ----- Functions -----
// ---------------------

// Kind returns types.Branch.
func (inst *BranchInstruction) Kind() types.ValueKind {
	return types.Branch
}

// String returns the textual VIR representation of the BranchInstruction.
func (inst *BranchInstruction) String() string {
	if inst.cond == nil {
		return fmt.Sprintf("br %s", inst.thn.Name())
	}
	return fmt.Sprintf("br %s, %s, %s", inst.cond.Ref(), inst.thn.Name(), inst.els.Name())
}

// Operands returns the condition of a conditional branch.
func (inst *BranchInstruction) Operands() []Value {
	if inst.cond == nil {
		return nil
	}
	return []Value{inst.cond}
}

// Condition returns the branch condition, or <nil> for unconditional branches.
func (inst *BranchInstruction) Condition() Value {
	return inst.cond
}

// Successors returns the branch targets in order.
func (inst *BranchInstruction) Successors() []*Block {
	if inst.els == nil {
		return []*Block{inst.thn}
	}
	return []*Block{inst.thn, inst.els}
}

// Kind returns types.Return.
func (inst *ReturnInstruction) Kind() types.ValueKind {
	return types.Return
}

// String returns the textual VIR representation of the ReturnInstruction.
func (inst *ReturnInstruction) String() string {
	if inst.val == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", inst.val.Ref())
}

// Operands returns the returned value, if any.
func (inst *ReturnInstruction) Operands() []Value {
	if inst.val == nil {
		return nil
	}
	return []Value{inst.val}
}

// Value returns the returned value, or <nil>.
func (inst *ReturnInstruction) Value() Value {
	return inst.val
}
