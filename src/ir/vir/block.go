package vir

import (
	"fmt"
	"strings"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Block defines a basic block. A basic block is a sequence of instructions that is terminated by a branch instruction
// or a return instruction.
type Block struct {
	f            *Function     // Parent function that owns the basic block.
	id           int           // Unique identifier of basic block.
	name         string        // Label of basic block, unique within the function.
	term         Instruction   // Branch instruction or return instruction.
	instructions []Instruction // Instructions in the basic block, terminator included.
}

// ---------------------
// ----- Constants -----
// ---------------------

// labelBlockPrefix defines the label of a basic block created without a name.
const labelBlockPrefix = "block"

// ---------------------
// ----- Functions -----
// ---------------------

// Id returns the uniquely assigned identifier of Block b.
func (b *Block) Id() int {
	return b.id
}

// Name returns the label of Block b.
func (b *Block) Name() string {
	return b.name
}

// Function returns the function that owns Block b.
func (b *Block) Function() *Function {
	return b.f
}

// String returns the textual VIR representation of all instructions in Block b.
func (b *Block) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%s:\n", b.name))
	for _, e1 := range b.instructions {
		sb.WriteString("  ")
		sb.WriteString(e1.String())
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Instructions returns a copy of the instructions of Block b in program order.
func (b *Block) Instructions() []Instruction {
	return append([]Instruction(nil), b.instructions...)
}

// Terminator returns the branch or return instruction of Block b, or <nil> if b is not yet terminated.
func (b *Block) Terminator() Instruction {
	return b.term
}

// Phis returns the leading phi instructions of Block b.
func (b *Block) Phis() []*PhiInstruction {
	res := make([]*PhiInstruction, 0, 4)
	for _, e1 := range b.instructions {
		phi, ok := e1.(*PhiInstruction)
		if !ok {
			break
		}
		res = append(res, phi)
	}
	return res
}

// Successors returns the branch targets of Block b. A returning or unterminated block has no successors.
func (b *Block) Successors() []*Block {
	if br, ok := b.term.(*BranchInstruction); ok {
		return br.Successors()
	}
	return nil
}

// Predecessors returns the blocks that branch to Block b, in the order the blocks appear in the function. A block
// whose conditional branch targets b on both edges is listed twice.
func (b *Block) Predecessors() []*Block {
	res := make([]*Block, 0, 4)
	for _, e1 := range b.f.blocks {
		for _, e2 := range e1.Successors() {
			if e2 == b {
				res = append(res, e1)
			}
		}
	}
	return res
}

// index returns the position of inst in Block b, or -1.
func (b *Block) index(inst Instruction) int {
	for i1, e1 := range b.instructions {
		if e1 == inst {
			return i1
		}
	}
	return -1
}

// insert places inst at position pos of Block b. A position past the last instruction appends.
func (b *Block) insert(inst Instruction, pos int) {
	if pos < 0 || pos >= len(b.instructions) {
		b.instructions = append(b.instructions, inst)
	} else {
		b.instructions = append(b.instructions, nil)
		copy(b.instructions[pos+1:], b.instructions[pos:])
		b.instructions[pos] = inst
	}
	if isTerminator(inst) {
		b.term = inst
	}
}

// isTerminator returns true for branch and return instructions.
func isTerminator(inst Instruction) bool {
	switch inst.(type) {
	case *BranchInstruction, *ReturnInstruction:
		return true
	}
	return false
}
