package vir

import (
	"fmt"
	"strings"

	"lanec/src/diag"
	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Incoming is one edge of a PhiInstruction: the value the phi takes when control arrives from Block.
type Incoming struct {
	Value Value
	Block *Block
}

// PhiInstruction defines a merge node. It holds one incoming value per predecessor of its basic block, and must be
// placed before any other instruction of the block.
type PhiInstruction struct {
	instruction
	incoming []Incoming // incoming holds the ordered edges of the phi.
}

// ---------------------
// ----- Functions -----
// ---------------------

// Kind returns types.Phi.
func (inst *PhiInstruction) Kind() types.ValueKind {
	return types.Phi
}

// String returns the textual VIR representation of the PhiInstruction.
func (inst *PhiInstruction) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%s = phi %s", inst.Ref(), inst.typ.String()))
	for i1, e1 := range inst.incoming {
		if i1 > 0 {
			sb.WriteRune(',')
		}
		sb.WriteString(fmt.Sprintf(" [%s, %s]", e1.Value.Ref(), e1.Block.Name()))
	}
	return sb.String()
}

// Operands returns the incoming values of the PhiInstruction.
func (inst *PhiInstruction) Operands() []Value {
	res := make([]Value, len(inst.incoming))
	for i1, e1 := range inst.incoming {
		res[i1] = e1.Value
	}
	return res
}

// Incoming returns a copy of the incoming edges of the PhiInstruction.
func (inst *PhiInstruction) Incoming() []Incoming {
	return append([]Incoming(nil), inst.incoming...)
}

// IncomingCount returns the number of incoming edges.
func (inst *PhiInstruction) IncomingCount() int {
	return len(inst.incoming)
}

// IncomingValue returns the value of edge i.
func (inst *PhiInstruction) IncomingValue(i int) Value {
	return inst.incoming[i].Value
}

// IncomingBlock returns the predecessor block of edge i.
func (inst *PhiInstruction) IncomingBlock(i int) *Block {
	return inst.incoming[i].Block
}

// AddIncoming appends the edge (v, from) to the PhiInstruction. AddIncoming panics if v's type is not the type of the
// phi, or if v or from belong to another function.
func (inst *PhiInstruction) AddIncoming(v Value, from *Block) {
	if v.Type() != inst.typ {
		panic(diag.TypeMismatch(diag.PhaseBuild, inst.Ref(), inst.typ, v.Type()))
	}
	if from == nil || from.f != inst.b.f {
		panic(diag.New(diag.PhaseBuild, diag.KindBlockMismatch).
			Value(inst.Ref()).Detail("incoming block is not part of function %s", inst.b.f.Name()).Build())
	}
	if f := owner(v); f != nil && f != inst.b.f {
		panic(diag.New(diag.PhaseBuild, diag.KindInvalidInput).
			Value(v.Ref()).Detail("incoming value of function %s used in %s", f.Name(), inst.b.f.Name()).Build())
	}
	inst.incoming = append(inst.incoming, Incoming{Value: v, Block: from})
}
