package vir

import (
	"fmt"
	"strconv"
	"strings"

	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// InsertInstruction defines a vector that equals base, except that lane holds scalar.
type InsertInstruction struct {
	instruction
	base   Value // base is the vector the scalar is inserted into.
	scalar Value // scalar is the inserted lane value.
	lane   int   // lane is the index of the replaced lane.
}

// ExtractInstruction defines the scalar held by one lane of a vector.
type ExtractInstruction struct {
	instruction
	base Value // base is the vector the lane is read from.
	lane int   // lane is the index of the extracted lane.
}

// ShuffleInstruction defines a vector whose lanes are selected from the concatenation of v1 and v2. Lane i of the
// result is lane mask[i] of v1:v2, or undefined if mask[i] is -1.
type ShuffleInstruction struct {
	instruction
	v1, v2 Value // v1 and v2 are the source vectors, both of the same type.
	mask   []int // mask holds the selected source lane for every result lane.
}

// ---------------------
// ----- Constants -----
// ---------------------

// UndefLane marks an undefined lane in a shuffle mask.
const UndefLane = -1

// ---------------------
// ----- Functions -----
// ---------------------

// Kind returns types.Insert.
func (inst *InsertInstruction) Kind() types.ValueKind {
	return types.Insert
}

// String returns the textual VIR representation of the InsertInstruction.
func (inst *InsertInstruction) String() string {
	return fmt.Sprintf("%s = insert %s, %s, %d", inst.Ref(), inst.base.Ref(), inst.scalar.Ref(), inst.lane)
}

// Operands returns the base vector and the inserted scalar.
func (inst *InsertInstruction) Operands() []Value {
	return []Value{inst.base, inst.scalar}
}

// Base returns the vector the scalar is inserted into.
func (inst *InsertInstruction) Base() Value {
	return inst.base
}

// Scalar returns the inserted lane value.
func (inst *InsertInstruction) Scalar() Value {
	return inst.scalar
}

// Lane returns the index of the replaced lane.
func (inst *InsertInstruction) Lane() int {
	return inst.lane
}

// Kind returns types.Extract.
func (inst *ExtractInstruction) Kind() types.ValueKind {
	return types.Extract
}

// String returns the textual VIR representation of the ExtractInstruction.
func (inst *ExtractInstruction) String() string {
	return fmt.Sprintf("%s = extract %s, %d", inst.Ref(), inst.base.Ref(), inst.lane)
}

// Operands returns the source vector.
func (inst *ExtractInstruction) Operands() []Value {
	return []Value{inst.base}
}

// Base returns the vector the lane is read from.
func (inst *ExtractInstruction) Base() Value {
	return inst.base
}

// Lane returns the index of the extracted lane.
func (inst *ExtractInstruction) Lane() int {
	return inst.lane
}

// Kind returns types.Shuffle.
func (inst *ShuffleInstruction) Kind() types.ValueKind {
	return types.Shuffle
}

// String returns the textual VIR representation of the ShuffleInstruction.
func (inst *ShuffleInstruction) String() string {
	sb := strings.Builder{}
	for i1, e1 := range inst.mask {
		if i1 > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(e1))
	}
	return fmt.Sprintf("%s = shuffle %s, %s, [%s]", inst.Ref(), inst.v1.Ref(), inst.v2.Ref(), sb.String())
}

// Operands returns both source vectors.
func (inst *ShuffleInstruction) Operands() []Value {
	return []Value{inst.v1, inst.v2}
}

// V1 returns the first source vector.
func (inst *ShuffleInstruction) V1() Value {
	return inst.v1
}

// V2 returns the second source vector.
func (inst *ShuffleInstruction) V2() Value {
	return inst.v2
}

// Mask returns a copy of the lane selection mask.
func (inst *ShuffleInstruction) Mask() []int {
	return append([]int(nil), inst.mask...)
}

// Selector returns the lane selection mask as an i32 vector value: a constant whose undefined mask entries are
// undefined lanes, or an undefined vector if no entry is defined.
func (inst *ShuffleInstruction) Selector() Value {
	ctx := inst.b.f.m.ctx
	elems := make([]*Constant, len(inst.mask))
	defined := false
	for i1, e1 := range inst.mask {
		if e1 == UndefLane {
			continue
		}
		elems[i1] = ctx.ConstInt(types.Int32Type, int64(e1))
		defined = true
	}
	if !defined {
		return ctx.Undef(types.Vector(types.Int32, len(inst.mask)))
	}
	return ctx.ConstVector(elems)
}
