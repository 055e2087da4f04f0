package lanes

import (
	"lanec/src/diag"
	"lanec/src/ir/vir"
	"lanec/src/ir/vir/types"
)

// nameShuffle names the instructions created by Shuffle and Concat.
const nameShuffle = "shuffle"

// Splat returns the constant vector of width lanes that all hold the scalar constant s.
func (c *Context) Splat(s *vir.Constant, width int) *vir.Constant {
	if s.IsVector() {
		panic(diag.New(diag.PhaseBuild, diag.KindTypeMismatch).
			Value(s.Ref()).Detail("cannot splat a vector").Build())
	}
	return c.IR.ConstSplat(s, width)
}

// BuildFromArray returns the constant vector with the given lanes. A <nil> lane is undefined.
func (c *Context) BuildFromArray(elems []*vir.Constant) *vir.Constant {
	return c.IR.ConstVector(elems)
}

// Concat returns, before the instruction before, the vector holding the lanes of v1 followed by the lanes of v2.
// v1 and v2 must have the same vector type.
func (c *Context) Concat(v1, v2 vir.Value, before vir.Instruction) *vir.ShuffleInstruction {
	requireVector(diag.PhaseBuild, v1)
	if v1.Type() != v2.Type() {
		panic(diag.TypeMismatch(diag.PhaseBuild, describe(v2), v1.Type(), v2.Type()))
	}
	n := 2 * v1.Type().Lanes
	if n > types.MaxLanes {
		panic(diag.OutOfBounds(diag.PhaseBuild, describe(v1), n, types.MaxLanes+1))
	}
	identity := make([]int, n)
	for i1 := range identity {
		identity[i1] = i1
	}
	return c.Shuffle(v1, v2, identity, before)
}

// Shuffle returns, before the instruction before, the vector whose lane i is lane indices[i] of the concatenation
// of v1 and v2. An index of vir.UndefLane leaves the lane undefined.
func (c *Context) Shuffle(v1, v2 vir.Value, indices []int, before vir.Instruction) *vir.ShuffleInstruction {
	bld := vir.NewBuilder()
	bld.SetInsertPointBefore(before)
	return bld.CreateShuffle(v1, v2, indices, nameShuffle)
}

// ExtractVectorInts returns the lanes of the integer vector v if v is a constant with every lane defined. It panics
// if v is not a vector of integers.
func (c *Context) ExtractVectorInts(v vir.Value) ([]int64, bool) {
	typ := v.Type()
	if !typ.IsVector() || !typ.IsInteger() {
		panic(diag.New(diag.PhaseAnalyze, diag.KindTypeMismatch).
			Value(describe(v)).Detail("expected an integer vector, got %s", typ).Build())
	}
	cv, ok := v.(*vir.Constant)
	if !ok {
		return nil, false
	}
	res := make([]int64, typ.Lanes)
	for i1 := range res {
		e := cv.Lane(i1)
		if e == nil {
			return nil, false
		}
		res[i1] = e.Int()
	}
	return res, true
}
