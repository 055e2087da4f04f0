package vir

import (
	"fmt"

	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Target describes the SIMD machine code is generated for.
type Target struct {
	VectorWidth  int  // Number of lanes of a program vector.
	MaskBitCount int  // Width of one mask lane, either 1 or 32.
	Is32Bit      bool // Pointers are 32 bits wide.
}

// Types is the table of types and constants derived from a Target.
type Types struct {
	ctx    *Context
	target Target

	PointerInt types.Type // Integer of pointer width.

	Mask              types.Type // Mask vector, <W x i1> or <W x i32>.
	BoolVector        types.Type // Same as Mask.
	Int1Vector        types.Type
	Int8Vector        types.Type
	Int16Vector       types.Type
	Int32Vector       types.Type
	Int64Vector       types.Type
	FloatVector       types.Type
	DoubleVector      types.Type
	VoidPointerVector types.Type // Vector of pointer sized integers.

	True       *Constant
	False      *Constant
	MaskAllOn  *Constant
	MaskAllOff *Constant
}

// ---------------------
// ----- Functions -----
// ---------------------

// Validate returns an error if the Target can not be used to build a type table.
func (t Target) Validate() error {
	if t.VectorWidth < 1 || t.VectorWidth > types.MaxLanes {
		return fmt.Errorf("vector width %d is outside [1, %d]", t.VectorWidth, types.MaxLanes)
	}
	if t.MaskBitCount != 1 && t.MaskBitCount != 32 {
		return fmt.Errorf("mask bit count must be 1 or 32, got %d", t.MaskBitCount)
	}
	return nil
}

// NewTypes builds the type table of Target t. NewTypes panics if t does not validate.
func NewTypes(ctx *Context, t Target) *Types {
	if err := t.Validate(); err != nil {
		panic(err)
	}
	w := t.VectorWidth
	tt := &Types{
		ctx:          ctx,
		target:       t,
		PointerInt:   types.Int64Type,
		Int1Vector:   types.Vector(types.Bool, w),
		Int8Vector:   types.Vector(types.Int8, w),
		Int16Vector:  types.Vector(types.Int16, w),
		Int32Vector:  types.Vector(types.Int32, w),
		Int64Vector:  types.Vector(types.Int64, w),
		FloatVector:  types.Vector(types.Float, w),
		DoubleVector: types.Vector(types.Double, w),
		True:         ctx.ConstBool(true),
		False:        ctx.ConstBool(false),
	}
	if t.Is32Bit {
		tt.PointerInt = types.Int32Type
	}
	tt.VoidPointerVector = tt.PointerInt.WithLanes(w)

	var on, off *Constant
	if t.MaskBitCount == 1 {
		tt.Mask = tt.Int1Vector
		on, off = tt.True, tt.False
	} else {
		tt.Mask = tt.Int32Vector
		on, off = ctx.ConstInt(types.Int32Type, -1), ctx.ConstInt(types.Int32Type, 0)
	}
	tt.BoolVector = tt.Mask
	tt.MaskAllOn = ctx.ConstSplat(on, w)
	tt.MaskAllOff = ctx.ConstSplat(off, w)
	return tt
}

// Target returns the Target the table was built for.
func (tt *Types) Target() Target {
	return tt.target
}

// VectorOf returns the program width vector type of kind k. VectorOf panics if k is Void.
func (tt *Types) VectorOf(k types.Kind) types.Type {
	switch k {
	case types.Bool:
		return tt.Int1Vector
	case types.Int8:
		return tt.Int8Vector
	case types.Int16:
		return tt.Int16Vector
	case types.Int32:
		return tt.Int32Vector
	case types.Int64:
		return tt.Int64Vector
	case types.Float:
		return tt.FloatVector
	case types.Double:
		return tt.DoubleVector
	}
	panic(fmt.Sprintf("no program width vector of %s", k))
}

// IntVector returns the program width vector of integer kind k with every lane set to v.
func (tt *Types) IntVector(k types.Kind, v int64) *Constant {
	return tt.ctx.ConstSplat(tt.ctx.ConstInt(types.Scalar(k), v), tt.target.VectorWidth)
}

// IntVectorOf returns the program width vector of integer kind k with the lanes vals. vals must hold one value
// per lane.
func (tt *Types) IntVectorOf(k types.Kind, vals []int64) *Constant {
	if len(vals) != tt.target.VectorWidth {
		panic(fmt.Sprintf("got %d lane values for vector width %d", len(vals), tt.target.VectorWidth))
	}
	elems := make([]*Constant, len(vals))
	for i1, e1 := range vals {
		elems[i1] = tt.ctx.ConstInt(types.Scalar(k), e1)
	}
	return tt.ctx.ConstVector(elems)
}

// FloatVectorOf returns the program width vector of floating point kind k with every lane set to f.
func (tt *Types) FloatVectorOf(k types.Kind, f float64) *Constant {
	return tt.ctx.ConstSplat(tt.ctx.ConstFloat(types.Scalar(k), f), tt.target.VectorWidth)
}

// BoolVectorOf returns the mask vector with every lane on or off.
func (tt *Types) BoolVectorOf(b bool) *Constant {
	if b {
		return tt.MaskAllOn
	}
	return tt.MaskAllOff
}

// IntAsType returns the integer constant v of type typ. Vector types get v in every lane.
func (tt *Types) IntAsType(v int64, typ types.Type) *Constant {
	c := tt.ctx.ConstInt(typ.Elem(), v)
	if !typ.IsVector() {
		return c
	}
	return tt.ctx.ConstSplat(c, typ.Lanes)
}
