package vir

import (
	"fmt"
	"math"
	"strings"

	"lanec/src/diag"
	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Context owns the uniqued constants and undefined values shared by the modules created from it. Two constants of
// the same type and the same bits, or two vector constants of the same type and the same lanes, are the same node,
// so comparing constants by identity is comparing them structurally.
type Context struct {
	seq     int                       // Sequence number for identifiers of context owned values.
	scalars map[scalarKey]*Constant   // Uniqued scalar constants.
	vectors map[string]*Constant      // Uniqued vector constants keyed by type and lane identities.
	undefs  map[types.Type]*Undefined // Uniqued undefined values.
}

// scalarKey identifies a scalar constant.
type scalarKey struct {
	typ  types.Type
	bits uint64
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{
		scalars: make(map[scalarKey]*Constant, 64),
		vectors: make(map[string]*Constant, 16),
		undefs:  make(map[types.Type]*Undefined, 8),
	}
}

// getId returns a unique identifier for a context owned value.
func (ctx *Context) getId() int {
	id := ctx.seq
	ctx.seq++
	return id
}

// NewModule creates an empty module bound to the Context.
func (ctx *Context) NewModule(name string) *Module {
	return newModule(ctx, name)
}

// ConstInt returns the integer constant v of scalar type typ. v is truncated to the width of typ.
func (ctx *Context) ConstInt(typ types.Type, v int64) *Constant {
	if typ.IsVector() || !typ.IsInteger() {
		panic(diag.New(diag.PhaseBuild, diag.KindTypeMismatch).
			Detail("cannot create integer constant of type %s", typ).Build())
	}
	return ctx.scalar(typ, uint64(truncInt(typ.Kind, v)))
}

// ConstFloat returns the floating point constant f of scalar type typ. Float constants are rounded to single
// precision.
func (ctx *Context) ConstFloat(typ types.Type, f float64) *Constant {
	if typ.IsVector() || !typ.IsFloat() {
		panic(diag.New(diag.PhaseBuild, diag.KindTypeMismatch).
			Detail("cannot create floating point constant of type %s", typ).Build())
	}
	if typ.Kind == types.Float {
		f = float64(float32(f))
	}
	return ctx.scalar(typ, math.Float64bits(f))
}

// ConstBool returns the i1 constant for b.
func (ctx *Context) ConstBool(b bool) *Constant {
	if b {
		return ctx.ConstInt(types.BoolType, 1)
	}
	return ctx.ConstInt(types.BoolType, 0)
}

// ConstZero returns the zero value of typ. The zero vector reports IsZero.
func (ctx *Context) ConstZero(typ types.Type) *Constant {
	elem := typ.Elem()
	var z *Constant
	if elem.IsFloat() {
		z = ctx.ConstFloat(elem, 0)
	} else {
		z = ctx.ConstInt(elem, 0)
	}
	if !typ.IsVector() {
		return z
	}
	return ctx.ConstSplat(z, typ.Lanes)
}

// ConstSplat returns the vector constant whose lanes all hold the scalar constant c.
func (ctx *Context) ConstSplat(c *Constant, lanes int) *Constant {
	elems := make([]*Constant, lanes)
	for i1 := range elems {
		elems[i1] = c
	}
	return ctx.ConstVector(elems)
}

// ConstVector returns the vector constant with the given lanes. A <nil> lane is undefined. At least one lane must be
// defined, and all defined lanes must be scalar constants of one type. If every lane is undefined use Undef instead.
func (ctx *Context) ConstVector(elems []*Constant) *Constant {
	if len(elems) < 1 || len(elems) > types.MaxLanes {
		panic(diag.New(diag.PhaseBuild, diag.KindOutOfBounds).
			Detail("vector constant with %d lanes, want [1, %d]", len(elems), types.MaxLanes).Build())
	}
	var elem *Constant
	for _, e1 := range elems {
		if e1 == nil {
			continue
		}
		if e1.typ.IsVector() {
			panic(diag.New(diag.PhaseBuild, diag.KindTypeMismatch).
				Value(e1.Ref()).Detail("vector constant lane must be a scalar").Build())
		}
		if elem == nil {
			elem = e1
		} else if e1.typ != elem.typ {
			panic(diag.TypeMismatch(diag.PhaseBuild, e1.Ref(), elem.typ, e1.typ))
		}
	}
	if elem == nil {
		panic(diag.New(diag.PhaseBuild, diag.KindInvalidInput).
			Detail("vector constant without defined lanes, use an undefined value").Build())
	}
	typ := types.Vector(elem.typ.Kind, len(elems))

	sb := strings.Builder{}
	sb.WriteString(typ.String())
	for _, e1 := range elems {
		if e1 == nil {
			sb.WriteString("|u")
		} else {
			sb.WriteString(fmt.Sprintf("|%d", e1.id))
		}
	}
	key := sb.String()
	if c, ok := ctx.vectors[key]; ok {
		return c
	}
	c := &Constant{
		id:    ctx.getId(),
		typ:   typ,
		elems: append([]*Constant(nil), elems...),
	}
	ctx.vectors[key] = c
	return c
}

// Undef returns the undefined value of typ.
func (ctx *Context) Undef(typ types.Type) *Undefined {
	if u, ok := ctx.undefs[typ]; ok {
		return u
	}
	u := &Undefined{
		id:  ctx.getId(),
		typ: typ,
	}
	ctx.undefs[typ] = u
	return u
}

// scalar returns the uniqued scalar constant of typ with the given bits.
func (ctx *Context) scalar(typ types.Type, bits uint64) *Constant {
	key := scalarKey{typ: typ, bits: bits}
	if c, ok := ctx.scalars[key]; ok {
		return c
	}
	c := &Constant{
		id:   ctx.getId(),
		typ:  typ,
		bits: bits,
	}
	ctx.scalars[key] = c
	return c
}

// truncInt truncates v to the width of integer kind k and sign extends the result back to 64 bits. Bool keeps only
// the lowest bit and is not sign extended.
func truncInt(k types.Kind, v int64) int64 {
	switch k {
	case types.Bool:
		return v & 1
	case types.Int8:
		return int64(int8(v))
	case types.Int16:
		return int64(int16(v))
	case types.Int32:
		return int64(int32(v))
	}
	return v
}
