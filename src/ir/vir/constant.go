package vir

import (
	"math"
	"strconv"
	"strings"

	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Constant defines an integer, floating point or vector literal. Constants are owned by a Context and uniqued, see
// Context.
type Constant struct {
	id    int         // id is the unique identifier of this constant in its Context.
	typ   types.Type  // typ defines the constant's type.
	bits  uint64      // bits holds a scalar's sign extended integer or float64 bit pattern.
	elems []*Constant // elems holds the lanes of a vector constant. A <nil> lane is undefined.
}

// Undefined defines an unconstrained value of some type.
type Undefined struct {
	id  int        // id is the unique identifier of this value in its Context.
	typ types.Type // typ defines the type of the undefined value.
}

// ---------------------
// ----- Functions -----
// ---------------------

// Id returns the unique id of the Constant.
func (c *Constant) Id() int {
	return c.id
}

// Name returns an empty string, constants are not named.
func (c *Constant) Name() string {
	return ""
}

// Type returns the type of the Constant.
func (c *Constant) Type() types.Type {
	return c.typ
}

// Kind returns types.Constant.
func (c *Constant) Kind() types.ValueKind {
	return types.Constant
}

// Ref returns the typed literal of the Constant, like "i32 7" or "<4 x i32> splat 1".
func (c *Constant) Ref() string {
	return c.typ.String() + " " + c.literal()
}

// String returns the typed literal of the Constant.
func (c *Constant) String() string {
	return c.Ref()
}

func (c *Constant) isValue() {}

// Int returns the sign extended integer value of a scalar integer Constant.
func (c *Constant) Int() int64 {
	return int64(c.bits)
}

// Float returns the value of a scalar floating point Constant.
func (c *Constant) Float() float64 {
	return math.Float64frombits(c.bits)
}

// IsVector returns true for vector constants.
func (c *Constant) IsVector() bool {
	return c.typ.IsVector()
}

// Lane returns lane i of a vector Constant, or <nil> if the lane is undefined.
func (c *Constant) Lane(i int) *Constant {
	return c.elems[i]
}

// Lanes returns a copy of the lanes of a vector Constant.
func (c *Constant) Lanes() []*Constant {
	return append([]*Constant(nil), c.elems...)
}

// IsZero returns true if the Constant is zero. A vector is zero if every lane is defined and zero.
func (c *Constant) IsZero() bool {
	if !c.typ.IsVector() {
		return c.bits == 0
	}
	for _, e1 := range c.elems {
		if e1 == nil || !e1.IsZero() {
			return false
		}
	}
	return true
}

// SplatValue returns the scalar held by every lane of a vector Constant, or <nil> if the lanes differ or one of them
// is undefined.
func (c *Constant) SplatValue() *Constant {
	if !c.typ.IsVector() {
		return nil
	}
	first := c.elems[0]
	if first == nil {
		return nil
	}
	for _, e1 := range c.elems[1:] {
		if e1 != first {
			return nil
		}
	}
	return first
}

// literal returns the untyped literal of the Constant.
func (c *Constant) literal() string {
	if !c.typ.IsVector() {
		if c.typ.IsFloat() {
			return strconv.FormatFloat(c.Float(), 'g', -1, 64)
		}
		return strconv.FormatInt(c.Int(), 10)
	}
	if c.IsZero() {
		return "zeroinitializer"
	}
	if s := c.SplatValue(); s != nil {
		return "splat " + s.literal()
	}
	sb := strings.Builder{}
	sb.WriteRune('<')
	for i1, e1 := range c.elems {
		if i1 > 0 {
			sb.WriteString(", ")
		}
		if e1 == nil {
			sb.WriteString("undef")
		} else {
			sb.WriteString(e1.literal())
		}
	}
	sb.WriteRune('>')
	return sb.String()
}

// Id returns the unique id of the Undefined value.
func (u *Undefined) Id() int {
	return u.id
}

// Name returns an empty string, undefined values are not named.
func (u *Undefined) Name() string {
	return ""
}

// Type returns the type of the Undefined value.
func (u *Undefined) Type() types.Type {
	return u.typ
}

// Kind returns types.Undefined.
func (u *Undefined) Kind() types.ValueKind {
	return types.Undefined
}

// Ref returns the typed literal of the Undefined value, like "<4 x i32> undef".
func (u *Undefined) Ref() string {
	return u.typ.String() + " undef"
}

// String returns the typed literal of the Undefined value.
func (u *Undefined) String() string {
	return u.Ref()
}

func (u *Undefined) isValue() {}
