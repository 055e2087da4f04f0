// Package types defines VIR scalar kinds, vector types, opcodes and value kinds.
package types

import (
	"fmt"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Kind defines the scalar kind of a value or of every lane of a vector value.
type Kind uint

// Type defines the type of a VIR value. A Type with Lanes equal to 0 is a scalar, any other Type is a fixed-width
// vector of Lanes elements of Kind. Type is comparable, two types are equal if and only if both fields are equal.
type Type struct {
	Kind  Kind // Kind of the scalar or of every vector lane.
	Lanes int  // Number of vector lanes. 0 for scalars.
}

// BinaryOperation defines a binary arithmetic or bitwise opcode.
type BinaryOperation uint

// CastOperation defines a conversion opcode.
type CastOperation uint

// ValueKind identifies the variant of a VIR value.
type ValueKind uint

// ---------------------
// ----- Constants -----
// ---------------------

// MaxLanes is the widest vector type VIR supports.
const MaxLanes = 64

const (
	Void   Kind = iota // Void is the kind of values that produce nothing, like terminators.
	Bool               // Bool is a one bit integer.
	Int8               // Int8 is an eight bit integer.
	Int16              // Int16 is a sixteen bit integer.
	Int32              // Int32 is a 32 bit integer.
	Int64              // Int64 is a 64 bit integer.
	Float              // Float is an IEEE 754 single precision floating point number.
	Double             // Double is an IEEE 754 double precision floating point number.
)

const (
	Add  BinaryOperation = iota // Add identifies integer a = b + c.
	Sub                         // Sub identifies integer a = b - c.
	Mul                         // Mul identifies integer a = b * c.
	SDiv                        // SDiv identifies signed a = b / c.
	UDiv                        // UDiv identifies unsigned a = b / c.
	SRem                        // SRem identifies signed a = b % c.
	URem                        // URem identifies unsigned a = b % c.
	Shl                         // Shl identifies a = b << c.
	LShr                        // LShr identifies logical a = b >> c.
	AShr                        // AShr identifies arithmetic a = b >> c.
	And                         // And identifies a = b & c.
	Or                          // Or identifies a = b | c.
	Xor                         // Xor identifies a = b ^ c.
	FAdd                        // FAdd identifies floating point a = b + c.
	FSub                        // FSub identifies floating point a = b - c.
	FMul                        // FMul identifies floating point a = b * c.
	FDiv                        // FDiv identifies floating point a = b / c.
	FRem                        // FRem identifies floating point a = b % c.
)

const (
	Trunc   CastOperation = iota // Trunc truncates an integer to a narrower integer.
	ZExt                         // ZExt zero extends an integer.
	SExt                         // SExt sign extends an integer.
	FPToUI                       // FPToUI converts floating point to unsigned integer.
	FPToSI                       // FPToSI converts floating point to signed integer.
	UIToFP                       // UIToFP converts unsigned integer to floating point.
	SIToFP                       // SIToFP converts signed integer to floating point.
	FPTrunc                      // FPTrunc narrows a floating point value.
	FPExt                        // FPExt widens a floating point value.
	BitCast                      // BitCast reinterprets the bits of a value.
)

const (
	Constant  ValueKind = iota // Constant is a scalar or vector literal.
	Undefined                  // Undefined is an unconstrained value of some type.
	Param                      // Param is a function parameter.
	Binary                     // Binary is a BinaryInstruction.
	Cast                       // Cast is a CastInstruction.
	Phi                        // Phi is a PhiInstruction.
	Insert                     // Insert is an InsertInstruction.
	Extract                    // Extract is an ExtractInstruction.
	Shuffle                    // Shuffle is a ShuffleInstruction.
	Opaque                     // Opaque is an OpaqueInstruction.
	Branch                     // Branch is a conditional or unconditional BranchInstruction.
	Return                     // Return is a ReturnInstruction.
)

// -------------------
// ----- Globals -----
// -------------------

// Common scalar types.
var (
	VoidType   = Type{Kind: Void}
	BoolType   = Type{Kind: Bool}
	Int8Type   = Type{Kind: Int8}
	Int16Type  = Type{Kind: Int16}
	Int32Type  = Type{Kind: Int32}
	Int64Type  = Type{Kind: Int64}
	FloatType  = Type{Kind: Float}
	DoubleType = Type{Kind: Double}
)

// kTyp provides string literals for Kind constants.
var kTyp = [...]string{
	"void",
	"i1",
	"i8",
	"i16",
	"i32",
	"i64",
	"float",
	"double",
}

// kBits provides the bit width of Kind constants.
var kBits = [...]int{0, 1, 8, 16, 32, 64, 32, 64}

// bTyp provides string literals for BinaryOperation constants.
var bTyp = [...]string{
	"add",
	"sub",
	"mul",
	"sdiv",
	"udiv",
	"srem",
	"urem",
	"shl",
	"lshr",
	"ashr",
	"and",
	"or",
	"xor",
	"fadd",
	"fsub",
	"fmul",
	"fdiv",
	"frem",
}

// cTyp provides string literals for CastOperation constants.
var cTyp = [...]string{
	"trunc",
	"zext",
	"sext",
	"fptoui",
	"fptosi",
	"uitofp",
	"sitofp",
	"fptrunc",
	"fpext",
	"bitcast",
}

// vTyp provides string literals for ValueKind constants.
var vTyp = [...]string{
	"Constant",
	"Undefined",
	"Param",
	"Binary",
	"Cast",
	"Phi",
	"Insert",
	"Extract",
	"Shuffle",
	"Opaque",
	"Branch",
	"Return",
}

// ---------------------
// ----- Functions -----
// ---------------------

// String provides a print friendly string representation of the Kind.
func (k Kind) String() string {
	if int(k) >= len(kTyp) {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kTyp[k]
}

// Bits returns the bit width of Kind k.
func (k Kind) Bits() int {
	if int(k) >= len(kBits) {
		return 0
	}
	return kBits[k]
}

// IsInteger returns true for Bool and the integer kinds.
func (k Kind) IsInteger() bool {
	return k >= Bool && k <= Int64
}

// IsFloat returns true for Float and Double.
func (k Kind) IsFloat() bool {
	return k == Float || k == Double
}

// ParseKind returns the Kind with the textual representation s.
func ParseKind(s string) (Kind, bool) {
	for i1, e1 := range kTyp {
		if e1 == s {
			return Kind(i1), true
		}
	}
	return Void, false
}

// Scalar returns the scalar Type of Kind k.
func Scalar(k Kind) Type {
	return Type{Kind: k}
}

// Vector returns the vector Type of the given lane count. Vector panics if the lane count is outside [1, MaxLanes]
// or if the element kind is Void.
func Vector(k Kind, lanes int) Type {
	if lanes < 1 || lanes > MaxLanes {
		panic(fmt.Sprintf("vector lane count %d is outside [1, %d]", lanes, MaxLanes))
	}
	if k == Void {
		panic("vector of void")
	}
	return Type{Kind: k, Lanes: lanes}
}

// IsVector returns true if t is a vector type.
func (t Type) IsVector() bool {
	return t.Lanes > 0
}

// IsVoid returns true if t is the void type.
func (t Type) IsVoid() bool {
	return t.Kind == Void && t.Lanes == 0
}

// IsInteger returns true if t or its lanes are integers.
func (t Type) IsInteger() bool {
	return t.Kind.IsInteger()
}

// IsFloat returns true if t or its lanes are floating point numbers.
func (t Type) IsFloat() bool {
	return t.Kind.IsFloat()
}

// Elem returns the type of one lane of t. The element type of a scalar is the scalar itself.
func (t Type) Elem() Type {
	return Type{Kind: t.Kind}
}

// LaneCount returns the number of lanes of t. Scalars have one lane.
func (t Type) LaneCount() int {
	if t.Lanes == 0 {
		return 1
	}
	return t.Lanes
}

// WithLanes returns a vector type with the element kind of t and the given lane count.
func (t Type) WithLanes(lanes int) Type {
	return Vector(t.Kind, lanes)
}

// String returns the textual VIR representation of t, like i32 or <4 x float>.
func (t Type) String() string {
	if t.Lanes == 0 {
		return t.Kind.String()
	}
	return fmt.Sprintf("<%d x %s>", t.Lanes, t.Kind.String())
}

// String provides a print friendly string representation of the BinaryOperation.
func (op BinaryOperation) String() string {
	if int(op) >= len(bTyp) {
		return fmt.Sprintf("BinaryOperation(%d)", op)
	}
	return bTyp[op]
}

// IsFloat returns true for the floating point opcodes.
func (op BinaryOperation) IsFloat() bool {
	return op >= FAdd && op <= FRem
}

// ParseBinaryOperation returns the BinaryOperation with the textual representation s.
func ParseBinaryOperation(s string) (BinaryOperation, bool) {
	for i1, e1 := range bTyp {
		if e1 == s {
			return BinaryOperation(i1), true
		}
	}
	return Add, false
}

// String provides a print friendly string representation of the CastOperation.
func (op CastOperation) String() string {
	if int(op) >= len(cTyp) {
		return fmt.Sprintf("CastOperation(%d)", op)
	}
	return cTyp[op]
}

// ParseCastOperation returns the CastOperation with the textual representation s.
func ParseCastOperation(s string) (CastOperation, bool) {
	for i1, e1 := range cTyp {
		if e1 == s {
			return CastOperation(i1), true
		}
	}
	return Trunc, false
}

// String provides a print friendly string representation of the ValueKind.
func (k ValueKind) String() string {
	if int(k) >= len(vTyp) {
		return fmt.Sprintf("ValueKind(%d)", k)
	}
	return vTyp[k]
}
