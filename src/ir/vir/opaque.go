package vir

import (
	"fmt"
	"strings"

	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// OpaqueInstruction defines a call to an external function. Calls, loads and anything else the lane analyses cannot
// see through are represented by it.
type OpaqueInstruction struct {
	instruction
	callee string  // callee is the name of the called function.
	args   []Value // args holds the call arguments.
}

// Param represents a function parameter. Parameters are values, but not instructions.
type Param struct {
	f    *Function  // Parent function.
	id   int        // Unique identifier of parameter.
	name string     // Name of parameter.
	typ  types.Type // Type of parameter.
}

// ---------------------
// ----- Functions -----
// ---------------------

// Kind returns types.Opaque.
func (inst *OpaqueInstruction) Kind() types.ValueKind {
	return types.Opaque
}

// String returns the textual VIR representation of the OpaqueInstruction.
func (inst *OpaqueInstruction) String() string {
	args := make([]string, len(inst.args))
	for i1, e1 := range inst.args {
		args[i1] = e1.Ref()
	}
	call := fmt.Sprintf("call %s @%s(%s)", inst.typ.String(), inst.callee, strings.Join(args, ", "))
	if inst.typ.IsVoid() {
		return call
	}
	return inst.Ref() + " = " + call
}

// Operands returns the call arguments.
func (inst *OpaqueInstruction) Operands() []Value {
	return append([]Value(nil), inst.args...)
}

// Callee returns the name of the called function.
func (inst *OpaqueInstruction) Callee() string {
	return inst.callee
}

// Id returns the unique sequence number assigned to Param p when it was created.
func (p *Param) Id() int {
	return p.id
}

// Name returns the name of Param p.
func (p *Param) Name() string {
	return p.name
}

// Type returns the type of Param p.
func (p *Param) Type() types.Type {
	return p.typ
}

// Kind returns types.Param.
func (p *Param) Kind() types.ValueKind {
	return types.Param
}

// Ref returns the operand representation of Param p.
func (p *Param) Ref() string {
	return localSigil + p.name
}

// String returns the textual VIR representation of Param p.
func (p *Param) String() string {
	return fmt.Sprintf("%s: %s", p.Ref(), p.typ.String())
}

// Function returns the function that declares Param p.
func (p *Param) Function() *Function {
	return p.f
}

func (p *Param) isValue() {}
