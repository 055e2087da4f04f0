package vir

import (
	"fmt"
	"strings"

	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Module defines a program that contains functions.
type Module struct {
	ctx       *Context             // Context that owns the constants used by the module.
	id        int                  // Unique identifier of module.
	Name      string               // Name of module. Not important.
	functions []*Function          // Functions in declaration order.
	names     map[string]*Function // All functions defined in module by name.
}

// ---------------------
// ----- Constants -----
// ---------------------

// labelFunctionPrefix is used when assigning names to Function when no name is given.
const labelFunctionPrefix = "func"

// ---------------------
// ----- Functions -----
// ---------------------

// newModule creates a new empty module with the given optional name.
func newModule(ctx *Context, name string) *Module {
	m := &Module{
		ctx:       ctx,
		id:        ctx.getId(),
		functions: make([]*Function, 0, 8),
		names:     make(map[string]*Function, 8),
	}
	if len(name) > 0 {
		m.Name = name
	} else {
		m.Name = "VIR Module"
	}
	return m
}

// Context returns the Context the module was created from.
func (m *Module) Context() *Context {
	return m.ctx
}

// String returns the textual VIR representation of the module.
func (m *Module) String() string {
	sb := strings.Builder{}
	for i1, e1 := range m.functions {
		if i1 > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(e1.String())
	}
	return sb.String()
}

// CreateFunction creates a new empty function with the given name and return type. An empty name gets a generated
// label. A name that is already declared in the module is an error.
func (m *Module) CreateFunction(name string, ret types.Type) (*Function, error) {
	f := &Function{
		m:      m,
		id:     m.ctx.getId(),
		typ:    ret,
		params: make([]*Param, 0, 8),
		blocks: make([]*Block, 0, 8),
		values: make(map[string]Value, 32),
		labels: make(map[string]*Block, 8),
	}
	if len(name) > 0 {
		f.name = name
	} else {
		f.name = fmt.Sprintf("%s%d", labelFunctionPrefix, f.id)
	}
	if _, ok := m.names[f.name]; ok {
		return nil, fmt.Errorf("function %s is already declared in module %s", f.name, m.Name)
	}
	m.names[f.name] = f
	m.functions = append(m.functions, f)
	return f, nil
}

// Functions returns a slice of all functions declared in Module m, in declaration order.
func (m *Module) Functions() []*Function {
	return append([]*Function(nil), m.functions...)
}

// Function returns a named function of Module m, if it exits. If no function with the given name exits, nil is
// returned.
func (m *Module) Function(name string) *Function {
	return m.names[name]
}
