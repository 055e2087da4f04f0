package vir

import (
	"fmt"
	"strconv"
	"strings"

	"lanec/src/diag"
	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Function represents a function. It has a name, return type, parameters and basic blocks. The first block is the
// entry block.
type Function struct {
	m      *Module           // Parent module.
	id     int               // Unique identifier assigned to this function.
	name   string            // Name of function.
	typ    types.Type        // Return type of function.
	params []*Param          // Parameters of function.
	blocks []*Block          // Basic blocks in function body.
	values map[string]Value  // Named local values: parameters and instructions.
	labels map[string]*Block // Basic blocks by label.
}

// ---------------------
// ----- Functions -----
// ---------------------

// Id returns the unique sequence number assigned to Function f when it was created.
func (f *Function) Id() int {
	return f.id
}

// Name returns the name of Function f.
func (f *Function) Name() string {
	return f.name
}

// ReturnType returns the return type of Function f.
func (f *Function) ReturnType() types.Type {
	return f.typ
}

// Module returns the module that declares Function f.
func (f *Function) Module() *Module {
	return f.m
}

// String returns the textual VIR representation of Function f.
func (f *Function) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("func @%s(", f.name))
	for i1, e1 := range f.params {
		if i1 > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e1.String())
	}
	sb.WriteRune(')')
	if !f.typ.IsVoid() {
		sb.WriteString(" -> ")
		sb.WriteString(f.typ.String())
	}
	sb.WriteString(" {\n")
	for _, e1 := range f.blocks {
		sb.WriteString(e1.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Blocks returns the basic blocks of Function f in layout order.
func (f *Function) Blocks() []*Block {
	return append([]*Block(nil), f.blocks...)
}

// Entry returns the entry block of Function f, or <nil> if f has no blocks.
func (f *Function) Entry() *Block {
	if len(f.blocks) < 1 {
		return nil
	}
	return f.blocks[0]
}

// Params returns the parameters of Function f.
func (f *Function) Params() []*Param {
	return append([]*Param(nil), f.params...)
}

// CreateParam creates and adds a parameter to Function f. Parameters must be created before any instruction, the
// name must be unique within f.
func (f *Function) CreateParam(name string, typ types.Type) *Param {
	if typ.IsVoid() {
		panic(diag.New(diag.PhaseBuild, diag.KindInvalidInput).
			Value(localSigil + name).Detail("parameter of type void").Build())
	}
	p := &Param{
		f:   f,
		id:  f.m.ctx.getId(),
		typ: typ,
	}
	p.name = f.uniqueName(name, p.id)
	f.values[p.name] = p
	f.params = append(f.params, p)
	return p
}

// CreateBlock creates a new Block appended to Function f. If name is empty or taken, a unique label is generated.
func (f *Function) CreateBlock(name string) *Block {
	b := &Block{
		f:            f,
		id:           f.m.ctx.getId(),
		instructions: make([]Instruction, 0, 16),
	}
	if len(name) < 1 {
		name = labelBlockPrefix + strconv.Itoa(b.id)
	}
	if _, ok := f.labels[name]; ok {
		name = fmt.Sprintf("%s.%d", name, b.id)
	}
	b.name = name
	f.labels[name] = b
	f.blocks = append(f.blocks, b)
	return b
}

// Param returns the parameter with given name, if it exists. If Function f does not have a parameter with the
// given name, nil is returned.
func (f *Function) Param(name string) *Param {
	for _, e1 := range f.params {
		if e1.name == name {
			return e1
		}
	}
	return nil
}

// Block returns the basic block with the given label, or <nil>.
func (f *Function) Block(name string) *Block {
	return f.labels[name]
}

// Value returns the parameter or instruction with the given name, without sigil, or <nil>.
func (f *Function) Value(name string) Value {
	if v, ok := f.values[name]; ok {
		return v
	}
	return nil
}

// uniqueName returns name if it's not yet used in Function f. An empty name becomes the id, a taken name gets the
// id appended.
func (f *Function) uniqueName(name string, id int) string {
	if len(name) < 1 {
		name = strconv.Itoa(id)
	}
	if _, ok := f.values[name]; ok {
		name = fmt.Sprintf("%s.%d", name, id)
	}
	return name
}
