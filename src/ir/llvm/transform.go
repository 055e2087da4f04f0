// Package llvm provides means to transform VIR modules into LLVM IR for the system installed LLVM runtime.
package llvm

import (
	"errors"
	"fmt"
	"path/filepath"
)

import (
	"go.uber.org/zap"
	"tinygo.org/x/go-llvm"
)

import (
	"lanec/src/diag"
	"lanec/src/ir/vir"
	"lanec/src/ir/vir/types"
	"lanec/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// symTab maps the values of one VIR function to their LLVM counterparts.
type symTab struct {
	m      map[vir.Value]llvm.Value
	blocks map[*vir.Block]llvm.BasicBlock
}

// callee is an LLVM function together with its function type.
type callee struct {
	fn  llvm.Value
	typ llvm.Type
}

// lowering holds the LLVM objects shared by the lowering of all functions of one module.
type lowering struct {
	ctx   llvm.Context
	m     llvm.Module
	b     llvm.Builder
	funcs map[string]callee // Defined and external functions by name.
}

// pendingPhi is an LLVM phi whose incoming edges are added once every block of its function is generated.
type pendingPhi struct {
	ll  llvm.Value
	phi *vir.PhiInstruction
}

// ---------------------
// ----- Constants -----
// ---------------------

const mapSize = 16 // Predefined size for a decently sized symbol table hash table.

// hostTriple selects the triple of the host LLVM was built for.
const hostTriple = "host"

// -------------------
// ----- globals -----
// -------------------

// binOps maps VIR binary operations to LLVM opcodes.
var binOps = [...]llvm.Opcode{
	types.Add:  llvm.Add,
	types.Sub:  llvm.Sub,
	types.Mul:  llvm.Mul,
	types.SDiv: llvm.SDiv,
	types.UDiv: llvm.UDiv,
	types.SRem: llvm.SRem,
	types.URem: llvm.URem,
	types.Shl:  llvm.Shl,
	types.LShr: llvm.LShr,
	types.AShr: llvm.AShr,
	types.And:  llvm.And,
	types.Or:   llvm.Or,
	types.Xor:  llvm.Xor,
	types.FAdd: llvm.FAdd,
	types.FSub: llvm.FSub,
	types.FMul: llvm.FMul,
	types.FDiv: llvm.FDiv,
	types.FRem: llvm.FRem,
}

// castOps maps VIR cast operations to LLVM opcodes.
var castOps = [...]llvm.Opcode{
	types.Trunc:   llvm.Trunc,
	types.ZExt:    llvm.ZExt,
	types.SExt:    llvm.SExt,
	types.FPToUI:  llvm.FPToUI,
	types.FPToSI:  llvm.FPToSI,
	types.UIToFP:  llvm.UIToFP,
	types.SIToFP:  llvm.SIToFP,
	types.FPTrunc: llvm.FPTrunc,
	types.FPExt:   llvm.FPExt,
	types.BitCast: llvm.BitCast,
}

// ---------------------
// ----- functions -----
// ---------------------

// GenLLVM lowers the VIR module m to LLVM and verifies the result. It returns textual LLVM IR, or an object file
// if cfg names a target triple.
func GenLLVM(opt util.Options, cfg util.LLVMConfig, m *vir.Module) ([]byte, error) {
	if m == nil {
		return nil, errors.New("module is <nil>")
	}

	ctx := llvm.NewContext()
	defer ctx.Dispose()

	// Builder constructs LLVM IR instructions on basic block level.
	b := ctx.NewBuilder()
	defer b.Dispose()

	// Set module name equal file name, if any.
	name := m.Name
	if len(opt.Src) > 0 && opt.Src != "-" {
		name = filepath.Base(opt.Src)
	}
	mod := ctx.NewModule(name)
	defer mod.Dispose()

	l := &lowering{
		ctx:   ctx,
		m:     mod,
		b:     b,
		funcs: make(map[string]callee, mapSize),
	}

	// Declare all functions before generating bodies, calls may refer to any of them.
	funcs := m.Functions()
	for _, e1 := range funcs {
		if err := l.genFuncHeader(e1); err != nil {
			return nil, err
		}
	}
	for _, e1 := range funcs {
		if err := l.genFuncBody(e1); err != nil {
			return nil, err
		}
	}

	if err := llvm.VerifyModule(mod, llvm.ReturnStatusAction); err != nil {
		return nil, diag.New(diag.PhaseLower, diag.KindInvalidInput).
			Value(name).Detail("generated LLVM module does not verify").Cause(err).Build()
	}
	Logger().Debug("generated LLVM IR", zap.String("module", name), zap.Int("functions", len(funcs)))

	if len(cfg.Triple) < 1 {
		return []byte(mod.String()), nil
	}
	return genObject(mod, cfg)
}

// genFuncHeader generates the LLVM IR declaration of a function. The declaration defines a function's name,
// parameters and return type.
func (l *lowering) genFuncHeader(f *vir.Function) error {
	params := f.Params()
	atyp := make([]llvm.Type, len(params))
	for i1, e1 := range params {
		atyp[i1] = l.genType(e1.Type())
	}
	ftyp := llvm.FunctionType(l.genType(f.ReturnType()), atyp, false)
	fun := llvm.AddFunction(l.m, f.Name(), ftyp)
	for i1, e1 := range params {
		fun.Param(i1).SetName(llvmName(e1.Name()))
	}
	l.funcs[f.Name()] = callee{fn: fun, typ: ftyp}
	return nil
}

// genFuncBody generates the basic blocks of function f. Blocks are generated in layout order, phis get their
// incoming edges once all blocks exist.
func (l *lowering) genFuncBody(f *vir.Function) error {
	fun := l.funcs[f.Name()].fn
	st := &symTab{
		m:      make(map[vir.Value]llvm.Value, mapSize),
		blocks: make(map[*vir.Block]llvm.BasicBlock, mapSize),
	}
	for i1, e1 := range f.Params() {
		st.m[e1] = fun.Param(i1)
	}
	for _, e1 := range f.Blocks() {
		st.blocks[e1] = l.ctx.AddBasicBlock(fun, e1.Name())
	}

	phis := make([]pendingPhi, 0, 4)
	for _, e1 := range f.Blocks() {
		l.b.SetInsertPointAtEnd(st.blocks[e1])
		for _, e2 := range e1.Instructions() {
			if phi, ok := e2.(*vir.PhiInstruction); ok {
				ll := l.b.CreatePHI(l.genType(phi.Type()), llvmName(phi.Name()))
				st.m[phi] = ll
				phis = append(phis, pendingPhi{ll: ll, phi: phi})
				continue
			}
			if err := l.genInstruction(e2, st); err != nil {
				return err
			}
		}
	}

	for _, e1 := range phis {
		vals := make([]llvm.Value, e1.phi.IncomingCount())
		blocks := make([]llvm.BasicBlock, e1.phi.IncomingCount())
		for i1 := range vals {
			v, err := l.value(e1.phi.IncomingValue(i1), st)
			if err != nil {
				return err
			}
			vals[i1] = v
			blocks[i1] = st.blocks[e1.phi.IncomingBlock(i1)]
		}
		e1.ll.AddIncoming(vals, blocks)
	}
	return nil
}

// genInstruction generates the LLVM IR of one non-phi instruction at the end of the current block.
func (l *lowering) genInstruction(inst vir.Instruction, st *symTab) error {
	ops := inst.Operands()
	args := make([]llvm.Value, len(ops))
	for i1, e1 := range ops {
		v, err := l.value(e1, st)
		if err != nil {
			return err
		}
		args[i1] = v
	}
	name := llvmName(inst.Name())

	var res llvm.Value
	switch inst := inst.(type) {
	case *vir.BinaryInstruction:
		res = l.b.CreateBinOp(binOps[inst.Operator()], args[0], args[1], name)
	case *vir.CastInstruction:
		res = l.b.CreateCast(args[0], castOps[inst.Operator()], l.genType(inst.Type()), name)
	case *vir.InsertInstruction:
		res = l.b.CreateInsertElement(args[0], args[1], l.laneIndex(inst.Lane()), name)
	case *vir.ExtractInstruction:
		res = l.b.CreateExtractElement(args[0], l.laneIndex(inst.Lane()), name)
	case *vir.ShuffleInstruction:
		mask := inst.Mask()
		sel := make([]llvm.Value, len(mask))
		for i1, e1 := range mask {
			if e1 == vir.UndefLane {
				sel[i1] = llvm.Undef(l.ctx.Int32Type())
			} else {
				sel[i1] = l.laneIndex(e1)
			}
		}
		res = l.b.CreateShuffleVector(args[0], args[1], llvm.ConstVector(sel, false), name)
	case *vir.OpaqueInstruction:
		fn, err := l.declare(inst, args)
		if err != nil {
			return err
		}
		if inst.Type().IsVoid() {
			// Void values cannot be named.
			name = ""
		}
		res = l.b.CreateCall(fn, args, name)
	case *vir.BranchInstruction:
		succ := inst.Successors()
		if inst.Condition() == nil {
			l.b.CreateBr(st.blocks[succ[0]])
		} else {
			l.b.CreateCondBr(args[0], st.blocks[succ[0]], st.blocks[succ[1]])
		}
		return nil
	case *vir.ReturnInstruction:
		if inst.Value() == nil {
			l.b.CreateRetVoid()
		} else {
			l.b.CreateRet(args[0])
		}
		return nil
	default:
		return diag.New(diag.PhaseLower, diag.KindInvalidInput).
			Value(inst.Ref()).Detail("cannot lower %s instruction", inst.Kind()).Build()
	}
	st.m[inst] = res
	return nil
}

// declare returns the function called by the opaque instruction inst with the lowered arguments args. Unknown
// callees are declared as external functions of the call's signature.
func (l *lowering) declare(inst *vir.OpaqueInstruction, args []llvm.Value) (llvm.Value, error) {
	atyp := make([]llvm.Type, len(args))
	for i1, e1 := range args {
		atyp[i1] = e1.Type()
	}
	ret := l.genType(inst.Type())

	if c, ok := l.funcs[inst.Callee()]; ok {
		if c.typ.ReturnType() != ret || !sameTypes(c.typ.ParamTypes(), atyp) {
			return llvm.Value{}, diag.New(diag.PhaseLower, diag.KindTypeMismatch).
				Value(inst.Ref()).Detail("call does not match the signature of @%s", inst.Callee()).Build()
		}
		return c.fn, nil
	}
	ftyp := llvm.FunctionType(ret, atyp, false)
	fn := llvm.AddFunction(l.m, inst.Callee(), ftyp)
	l.funcs[inst.Callee()] = callee{fn: fn, typ: ftyp}
	Logger().Debug("declared external function", zap.String("name", inst.Callee()))
	return fn, nil
}

// value returns the LLVM value of the VIR value v. Constants are generated on demand, any other value must have
// been generated before.
func (l *lowering) value(v vir.Value, st *symTab) (llvm.Value, error) {
	switch v := v.(type) {
	case *vir.Constant:
		return l.genConst(v), nil
	case *vir.Undefined:
		return llvm.Undef(l.genType(v.Type())), nil
	}
	if ll, ok := st.m[v]; ok {
		return ll, nil
	}
	return llvm.Value{}, diag.New(diag.PhaseLower, diag.KindNotFound).
		Value(v.Ref()).Detail("value used before its definition in block layout order").Build()
}

// genConst generates the LLVM constant of c.
func (l *lowering) genConst(c *vir.Constant) llvm.Value {
	t := l.genType(c.Type())
	switch {
	case c.IsVector() && c.IsZero():
		return llvm.ConstNull(t)
	case c.IsVector():
		lanes := c.Lanes()
		elems := make([]llvm.Value, len(lanes))
		for i1, e1 := range lanes {
			if e1 == nil {
				elems[i1] = llvm.Undef(t.ElementType())
			} else {
				elems[i1] = l.genConst(e1)
			}
		}
		return llvm.ConstVector(elems, false)
	case c.Type().IsFloat():
		return llvm.ConstFloat(t, c.Float())
	case c.Type().Kind == types.Bool:
		return llvm.ConstInt(t, uint64(c.Int()), false)
	default:
		return llvm.ConstInt(t, uint64(c.Int()), true)
	}
}

// genType returns the LLVM type of typ.
func (l *lowering) genType(typ types.Type) llvm.Type {
	var t llvm.Type
	switch typ.Kind {
	case types.Void:
		return l.ctx.VoidType()
	case types.Bool:
		t = l.ctx.Int1Type()
	case types.Int8:
		t = l.ctx.Int8Type()
	case types.Int16:
		t = l.ctx.Int16Type()
	case types.Int32:
		t = l.ctx.Int32Type()
	case types.Int64:
		t = l.ctx.Int64Type()
	case types.Float:
		t = l.ctx.FloatType()
	case types.Double:
		t = l.ctx.DoubleType()
	}
	if typ.IsVector() {
		return llvm.VectorType(t, typ.Lanes)
	}
	return t
}

// laneIndex returns the i32 constant of lane i.
func (l *lowering) laneIndex(i int) llvm.Value {
	return llvm.ConstInt(l.ctx.Int32Type(), uint64(i), false)
}

// genObject compiles mod for the target triple of cfg and returns the object file.
func genObject(mod llvm.Module, cfg util.LLVMConfig) ([]byte, error) {
	// Initialise LLVM code generation.
	llvm.InitializeAllTargetInfos()
	llvm.InitializeAllTargets()
	llvm.InitializeAllTargetMCs()
	llvm.InitializeAllAsmParsers()
	llvm.InitializeAllAsmPrinters()

	triple := cfg.Triple
	if triple == hostTriple {
		triple = llvm.DefaultTargetTriple()
	}
	t, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		return nil, diag.New(diag.PhaseLower, diag.KindInvalidInput).
			Value(triple).Detail("unsupported target triple").Cause(err).Build()
	}
	cpu := cfg.CPU
	if len(cpu) < 1 {
		cpu = "generic"
	}
	Logger().Debug("compiling", zap.String("triple", triple), zap.String("cpu", cpu))

	tm := t.CreateTargetMachine(triple, cpu, "",
		llvm.CodeGenLevelDefault,
		llvm.RelocDefault,
		llvm.CodeModelDefault)
	defer tm.Dispose()

	td := tm.CreateTargetData()
	defer td.Dispose()

	mod.SetDataLayout(td.String())
	mod.SetTarget(tm.Triple())

	// Compile target and store in memory.
	buf, err := tm.EmitToMemoryBuffer(mod, llvm.ObjectFile)
	if err != nil {
		return nil, fmt.Errorf("emit object file: %w", err)
	} else if buf.IsNil() {
		return nil, errors.New("could not emit compiled code to memory")
	}
	defer buf.Dispose()
	return buf.Bytes(), nil
}

// ----------------------------
// ----- Helper functions -----
// ----------------------------

// llvmName returns the LLVM name of a VIR value. Numeric VIR names are prefixed so that they do not read as LLVM's
// own numbering of unnamed values.
func llvmName(name string) string {
	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		return "v" + name
	}
	return name
}

// sameTypes returns true if both type lists are equal.
func sameTypes(t1, t2 []llvm.Type) bool {
	if len(t1) != len(t2) {
		return false
	}
	for i1 := range t1 {
		if t1[i1] != t2[i1] {
			return false
		}
	}
	return true
}
