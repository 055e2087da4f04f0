package lanes

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"lanec/src/diag"
	"lanec/src/ir/vir"
	"lanec/src/ir/vir/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// fixture is a function
//
//	func @f(%a: <4 x i32>, %b: <4 x i32>, %s: i32) {
//	entry:
//	  ...
//	  br loop
//	loop:
//	  ...
//	  %c = call i1 @done()
//	  br %c, exit, loop
//	exit:
//	  ret
//	}
//
// with one Builder positioned before the branch of entry and one before the call in loop.
type fixture struct {
	ctx     *Context
	ir      *vir.Context
	f       *vir.Function
	a, b, s *vir.Param
	entry   *vir.Block
	loop    *vir.Block
	exit    *vir.Block
	pre     *vir.Builder // Inserts before the branch of entry.
	body    *vir.Builder // Inserts before the call in loop.
	call    vir.Instruction
	ret     vir.Instruction
}

// ---------------------
// ----- Constants -----
// ---------------------

var v4i32 = types.Vector(types.Int32, 4)

// ---------------------
// ----- Functions -----
// ---------------------

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ir := vir.NewContext()
	ctx, err := NewContext(ir, vir.Target{VectorWidth: 4, MaskBitCount: 32}, nil)
	require.NoError(t, err)

	m := ir.NewModule("lanes")
	f, err := m.CreateFunction("f", types.VoidType)
	require.NoError(t, err)
	fx := &fixture{
		ctx:   ctx,
		ir:    ir,
		f:     f,
		a:     f.CreateParam("a", v4i32),
		b:     f.CreateParam("b", v4i32),
		s:     f.CreateParam("s", types.Int32Type),
		entry: f.CreateBlock("entry"),
		loop:  f.CreateBlock("loop"),
		exit:  f.CreateBlock("exit"),
		pre:   vir.NewBuilder(),
		body:  vir.NewBuilder(),
	}

	bld := vir.NewBuilder()
	bld.SetInsertPointAtEnd(fx.entry)
	br := bld.CreateBranch(fx.loop)
	bld.SetInsertPointAtEnd(fx.loop)
	fx.call = bld.CreateOpaque("done", types.BoolType, nil, "c")
	bld.CreateCondBranch(fx.call, fx.exit, fx.loop)
	bld.SetInsertPointAtEnd(fx.exit)
	fx.ret = bld.CreateReturn(nil)

	fx.pre.SetInsertPointBefore(br)
	fx.body.SetInsertPointBefore(fx.call)
	return fx
}

// i32 returns the i32 constant v.
func (fx *fixture) i32(v int64) *vir.Constant {
	return fx.ir.ConstInt(types.Int32Type, v)
}

// splat returns the <4 x i32> constant with v in every lane.
func (fx *fixture) splat(v int64) *vir.Constant {
	return fx.ctx.Splat(fx.i32(v), 4)
}

// violation runs fn and returns the *diag.Error it panics with.
func violation(t *testing.T, fn func()) *diag.Error {
	t.Helper()
	var err error
	func() {
		defer diag.Recover(&err)
		fn()
	}()
	require.Error(t, err, "expected a contract violation")
	var de *diag.Error
	require.True(t, errors.As(err, &de))
	return de
}

// ----------------------------------
// ----- InsertChainFlattener -----
// ----------------------------------

func TestFlattenUndefinedBase(t *testing.T) {
	fx := newFixture(t)
	v3 := types.Vector(types.Int32, 3)
	x, y, z := fx.i32(10), fx.i32(20), fx.s

	i0 := fx.pre.CreateInsert(fx.ir.Undef(v3), x, 2, "i0")
	i1 := fx.pre.CreateInsert(i0, y, 0, "i1")
	i2 := fx.pre.CreateInsert(i1, z, 1, "i2")

	elems := fx.ctx.FlattenInsertChain(i2, 3)
	require.Len(t, elems, 3)
	assert.Equal(t, []vir.Value{y, z, x}, elems)
}

func TestFlattenLeavesUnwrittenLanesUnset(t *testing.T) {
	fx := newFixture(t)
	ins := fx.pre.CreateInsert(fx.ir.Undef(v4i32), fx.s, 1, "")
	elems := fx.ctx.FlattenInsertChain(ins, 4)
	assert.Equal(t, []vir.Value{nil, fx.s, nil, nil}, elems)
}

func TestFlattenConstantBase(t *testing.T) {
	fx := newFixture(t)
	base := fx.ctx.BuildFromArray([]*vir.Constant{fx.i32(1), nil, fx.i32(3), fx.i32(4)})
	ins := fx.pre.CreateInsert(base, fx.s, 2, "")

	elems := fx.ctx.FlattenInsertChain(ins, 4)
	assert.Equal(t, []vir.Value{fx.i32(1), nil, fx.s, fx.i32(4)}, elems)

	zero := fx.pre.CreateInsert(fx.ir.ConstZero(v4i32), fx.s, 0, "")
	elems = fx.ctx.FlattenInsertChain(zero, 4)
	assert.Equal(t, []vir.Value{fx.s, fx.i32(0), fx.i32(0), fx.i32(0)}, elems)
}

func TestFlattenContractViolations(t *testing.T) {
	fx := newFixture(t)
	i0 := fx.pre.CreateInsert(fx.ir.Undef(v4i32), fx.s, 1, "")
	dup := fx.pre.CreateInsert(i0, fx.i32(7), 1, "dup")
	assert.Equal(t, diag.KindDuplicateLane, violation(t, func() { fx.ctx.FlattenInsertChain(dup, 4) }).Kind)

	onParam := fx.pre.CreateInsert(fx.a, fx.s, 0, "")
	assert.Equal(t, diag.KindUnsupportedBase, violation(t, func() { fx.ctx.FlattenInsertChain(onParam, 4) }).Kind)

	i3 := fx.pre.CreateInsert(fx.ir.Undef(v4i32), fx.s, 3, "")
	assert.Equal(t, diag.KindOutOfBounds, violation(t, func() { fx.ctx.FlattenInsertChain(i3, 2) }).Kind)
}

// ---------------------------
// ----- EqualityOracle -----
// ---------------------------

func TestAreValuesEqualReflexive(t *testing.T) {
	fx := newFixture(t)
	phi := fx.body.CreatePhi(v4i32, "p")
	add := fx.body.CreateBinary(types.Add, fx.a, fx.b, "add")
	values := []vir.Value{fx.a, fx.s, fx.i32(3), fx.splat(3), fx.ir.Undef(v4i32), phi, add, fx.call}
	for _, e1 := range values {
		assert.True(t, fx.ctx.AreValuesEqual(e1, e1), e1.String())
	}
}

func TestAreValuesEqualStructural(t *testing.T) {
	fx := newFixture(t)
	add0 := fx.pre.CreateBinary(types.Add, fx.a, fx.splat(1), "add0")
	add1 := fx.pre.CreateBinary(types.Add, fx.a, fx.splat(1), "add1")
	sub := fx.pre.CreateBinary(types.Sub, fx.a, fx.splat(1), "sub")
	swapped := fx.pre.CreateBinary(types.Add, fx.splat(1), fx.a, "swapped")
	ext0 := fx.pre.CreateCast(types.SExt, add0, types.Vector(types.Int64, 4), "ext0")
	ext1 := fx.pre.CreateCast(types.SExt, add1, types.Vector(types.Int64, 4), "ext1")
	zext := fx.pre.CreateCast(types.ZExt, add1, types.Vector(types.Int64, 4), "zext")

	assert.True(t, fx.ctx.AreValuesEqual(add0, add1))
	assert.True(t, fx.ctx.AreValuesEqual(ext0, ext1))
	assert.True(t, fx.ctx.AreValuesEqual(fx.splat(1), fx.ctx.BuildFromArray(
		[]*vir.Constant{fx.i32(1), fx.i32(1), fx.i32(1), fx.i32(1)})))
	assert.False(t, fx.ctx.AreValuesEqual(add0, sub))
	assert.False(t, fx.ctx.AreValuesEqual(add0, swapped), "no algebraic identities")
	assert.False(t, fx.ctx.AreValuesEqual(ext0, zext))
	assert.False(t, fx.ctx.AreValuesEqual(fx.a, fx.b))
	assert.False(t, fx.ctx.AreValuesEqual(add0, ext0))
}

func TestAreValuesEqualLoopCarriedPhis(t *testing.T) {
	fx := newFixture(t)
	p0 := fx.body.CreatePhi(v4i32, "p0")
	p1 := fx.body.CreatePhi(v4i32, "p1")
	p2 := fx.body.CreatePhi(v4i32, "p2")
	n0 := fx.body.CreateBinary(types.Add, p0, fx.splat(1), "n0")
	n1 := fx.body.CreateBinary(types.Add, p1, fx.splat(1), "n1")
	p0.AddIncoming(fx.a, fx.entry)
	p0.AddIncoming(n0, fx.loop)
	p1.AddIncoming(fx.a, fx.entry)
	p1.AddIncoming(n1, fx.loop)
	p2.AddIncoming(fx.b, fx.entry)
	p2.AddIncoming(n0, fx.loop)
	require.NoError(t, vir.Validate(fx.f.Module()))

	assert.True(t, fx.ctx.AreValuesEqual(p0, p1))
	assert.True(t, fx.ctx.AreValuesEqual(n0, n1))
	assert.False(t, fx.ctx.AreValuesEqual(p0, p2))
}

func TestAreValuesEqualPhiArity(t *testing.T) {
	fx := newFixture(t)
	p0 := fx.body.CreatePhi(v4i32, "p0")
	p1 := fx.body.CreatePhi(v4i32, "p1")
	p0.AddIncoming(fx.a, fx.entry)
	p0.AddIncoming(fx.a, fx.loop)
	p1.AddIncoming(fx.a, fx.entry)
	assert.False(t, fx.ctx.AreValuesEqual(p0, p1))
}

func TestAreValuesEqualMisalignedBlocks(t *testing.T) {
	fx := newFixture(t)
	p0 := fx.body.CreatePhi(v4i32, "p0")
	p1 := fx.body.CreatePhi(v4i32, "p1")
	p0.AddIncoming(fx.a, fx.entry)
	p0.AddIncoming(fx.b, fx.loop)
	p1.AddIncoming(fx.b, fx.loop)
	p1.AddIncoming(fx.a, fx.entry)
	assert.NotPanics(t, func() { assert.False(t, fx.ctx.AreValuesEqual(p0, p1)) })

	// Lanes written from such phis are not proven uniform.
	s0 := fx.body.CreatePhi(types.Int32Type, "s0")
	s1 := fx.body.CreatePhi(types.Int32Type, "s1")
	s0.AddIncoming(fx.s, fx.entry)
	s0.AddIncoming(fx.s, fx.loop)
	s1.AddIncoming(fx.s, fx.loop)
	s1.AddIncoming(fx.s, fx.entry)
	i0 := fx.body.CreateInsert(fx.ir.Undef(v4i32), s0, 0, "i0")
	i1 := fx.body.CreateInsert(i0, s1, 1, "i1")
	assert.NotPanics(t, func() { assert.False(t, fx.ctx.AllLanesEqual(i1)) })
	assert.NoError(t, vir.Validate(fx.f.Module()))
}

// -----------------------------------
// ----- LaneUniformityAnalyzer -----
// -----------------------------------

func TestAllLanesEqualSplat(t *testing.T) {
	fx := newFixture(t)
	for w := 1; w <= 16; w++ {
		assert.True(t, fx.ctx.AllLanesEqual(fx.ctx.Splat(fx.i32(int64(w)), w)), "width %d", w)
		assert.True(t, fx.ctx.AllLanesEqual(fx.ctx.Splat(fx.ir.ConstFloat(types.FloatType, 0.5), w)))
	}
	assert.True(t, fx.ctx.AllLanesEqual(fx.ir.ConstZero(types.Vector(types.Double, 8))))
	assert.True(t, fx.ctx.AllLanesEqual(fx.ctx.Types.MaskAllOn))
}

func TestAllLanesEqualBuildFromArray(t *testing.T) {
	fx := newFixture(t)
	c1, c2 := fx.i32(1), fx.i32(2)
	assert.False(t, fx.ctx.AllLanesEqual(fx.ctx.BuildFromArray([]*vir.Constant{c1, c2, c1})))
	assert.False(t, fx.ctx.AllLanesEqual(fx.ctx.BuildFromArray([]*vir.Constant{c1, nil, c1})))
	assert.True(t, fx.ctx.AllLanesEqual(fx.ctx.BuildFromArray([]*vir.Constant{c2})))
}

func TestAllLanesEqualOperations(t *testing.T) {
	fx := newFixture(t)
	uni := fx.pre.CreateBinary(types.Mul, fx.splat(3), fx.splat(4), "uni")
	varying := fx.pre.CreateBinary(types.Mul, fx.splat(3), fx.a, "varying")
	ext := fx.pre.CreateCast(types.SIToFP, uni, types.Vector(types.Float, 4), "ext")
	call := fx.pre.CreateOpaque("load", v4i32, nil, "load")

	assert.True(t, fx.ctx.AllLanesEqual(uni))
	assert.True(t, fx.ctx.AllLanesEqual(ext))
	assert.False(t, fx.ctx.AllLanesEqual(varying))
	assert.False(t, fx.ctx.AllLanesEqual(fx.a))
	assert.False(t, fx.ctx.AllLanesEqual(call))
	assert.False(t, fx.ctx.AllLanesEqual(fx.ir.Undef(v4i32)))
}

func TestAllLanesEqualInsertChain(t *testing.T) {
	fx := newFixture(t)
	undef := fx.ir.Undef(v4i32)

	same := vir.Value(undef)
	for i1 := 0; i1 < 4; i1++ {
		same = fx.pre.CreateInsert(same, fx.s, i1, "")
	}
	assert.True(t, fx.ctx.AllLanesEqual(same))

	sparse := fx.pre.CreateInsert(undef, fx.s, 1, "")
	sparse = fx.pre.CreateInsert(sparse, fx.s, 3, "")
	assert.True(t, fx.ctx.AllLanesEqual(sparse), "unset lanes are ignored")

	e0 := fx.pre.CreateExtract(fx.a, 0, "e0")
	e1 := fx.pre.CreateExtract(fx.a, 1, "e1")
	mixed := fx.pre.CreateInsert(undef, e0, 0, "")
	mixed = fx.pre.CreateInsert(mixed, e1, 2, "")
	assert.False(t, fx.ctx.AllLanesEqual(mixed))

	// Structurally equal scalars computed twice.
	s0 := fx.pre.CreateBinary(types.Add, fx.s, fx.i32(1), "s0")
	s1 := fx.pre.CreateBinary(types.Add, fx.s, fx.i32(1), "s1")
	twice := fx.pre.CreateInsert(undef, s0, 0, "")
	twice = fx.pre.CreateInsert(twice, s1, 1, "")
	assert.True(t, fx.ctx.AllLanesEqual(twice))

	onConst := fx.pre.CreateInsert(fx.splat(9), fx.i32(9), 0, "")
	assert.True(t, fx.ctx.AllLanesEqual(onConst))
	onConst = fx.pre.CreateInsert(fx.splat(9), fx.i32(8), 0, "")
	assert.False(t, fx.ctx.AllLanesEqual(onConst))
}

func TestAllLanesEqualPhiCycle(t *testing.T) {
	fx := newFixture(t)
	p := fx.body.CreatePhi(v4i32, "p")
	p.AddIncoming(fx.splat(5), fx.entry)
	p.AddIncoming(p, fx.loop)
	require.NoError(t, vir.Validate(fx.f.Module()))
	assert.True(t, fx.ctx.AllLanesEqual(p))

	// Loop carried through an operation.
	q := fx.body.CreatePhi(v4i32, "q")
	n := fx.body.CreateBinary(types.Add, q, fx.splat(1), "n")
	q.AddIncoming(fx.splat(0), fx.entry)
	q.AddIncoming(n, fx.loop)
	assert.True(t, fx.ctx.AllLanesEqual(q))
	assert.True(t, fx.ctx.AllLanesEqual(n))
}

func TestAllLanesEqualPhiDistinctConstants(t *testing.T) {
	ir := vir.NewContext()
	ctx, err := NewContext(ir, vir.Target{VectorWidth: 4, MaskBitCount: 32}, nil)
	require.NoError(t, err)
	m := ir.NewModule("")
	f, err := m.CreateFunction("g", v4i32)
	require.NoError(t, err)
	cond := f.CreateParam("c", types.BoolType)
	entry, left, right, join := f.CreateBlock("entry"), f.CreateBlock("left"), f.CreateBlock("right"),
		f.CreateBlock("join")

	bld := vir.NewBuilder()
	bld.SetInsertPointAtEnd(entry)
	bld.CreateCondBranch(cond, left, right)
	bld.SetInsertPointAtEnd(left)
	bld.CreateBranch(join)
	bld.SetInsertPointAtEnd(right)
	bld.CreateBranch(join)
	bld.SetInsertPointAtEnd(join)
	phi := bld.CreatePhi(v4i32, "p")
	bld.CreateBranch(join)

	one := ir.ConstInt(types.Int32Type, 1)
	two := ir.ConstInt(types.Int32Type, 2)
	phi.AddIncoming(ctx.Splat(one, 4), left)
	phi.AddIncoming(ctx.BuildFromArray([]*vir.Constant{one, two, one, two}), right)
	phi.AddIncoming(phi, join)
	require.NoError(t, vir.Validate(m))

	assert.False(t, ctx.AllLanesEqual(phi))
}

func TestAllLanesEqualShuffle(t *testing.T) {
	fx := newFixture(t)
	smear := fx.ctx.Shuffle(fx.a, fx.b, []int{5, 5, 5, 5}, fx.call)
	assert.True(t, fx.ctx.AllLanesEqual(smear))

	perm := fx.ctx.Shuffle(fx.a, fx.b, []int{0, 1, 2, 3}, fx.call)
	assert.False(t, fx.ctx.AllLanesEqual(perm))

	undef := fx.ctx.Shuffle(fx.a, fx.b, []int{vir.UndefLane, vir.UndefLane, vir.UndefLane, vir.UndefLane}, fx.call)
	assert.False(t, fx.ctx.AllLanesEqual(undef))

	uniform := fx.ctx.Shuffle(fx.splat(2), fx.splat(3), []int{3, 2, 1, 0}, fx.call)
	assert.True(t, fx.ctx.AllLanesEqual(uniform), "lanes of one uniform source")

	both := fx.ctx.Shuffle(fx.splat(2), fx.splat(3), []int{0, 4, 1, 5}, fx.call)
	assert.False(t, fx.ctx.AllLanesEqual(both))
}

func TestAllLanesEqualNonVector(t *testing.T) {
	fx := newFixture(t)
	err := violation(t, func() { fx.ctx.AllLanesEqual(fx.s) })
	assert.Equal(t, diag.KindTypeMismatch, err.Kind)
	assert.Equal(t, diag.PhaseAnalyze, err.Phase)
}

func TestAllLanesEqualLogs(t *testing.T) {
	fx := newFixture(t)
	core, logs := observer.New(zap.DebugLevel)
	fx.ctx.Log = zap.New(core)
	buf := bytes.Buffer{}
	fx.ctx.DumpTo = &buf

	add := fx.pre.CreateBinary(types.Add, fx.a, fx.splat(1), "x")
	assert.False(t, fx.ctx.AllLanesEqual(add))

	entries := logs.FilterMessage("all lanes equal").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "%x", entries[0].ContextMap()["value"])
	assert.Equal(t, false, entries[0].ContextMap()["equal"])
	assert.Equal(t, "  %x = add %a, <4 x i32> splat 1\n----\n", buf.String())
}

// ----------------------
// ----- Scalarizer -----
// ----------------------

func TestExtractLaneZeroBinary(t *testing.T) {
	fx := newFixture(t)
	add := fx.pre.CreateBinary(types.Add, fx.a, fx.b, "x")
	res := fx.ctx.ExtractLaneZero(add, fx.call)

	sadd, ok := res.(*vir.BinaryInstruction)
	require.True(t, ok)
	assert.Equal(t, types.Add, sadd.Operator())
	assert.Equal(t, types.Int32Type, sadd.Type())
	assert.Equal(t, "x.elt0", sadd.Name())
	assert.Same(t, fx.loop, sadd.Block())

	lhs, ok := sadd.LHS().(*vir.ExtractInstruction)
	require.True(t, ok)
	assert.Same(t, fx.a, lhs.Base())
	assert.Equal(t, 0, lhs.Lane())
	rhs, ok := sadd.RHS().(*vir.ExtractInstruction)
	require.True(t, ok)
	assert.Same(t, fx.b, rhs.Base())

	// Everything lands right before the insertion point.
	insts := fx.loop.Instructions()
	require.Len(t, insts, 5)
	assert.Same(t, fx.call, insts[3])
	assert.Same(t, sadd, insts[2])
	assert.NoError(t, vir.Validate(fx.f.Module()))
}

func TestExtractLaneZeroCastAndConstant(t *testing.T) {
	fx := newFixture(t)
	k := fx.ctx.ExtractLaneZero(fx.splat(4), fx.ret)
	e, ok := k.(*vir.ExtractInstruction)
	require.True(t, ok)
	assert.Equal(t, "first_elt", e.Name())
	assert.Same(t, fx.exit, e.Block())

	ext := fx.pre.CreateCast(types.SExt, fx.a, types.Vector(types.Int64, 4), "w")
	res := fx.ctx.ExtractLaneZero(ext, fx.ret)
	cast, ok := res.(*vir.CastInstruction)
	require.True(t, ok)
	assert.Equal(t, types.SExt, cast.Operator())
	assert.Equal(t, types.Int64Type, cast.Type())
	assert.Equal(t, "w.elt0", cast.Name())
	src, ok := cast.Operand().(*vir.ExtractInstruction)
	require.True(t, ok)
	assert.NotEqual(t, "first_elt", src.Name(), "names stay unique")

	undef := fx.ir.Undef(v4i32)
	u, ok := fx.ctx.ExtractLaneZero(undef, fx.ret).(*vir.ExtractInstruction)
	require.True(t, ok)
	assert.Regexp(t, `^first_elt\.\d+$`, u.Name())
	assert.Same(t, undef, u.Base())
	assert.Equal(t, 0, u.Lane())
	assert.Equal(t, types.Int32Type, u.Type())
	assert.Same(t, fx.exit, u.Block())
}

func TestExtractLaneZeroLoopCarriedPhi(t *testing.T) {
	fx := newFixture(t)
	p := fx.body.CreatePhi(v4i32, "p")
	q := fx.body.CreateBinary(types.Add, p, fx.splat(1), "q")
	p.AddIncoming(fx.a, fx.entry)
	p.AddIncoming(q, fx.loop)
	require.NoError(t, vir.Validate(fx.f.Module()))

	res := fx.ctx.ExtractLaneZero(q, fx.call)
	sq, ok := res.(*vir.BinaryInstruction)
	require.True(t, ok)
	sp, ok := sq.LHS().(*vir.PhiInstruction)
	require.True(t, ok)

	assert.Equal(t, types.Int32Type, sp.Type())
	assert.Equal(t, p.IncomingCount(), sp.IncomingCount())
	assert.Same(t, fx.entry, sp.IncomingBlock(0))
	assert.Same(t, fx.loop, sp.IncomingBlock(1))
	assert.Same(t, fx.loop.Instructions()[0], sp, "scalar phi leads the block of the vector phi")

	// The back edge reaches the memoized phi again.
	back, ok := sp.IncomingValue(1).(*vir.BinaryInstruction)
	require.True(t, ok)
	assert.Same(t, sp, back.LHS())
	assert.Len(t, fx.loop.Phis(), 2)
}

func TestExtractLaneZeroPhiInOtherBlock(t *testing.T) {
	fx := newFixture(t)
	p := fx.body.CreatePhi(v4i32, "p")
	p.AddIncoming(fx.a, fx.entry)
	p.AddIncoming(fx.b, fx.loop)

	res := fx.ctx.ExtractLaneZero(p, fx.ret)
	sp, ok := res.(*vir.PhiInstruction)
	require.True(t, ok)
	assert.Same(t, fx.loop, sp.Block())
	assert.Equal(t, "p.elt0", sp.Name())
	for i1 := 0; i1 < 2; i1++ {
		e, ok := sp.IncomingValue(i1).(*vir.ExtractInstruction)
		require.True(t, ok)
		assert.Same(t, fx.exit, e.Block())
	}
}

func TestExtractLaneZeroInsertChain(t *testing.T) {
	fx := newFixture(t)
	ins := fx.pre.CreateInsert(fx.ir.Undef(v4i32), fx.i32(3), 1, "")
	ins = fx.pre.CreateInsert(ins, fx.s, 0, "")
	before := len(fx.exit.Instructions())
	assert.Same(t, fx.s, fx.ctx.ExtractLaneZero(ins, fx.ret))
	assert.Len(t, fx.exit.Instructions(), before, "no instruction created")

	unset := fx.pre.CreateInsert(fx.ir.Undef(v4i32), fx.s, 2, "")
	err := violation(t, func() { fx.ctx.ExtractLaneZero(unset, fx.ret) })
	assert.Equal(t, diag.KindUnsetLane, err.Kind)
	assert.Equal(t, diag.PhaseScalarize, err.Phase)
}

func TestExtractLaneZeroOpaque(t *testing.T) {
	fx := newFixture(t)
	call := fx.pre.CreateOpaque("load", v4i32, []vir.Value{fx.s}, "ld")
	res := fx.ctx.ExtractLaneZero(call, fx.ret)
	e, ok := res.(*vir.ExtractInstruction)
	require.True(t, ok)
	assert.Same(t, call, e.Base())

	err := violation(t, func() { fx.ctx.ExtractLaneZero(fx.s, fx.ret) })
	assert.Equal(t, diag.KindTypeMismatch, err.Kind)
}

// -------------------------------------
// ----- Vector construction -----
// -------------------------------------

func TestConcat(t *testing.T) {
	fx := newFixture(t)
	c := fx.ctx.Concat(fx.a, fx.b, fx.ret)
	assert.Equal(t, types.Vector(types.Int32, 8), c.Type())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, c.Mask())
	assert.False(t, fx.ctx.AllLanesEqual(c))

	u := fx.ctx.Concat(fx.splat(6), fx.splat(6), fx.ret)
	assert.True(t, fx.ctx.AllLanesEqual(u))

	x0 := fx.pre.CreateBinary(types.Add, fx.splat(1), fx.splat(2), "x0")
	x1 := fx.pre.CreateBinary(types.Add, fx.splat(1), fx.splat(2), "x1")
	assert.True(t, fx.ctx.AllLanesEqual(fx.ctx.Concat(x0, x1, fx.ret)))
	assert.False(t, fx.ctx.AllLanesEqual(fx.ctx.Concat(fx.splat(1), fx.splat(2), fx.ret)))
}

func TestConcatContractViolations(t *testing.T) {
	fx := newFixture(t)
	err := violation(t, func() { fx.ctx.Concat(fx.a, fx.ir.Undef(types.Vector(types.Int64, 4)), fx.ret) })
	assert.Equal(t, diag.KindTypeMismatch, err.Kind)

	wide := fx.ir.Undef(types.Vector(types.Int32, 40))
	err = violation(t, func() { fx.ctx.Concat(wide, wide, fx.ret) })
	assert.Equal(t, diag.KindOutOfBounds, err.Kind)
}

func TestExtractVectorInts(t *testing.T) {
	fx := newFixture(t)
	vals, ok := fx.ctx.ExtractVectorInts(fx.ctx.Types.IntVectorOf(types.Int32, []int64{1, -2, 3, 4}))
	require.True(t, ok)
	assert.Equal(t, []int64{1, -2, 3, 4}, vals)

	vals, ok = fx.ctx.ExtractVectorInts(fx.ir.ConstZero(v4i32))
	require.True(t, ok)
	assert.Equal(t, []int64{0, 0, 0, 0}, vals)

	_, ok = fx.ctx.ExtractVectorInts(fx.a)
	assert.False(t, ok)
	_, ok = fx.ctx.ExtractVectorInts(fx.ctx.BuildFromArray([]*vir.Constant{fx.i32(1), nil}))
	assert.False(t, ok)

	err := violation(t, func() { fx.ctx.ExtractVectorInts(fx.ctx.Types.FloatVectorOf(types.Float, 1)) })
	assert.Equal(t, diag.KindTypeMismatch, err.Kind)
}
