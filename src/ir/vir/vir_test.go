package vir

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanec/src/diag"
	"lanec/src/ir/vir/types"
)

var v4i32 = types.Vector(types.Int32, 4)

// newLoop builds
//
//	func @f(%a: <4 x i32>) -> <4 x i32>
//	entry -> loop -> loop | exit
func newLoop(t *testing.T) (*Function, *PhiInstruction, *BinaryInstruction) {
	t.Helper()
	ctx := NewContext()
	m := ctx.NewModule("test")
	f, err := m.CreateFunction("f", v4i32)
	require.NoError(t, err)
	a := f.CreateParam("a", v4i32)
	entry, loop, exit := f.CreateBlock("entry"), f.CreateBlock("loop"), f.CreateBlock("exit")

	bld := NewBuilder()
	bld.SetInsertPointAtEnd(entry)
	bld.CreateBranch(loop)

	bld.SetInsertPointAtEnd(loop)
	p := bld.CreatePhi(v4i32, "p")
	q := bld.CreateBinary(types.Add, p, ctx.ConstSplat(ctx.ConstInt(types.Int32Type, 1), 4), "q")
	c := bld.CreateOpaque("done", types.BoolType, nil, "c")
	bld.CreateCondBranch(c, exit, loop)
	p.AddIncoming(a, entry)
	p.AddIncoming(q, loop)

	bld.SetInsertPointAtEnd(exit)
	bld.CreateReturn(q)
	return f, p, q
}

func TestConstantInterning(t *testing.T) {
	ctx := NewContext()
	one := ctx.ConstInt(types.Int32Type, 1)
	assert.Same(t, one, ctx.ConstInt(types.Int32Type, 1))
	assert.Same(t, one, ctx.ConstInt(types.Int32Type, 1<<32+1), "truncated to 32 bits")
	assert.NotSame(t, one, ctx.ConstInt(types.Int64Type, 1))

	s := ctx.ConstSplat(one, 4)
	assert.Same(t, s, ctx.ConstVector([]*Constant{one, one, one, one}))
	assert.Same(t, one, s.SplatValue())
	assert.Equal(t, "<4 x i32> splat 1", s.Ref())

	z := ctx.ConstZero(v4i32)
	assert.True(t, z.IsZero())
	assert.Equal(t, "<4 x i32> zeroinitializer", z.Ref())

	partial := ctx.ConstVector([]*Constant{one, nil, one, one})
	assert.Nil(t, partial.SplatValue())
	assert.False(t, partial.IsZero())
	assert.Equal(t, "<4 x i32> <1, undef, 1, 1>", partial.Ref())

	assert.Same(t, ctx.Undef(v4i32), ctx.Undef(v4i32))
	assert.Equal(t, "float 1.5", ctx.ConstFloat(types.FloatType, 1.5).Ref())
	assert.Equal(t, int64(-1), ctx.ConstInt(types.Int8Type, 255).Int())
}

func TestConstVectorRejectsMixedLanes(t *testing.T) {
	ctx := NewContext()
	assert.Panics(t, func() {
		ctx.ConstVector([]*Constant{ctx.ConstInt(types.Int32Type, 1), ctx.ConstInt(types.Int64Type, 1)})
	})
	assert.Panics(t, func() {
		ctx.ConstVector([]*Constant{nil, nil})
	})
}

func TestFunctionString(t *testing.T) {
	f, _, _ := newLoop(t)
	exp := "func @f(%a: <4 x i32>) -> <4 x i32> {\n" +
		"entry:\n" +
		"  br loop\n" +
		"loop:\n" +
		"  %p = phi <4 x i32> [%a, entry], [%q, loop]\n" +
		"  %q = add %p, <4 x i32> splat 1\n" +
		"  %c = call i1 @done()\n" +
		"  br %c, exit, loop\n" +
		"exit:\n" +
		"  ret %q\n" +
		"}\n"
	assert.Equal(t, exp, f.String())
}

func TestPredecessors(t *testing.T) {
	f, _, _ := newLoop(t)
	loop := f.Block("loop")
	preds := loop.Predecessors()
	require.Len(t, preds, 2)
	assert.Same(t, f.Block("entry"), preds[0])
	assert.Same(t, loop, preds[1])
	assert.Empty(t, f.Entry().Predecessors())
	assert.Len(t, loop.Phis(), 1)
}

func TestBuilderInsertBefore(t *testing.T) {
	f, _, q := newLoop(t)
	bld := NewBuilder()
	bld.SetInsertPointBefore(q)
	e := bld.CreateExtract(q, 0, "e")
	assert.Equal(t, types.Int32Type, e.Type())

	insts := f.Block("loop").Instructions()
	assert.Same(t, e, insts[1])
	assert.Same(t, q, insts[2])
}

func TestBuilderUniqueNames(t *testing.T) {
	f, p, _ := newLoop(t)
	bld := NewBuilder()
	bld.SetInsertPointBefore(f.Block("loop").Terminator())
	x := bld.CreateExtract(p, 1, "p")
	assert.NotEqual(t, "p", x.Name())
	assert.Same(t, x, f.Value(x.Name()))
	assert.Same(t, p, f.Value("p"))
}

func TestBuilderContractViolations(t *testing.T) {
	f, p, q := newLoop(t)
	ctx := f.Module().Context()
	bld := NewBuilder()
	bld.SetInsertPointBefore(q)

	tests := []struct {
		name string
		kind diag.Kind
		fn   func()
	}{
		{"binary type mismatch", diag.KindTypeMismatch, func() {
			bld.CreateBinary(types.Add, p, ctx.ConstInt(types.Int32Type, 1), "")
		}},
		{"float opcode on integers", diag.KindTypeMismatch, func() {
			bld.CreateBinary(types.FAdd, p, p, "")
		}},
		{"insert lane out of bounds", diag.KindOutOfBounds, func() {
			bld.CreateInsert(p, ctx.ConstInt(types.Int32Type, 1), 4, "")
		}},
		{"shuffle index out of bounds", diag.KindOutOfBounds, func() {
			bld.CreateShuffle(p, q, []int{0, 8}, "")
		}},
		{"cast changes lane count", diag.KindTypeMismatch, func() {
			bld.CreateCast(types.SExt, p, types.Int64Type, "")
		}},
		{"phi after non-phi", diag.KindInvalidInput, func() {
			late := NewBuilder()
			late.SetInsertPointBefore(f.Block("loop").Terminator())
			late.CreatePhi(v4i32, "")
		}},
		{"terminator before instruction", diag.KindInvalidInput, func() {
			bld.CreateReturn(q)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			func() {
				defer diag.Recover(&err)
				tt.fn()
			}()
			require.Error(t, err)
			assert.True(t, errors.Is(err, &diag.Error{Kind: tt.kind}), err.Error())
		})
	}
}

func TestShuffleSelector(t *testing.T) {
	f, p, q := newLoop(t)
	ctx := f.Module().Context()
	bld := NewBuilder()
	bld.SetInsertPointBefore(f.Block("loop").Terminator())

	s := bld.CreateShuffle(p, q, []int{0, UndefLane, 5, 7}, "s")
	sel, ok := s.Selector().(*Constant)
	require.True(t, ok)
	assert.Equal(t, "<4 x i32> <0, undef, 5, 7>", sel.Ref())
	assert.Equal(t, "%s = shuffle %p, %q, [0, -1, 5, 7]", s.String())

	u := bld.CreateShuffle(p, q, []int{UndefLane, UndefLane}, "u")
	assert.Same(t, ctx.Undef(types.Vector(types.Int32, 2)), u.Selector())
	assert.Equal(t, types.Vector(types.Int32, 2), u.Type())
}

func TestValidate(t *testing.T) {
	f, p, _ := newLoop(t)
	require.NoError(t, Validate(f.Module()))

	// A third edge breaks the arity.
	p.AddIncoming(p, f.Block("loop"))
	err := Validate(f.Module())
	require.Error(t, err)
	assert.True(t, errors.Is(err, &diag.Error{Kind: diag.KindPhiArity}))
}

func TestValidateUnterminated(t *testing.T) {
	ctx := NewContext()
	m := ctx.NewModule("")
	f, err := m.CreateFunction("g", types.VoidType)
	require.NoError(t, err)
	f.CreateBlock("entry")
	err = Validate(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &diag.Error{Kind: diag.KindUnterminated}))
}

func TestValidateIncomingBlock(t *testing.T) {
	ctx := NewContext()
	m := ctx.NewModule("")
	f, err := m.CreateFunction("g", types.Int32Type)
	require.NoError(t, err)
	entry, other, exit := f.CreateBlock("entry"), f.CreateBlock("other"), f.CreateBlock("exit")
	bld := NewBuilder()
	bld.SetInsertPointAtEnd(entry)
	bld.CreateBranch(exit)
	bld.SetInsertPointAtEnd(other)
	bld.CreateBranch(other)
	bld.SetInsertPointAtEnd(exit)
	phi := bld.CreatePhi(types.Int32Type, "x")
	phi.AddIncoming(ctx.ConstInt(types.Int32Type, 1), other)
	bld.CreateReturn(phi)

	err = Validate(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &diag.Error{Kind: diag.KindBlockMismatch}))
}

func TestDump(t *testing.T) {
	_, _, q := newLoop(t)
	buf := bytes.Buffer{}
	require.NoError(t, Dump(q, &buf))
	exp := "  %q = add %p, <4 x i32> splat 1\n" +
		"  %p = phi <4 x i32> [%a, entry], [%q, loop]\n" +
		"----\n"
	assert.Equal(t, exp, buf.String())
}

func TestTypes(t *testing.T) {
	ctx := NewContext()
	tt := NewTypes(ctx, Target{VectorWidth: 8, MaskBitCount: 32})
	assert.Equal(t, types.Vector(types.Int32, 8), tt.Mask)
	assert.Equal(t, "<8 x i32> splat -1", tt.MaskAllOn.Ref())
	assert.True(t, tt.MaskAllOff.IsZero())
	assert.Equal(t, types.Int64Type, tt.PointerInt)
	assert.Same(t, tt.IntVector(types.Int32, 3), tt.IntAsType(3, tt.Int32Vector))

	tt = NewTypes(ctx, Target{VectorWidth: 4, MaskBitCount: 1, Is32Bit: true})
	assert.Equal(t, types.Vector(types.Bool, 4), tt.Mask)
	assert.Equal(t, types.Vector(types.Int32, 4), tt.VoidPointerVector)

	assert.Error(t, Target{VectorWidth: 4, MaskBitCount: 8}.Validate())
	assert.Error(t, Target{VectorWidth: 0, MaskBitCount: 1}.Validate())
}
