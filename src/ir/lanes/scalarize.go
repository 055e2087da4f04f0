package lanes

import (
	"go.uber.org/zap"

	"lanec/src/diag"
	"lanec/src/ir/vir"
)

// ---------------------
// ----- Constants -----
// ---------------------

// suffixLaneZero is appended to the name of a scalarized instruction.
const suffixLaneZero = ".elt0"

// nameFirstElement names generic lane 0 extractions.
const nameFirstElement = "first_elt"

// ---------------------
// ----- Functions -----
// ---------------------

// ExtractLaneZero returns a scalar value equal to lane 0 of the vector v. Instructions computing it are inserted
// before the instruction before, except for phis, which are rebuilt as scalar phis at the start of the block of the
// vector phi. The computation of v is assumed free of side effects.
//
// Binary operations, casts and phis are rewritten operand by operand. Insert chains return the scalar written to
// lane 0 without creating instructions. Anything else is read with an extract instruction. Each call creates new
// instructions, even if a previous call already scalarized parts of the same graph.
func (c *Context) ExtractLaneZero(v vir.Value, before vir.Instruction) vir.Value {
	requireVector(diag.PhaseScalarize, v)
	if before == nil || before.Block() == nil {
		panic(diag.New(diag.PhaseScalarize, diag.KindInvalidInput).
			Value(describe(v)).Detail("no insertion point").Build())
	}
	memo := make(map[*vir.PhiInstruction]*vir.PhiInstruction, 8)
	res := c.extractLaneZero(v, before, memo)
	c.log().Debug("extracted lane 0",
		zap.String("value", describe(v)), zap.String("result", describe(res)), zap.Int("phis", len(memo)))
	return res
}

// extractLaneZero implements ExtractLaneZero. memo maps the phis already rebuilt by this call to their scalar
// counterparts.
func (c *Context) extractLaneZero(v vir.Value, before vir.Instruction,
	memo map[*vir.PhiInstruction]*vir.PhiInstruction) vir.Value {
	bld := vir.NewBuilder()
	if _, ok := vir.IsInstruction(v); !ok {
		bld.SetInsertPointBefore(before)
		return bld.CreateExtract(v, 0, nameFirstElement)
	}
	requireVector(diag.PhaseScalarize, v)
	name := v.Name() + suffixLaneZero

	switch v := v.(type) {
	case *vir.BinaryInstruction:
		lhs := c.extractLaneZero(v.LHS(), before, memo)
		rhs := c.extractLaneZero(v.RHS(), before, memo)
		bld.SetInsertPointBefore(before)
		return bld.CreateBinary(v.Operator(), lhs, rhs, name)
	case *vir.CastInstruction:
		op := c.extractLaneZero(v.Operand(), before, memo)
		bld.SetInsertPointBefore(before)
		return bld.CreateCast(v.Operator(), op, v.Type().Elem(), name)
	case *vir.PhiInstruction:
		if phi, ok := memo[v]; ok {
			return phi
		}
		bld.SetInsertPointAtStart(v.Block())
		phi := bld.CreatePhi(v.Type().Elem(), name)
		memo[v] = phi
		c.log().Debug("created scalar phi", zap.String("phi", v.Ref()), zap.String("scalar", phi.Ref()))
		for i1 := 0; i1 < v.IncomingCount(); i1++ {
			in := c.extractLaneZero(v.IncomingValue(i1), before, memo)
			phi.AddIncoming(in, v.IncomingBlock(i1))
		}
		return phi
	case *vir.InsertInstruction:
		elems := flatten(v, v.Type().Lanes)
		if elems[0] == nil {
			panic(diag.New(diag.PhaseScalarize, diag.KindUnsetLane).
				Value(v.Ref()).Detail("no insert writes lane 0").Build())
		}
		return elems[0]
	}
	bld.SetInsertPointBefore(before)
	return bld.CreateExtract(v, 0, nameFirstElement)
}
