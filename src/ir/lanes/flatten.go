package lanes

import (
	"lanec/src/diag"
	"lanec/src/ir/vir"
	"lanec/src/ir/vir/types"
)

// FlattenInsertChain walks the chain of inserts ending in head and returns, for each of the width lanes, the scalar
// written to it, or <nil> if no insert writes the lane.
//
// The chain must end in an undefined vector, which leaves unwritten lanes <nil>, or in a constant vector, whose
// lanes fill the unwritten ones. Any other base, a lane outside [0, width) or a lane written twice panics.
func (c *Context) FlattenInsertChain(head *vir.InsertInstruction, width int) []vir.Value {
	return flatten(head, width)
}

// flatten implements FlattenInsertChain.
func flatten(head *vir.InsertInstruction, width int) []vir.Value {
	if width < 1 || width > types.MaxLanes {
		panic(diag.OutOfBounds(diag.PhaseAnalyze, head.Ref(), width, types.MaxLanes+1))
	}
	res := make([]vir.Value, width)
	var base vir.Value = head
	for {
		ie, ok := base.(*vir.InsertInstruction)
		if !ok {
			break
		}
		lane := ie.Lane()
		if lane < 0 || lane >= width {
			panic(diag.OutOfBounds(diag.PhaseAnalyze, ie.Ref(), lane, width))
		}
		if res[lane] != nil {
			panic(diag.New(diag.PhaseAnalyze, diag.KindDuplicateLane).
				Value(ie.Ref()).Detail("lane %d inserted twice", lane).Build())
		}
		res[lane] = ie.Scalar()
		base = ie.Base()
	}

	switch base := base.(type) {
	case *vir.Undefined:
	case *vir.Constant:
		if !base.IsVector() {
			panic(diag.New(diag.PhaseAnalyze, diag.KindUnsupportedBase).
				Value(head.Ref()).Detail("insert chain ends in scalar %s", base.Ref()).Build())
		}
		for i1 := range res {
			if res[i1] == nil && i1 < base.Type().Lanes {
				if e := base.Lane(i1); e != nil {
					res[i1] = e
				}
			}
		}
	default:
		panic(diag.New(diag.PhaseAnalyze, diag.KindUnsupportedBase).
			Value(head.Ref()).Detail("insert chain ends in %s %s", base.Kind(), describe(base)).Build())
	}
	return res
}
