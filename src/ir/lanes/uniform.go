package lanes

import (
	"go.uber.org/zap"

	"lanec/src/diag"
	"lanec/src/ir/vir"
	"lanec/src/util"
)

// AllLanesEqual returns true if every lane of the vector v provably holds the same value. It panics if v is not a
// vector.
func (c *Context) AllLanesEqual(v vir.Value) bool {
	requireVector(diag.PhaseAnalyze, v)
	seen := make(map[*vir.PhiInstruction]bool, 8)
	equal := allEqual(v, v.Type().Lanes, seen)

	c.log().Debug("all lanes equal", zap.String("value", describe(v)), zap.Bool("equal", equal))
	if c.DumpTo != nil {
		if err := vir.Dump(v, c.DumpTo); err != nil {
			c.log().Warn("dump failed", zap.Error(err))
		}
	}
	return equal
}

// allEqual implements AllLanesEqual for a vector v of width lanes. seen holds the phis entered on the current
// recursion path, which are assumed uniform when met again.
func allEqual(v vir.Value, width int, seen map[*vir.PhiInstruction]bool) bool {
	if width == 1 {
		return true
	}

	switch v := v.(type) {
	case *vir.Constant:
		return v.IsZero() || v.SplatValue() != nil
	case *vir.Undefined:
		return false
	case *vir.BinaryInstruction:
		return allEqual(v.LHS(), width, seen) && allEqual(v.RHS(), width, seen)
	case *vir.CastInstruction:
		return allEqual(v.Operand(), width, seen)
	case *vir.InsertInstruction:
		return insertChainEqual(v, width)
	case *vir.PhiInstruction:
		if seen[v] {
			return true
		}
		seen[v] = true
		defer delete(seen, v)
		for i1 := 0; i1 < v.IncomingCount(); i1++ {
			if !allEqual(v.IncomingValue(i1), width, seen) {
				return false
			}
		}
		return true
	case *vir.ShuffleInstruction:
		sel := v.Selector()
		if allEqual(sel, sel.Type().Lanes, seen) {
			// Every lane is the same source lane.
			return true
		}
		return shuffleOfUniform(v, seen)
	}
	// Params, calls and any other opaque value.
	return false
}

// insertChainEqual returns true if the lanes written by the insert chain ending in head are pairwise equal. Lanes
// no insert writes are ignored.
func insertChainEqual(head *vir.InsertInstruction, width int) bool {
	elems := flatten(head, width)
	for i1, e1 := range elems {
		if e1 == nil {
			continue
		}
		for _, e2 := range elems[i1+1:] {
			if e2 == nil {
				continue
			}
			guard := util.Stack[phiPair]{}
			if !areEqual(e1, e2, &guard) {
				return false
			}
		}
	}
	return true
}

// shuffleOfUniform returns true if every lane of shuffle s is defined and taken from uniform sources that are equal
// to each other, like the concatenation of a uniform vector with itself.
func shuffleOfUniform(s *vir.ShuffleInstruction, seen map[*vir.PhiInstruction]bool) bool {
	w := s.V1().Type().Lanes
	var useV1, useV2 bool
	for _, e1 := range s.Mask() {
		switch {
		case e1 == vir.UndefLane:
			return false
		case e1 < w:
			useV1 = true
		default:
			useV2 = true
		}
	}
	if useV1 && !allEqual(s.V1(), w, seen) {
		return false
	}
	if useV2 && !allEqual(s.V2(), w, seen) {
		return false
	}
	if useV1 && useV2 {
		guard := util.Stack[phiPair]{}
		return areEqual(s.V1(), s.V2(), &guard)
	}
	return true
}
