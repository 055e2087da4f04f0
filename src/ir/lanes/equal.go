package lanes

import (
	"lanec/src/ir/vir"
	"lanec/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// phiPair is a pair of phis whose equality is being proven.
type phiPair struct {
	p0, p1 *vir.PhiInstruction
}

// ---------------------
// ----- Functions -----
// ---------------------

// AreValuesEqual returns true if v0 and v1 are provably the same value. It only looks at the structure of the
// computations: values that compute the same result in different ways are reported as not equal.
func (c *Context) AreValuesEqual(v0, v1 vir.Value) bool {
	guard := util.Stack[phiPair]{}
	return areEqual(v0, v1, &guard)
}

// areEqual compares v0 and v1. guard holds the phi pairs that are being compared further up the recursion and are
// assumed equal.
func areEqual(v0, v1 vir.Value, guard *util.Stack[phiPair]) bool {
	// Constants are uniqued, so identity covers structurally equal literals.
	if v0 == v1 {
		return true
	}

	p0, ok0 := v0.(*vir.PhiInstruction)
	p1, ok1 := v1.(*vir.PhiInstruction)
	if ok0 && ok1 && guard.Any(func(e phiPair) bool { return e.p0 == p0 && e.p1 == p1 }) {
		return true
	}

	switch v0 := v0.(type) {
	case *vir.BinaryInstruction:
		v1, ok := v1.(*vir.BinaryInstruction)
		if !ok || v0.Operator() != v1.Operator() {
			return false
		}
		return areEqual(v0.LHS(), v1.LHS(), guard) && areEqual(v0.RHS(), v1.RHS(), guard)
	case *vir.CastInstruction:
		v1, ok := v1.(*vir.CastInstruction)
		if !ok || v0.Operator() != v1.Operator() {
			return false
		}
		return areEqual(v0.Operand(), v1.Operand(), guard)
	case *vir.PhiInstruction:
		if !ok1 || p0.IncomingCount() != p1.IncomingCount() {
			return false
		}
		guard.Push(phiPair{p0: p0, p1: p1})
		defer guard.Pop()
		for i1 := 0; i1 < p0.IncomingCount(); i1++ {
			// Edges are only compared in matching block order.
			if p0.IncomingBlock(i1) != p1.IncomingBlock(i1) {
				return false
			}
			if !areEqual(p0.IncomingValue(i1), p1.IncomingValue(i1), guard) {
				return false
			}
		}
		return true
	}
	return false
}
