package vir

import (
	"lanec/src/diag"
)

// Validate checks the structural invariants of every function in Module m and returns the first violation found.
// A function is valid when
//
//	every block ends in exactly one terminator,
//	phis lead their block and have one incoming edge per predecessor, in any order,
//	the incoming blocks of a phi are predecessors of the phi's block,
//	a function that declares blocks has an entry block without predecessors.
func Validate(m *Module) error {
	for _, e1 := range m.functions {
		if err := ValidateFunction(e1); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFunction validates one function. Functions of a Module may be validated concurrently.
func ValidateFunction(f *Function) error {
	if len(f.blocks) > 0 && len(f.blocks[0].Predecessors()) > 0 {
		return diag.New(diag.PhaseValidate, diag.KindInvalidInput).
			Detail("entry block %s of function %s has predecessors", f.blocks[0].name, f.name).Build()
	}
	for _, e1 := range f.blocks {
		if err := validateBlock(e1); err != nil {
			return err
		}
	}
	return nil
}

// validateBlock validates the instructions of one block.
func validateBlock(b *Block) error {
	if b.term == nil || b.instructions[len(b.instructions)-1] != b.term {
		return diag.New(diag.PhaseValidate, diag.KindUnterminated).
			Detail("basic block %s of function %s is not terminated", b.name, b.f.name).Build()
	}
	preds := b.Predecessors()
	leading := true
	for _, e1 := range b.instructions {
		if e1 != b.term && isTerminator(e1) {
			return diag.New(diag.PhaseValidate, diag.KindInvalidInput).
				Detail("terminator %s in the middle of block %s", e1.String(), b.name).Build()
		}
		phi, ok := e1.(*PhiInstruction)
		if !ok {
			leading = false
			continue
		}
		if !leading {
			return diag.New(diag.PhaseValidate, diag.KindInvalidInput).
				Value(phi.Ref()).Detail("phi does not lead block %s", b.name).Build()
		}
		if err := validatePhi(phi, preds); err != nil {
			return err
		}
	}
	return nil
}

// validatePhi checks that the incoming blocks of phi are exactly the predecessors preds, as a multiset.
func validatePhi(phi *PhiInstruction, preds []*Block) error {
	if len(phi.incoming) != len(preds) {
		return diag.New(diag.PhaseValidate, diag.KindPhiArity).
			Value(phi.Ref()).
			Detail("%d incoming edges, block %s has %d predecessors", len(phi.incoming), phi.b.name, len(preds)).
			Build()
	}
	count := make(map[*Block]int, len(preds))
	for _, e1 := range preds {
		count[e1]++
	}
	for _, e1 := range phi.incoming {
		if count[e1.Block] < 1 {
			return diag.New(diag.PhaseValidate, diag.KindBlockMismatch).
				Value(phi.Ref()).Detail("incoming block %s is not a predecessor of %s", e1.Block.name, phi.b.name).
				Build()
		}
		count[e1.Block]--
		if e1.Value.Type() != phi.typ {
			return diag.TypeMismatch(diag.PhaseValidate, e1.Value.Ref(), phi.typ, e1.Value.Type())
		}
	}
	return nil
}
