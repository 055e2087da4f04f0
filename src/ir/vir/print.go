package vir

import (
	"fmt"
	"io"
)

// Dump writes v and, transitively, the instructions it depends on to w, each one once, followed by a separator
// line. Constants and parameters reached through operands are not written.
func Dump(v Value, w io.Writer) error {
	done := make(map[Value]bool, 16)
	if err := dump(v, w, done); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "----")
	return err
}

// dump writes v unless it was already written, then recurses into its operands.
func dump(v Value, w io.Writer, done map[Value]bool) error {
	if done[v] {
		return nil
	}
	inst, ok := IsInstruction(v)
	if len(done) > 0 && !ok {
		return nil
	}
	if _, err := fmt.Fprintf(w, "  %s\n", v.String()); err != nil {
		return err
	}
	done[v] = true
	if !ok {
		return nil
	}
	for _, e1 := range inst.Operands() {
		if err := dump(e1, w, done); err != nil {
			return err
		}
	}
	return nil
}
