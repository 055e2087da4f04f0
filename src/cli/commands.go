package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lanec/src/diag"
	"lanec/src/frontend"
	"lanec/src/ir/llvm"
	"lanec/src/ir/vir"
	"lanec/src/util"
)

// ---------------------
// ----- Constants -----
// ---------------------

const (
	resultUniform = "uniform"
	resultVarying = "varying"
	resultEqual   = "equal"
	resultUnknown = "unknown"
	unsetLane     = "_"
)

// --------------------
// ----- Commands -----
// --------------------

// newCheckCommand creates the check command.
func newCheckCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.vir>",
		Short: "Parse and validate a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := s.load(args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

// newTokensCommand creates the tokens command.
func newTokensCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file.vir>",
		Short: "Print the token stream of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s.opt.Src = args[0]
			src, err := util.ReadSource(s.opt)
			if err != nil {
				return err
			}
			out, err := frontend.Tokens(src)
			if _, werr := io.WriteString(cmd.OutOrStdout(), out); werr != nil {
				return werr
			}
			return err
		},
	}
}

// newUniformCommand creates the uniform command.
func newUniformCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uniform <file.vir>",
		Short: "Report which vector values hold the same value in every lane",
		Long: `Report, for every vector typed parameter and instruction, whether all of its lanes
provably hold the same value. --func and --value restrict the report to one function or value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer diag.Recover(&err)
			m, err := s.load(args[0])
			if err != nil {
				return err
			}
			lc, err := s.laneContext(cmd, m)
			if err != nil {
				return err
			}

			funcs := m.Functions()
			if len(s.opt.Function) > 0 {
				f, err := s.function(m)
				if err != nil {
					return err
				}
				funcs = []*vir.Function{f}
			}
			w := cmd.OutOrStdout()
			for _, f := range funcs {
				vals, err := vectorValues(f, s.opt.Value)
				if err != nil {
					return err
				}
				for _, e1 := range vals {
					res := resultVarying
					if lc.AllLanesEqual(e1) {
						res = resultUniform
					}
					if _, err := fmt.Fprintf(w, "@%s %s: %s\n", f.Name(), e1.Ref(), res); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&s.opt.Function, "func", "", "function to analyse")
	cmd.Flags().StringVar(&s.opt.Value, "value", "", "value to analyse")
	return cmd
}

// newEqualCommand creates the equal command.
func newEqualCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equal <file.vir> <a> <b>",
		Short: "Report whether two values are provably equal",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer diag.Recover(&err)
			m, f, err := s.loadFunction(args[0])
			if err != nil {
				return err
			}
			a, err := value(f, args[1])
			if err != nil {
				return err
			}
			b, err := value(f, args[2])
			if err != nil {
				return err
			}
			lc, err := s.laneContext(cmd, m)
			if err != nil {
				return err
			}
			res := resultUnknown
			if lc.AreValuesEqual(a, b) {
				res = resultEqual
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res)
			return err
		},
	}
	cmd.Flags().StringVar(&s.opt.Function, "func", "", "function holding both values")
	return cmd
}

// newFlattenCommand creates the flatten command.
func newFlattenCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatten <file.vir>",
		Short: "Print the scalar written to each lane by an insert chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer diag.Recover(&err)
			m, f, err := s.loadFunction(args[0])
			if err != nil {
				return err
			}
			v, err := value(f, s.opt.Value)
			if err != nil {
				return err
			}
			head, ok := v.(*vir.InsertInstruction)
			if !ok {
				return diag.New(diag.PhaseAnalyze, diag.KindInvalidInput).
					Value(v.Ref()).Detail("not an insert instruction").Build()
			}
			lc, err := s.laneContext(cmd, m)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for i1, e1 := range lc.FlattenInsertChain(head, head.Type().Lanes) {
				lane := unsetLane
				if e1 != nil {
					lane = e1.Ref()
				}
				if _, err := fmt.Fprintf(w, "%d: %s\n", i1, lane); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&s.opt.Function, "func", "", "function holding the insert chain")
	cmd.Flags().StringVar(&s.opt.Value, "value", "", "last insert of the chain")
	return cmd
}

// newScalarizeCommand creates the scalarize command.
func newScalarizeCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scalarize <file.vir>",
		Short: "Compute lane 0 of a vector value as scalar code",
		Long: `Rewrite the computation of a vector value into the scalar computation of its first lane.
The scalar code is inserted before --before, by default the terminator of the block defining --value,
and the rewritten function is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer diag.Recover(&err)
			m, f, err := s.loadFunction(args[0])
			if err != nil {
				return err
			}
			v, err := value(f, s.opt.Value)
			if err != nil {
				return err
			}
			before, err := insertionPoint(f, v, s.opt.Before)
			if err != nil {
				return err
			}
			lc, err := s.laneContext(cmd, m)
			if err != nil {
				return err
			}

			res := lc.ExtractLaneZero(v, before)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\nlane 0 of %s: %s\n", f.String(), v.Ref(), res.Ref())
			return err
		},
	}
	cmd.Flags().StringVar(&s.opt.Function, "func", "", "function holding the value")
	cmd.Flags().StringVar(&s.opt.Value, "value", "", "vector value to scalarize")
	cmd.Flags().StringVar(&s.opt.Before, "before", "", "instruction to insert the scalar code before")
	return cmd
}

// newEmitLLVMCommand creates the emit-llvm command.
func newEmitLLVMCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit-llvm <file.vir>",
		Short: "Lower a module to LLVM IR",
		Long: `Lower a module to LLVM IR and verify it. Textual IR is written unless llvm.triple is
configured, which selects an object file for that target.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := s.load(args[0])
			if err != nil {
				return err
			}
			out, err := llvm.GenLLVM(s.opt, s.cfg.LLVM, m)
			if err != nil {
				return err
			}
			return util.WriteOutput(s.opt, cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&s.opt.Out, "output", "o", "", "output file, stdout if empty")
	return cmd
}

// newConfigCommand creates the config command.
func newConfigCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := s.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

// ----------------------------
// ----- Helper functions -----
// ----------------------------

// loadFunction loads the module in file path and selects the function named by --func.
func (s *session) loadFunction(path string) (*vir.Module, *vir.Function, error) {
	m, err := s.load(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.function(m)
	if err != nil {
		return nil, nil, err
	}
	return m, f, nil
}

// vectorValues returns the vector typed parameters and instructions of f in program order, or only the value called
// name if name is set.
func vectorValues(f *vir.Function, name string) ([]vir.Value, error) {
	if len(name) > 0 {
		v, err := value(f, name)
		if err != nil {
			return nil, err
		}
		return []vir.Value{v}, nil
	}
	res := make([]vir.Value, 0, 16)
	for _, e1 := range f.Params() {
		if e1.Type().IsVector() {
			res = append(res, e1)
		}
	}
	for _, e1 := range f.Blocks() {
		for _, e2 := range e1.Instructions() {
			if e2.Type().IsVector() {
				res = append(res, e2)
			}
		}
	}
	return res, nil
}

// insertionPoint returns the instruction of f called before, or the terminator of the block defining v. Values
// defined outside of a block use the terminator of the entry block.
func insertionPoint(f *vir.Function, v vir.Value, before string) (vir.Instruction, error) {
	if len(before) > 0 {
		bv, err := value(f, before)
		if err != nil {
			return nil, err
		}
		inst, ok := vir.IsInstruction(bv)
		if !ok {
			return nil, diag.New(diag.PhaseScalarize, diag.KindInvalidInput).
				Value(bv.Ref()).Detail("not an instruction").Build()
		}
		return inst, nil
	}
	b := f.Entry()
	if inst, ok := vir.IsInstruction(v); ok {
		b = inst.Block()
	}
	if b == nil || b.Terminator() == nil {
		return nil, diag.New(diag.PhaseScalarize, diag.KindUnterminated).
			Value(v.Ref()).Detail("no block terminator to insert before").Build()
	}
	return b.Terminator(), nil
}
