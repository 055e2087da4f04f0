// Package cli implements the lanec command line.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lanec/src/diag"
	"lanec/src/frontend"
	"lanec/src/ir/lanes"
	"lanec/src/ir/llvm"
	"lanec/src/ir/vir"
	"lanec/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// session holds the state shared by the commands of one invocation.
type session struct {
	opt util.Options
	cfg util.Config
	log *zap.Logger
}

// ---------------------
// ----- Functions -----
// ---------------------

// Execute runs the lanec command line with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand creates the root command for the lanec CLI.
func NewRootCommand() *cobra.Command {
	s := &session{log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:     "lanec",
		Short:   "lanec - lane analyses for SIMD vector IR",
		Long:    "Parse, validate, analyse and lower programs written in the textual vector IR.",
		Version: util.AppVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = s.log.Sync()
		},
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&s.opt.Config, "config", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&s.opt.Verbose, "verbose", "v", false, "log debug output to stderr")
	cmd.PersistentFlags().IntVar(&s.opt.Width, "width", 0, "target vector width, overrides the configuration")
	cmd.PersistentFlags().IntVarP(&s.opt.Threads, "threads", "t", 1, "number of functions validated in parallel")

	// Add subcommands
	cmd.AddCommand(newCheckCommand(s))
	cmd.AddCommand(newTokensCommand(s))
	cmd.AddCommand(newUniformCommand(s))
	cmd.AddCommand(newEqualCommand(s))
	cmd.AddCommand(newFlattenCommand(s))
	cmd.AddCommand(newScalarizeCommand(s))
	cmd.AddCommand(newEmitLLVMCommand(s))
	cmd.AddCommand(newConfigCommand(s))

	return cmd
}

// init loads the configuration, applies the command line overrides and builds the logger.
func (s *session) init() error {
	cfg, err := util.LoadConfig(s.opt.Config)
	if err != nil {
		return err
	}
	if err := cfg.Apply(s.opt); err != nil {
		return err
	}
	log, err := util.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	s.cfg = cfg
	s.log = log
	llvm.SetLogger(log.Named("llvm"))
	log.Debug("configuration loaded",
		zap.String("file", s.opt.Config),
		zap.Int("vector_width", cfg.Target.VectorWidth),
		zap.Int("mask_bits", cfg.Target.MaskBits))
	return nil
}

// load reads, parses and validates the module in file path. Every invalid function is reported.
func (s *session) load(path string) (*vir.Module, error) {
	s.opt.Src = path
	src, err := util.ReadSource(s.opt)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, err := frontend.Parse(name, src, frontend.WithTarget(s.cfg.Target.Vir()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	funcs := m.Functions()
	err = util.Parallel(len(funcs), s.opt.Threads, func(i int) error {
		return vir.ValidateFunction(funcs[i])
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.log.Debug("module loaded", zap.String("file", path), zap.Int("functions", len(funcs)))
	return m, nil
}

// laneContext returns the lane analysis context for module m. With --verbose the values analysed for uniformity are
// dumped to the error stream of cmd.
func (s *session) laneContext(cmd *cobra.Command, m *vir.Module) (*lanes.Context, error) {
	lc, err := lanes.NewContext(m.Context(), s.cfg.Target.Vir(), s.log.Named("lanes"))
	if err != nil {
		return nil, err
	}
	if s.opt.Verbose {
		lc.DumpTo = cmd.ErrOrStderr()
	}
	return lc, nil
}

// function returns the function selected by --func. A module with a single function selects it by default.
func (s *session) function(m *vir.Module) (*vir.Function, error) {
	name := strings.TrimPrefix(s.opt.Function, "@")
	if len(name) < 1 {
		if fs := m.Functions(); len(fs) == 1 {
			return fs[0], nil
		}
		return nil, diag.New(diag.PhaseAnalyze, diag.KindNotFound).Detail("--func is required").Build()
	}
	f := m.Function(name)
	if f == nil {
		return nil, diag.New(diag.PhaseAnalyze, diag.KindNotFound).Value("@" + name).Detail("no such function").Build()
	}
	return f, nil
}

// value returns the parameter or instruction of f called name. A leading sigil is ignored.
func value(f *vir.Function, name string) (vir.Value, error) {
	name = strings.TrimPrefix(name, "%")
	if len(name) < 1 {
		return nil, diag.New(diag.PhaseAnalyze, diag.KindNotFound).Detail("value name is required").Build()
	}
	v := f.Value(name)
	if v == nil {
		return nil, diag.New(diag.PhaseAnalyze, diag.KindNotFound).
			Value("%"+name).Detail("no such value in @%s", f.Name()).Build()
	}
	return v, nil
}
