package util

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"lanec/src/diag"
	"lanec/src/ir/vir"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Config is the content of a lanec.yaml file.
type Config struct {
	// Target describes the SIMD machine.
	Target TargetConfig `yaml:"target"`

	// Log configures the zap logger.
	Log LogConfig `yaml:"log"`

	// LLVM configures LLVM code generation.
	LLVM LLVMConfig `yaml:"llvm"`
}

// TargetConfig is the target section of the configuration.
type TargetConfig struct {
	VectorWidth int  `yaml:"vector_width"`
	MaskBits    int  `yaml:"mask_bits"`
	Is32Bit     bool `yaml:"is_32bit"`
}

// LogConfig is the log section of the configuration.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
}

// LLVMConfig is the llvm section of the configuration.
type LLVMConfig struct {
	// Triple selects object file output for the given target triple. Textual LLVM IR is emitted if empty.
	Triple string `yaml:"triple,omitempty"`

	// CPU names the target CPU passed to the LLVM target machine.
	CPU string `yaml:"cpu"`
}

// ---------------------
// ----- Functions -----
// ---------------------

// DefaultConfig returns the configuration used when no file is given: the host SIMD target, info logging and
// textual LLVM IR output.
func DefaultConfig() Config {
	t := HostTarget()
	return Config{
		Target: TargetConfig{
			VectorWidth: t.VectorWidth,
			MaskBits:    t.MaskBitCount,
			Is32Bit:     t.Is32Bit,
		},
		Log:  LogConfig{Level: "info"},
		LLVM: LLVMConfig{CPU: "generic"},
	}
}

// LoadConfig reads the configuration file at path on top of DefaultConfig. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if len(path) < 1 {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, diag.New(diag.PhaseConfig, diag.KindNotFound).Value(path).Cause(err).Build()
	}
	err = cfg.decode(bytes.NewReader(b), path)
	return cfg, err
}

// decode overlays the YAML document read from r onto cfg and validates the result.
func (cfg *Config) decode(r io.Reader, path string) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return diag.New(diag.PhaseConfig, diag.KindSyntax).Value(path).Cause(err).Build()
	}
	if err := cfg.Target.Vir().Validate(); err != nil {
		return diag.New(diag.PhaseConfig, diag.KindInvalidInput).Value(path).Cause(err).Build()
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return diag.New(diag.PhaseConfig, diag.KindInvalidInput).
			Value(path).Detail("unknown log level %q", cfg.Log.Level).Build()
	}
	return nil
}

// Apply overrides configuration values with command line options.
func (cfg *Config) Apply(opt Options) error {
	if opt.Width != 0 {
		cfg.Target.VectorWidth = opt.Width
		if err := cfg.Target.Vir().Validate(); err != nil {
			return fmt.Errorf("--width: %w", err)
		}
	}
	if opt.Verbose {
		cfg.Log.Level = "debug"
	}
	return nil
}

// Vir returns the target description used by the IR.
func (t TargetConfig) Vir() vir.Target {
	return vir.Target{
		VectorWidth:  t.VectorWidth,
		MaskBitCount: t.MaskBits,
		Is32Bit:      t.Is32Bit,
	}
}

// Marshal returns the YAML form of the configuration.
func (cfg Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}
