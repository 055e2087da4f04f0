// Package lanes decides whether vector values hold the same value in every lane and rewrites vector computations
// into the scalar computation of their first lane.
//
// Analyses are conservative: false means "not proven", never "proven different". Malformed input, like a non-vector
// value where a vector is required or an insert chain that writes a lane twice, is a bug in whoever built the IR.
// Such contract violations panic with a *diag.Error; use diag.Recover to turn them into errors.
package lanes

import (
	"io"

	"go.uber.org/zap"

	"lanec/src/diag"
	"lanec/src/ir/vir"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Context carries the target and the IR context every lane operation works with.
type Context struct {
	Target vir.Target   // Target the analysed code is generated for.
	IR     *vir.Context // Owner of the constants created by the operations.
	Types  *vir.Types   // Type table of Target.

	// Log receives debug output of the analyses. A <nil> logger discards it.
	Log *zap.Logger

	// DumpTo, if set, receives a dump of every value AllLanesEqual is asked about.
	DumpTo io.Writer
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewContext returns a Context for target t. It returns an error if t is not a valid target.
func NewContext(ir *vir.Context, t vir.Target, log *zap.Logger) (*Context, error) {
	if err := t.Validate(); err != nil {
		return nil, diag.New(diag.PhaseConfig, diag.KindInvalidInput).Cause(err).Build()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{
		Target: t,
		IR:     ir,
		Types:  vir.NewTypes(ir, t),
		Log:    log,
	}, nil
}

// log returns the logger of the Context.
func (c *Context) log() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// requireVector panics if v does not have a vector type.
func requireVector(phase diag.Phase, v vir.Value) {
	if !v.Type().IsVector() {
		panic(diag.New(phase, diag.KindTypeMismatch).
			Value(describe(v)).Detail("expected a vector, got %s", v.Type()).Build())
	}
}

// describe returns the name of v for diagnostics, or its literal if it is unnamed.
func describe(v vir.Value) string {
	if len(v.Name()) > 0 {
		return v.Ref()
	}
	return v.String()
}
