package util

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the resolved command line options of one lanec invocation.
type Options struct {
	Src      string // Path to source file, empty or "-" for stdin.
	Out      string // Path to output file, empty for stdout.
	Config   string // Path to YAML configuration file.
	Verbose  bool   // Set true to log debug output to stderr.
	Width    int    // Target vector width override, 0 keeps the configured width.
	Threads  int    // Maximum number of functions validated in parallel.
	Function string // Name of the function to operate on.
	Value    string // Name of the value to operate on.
	Before   string // Name of the instruction to insert new code before.
}

// ---------------------
// ----- Constants -----
// ---------------------

// AppVersion is reported by lanec --version.
const AppVersion = "lanec 1.0"
