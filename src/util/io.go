package util

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ---------------------
// ----- Constants -----
// ---------------------

// stdinTimeout is how long ReadSource waits for input on stdin.
const stdinTimeout = 500 * time.Millisecond

// ---------------------
// ----- Functions -----
// ---------------------

// ReadSource reads source code from file or stdin.
// If the Options structure holds a string for source the file will be opened and read.
// Else the function waits for a short period for input on stdin. If no input on stdin is
// provided the function returns an error.
func ReadSource(opt Options) (string, error) {
	if len(opt.Src) > 0 && opt.Src != "-" {
		b, err := os.ReadFile(opt.Src)
		if err != nil {
			return "", fmt.Errorf("read source: %w", err)
		}
		return string(b), nil
	}
	return readStdin(os.Stdin, stdinTimeout)
}

// readStdin reads r until EOF. It returns an error if nothing arrives within timeout.
func readStdin(r io.Reader, timeout time.Duration) (string, error) {
	c := make(chan string, 1)
	cerr := make(chan error, 1)

	// Concurrently wait for input on stdin.
	go func() {
		b, err := io.ReadAll(bufio.NewReader(r))
		if err != nil {
			cerr <- err
			return
		}
		c <- string(b)
	}()

	// Select between input from stdin or timer expiry.
	select {
	case <-time.After(timeout):
		return "", errors.New("expected input from stdin, got none")
	case err := <-cerr:
		return "", fmt.Errorf("read stdin: %w", err)
	case s := <-c:
		return s, nil
	}
}

// WriteOutput writes s to the file opt.Out, or to w if no output file is set.
func WriteOutput(opt Options, w io.Writer, s []byte) error {
	if len(opt.Out) < 1 {
		_, err := w.Write(s)
		return err
	}
	if err := os.WriteFile(opt.Out, s, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
