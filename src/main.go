package main

import (
	"os"

	"lanec/src/cli"
)

func main() {
	// Cobra reports the error on stderr.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
