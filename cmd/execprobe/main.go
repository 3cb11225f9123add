// Package main is the entry point for execprobe.
package main

import (
	"os"

	"github.com/jmylchreest/execprobe/cmd/execprobe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
