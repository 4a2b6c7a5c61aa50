// skein compiles CUE workflow programs into canonical dataflow graphs and
// renders them to workflow-engine formats.
//
// Usage:
//
//	skein render <program> [--renderer cwl|snakemake] [--simplify-ids] [--flatten] [-o <path>]
//	skein inspect <program> [--simplify-ids] [--flatten]
package main

import (
	"os"

	"github.com/skeinworks/skein/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
