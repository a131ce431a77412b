// Package main is the entry point for the canvastools CLI.
//
// canvastools provisions per-student AWS resources for a Canvas course:
// one EC2 instance and one restricted IAM user per roster entry, plus the
// handout material (SSH scripts, connection docs, credential emails)
// students need to use them.
//
// Commands: vms, users, version.
//
// For detailed usage information, run:
//
//	canvastools --help
package main

import (
	"fmt"
	"os"

	"github.com/shanep/canvas-tools/cmd/canvastools/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
