// Package main is the entry point for the dockflow CLI.
// dockflow drives resumable batch docking runs: it enumerates every
// (candidate, conformer, target) job, checkpoints progress after each one,
// and ranks candidates against a set of reference ligands.
package main

import (
	"os"

	"dockflow/cmd/dockflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
