package main

import (
	"io"
	"os"
	"os/exec"

	"github.com/alnah/go-mdtex/internal/texrender"
)

// Environment holds injectable dependencies for testability.
// All CLI output and external tool probing flow through it.
type Environment struct {
	Stdout   io.Writer
	Stderr   io.Writer
	LookPath func(name string) (string, error)
	Runner   texrender.Runner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		LookPath: exec.LookPath,
		Runner:   &texrender.ExecRunner{},
	}
}
