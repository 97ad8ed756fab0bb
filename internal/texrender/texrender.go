// Package texrender compiles LaTeX expressions into base64-encoded PNG
// payloads by shelling out to the latex and dvipng command line tools.
//
// Each expression is compiled in its own temporary directory so parallel
// renders never share artifacts. The directory is removed on success and
// kept on failure so the latex log can be inspected.
package texrender

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Tool names looked up on PATH.
const (
	CompilerTool   = "latex"
	RasterizerTool = "dvipng"
)

// jobName is the basename shared by per-expression compile artifacts
// (job.tex, job.dvi, job.png, job.log).
const jobName = "job"

// Sentinel errors for render failures.
var (
	// ErrCompilerFailed indicates the latex invocation exited non-zero.
	ErrCompilerFailed = errors.New("latex compilation failed")

	// ErrRasterizerFailed indicates the dvipng invocation exited non-zero
	// or produced no readable PNG.
	ErrRasterizerFailed = errors.New("dvipng rasterization failed")
)

// BasePreamble is the fixed document header shared by every compiled
// expression. Configured packages and per-document preamble fragments are
// appended after it.
const BasePreamble = `\documentclass{article}
\usepackage{amsmath}
\usepackage{amsthm}
\usepackage{amssymb}
\usepackage{bm}
\usepackage{parskip}
\usepackage[usenames,dvipsnames]{color}
\pagestyle{empty}
`

// BuildPreamble assembles the compile preamble for one document run: the
// base header, then extra packages from configuration, then each document
// fragment on its own line, closed with \begin{document}.
func BuildPreamble(extra string, fragments []string) string {
	var b strings.Builder
	b.WriteString(BasePreamble)
	b.WriteString(extra)
	for _, fragment := range fragments {
		b.WriteString(fragment)
		b.WriteString("\n")
	}
	b.WriteString("\n\\begin{document}\n")
	return b.String()
}

// Runner abstracts command execution to enable testing without real
// subprocesses.
type Runner interface {
	// Run executes name with args inside dir and returns captured stdout
	// and stderr. A non-zero exit status surfaces as err.
	Run(dir, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(dir, name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Compile-time interface implementation check.
var _ Runner = (*ExecRunner)(nil)

// Renderer turns single LaTeX expressions into base64 PNG payloads.
type Renderer struct {
	runner     Runner
	dvipngArgs []string
}

// NewRenderer creates a Renderer with a real command runner. args is the
// dvipng argument string, split on whitespace.
func NewRenderer(args string) *Renderer {
	return NewRendererWithRunner(args, &ExecRunner{})
}

// NewRendererWithRunner creates a Renderer with a custom Runner.
func NewRendererWithRunner(args string, runner Runner) *Renderer {
	return &Renderer{
		runner:     runner,
		dvipngArgs: strings.Fields(args),
	}
}

// Render compiles expr under the given preamble and returns the PNG as a
// base64 string. Math-mode expressions are wrapped in $...$ so LaTeX
// typesets them inline. On failure the temporary directory is kept and
// the returned error names the latex log inside it.
func (r *Renderer) Render(preamble, expr string, mathMode bool) (string, error) {
	dir, err := os.MkdirTemp("", "mdtex-")
	if err != nil {
		return "", fmt.Errorf("creating render dir: %w", err)
	}

	var doc strings.Builder
	doc.WriteString(preamble)
	if mathMode {
		doc.WriteString("$")
		doc.WriteString(expr)
		doc.WriteString("$")
	} else {
		doc.WriteString(expr)
	}
	doc.WriteString("\n\\end{document}")

	texPath := filepath.Join(dir, jobName+".tex")
	if err := os.WriteFile(texPath, []byte(doc.String()), 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("writing tex file: %w", err)
	}

	logPath := filepath.Join(dir, jobName+".log")
	if _, _, err := r.runner.Run(dir, CompilerTool, "-halt-on-error", jobName+".tex"); err != nil {
		return "", fmt.Errorf("%w: %v (see %s)", ErrCompilerFailed, err, logPath)
	}

	args := make([]string, 0, len(r.dvipngArgs)+3)
	args = append(args, r.dvipngArgs...)
	args = append(args, jobName+".dvi", "-o", jobName+".png")
	if _, _, err := r.runner.Run(dir, RasterizerTool, args...); err != nil {
		return "", fmt.Errorf("%w: %v (see %s)", ErrRasterizerFailed, err, logPath)
	}

	data, err := os.ReadFile(filepath.Join(dir, jobName+".png")) // #nosec G304 -- path built from MkdirTemp
	if err != nil {
		return "", fmt.Errorf("%w: reading png: %v", ErrRasterizerFailed, err)
	}

	_ = os.RemoveAll(dir)
	return base64.StdEncoding.EncodeToString(data), nil
}
