package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-mdtex/internal/fileutil"
	"github.com/alnah/go-mdtex/internal/hints"
	"github.com/alnah/go-mdtex/internal/texrender"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status     string     `json:"status"` // "ready", "warnings", "errors"
	Compiler   toolInfo   `json:"latex"`
	Rasterizer toolInfo   `json:"dvipng"`
	System     systemInfo `json:"system"`
	Warnings   []string   `json:"warnings,omitempty"`
	Errors     []string   `json:"errors,omitempty"`
}

// toolInfo holds detection results for one external tool.
type toolInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 4 = a tool is missing,
// 1 = other errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	switch {
	case !result.Compiler.Found || !result.Rasterizer.Found:
		return ExitTool
	case result.Status == "errors":
		return ExitGeneral
	default:
		return ExitSuccess
	}
}

// runDoctor performs all diagnostic checks.
func runDoctor(env *Environment) *doctorResult {
	result := &doctorResult{Status: "ready"}

	result.Compiler = checkTool(env, texrender.CompilerTool, result)
	result.Rasterizer = checkTool(env, texrender.RasterizerTool, result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkTool locates one external tool on PATH and probes its version.
func checkTool(env *Environment, name string, result *doctorResult) toolInfo {
	info := toolInfo{}

	path, err := env.LookPath(name)
	if err != nil {
		result.Errors = append(result.Errors, name+" not found on PATH")
		return info
	}
	info.Found = true
	info.Path = path

	stdout, stderr, err := env.Runner.Run("", name, "--version")
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("could not get %s version: %v", name, err))
		return info
	}
	info.Version = firstLine(stdout + stderr)

	return info
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// checkSystem verifies the temp directory accepts compile artifacts.
// Every expression compile writes its .tex there first.
func checkSystem(result *doctorResult) {
	_, cleanup, err := fileutil.WriteTempFile("doctor probe", ".tex")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("temp directory not writable: %v", err))
		return
	}
	cleanup()
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdtex doctor")
	fmt.Fprintln(w)

	printToolSection(w, "LaTeX compiler ("+texrender.CompilerTool+")", texrender.CompilerTool, r.Compiler)
	printToolSection(w, "DVI rasterizer ("+texrender.RasterizerTool+")", texrender.RasterizerTool, r.Rasterizer)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// printToolSection prints one tool's detection results, with an install
// hint when the tool is missing.
func printToolSection(w io.Writer, heading, tool string, info toolInfo) {
	fmt.Fprintln(w, heading)
	if info.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", info.Path)
		if info.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", info.Version)
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found"+hints.ForMissingTool(tool))
	}
	fmt.Fprintln(w)
}
