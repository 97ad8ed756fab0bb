package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdtex <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render      Render markdown with embedded LaTeX to HTML")
	fmt.Fprintln(w, "  doctor      Check that latex and dvipng are installed and usable")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "A bare markdown path renders directly: mdtex notes.md")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdtex help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdtex render [flags] <input.md...>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render markdown files with embedded LaTeX regions to HTML.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown files or directories")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -c, --config <path>       Config file path (default: ./.go-mdtex.yaml)")
	fmt.Fprintln(w, "  -r, --recursive           Walk input directories recursively")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "LaTeX:")
	fmt.Fprintln(w, "      --text-delim <s>      Text-mode region delimiter (default \"%\")")
	fmt.Fprintln(w, "      --math-delim <s>      Math-mode region delimiter (default \"£\")")
	fmt.Fprintln(w, "      --preamble-delim <s>  Preamble block delimiter (default \"%%\")")
	fmt.Fprintln(w, "      --preamble <s>        Extra LaTeX preamble for every compile")
	fmt.Fprintln(w, "      --dvipng-args <s>     Argument string passed to dvipng")
	fmt.Fprintln(w, "      --cache <path>        Rendered-image cache file (default \"latex.cache\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -s, --style <s>           Page style name or CSS file path")
	fmt.Fprintln(w, "      --standalone          Wrap output in a full HTML document")
	fmt.Fprintln(w, "      --no-signature        Omit the dated footer in standalone output")
	fmt.Fprintln(w, "      --rewrite-paths       Rewrite relative paths to absolute file:// URLs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show timing and cache statistics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MDTEX_CONFIG              Config file path (overridden by --config)")
	fmt.Fprintln(w, "  MDTEX_WORKERS             Parallel workers (overridden by --workers)")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: mdtex doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that the latex and dvipng tools are installed and usable.")
		fmt.Fprintln(env.Stdout, "Exit code 4 when either tool is missing.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdtex version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdtex help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
