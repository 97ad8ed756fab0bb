package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configureMaxProcs(os.Args[1:])
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// configureMaxProcs aligns GOMAXPROCS with the container CPU quota.
// Error ignored: maxprocs.Set only fails if the GOMAXPROCS env var is
// invalid, in which case Go runtime defaults apply and the program
// continues safely.
func configureMaxProcs(args []string) {
	verbose := false
	for _, arg := range args {
		if arg == "-v" || arg == "--verbose" {
			verbose = true
			break
		}
	}

	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}

// runMain dispatches the subcommand and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]

	// A bare markdown path is shorthand for "render <path>".
	if !isCommand(cmd) && looksLikeMarkdown(cmd) {
		cmd, rest = "render", args[1:]
	}

	switch cmd {
	case "render":
		ctx, stop := notifyContext(context.Background())
		defer stop()
		if err := runRender(ctx, rest, env); err != nil {
			fmt.Fprintf(env.Stderr, "%v%s\n", err, hintFor(err))
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		if err := runCompletion(rest, env); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "version":
		fmt.Fprintf(env.Stdout, "go-mdtex %s\n", Version)
		return ExitSuccess
	case "help":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// isCommand reports whether name is a recognized subcommand.
func isCommand(name string) bool {
	switch name {
	case "render", "doctor", "completion", "version", "help":
		return true
	}
	return false
}
