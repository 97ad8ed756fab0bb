package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// delimiterFlags holds the three region delimiter flags.
type delimiterFlags struct {
	text     string
	math     string
	preamble string
}

// renderFlags holds all flags for the render command.
//
// String and bool flags default to their zero values; whether the user
// actually passed a flag is read from the FlagSet's Changed bit during
// mergeFlags, so an explicitly passed default still overrides the config
// file.
type renderFlags struct {
	common       commonFlags
	delims       delimiterFlags
	output       string
	style        string
	standalone   bool
	noSignature  bool
	cache        string
	preamble     string
	dvipngArgs   string
	rewritePaths bool
	recursive    bool
	workers      int

	fs *flag.FlagSet // retained for Changed lookups
}

// changed reports whether the named flag was explicitly set on the
// command line.
func (f *renderFlags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timing and cache statistics")
}

// addDelimiterFlags adds the region delimiter flags to a FlagSet.
func addDelimiterFlags(fs *flag.FlagSet, f *delimiterFlags) {
	fs.StringVar(&f.text, "text-delim", "", "text-mode region delimiter")
	fs.StringVar(&f.math, "math-delim", "", "math-mode region delimiter")
	fs.StringVar(&f.preamble, "preamble-delim", "", "preamble block delimiter")
}

// newRenderFlagSet registers every render flag on a fresh FlagSet.
// Shared by parsing and completion generation so the two never drift.
func newRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.StringVarP(&f.style, "style", "s", "", "page style name or CSS file path")
	fs.BoolVar(&f.standalone, "standalone", false, "wrap output in a full HTML document")
	fs.BoolVar(&f.noSignature, "no-signature", false, "omit the dated footer in standalone output")
	fs.StringVar(&f.cache, "cache", "", "rendered-image cache file")
	fs.StringVar(&f.preamble, "preamble", "", "extra LaTeX preamble for every compile")
	fs.StringVar(&f.dvipngArgs, "dvipng-args", "", "argument string passed to dvipng")
	fs.BoolVar(&f.rewritePaths, "rewrite-paths", false, "rewrite relative paths to absolute file:// URLs")
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "walk input directories recursively")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	addDelimiterFlags(fs, &f.delims)
	addCommonFlags(fs, &f.common)

	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newRenderFlagSet(f)
	fs.Usage = func() { printRenderUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.fs = fs

	return f, fs.Args(), nil
}
