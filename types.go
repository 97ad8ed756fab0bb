package mdtex

// Defaults applied by NewConverter. Each has a corresponding option.
const (
	// DefaultTextDelimiter fences block regions compiled as plain LaTeX
	// body text.
	DefaultTextDelimiter = "%"

	// DefaultMathDelimiter fences inline regions compiled in math mode.
	DefaultMathDelimiter = "£"

	// DefaultPreambleDelimiter fences preamble fragments absorbed into
	// every compile of the run.
	DefaultPreambleDelimiter = "%%"

	// DefaultDvipngArgs produce tight transparent PNGs at a
	// screen-friendly density.
	DefaultDvipngArgs = "-q -T tight -bg Transparent -z 9 -D 106"

	// DefaultCachePath is resolved against the working directory.
	DefaultCachePath = "latex.cache"

	// DefaultSignatureDate renders the footer date of standalone output
	// in ISO form at conversion time.
	DefaultSignatureDate = "auto"
)

// Input carries one document through Convert.
type Input struct {
	// Markdown is the raw document text. Required.
	Markdown string

	// Title names the document in standalone output. Empty falls back to
	// "Document". Ignored in fragment mode.
	Title string

	// CSS is appended after the converter's page stylesheet in standalone
	// output, so it can override style rules. Ignored in fragment mode.
	CSS string

	// SourceDir, when set, rewrites relative image and link references in
	// the converted HTML into absolute file:// URLs resolved against it,
	// so output written elsewhere still finds its assets.
	SourceDir string
}

// RenderStats counts what one conversion did.
type RenderStats struct {
	Expressions int // delimited LaTeX regions found (text and math)
	Preambles   int // preamble fragments absorbed
	CacheHits   int // expressions served from the cache
	Compiled    int // expressions compiled this run
	Failed      int // expressions degraded to the error marker

	// SkippedCacheLines counts malformed lines dropped when the cache
	// file was loaded at construction.
	SkippedCacheLines int
}

// Result holds the conversion output.
type Result struct {
	HTML  []byte
	Stats RenderStats
}

// converterConfig holds construction-time settings applied via options.
type converterConfig struct {
	textDelim     string
	mathDelim     string
	preambleDelim string
	extraPreamble string
	dvipngArgs    string
	cachePath     string
	styleInput    string // style name or CSS file path; empty means no page stylesheet
	resolvedStyle string // CSS content after resolution
	assetPath     string
	standalone    bool
	signature     bool
	signatureDate string
}

// Option configures a Converter during NewConverter.
type Option func(*Converter)

// WithDelimiters overrides the three fence tokens. Values are validated
// by NewConverter: each must be non-empty, free of whitespace and
// backslashes, and all three pairwise distinct.
func WithDelimiters(text, math, preamble string) Option {
	return func(c *Converter) {
		c.cfg.textDelim = text
		c.cfg.mathDelim = math
		c.cfg.preambleDelim = preamble
	}
}

// WithExtraPreamble appends LaTeX to the base preamble of every compile,
// ahead of any fragments extracted from the document.
func WithExtraPreamble(latex string) Option {
	return func(c *Converter) {
		c.cfg.extraPreamble = latex
	}
}

// WithDvipngArgs replaces the rasterizer arguments passed to dvipng.
func WithDvipngArgs(args string) Option {
	return func(c *Converter) {
		c.cfg.dvipngArgs = args
	}
}

// WithCachePath relocates the persistent expression cache.
func WithCachePath(path string) Option {
	return func(c *Converter) {
		c.cfg.cachePath = path
	}
}

// WithStyle selects the page stylesheet for standalone output: an
// embedded style name (see assets: default, plain, dark) or a path to a
// CSS file. The default is no page stylesheet.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
	}
}

// WithAssetPath points style resolution at a custom asset directory laid
// out as {dir}/styles/{name}.css. Embedded styles remain available as
// fallback for names the directory lacks.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithStandalone wraps output in a complete HTML document instead of
// returning a fragment.
func WithStandalone(standalone bool) Option {
	return func(c *Converter) {
		c.cfg.standalone = standalone
	}
}

// WithSignature toggles the dated footer of standalone output. Enabled
// by default; irrelevant in fragment mode.
func WithSignature(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.signature = enabled
	}
}

// WithSignatureDate sets the footer date of standalone output: "auto"
// for the ISO conversion date, "auto:FORMAT" with tokens like YYYY-MM-DD
// or a preset name (iso, european, us, long), or any other string taken
// literally.
func WithSignatureDate(date string) Option {
	return func(c *Converter) {
		c.cfg.signatureDate = date
	}
}
