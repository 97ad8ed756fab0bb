package mdtex

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/alnah/go-mdtex/internal/assets"
	"github.com/alnah/go-mdtex/internal/dateutil"
	"github.com/alnah/go-mdtex/internal/fileutil"
	"github.com/alnah/go-mdtex/internal/pipeline"
	"github.com/alnah/go-mdtex/internal/texcache"
	"github.com/alnah/go-mdtex/internal/texrender"
	"github.com/alnah/go-mdtex/internal/texscan"
)

// Compile-time interface implementation checks.
// These ensure implementations satisfy their interfaces at compile time,
// catching signature mismatches before runtime.
var (
	_ pipeline.ExpressionRenderer = (*texrender.Renderer)(nil)
	_ pipeline.HTMLConverter      = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.StyleInjector      = (*pipeline.StyleInjection)(nil)
	_ pipeline.DocumentWrapper    = (*pipeline.DocumentAssembly)(nil)
)

// Converter orchestrates the markdown-to-HTML conversion pass: LaTeX
// preprocessing, goldmark rendering, style injection, and the optional
// standalone document wrap. Create with NewConverter, convert with
// Convert.
//
// A Converter owns one expression cache, loaded at construction and
// appended to after each conversion. It is not safe for concurrent use;
// run one conversion at a time per Converter, or use a ConverterPool.
type Converter struct {
	cfg           converterConfig
	styles        *assets.AssetResolver
	cache         *texcache.Cache
	renderer      pipeline.ExpressionRenderer
	latex         *pipeline.LatexPreprocessor
	htmlConverter pipeline.HTMLConverter
	styleInjector pipeline.StyleInjector
	wrapper       pipeline.DocumentWrapper
	now           func() time.Time
}

// NewConverter creates a Converter with default configuration. Use
// options to customize delimiters, the cache location, styles, or
// standalone output. Returns an error when option validation or style
// resolution fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			textDelim:     DefaultTextDelimiter,
			mathDelim:     DefaultMathDelimiter,
			preambleDelim: DefaultPreambleDelimiter,
			dvipngArgs:    DefaultDvipngArgs,
			cachePath:     DefaultCachePath,
			signature:     true,
			signatureDate: DefaultSignatureDate,
		},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		styleInjector: &pipeline.StyleInjection{},
		wrapper:       &pipeline.DocumentAssembly{},
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.validateOptions(); err != nil {
		return nil, err
	}

	styles, err := assets.NewAssetResolver(c.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	c.styles = styles

	// Resolve style input (name or file path) to CSS content.
	if err := c.resolveStyle(); err != nil {
		return nil, err
	}

	// Probe the date value once so a bad format fails construction, not
	// the first standalone conversion.
	if _, err := dateutil.ResolveDate(c.cfg.signatureDate, c.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureDate, err)
	}

	// An unreadable or damaged cache file degrades to an empty cache.
	c.cache = texcache.New(c.cfg.cachePath)
	_ = c.cache.Load()

	// Create the renderer if not injected (e.g., by tests).
	if c.renderer == nil {
		c.renderer = texrender.NewRenderer(c.cfg.dvipngArgs)
	}

	c.latex = pipeline.NewLatexPreprocessor(texscan.Delimiters{
		Text:     c.cfg.textDelim,
		Math:     c.cfg.mathDelim,
		Preamble: c.cfg.preambleDelim,
	}, c.cfg.extraPreamble, c.cache, c.renderer)

	return c, nil
}

// Convert runs the full pass and returns the rendered HTML with
// per-conversion statistics. The context is checked between expression
// compiles; a running latex subprocess itself is not interrupted.
//
// Failed expressions degrade to an inline error marker and are counted
// in Stats.Failed; they never abort the pass. A failed cache append
// returns the Result together with an error matching ErrCacheSave.
// Recovers from internal panics to prevent crashes from propagating to
// callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if input.Markdown == "" {
		return nil, ErrEmptyMarkdown
	}

	content := pipeline.NormalizeLineEndings(input.Markdown)

	content, latexStats, err := c.latex.Preprocess(ctx, content)
	if err != nil {
		return nil, err
	}

	htmlContent, err := c.htmlConverter.ToHTML(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	// Rewrite relative paths to absolute file:// URLs (if source
	// directory provided).
	if input.SourceDir != "" {
		htmlContent, err = pipeline.RewriteRelativePaths(htmlContent, input.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	htmlContent = c.styleInjector.InjectStyles(htmlContent)

	if c.cfg.standalone {
		data := &pipeline.DocumentData{
			Title: input.Title,
			CSS:   c.pageCSS(input.CSS),
		}
		if c.cfg.signature {
			date, err := dateutil.ResolveDate(c.cfg.signatureDate, c.now())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureDate, err)
			}
			data.Signature = pipeline.BuildSignature(date)
		}
		htmlContent = c.wrapper.WrapDocument(htmlContent, data)
	}

	res := &Result{
		HTML: []byte(htmlContent),
		Stats: RenderStats{
			Expressions:       latexStats.Expressions,
			Preambles:         latexStats.Preambles,
			CacheHits:         latexStats.CacheHits,
			Compiled:          latexStats.Compiled,
			Failed:            latexStats.Failed,
			SkippedCacheLines: c.cache.Skipped(),
		},
	}

	if err := c.cache.Save(); err != nil {
		return res, fmt.Errorf("%w: %v", ErrCacheSave, err)
	}
	return res, nil
}

// Preprocess is the host-pipeline preprocessing hook: it rewrites
// delimited LaTeX regions in an ordered sequence of document lines,
// before structural Markdown parsing. Documents without delimited
// regions pass through unchanged.
//
// Newly compiled expressions are persisted before returning; a failed
// cache append returns the transformed lines together with an error
// matching ErrCacheSave. Recovers from internal panics to prevent
// crashes from propagating to callers.
func (c *Converter) Preprocess(ctx context.Context, lines []string) (out []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	doc := pipeline.NormalizeLineEndings(strings.Join(lines, "\n"))

	doc, _, err = c.latex.Preprocess(ctx, doc)
	if err != nil {
		return nil, err
	}

	out = strings.Split(doc, "\n")
	if err := c.cache.Save(); err != nil {
		return out, fmt.Errorf("%w: %v", ErrCacheSave, err)
	}
	return out, nil
}

// Postprocess is the host-pipeline postprocessing hook: it prepends the
// expression alignment styles to final rendered text. It runs
// unconditionally, so output shape never depends on document content.
func (c *Converter) Postprocess(text string) string {
	return c.styleInjector.InjectStyles(text)
}

// Stats reports cumulative cache state: entries held in memory, entries
// queued for the next save, and malformed lines skipped at load.
func (c *Converter) Stats() (entries, pending, skipped int) {
	return c.cache.Len(), c.cache.Added(), c.cache.Skipped()
}

// pageCSS combines the resolved page stylesheet with per-document CSS.
// Document CSS comes last so it can override style rules.
func (c *Converter) pageCSS(docCSS string) string {
	css := c.cfg.resolvedStyle
	if docCSS != "" {
		if css != "" {
			css += "\n"
		}
		css += docCSS
	}
	return css
}

// resolveStyle resolves the style input (name or file path) to CSS
// content. Called during NewConverter after options are applied.
func (c *Converter) resolveStyle() error {
	input := c.cfg.styleInput
	if input == "" {
		return nil // no page stylesheet
	}

	if fileutil.IsURL(input) {
		return fmt.Errorf("%w: remote styles are not supported: %q", ErrInvalidStyle, input)
	}

	// File path? (contains a path separator)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- style path is user-provided
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		c.cfg.resolvedStyle = string(content)
		return nil
	}

	// Style name -> embedded or custom asset directory.
	css, err := c.styles.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, err)
	}
	c.cfg.resolvedStyle = css
	return nil
}

// validateOptions checks the configuration assembled from options.
//
// This is a TRUST BOUNDARY for direct library users who pass options
// manually. CLI users have their values validated earlier by
// Config.Validate() at config load time. Both paths converge here.
func (c *Converter) validateOptions() error {
	delims := []struct {
		name  string
		value string
	}{
		{"text", c.cfg.textDelim},
		{"math", c.cfg.mathDelim},
		{"preamble", c.cfg.preambleDelim},
	}
	for _, d := range delims {
		if err := validateDelimiter(d.name, d.value); err != nil {
			return err
		}
	}
	if c.cfg.textDelim == c.cfg.mathDelim ||
		c.cfg.textDelim == c.cfg.preambleDelim ||
		c.cfg.mathDelim == c.cfg.preambleDelim {
		return fmt.Errorf("%w: delimiters must be pairwise distinct (text %q, math %q, preamble %q)",
			ErrInvalidDelimiter, c.cfg.textDelim, c.cfg.mathDelim, c.cfg.preambleDelim)
	}

	if strings.TrimSpace(c.cfg.dvipngArgs) == "" {
		return fmt.Errorf("%w: arguments cannot be empty", ErrInvalidDvipngArgs)
	}

	return validateCachePath(c.cfg.cachePath)
}

func validateDelimiter(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s delimiter cannot be empty", ErrInvalidDelimiter, name)
	}
	if strings.ContainsFunc(value, unicode.IsSpace) {
		return fmt.Errorf("%w: %s delimiter %q contains whitespace", ErrInvalidDelimiter, name, value)
	}
	if strings.Contains(value, `\`) {
		return fmt.Errorf("%w: %s delimiter %q contains a backslash", ErrInvalidDelimiter, name, value)
	}
	return nil
}

func validateCachePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidCachePath)
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return fmt.Errorf("%w: %q is a directory", ErrInvalidCachePath, path)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %q is a directory", ErrInvalidCachePath, path)
	}
	return nil
}
