// Package mdtex renders LaTeX embedded in Markdown into inline images.
//
// Delimited LaTeX regions ("%...%" for block text, "£...£" for inline
// math, "%%...%%" for preamble fragments) are compiled with the external
// latex and dvipng tools and replaced by <img> tags carrying the PNG as
// a base64 data URI, so the resulting HTML is self-contained. Compiled
// images are cached by content hash in a plain-text file and reused
// across runs.
//
// # Quick Start
//
// Create a converter and convert markdown:
//
//	conv, err := mdtex.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, mdtex.Input{
//	    Markdown: "Euler: £e^{i\\pi} + 1 = 0£",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.html", result.HTML, 0644)
//
// The result carries the rendered HTML and per-conversion statistics
// (expressions found, cache hits, compiles, failures). A failed compile
// degrades that expression to an inline <p>ERROR</p> marker and never
// aborts the pass; diagnostics stay in the compile's temp directory.
//
// # Conversion Pipeline
//
// Convert runs these stages:
//
//  1. Line-ending normalization (CRLF and CR to LF)
//  2. LaTeX preprocessing (extract, compile or reuse from cache, splice
//     image tags)
//  3. Markdown to HTML via Goldmark (GFM, footnotes, syntax highlighting)
//  4. Optional relative path rewriting (Input.SourceDir)
//  5. Style injection (alignment rules for the spliced image tags)
//  6. Optional standalone document wrap with page stylesheet and dated
//     signature footer (WithStandalone)
//
// Hosts embedding the stages in their own Markdown pipeline use the two
// hooks instead: Preprocess (lines in, lines out, before parsing) and
// Postprocess (rendered text in, styled text out, after rendering).
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := mdtex.NewConverter(
//	    mdtex.WithDelimiters("%", "$", "%%"),
//	    mdtex.WithExtraPreamble(`\usepackage{xcolor}`),
//	    mdtex.WithCachePath(".cache/latex.cache"),
//	    mdtex.WithStandalone(true),
//	    mdtex.WithStyle("dark"),
//	)
//
// Per-conversion settings are passed via Input:
//
//	result, err := conv.Convert(ctx, mdtex.Input{
//	    Markdown:  content,
//	    Title:     "Notes",
//	    SourceDir: "/path/to/markdown", // for relative image paths
//	    CSS:       "body { font-size: 14px; }",
//	})
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to bound parallel toolchain
// invocations:
//
//	pool := mdtex.NewConverterPool(4, mdtex.WithCachePath(cache))
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
//
// # Custom Styles
//
// Standalone output ships with embedded page styles (default, plain,
// dark). Override or extend them with a CSS file path or a custom asset
// directory:
//
//	conv, err := mdtex.NewConverter(
//	    mdtex.WithStandalone(true),
//	    mdtex.WithStyle("corporate"),
//	    mdtex.WithAssetPath("/path/to/assets"), // {dir}/styles/corporate.css
//	)
//
// # External Requirements
//
// Compilation requires latex and dvipng on PATH (TeX Live, MacTeX, or
// MiKTeX). Documents without delimited LaTeX regions never invoke
// either tool, so plain Markdown conversion works without them.
package mdtex
