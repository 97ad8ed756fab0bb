// Package pipeline implements the markdown-to-HTML conversion stages.
//
// The stages run in a fixed order:
//   - Line-ending normalization
//   - LaTeX preprocessing (delimiter-fenced expressions become inline images)
//   - Markdown to HTML conversion via Goldmark
//   - Relative path rewriting (optional, when a source directory is known)
//   - Style injection into the rendered output
//   - Optional standalone document assembly
//
// LaTeX compilation itself lives in internal/texrender; this package only
// rewrites document text, so every stage stays testable without the latex
// toolchain installed.
package pipeline
