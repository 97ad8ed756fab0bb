package pipeline

import (
	"fmt"
	"html"
	"strings"
)

// latexStyleFragment aligns the injected image tags without requiring an
// external stylesheet. It is prepended to every rendered document.
const latexStyleFragment = "\n<style scoped>\n" +
	".latex-box.math-false {text-align: center;}\n" +
	".math-true {vertical-align: middle;}\n" +
	"</style>\n"

// StyleInjector defines the contract for the postprocessing hook.
type StyleInjector interface {
	InjectStyles(htmlContent string) string
}

// StyleInjection prepends the expression alignment styles to rendered
// output.
type StyleInjection struct{}

// InjectStyles prepends the style fragment. It runs unconditionally, even
// when no expression was rewritten, so output shape never depends on
// document content.
func (s *StyleInjection) InjectStyles(htmlContent string) string {
	return latexStyleFragment + htmlContent
}

// Compile-time interface implementation check.
var _ StyleInjector = (*StyleInjection)(nil)

// documentShell wraps a rendered fragment in a complete HTML5 document.
// Slots: escaped title, optional head style block, body fragment,
// optional signature footer.
const documentShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
%s</head>
<body>
%s
%s</body>
</html>
`

// DocumentData holds the pieces wrapped around a fragment when standalone
// output is requested.
type DocumentData struct {
	Title     string
	CSS       string // page stylesheet, inlined into <head>
	Signature string // rendered footer HTML, empty disables it
}

// DocumentWrapper defines the contract for standalone document assembly.
type DocumentWrapper interface {
	WrapDocument(fragment string, data *DocumentData) string
}

// DocumentAssembly builds complete HTML5 documents around fragments.
type DocumentAssembly struct{}

// WrapDocument wraps an HTML fragment in a full document. The title is
// escaped, the stylesheet is sanitized against </style> breakout, and the
// signature footer lands just before </body>.
func (d *DocumentAssembly) WrapDocument(fragment string, data *DocumentData) string {
	title := data.Title
	if title == "" {
		title = "Document"
	}

	var style string
	if data.CSS != "" {
		style = "<style>\n" + sanitizeCSS(data.CSS) + "\n</style>\n"
	}

	return fmt.Sprintf(documentShell, html.EscapeString(title), style, fragment, data.Signature)
}

// Compile-time interface implementation check.
var _ DocumentWrapper = (*DocumentAssembly)(nil)

// BuildSignature renders the dated footer appended to standalone
// documents.
func BuildSignature(date string) string {
	return fmt.Sprintf("<footer class=\"signature\"><hr/><p class=\"signature-date\">%s</p></footer>\n", html.EscapeString(date))
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
