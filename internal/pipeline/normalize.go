package pipeline

import "regexp"

// Documents reach the scanner as raw bytes, so carriage returns would
// otherwise leak into expression bodies and change their hashes.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// NormalizeLineEndings converts \r\n and bare \r to \n. Runs before any
// other stage sees the document.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
