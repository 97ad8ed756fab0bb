// Package texscan locates delimiter-fenced LaTeX regions in markdown text.
//
// Regions are fenced by configurable single- or multi-byte tokens and may
// span lines. A token occurrence directly preceded by a backslash is
// literal text, not a fence; Unescape strips those backslashes once all
// regions have been rewritten.
package texscan

import "strings"

// Mode identifies how an extracted expression is compiled and rendered.
type Mode int

const (
	// ModeText compiles the expression as-is and renders a centered block.
	ModeText Mode = iota

	// ModeMath wraps the expression in $...$ and renders it inline.
	ModeMath
)

// String returns the mode name for logs and test output.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeMath:
		return "math"
	default:
		return "unknown"
	}
}

// Delimiters holds the three fence tokens used by a document.
type Delimiters struct {
	Text     string
	Math     string
	Preamble string
}

// Match is one fenced region resolved to byte offsets in the scanned
// document. Start and End cover the fences themselves, so the region can
// be spliced out with doc[:Start] + replacement + doc[End:].
type Match struct {
	Mode  Mode
	Body  string
	Start int
	End   int
}

// span marks a half-open byte range [start, end).
type span struct {
	start, end int
}

// ExtractPreambles removes every preamble-fenced region from doc and
// returns the stripped document plus the fragment bodies in document order.
func ExtractPreambles(doc, token string) (string, []string) {
	spans := findSpans(doc, token, nil)
	if len(spans) == 0 {
		return doc, nil
	}

	fragments := make([]string, 0, len(spans))
	var b strings.Builder
	b.Grow(len(doc))
	prev := 0
	for _, s := range spans {
		b.WriteString(doc[prev:s.start])
		fragments = append(fragments, doc[s.start+len(token):s.end-len(token)])
		prev = s.end
	}
	b.WriteString(doc[prev:])
	return b.String(), fragments
}

// FindMatches returns every text-fenced region followed by every
// math-fenced region, each resolved to offsets in doc. Text regions are
// located first and claim their byte ranges; math scanning ignores fence
// occurrences inside a claimed range, so a math token embedded in a text
// region never produces a second match.
func FindMatches(doc, textToken, mathToken string) []Match {
	textSpans := findSpans(doc, textToken, nil)

	matches := make([]Match, 0, len(textSpans))
	for _, s := range textSpans {
		matches = append(matches, Match{
			Mode:  ModeText,
			Body:  doc[s.start+len(textToken) : s.end-len(textToken)],
			Start: s.start,
			End:   s.end,
		})
	}

	for _, s := range findSpans(doc, mathToken, textSpans) {
		matches = append(matches, Match{
			Mode:  ModeMath,
			Body:  doc[s.start+len(mathToken) : s.end-len(mathToken)],
			Start: s.start,
			End:   s.end,
		})
	}
	return matches
}

// Unescape removes the backslash escapes that protected literal delimiter
// text during scanning. Tokens are processed in a fixed order: preamble,
// text, math, then the backslash itself.
func Unescape(doc string, d Delimiters) string {
	for _, token := range []string{d.Preamble, d.Text, d.Math, `\`} {
		if token == "" {
			continue
		}
		doc = strings.ReplaceAll(doc, `\`+token, token)
	}
	return doc
}

// findSpans returns the fenced regions for token in document order.
// Matching is non-greedy: a region closes at the first fence occurrence
// after a non-empty body. An opener with no closer is skipped and
// scanning resumes one byte later, so a later opener can still pair.
// A region enclosing a claimed span is rejected the same way, so the
// returned spans never overlap the claims.
func findSpans(doc, token string, claimed []span) []span {
	if token == "" {
		return nil
	}

	var spans []span
	i := 0
	for {
		open := nextToken(doc, token, i, claimed)
		if open < 0 {
			return spans
		}
		end := nextToken(doc, token, open+len(token)+1, claimed)
		if end < 0 {
			i = open + 1
			continue
		}
		// Both fences can sit outside every claim while the region
		// between them swallows one. Such a region would overlap the
		// claim's own match, so it cannot pair either.
		if overlapsClaim(claimed, open, end+len(token)) {
			i = open + 1
			continue
		}
		spans = append(spans, span{open, end + len(token)})
		i = end + len(token)
	}
}

// nextToken returns the position of the first fence occurrence of token at
// or after from, or -1. An occurrence counts as a fence only when the
// preceding byte is not a backslash and the occurrence does not overlap a
// claimed span.
func nextToken(doc, token string, from int, claimed []span) int {
	for from+len(token) <= len(doc) {
		j := strings.Index(doc[from:], token)
		if j < 0 {
			return -1
		}
		i := from + j
		if (i == 0 || doc[i-1] != '\\') && !overlapsClaim(claimed, i, i+len(token)) {
			return i
		}
		from = i + 1
	}
	return -1
}

// overlapsClaim reports whether [start, end) intersects any claimed span.
func overlapsClaim(claimed []span, start, end int) bool {
	for _, c := range claimed {
		if start < c.end && end > c.start {
			return true
		}
	}
	return false
}
