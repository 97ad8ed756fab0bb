package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-mdtex/internal/texcache"
	"github.com/alnah/go-mdtex/internal/texrender"
	"github.com/alnah/go-mdtex/internal/texscan"
)

// Image tag shapes for rewritten expressions. The alt attribute carries
// the content hash; the id appends a running counter so repeated
// expressions keep unique element ids.
const (
	blockImgFormat  = "<div class='latex-box math-false'><img class='' alt='%s' id='%s' src='data:image/png;base64,%s'></div>"
	inlineImgFormat = "<img class='math-true' alt='%s' id='%s' src='data:image/png;base64,%s'>"

	// errorMarker replaces an expression whose compilation failed. The
	// diagnostics stay on disk; readers only see the marker.
	errorMarker = "<p>ERROR</p>"
)

// ExpressionRenderer abstracts LaTeX compilation so the stage can be
// tested without the latex toolchain.
type ExpressionRenderer interface {
	Render(preamble, expr string, mathMode bool) (string, error)
}

// Compile-time interface implementation check.
var _ ExpressionRenderer = (*texrender.Renderer)(nil)

// LatexStats counts what one preprocessing pass did.
type LatexStats struct {
	Expressions int // delimited regions found (text and math)
	Preambles   int // preamble fragments extracted
	CacheHits   int
	Compiled    int
	Failed      int
}

// LatexPreprocessor rewrites delimiter-fenced LaTeX regions into inline
// base64 images before the markdown parser sees them.
type LatexPreprocessor struct {
	delims   texscan.Delimiters
	extra    string
	cache    *texcache.Cache
	renderer ExpressionRenderer
}

// NewLatexPreprocessor creates the stage. extraPreamble is appended to
// the base preamble ahead of any fragments extracted from the document.
func NewLatexPreprocessor(delims texscan.Delimiters, extraPreamble string, cache *texcache.Cache, renderer ExpressionRenderer) *LatexPreprocessor {
	return &LatexPreprocessor{
		delims:   delims,
		extra:    extraPreamble,
		cache:    cache,
		renderer: renderer,
	}
}

// splice is a pending replacement of doc[start:end).
type splice struct {
	start, end  int
	replacement string
}

// Preprocess rewrites every fenced LaTeX region in doc and returns the
// transformed text. Preamble regions are stripped first and feed the
// compile preamble. Expressions are rendered cache-first; a failed
// expression degrades to an error marker without aborting the pass.
// Documents with no expressions are returned after preamble stripping
// only, skipping rendering and unescaping alike. Cancellation is checked
// between expressions, not inside a running compile.
func (p *LatexPreprocessor) Preprocess(ctx context.Context, doc string) (string, LatexStats, error) {
	var stats LatexStats

	stripped, fragments := texscan.ExtractPreambles(doc, p.delims.Preamble)
	stats.Preambles = len(fragments)

	matches := texscan.FindMatches(stripped, p.delims.Text, p.delims.Math)
	stats.Expressions = len(matches)
	if len(matches) == 0 {
		return stripped, stats, nil
	}

	preamble := texrender.BuildPreamble(p.extra, fragments)

	splices := make([]splice, 0, len(matches))
	for i, m := range matches {
		if err := ctx.Err(); err != nil {
			return "", stats, err
		}

		hash := texcache.Key(m.Body)
		payload, ok := p.cache.Get(hash)
		if ok {
			stats.CacheHits++
		} else {
			var err error
			payload, err = p.renderer.Render(preamble, m.Body, m.Mode == texscan.ModeMath)
			if err != nil {
				stats.Failed++
				splices = append(splices, splice{m.Start, m.End, errorMarker})
				continue
			}
			stats.Compiled++
			p.cache.Put(hash, payload)
		}

		// Every expression consumes a counter slot, failures included,
		// so ids stay stable regardless of render outcome.
		id := hash + "_" + strconv.Itoa(i+1)
		var tag string
		if m.Mode == texscan.ModeMath {
			tag = fmt.Sprintf(inlineImgFormat, hash, id, payload)
		} else {
			tag = fmt.Sprintf(blockImgFormat, hash, id, payload)
		}
		splices = append(splices, splice{m.Start, m.End, tag})
	}

	rewritten := applySplices(stripped, splices)
	return texscan.Unescape(rewritten, p.delims), stats, nil
}

// applySplices rebuilds doc with every replacement applied in one pass.
// The scanner rejects spans that overlap earlier claims, so the splices
// are disjoint; text and math matches arrive grouped by mode, though,
// so they are ordered by position first.
func applySplices(doc string, splices []splice) string {
	sort.Slice(splices, func(i, j int) bool { return splices[i].start < splices[j].start })

	var b strings.Builder
	b.Grow(len(doc))
	prev := 0
	for _, s := range splices {
		b.WriteString(doc[prev:s.start])
		b.WriteString(s.replacement)
		prev = s.end
	}
	b.WriteString(doc[prev:])
	return b.String()
}
