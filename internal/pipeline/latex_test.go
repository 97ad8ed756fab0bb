package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdtex/internal/texcache"
	"github.com/alnah/go-mdtex/internal/texrender"
	"github.com/alnah/go-mdtex/internal/texscan"
)

// renderCall records one invocation of the mock renderer.
type renderCall struct {
	preamble string
	expr     string
	mathMode bool
}

// mockExprRenderer serves canned payloads without running latex.
type mockExprRenderer struct {
	calls    []renderCall
	payloads map[string]string // expr -> payload, defaults to "PNG"
	failOn   map[string]error  // expr -> render error
}

func (m *mockExprRenderer) Render(preamble, expr string, mathMode bool) (string, error) {
	m.calls = append(m.calls, renderCall{preamble: preamble, expr: expr, mathMode: mathMode})
	if err, ok := m.failOn[expr]; ok {
		return "", err
	}
	if payload, ok := m.payloads[expr]; ok {
		return payload, nil
	}
	return "PNG", nil
}

var testDelims = texscan.Delimiters{Text: "%", Math: "£", Preamble: "%%"}

func newTestPreprocessor(t *testing.T, renderer ExpressionRenderer) (*LatexPreprocessor, *texcache.Cache) {
	t.Helper()

	cache := texcache.New(filepath.Join(t.TempDir(), "latex.cache"))
	return NewLatexPreprocessor(testDelims, "", cache, renderer), cache
}

func TestLatexPreprocessor_TextExpression(t *testing.T) {
	t.Parallel()

	renderer := &mockExprRenderer{payloads: map[string]string{"x^2": "IMGDATA"}}
	p, _ := newTestPreprocessor(t, renderer)

	got, stats, err := p.Preprocess(context.Background(), "before %x^2% after")
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	hash := texcache.Key("x^2")
	want := "before " + fmt.Sprintf(blockImgFormat, hash, hash+"_1", "IMGDATA") + " after"
	if got != want {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}

	if stats.Expressions != 1 || stats.Compiled != 1 || stats.CacheHits != 0 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 1 expression compiled", stats)
	}

	if len(renderer.calls) != 1 {
		t.Fatalf("renderer calls = %d, want 1", len(renderer.calls))
	}
	call := renderer.calls[0]
	if call.expr != "x^2" {
		t.Errorf("rendered expr = %q, want %q", call.expr, "x^2")
	}
	if call.mathMode {
		t.Error("text expression rendered with mathMode = true")
	}
	if want := texrender.BuildPreamble("", nil); call.preamble != want {
		t.Errorf("preamble = %q, want %q", call.preamble, want)
	}
}

func TestLatexPreprocessor_MathExpression(t *testing.T) {
	t.Parallel()

	renderer := &mockExprRenderer{payloads: map[string]string{`e^{i\pi}`: "INLINE"}}
	p, _ := newTestPreprocessor(t, renderer)

	got, _, err := p.Preprocess(context.Background(), `inline £e^{i\pi}£ here`)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	hash := texcache.Key(`e^{i\pi}`)
	want := "inline " + fmt.Sprintf(inlineImgFormat, hash, hash+"_1", "INLINE") + " here"
	if got != want {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}

	if len(renderer.calls) != 1 || !renderer.calls[0].mathMode {
		t.Errorf("renderer calls = %+v, want one math-mode call", renderer.calls)
	}
}

func TestLatexPreprocessor_NoExpressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		doc           string
		want          string
		wantPreambles int
	}{
		{
			name: "plain document untouched",
			doc:  "# Title\n\nNo fenced regions at all.",
			want: "# Title\n\nNo fenced regions at all.",
		},
		{
			// Escapes are only stripped when a rewrite happened, so a
			// document without expressions keeps its backslashes.
			name: "escaped delimiters keep backslashes",
			doc:  `costs 100\% more`,
			want: `costs 100\% more`,
		},
		{
			name:          "preamble stripped even without expressions",
			doc:           "%%\\usepackage{tikz}%%\nrest",
			want:          "\nrest",
			wantPreambles: 1,
		},
		{
			name: "unclosed fence left alone",
			doc:  "a lonely % sign",
			want: "a lonely % sign",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			renderer := &mockExprRenderer{}
			p, _ := newTestPreprocessor(t, renderer)

			got, stats, err := p.Preprocess(context.Background(), tt.doc)
			if err != nil {
				t.Fatalf("Preprocess() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Preprocess() = %q, want %q", got, tt.want)
			}
			if stats.Expressions != 0 {
				t.Errorf("stats.Expressions = %d, want 0", stats.Expressions)
			}
			if stats.Preambles != tt.wantPreambles {
				t.Errorf("stats.Preambles = %d, want %d", stats.Preambles, tt.wantPreambles)
			}
			if len(renderer.calls) != 0 {
				t.Errorf("renderer calls = %d, want 0", len(renderer.calls))
			}
		})
	}
}

func TestLatexPreprocessor_InterleavedModesKeepDocumentOrder(t *testing.T) {
	t.Parallel()

	renderer := &mockExprRenderer{payloads: map[string]string{
		"a": "PA", "b": "PB", "c": "PC",
	}}
	p, _ := newTestPreprocessor(t, renderer)

	got, stats, err := p.Preprocess(context.Background(), "£a£ %b% £c£")
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	// Text regions are processed first, so the counter visits b before a
	// and c even though a comes first in the document.
	hashA, hashB, hashC := texcache.Key("a"), texcache.Key("b"), texcache.Key("c")
	want := fmt.Sprintf(inlineImgFormat, hashA, hashA+"_2", "PA") +
		" " + fmt.Sprintf(blockImgFormat, hashB, hashB+"_1", "PB") +
		" " + fmt.Sprintf(inlineImgFormat, hashC, hashC+"_3", "PC")
	if got != want {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}

	if stats.Expressions != 3 || stats.Compiled != 3 {
		t.Errorf("stats = %+v, want 3 expressions compiled", stats)
	}
}

func TestLatexPreprocessor_MathFencesStraddlingTextRegion(t *testing.T) {
	t.Parallel()

	renderer := &mockExprRenderer{payloads: map[string]string{"b£c": "PB"}}
	p, _ := newTestPreprocessor(t, renderer)

	// The math fences cannot pair without swallowing the text region
	// between them. The text claim wins; the math fences stay literal.
	got, stats, err := p.Preprocess(context.Background(), "£a %b£c% d£")
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	hash := texcache.Key("b£c")
	want := "£a " + fmt.Sprintf(blockImgFormat, hash, hash+"_1", "PB") + " d£"
	if got != want {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}

	if stats.Expressions != 1 || stats.Compiled != 1 {
		t.Errorf("stats = %+v, want 1 expression compiled", stats)
	}
}

func TestLatexPreprocessor_CacheHitSkipsRenderer(t *testing.T) {
	t.Parallel()

	hash := texcache.Key("y")
	path := filepath.Join(t.TempDir(), "latex.cache")
	if err := os.WriteFile(path, []byte(hash+" CACHED\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cache := texcache.New(path)
	if err := cache.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	renderer := &mockExprRenderer{}
	p := NewLatexPreprocessor(testDelims, "", cache, renderer)

	got, stats, err := p.Preprocess(context.Background(), "x %y% z")
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	want := "x " + fmt.Sprintf(blockImgFormat, hash, hash+"_1", "CACHED") + " z"
	if got != want {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}

	if stats.CacheHits != 1 || stats.Compiled != 0 {
		t.Errorf("stats = %+v, want 1 cache hit and 0 compiles", stats)
	}
	if len(renderer.calls) != 0 {
		t.Errorf("renderer calls = %d, want 0", len(renderer.calls))
	}
}

func TestLatexPreprocessor_DuplicateExpressionCompiledOnce(t *testing.T) {
	t.Parallel()

	renderer := &mockExprRenderer{payloads: map[string]string{"a": "PA"}}
	p, _ := newTestPreprocessor(t, renderer)

	got, stats, err := p.Preprocess(context.Background(), "%a% and %a%")
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	hash := texcache.Key("a")
	want := fmt.Sprintf(blockImgFormat, hash, hash+"_1", "PA") +
		" and " + fmt.Sprintf(blockImgFormat, hash, hash+"_2", "PA")
	if got != want {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}

	if len(renderer.calls) != 1 {
		t.Errorf("renderer calls = %d, want 1", len(renderer.calls))
	}
	if stats.Compiled != 1 || stats.CacheHits != 1 {
		t.Errorf("stats = %+v, want 1 compile and 1 cache hit", stats)
	}
}

func TestLatexPreprocessor_FailureEmitsErrorMarker(t *testing.T) {
	t.Parallel()

	renderer := &mockExprRenderer{
		payloads: map[string]string{"good": "PG"},
		failOn:   map[string]error{"bad": fmt.Errorf("%w: exit status 1", texrender.ErrCompilerFailed)},
	}
	p, cache := newTestPreprocessor(t, renderer)

	got, stats, err := p.Preprocess(context.Background(), "%bad% then %good%")
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	// The failed expression still consumes a counter slot.
	hash := texcache.Key("good")
	want := errorMarker + " then " + fmt.Sprintf(blockImgFormat, hash, hash+"_2", "PG")
	if got != want {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}

	if stats.Failed != 1 || stats.Compiled != 1 {
		t.Errorf("stats = %+v, want 1 failure and 1 compile", stats)
	}
	if _, ok := cache.Get(texcache.Key("bad")); ok {
		t.Error("failed expression was cached")
	}
}

func TestLatexPreprocessor_PreambleFeedsRenderer(t *testing.T) {
	t.Parallel()

	renderer := &mockExprRenderer{}
	cache := texcache.New(filepath.Join(t.TempDir(), "latex.cache"))
	p := NewLatexPreprocessor(testDelims, "\\usepackage{xcolor}", cache, renderer)

	doc := "%%\\usepackage{tikz}%%\n%x%"
	if _, _, err := p.Preprocess(context.Background(), doc); err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	if len(renderer.calls) != 1 {
		t.Fatalf("renderer calls = %d, want 1", len(renderer.calls))
	}
	want := texrender.BuildPreamble("\\usepackage{xcolor}", []string{"\\usepackage{tikz}"})
	if got := renderer.calls[0].preamble; got != want {
		t.Errorf("preamble = %q, want %q", got, want)
	}
}

func TestLatexPreprocessor_UnescapesAfterRewrite(t *testing.T) {
	t.Parallel()

	renderer := &mockExprRenderer{payloads: map[string]string{"x": "PX"}}
	p, _ := newTestPreprocessor(t, renderer)

	got, _, err := p.Preprocess(context.Background(), `100\% of %x% stays`)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	hash := texcache.Key("x")
	want := "100% of " + fmt.Sprintf(blockImgFormat, hash, hash+"_1", "PX") + " stays"
	if got != want {
		t.Errorf("Preprocess() = %q, want %q", got, want)
	}
	if strings.Contains(got, `\%`) {
		t.Errorf("escape survived rewrite: %q", got)
	}
}

func TestLatexPreprocessor_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	renderer := &mockExprRenderer{}
	p, _ := newTestPreprocessor(t, renderer)

	_, _, err := p.Preprocess(ctx, "%x%")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Preprocess() error = %v, want context.Canceled", err)
	}
	if len(renderer.calls) != 0 {
		t.Errorf("renderer calls = %d, want 0", len(renderer.calls))
	}
}
