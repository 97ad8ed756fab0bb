package texcache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	t.Parallel()

	k1 := Key("e^{i\\pi} + 1 = 0")
	k2 := Key("e^{i\\pi} + 1 = 0")
	k3 := Key("e^{i\\pi} + 1 = 1")

	if k1 != k2 {
		t.Errorf("Key is not deterministic: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Errorf("distinct expressions share key %q", k1)
	}
	if len(k1) != 32 {
		t.Errorf("Key length = %d, want 32 hex chars", len(k1))
	}
	for _, r := range k1 {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Errorf("Key contains non-hex char %q in %q", r, k1)
		}
	}
}

func TestCache_Load_MissingFile(t *testing.T) {
	t.Parallel()

	c := New(filepath.Join(t.TempDir(), "latex.cache"))
	if err := c.Load(); err != nil {
		t.Fatalf("Load() on missing file = %v, want nil", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCache_Load_ReadsEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "latex.cache")
	content := "aaaa payload1\nbbbb payload2\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c := New(path)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if got, ok := c.Get("aaaa"); !ok || got != "payload1" {
		t.Errorf("Get(aaaa) = %q, %v; want payload1, true", got, ok)
	}
	if got, ok := c.Get("bbbb"); !ok || got != "payload2" {
		t.Errorf("Get(bbbb) = %q, %v; want payload2, true", got, ok)
	}
	if _, ok := c.Get("cccc"); ok {
		t.Error("Get(cccc) should miss")
	}
}

func TestCache_Load_SkipsMalformedLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "latex.cache")
	content := strings.Join([]string{
		"good payload",
		"nospace",          // no separator
		" leadingspace",    // empty hash
		"trailingspace ",   // empty payload
		"three part line",  // payload must not contain spaces
		"",                 // blank lines are not corruption
		"alsogood payload2",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	c := New(path)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if c.Skipped() != 4 {
		t.Errorf("Skipped() = %d, want 4", c.Skipped())
	}
}

func TestCache_Load_DuplicateHashLastWins(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "latex.cache")
	if err := os.WriteFile(path, []byte("h old\nh new\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := New(path)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, _ := c.Get("h"); got != "new" {
		t.Errorf("Get(h) = %q, want %q", got, "new")
	}
}

func TestCache_Save_AppendsOnlyNewEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "latex.cache")
	if err := os.WriteFile(path, []byte("old payload\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := New(path)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	c.Put("fresh", "data")
	if c.Added() != 1 {
		t.Fatalf("Added() = %d, want 1", c.Added())
	}
	if err := c.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "old payload\nfresh data\n"
	if string(data) != want {
		t.Errorf("cache file = %q, want %q", string(data), want)
	}

	// A second Save must not duplicate already-flushed entries.
	if err := c.Save(); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != want {
		t.Errorf("cache file after second Save = %q, want %q", string(data), want)
	}
}

func TestCache_Save_NothingQueuedTouchesNothing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "latex.cache")

	c := New(path)
	if err := c.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Save() with nothing queued should not create %s", path)
	}
}

func TestCache_Put_ExistingHashNotQueuedTwice(t *testing.T) {
	t.Parallel()

	c := New(filepath.Join(t.TempDir(), "latex.cache"))
	c.Put("h", "v1")
	c.Put("h", "v2")

	if c.Added() != 1 {
		t.Errorf("Added() = %d, want 1", c.Added())
	}
	if got, _ := c.Get("h"); got != "v2" {
		t.Errorf("Get(h) = %q, want refreshed payload v2", got)
	}
}

func TestCache_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "latex.cache")

	first := New(path)
	if err := first.Load(); err != nil {
		t.Fatal(err)
	}
	first.Put(Key("x^2"), "imagedata")
	if err := first.Save(); err != nil {
		t.Fatal(err)
	}

	second := New(path)
	if err := second.Load(); err != nil {
		t.Fatal(err)
	}
	if got, ok := second.Get(Key("x^2")); !ok || got != "imagedata" {
		t.Errorf("reloaded Get = %q, %v; want imagedata, true", got, ok)
	}
}
