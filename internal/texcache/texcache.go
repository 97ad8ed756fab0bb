// Package texcache persists rendered LaTeX images across runs.
//
// The cache file is line oriented: each line holds a content hash and a
// base64 PNG payload separated by one space. Entries are only ever
// appended, so concurrent runs can share a file, and a damaged file
// degrades to a smaller cache instead of failing the run.
package texcache

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/sha3"
)

// keySize is the digest length in bytes; hex encoding doubles it.
const keySize = 16

// maxLineSize bounds a single cache line. Payload lines carry whole
// base64 images, so the bufio default of 64K is too small.
const maxLineSize = 16 << 20

// Key returns the cache key for an expression: the first 16 bytes of its
// SHAKE128 digest, hex encoded.
func Key(expr string) string {
	h := sha3.NewShake128()
	_, _ = h.Write([]byte(expr))
	sum := make([]byte, keySize)
	_, _ = h.Read(sum)
	return hex.EncodeToString(sum)
}

// Cache is an on-disk map from expression hashes to base64 PNG payloads.
// Load and Save are explicit lifecycle calls; Save appends only the
// entries added since the last Load or Save.
type Cache struct {
	path    string
	entries map[string]string
	added   []string
	skipped int
}

// New returns an empty cache bound to path. Call Load to read any
// existing entries.
func New(path string) *Cache {
	return &Cache{
		path:    path,
		entries: make(map[string]string),
	}
}

// Path returns the cache file location.
func (c *Cache) Path() string { return c.path }

// Load reads the cache file into memory. A missing file is not an error:
// the cache simply starts empty. Lines that do not parse as
// "<hash> <payload>" are counted and skipped; a duplicated hash keeps the
// last payload seen.
func (c *Cache) Load() error {
	f, err := os.Open(c.path) // #nosec G304 -- cache path comes from validated config
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		hash, payload, ok := strings.Cut(line, " ")
		if !ok || hash == "" || payload == "" || strings.Contains(payload, " ") {
			c.skipped++
			continue
		}
		c.entries[hash] = payload
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading cache file: %w", err)
	}
	return nil
}

// Get returns the payload stored under hash.
func (c *Cache) Get(hash string) (string, bool) {
	payload, ok := c.entries[hash]
	return payload, ok
}

// Put stores a payload under hash and queues it for the next Save. A hash
// that is already present is refreshed in memory but not queued twice.
func (c *Cache) Put(hash, payload string) {
	if _, exists := c.entries[hash]; !exists {
		c.added = append(c.added, hash)
	}
	c.entries[hash] = payload
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int { return len(c.entries) }

// Added returns the number of entries queued for the next Save.
func (c *Cache) Added() int { return len(c.added) }

// Skipped returns the number of malformed lines ignored by Load.
func (c *Cache) Skipped() int { return c.skipped }

// Save appends the queued entries to the cache file, creating it if
// needed. All lines go out in a single write so appends from concurrent
// runs interleave at line granularity. Save with nothing queued touches
// nothing.
func (c *Cache) Save() error {
	if len(c.added) == 0 {
		return nil
	}

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- cache path comes from validated config
	if err != nil {
		return fmt.Errorf("opening cache file for append: %w", err)
	}

	var b strings.Builder
	for _, hash := range c.added {
		b.WriteString(hash)
		b.WriteByte(' ')
		b.WriteString(c.entries[hash])
		b.WriteByte('\n')
	}

	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}

	c.added = c.added[:0]
	return nil
}
