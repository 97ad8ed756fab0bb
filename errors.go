package mdtex

import (
	"errors"

	"github.com/alnah/go-mdtex/internal/assets"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")

	// Option validation errors, surfaced by NewConverter.
	ErrInvalidDelimiter     = errors.New("invalid delimiter")
	ErrInvalidDvipngArgs    = errors.New("invalid dvipng arguments")
	ErrInvalidCachePath     = errors.New("invalid cache path")
	ErrInvalidStyle         = errors.New("invalid style")
	ErrInvalidAssetPath     = errors.New("invalid asset path")
	ErrInvalidSignatureDate = errors.New("invalid signature date")

	// ErrCacheSave reports a failed cache append after an otherwise
	// successful conversion. The Result is returned alongside it, so
	// callers can keep the output and treat the error as a warning.
	ErrCacheSave = errors.New("saving expression cache")

	// ErrStyleNotFound mirrors the internal assets sentinel so callers
	// can match it without reaching into internal packages.
	ErrStyleNotFound = assets.ErrStyleNotFound
)
