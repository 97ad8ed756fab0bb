package main

import (
	"errors"
	"os"

	mdtex "github.com/alnah/go-mdtex"
	"github.com/alnah/go-mdtex/internal/assets"
	"github.com/alnah/go-mdtex/internal/config"
	"github.com/alnah/go-mdtex/internal/hints"
	"github.com/alnah/go-mdtex/internal/texrender"
)

// Exit codes for the mdtex CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful render
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitTool    = 4 // latex or dvipng missing or unusable
)

// ErrFlagParse wraps pflag parse failures so they map to ExitUsage.
var ErrFlagParse = errors.New("parsing flags")

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// External toolchain errors (exit 4)
	if errors.Is(err, texrender.ErrCompilerFailed) ||
		errors.Is(err, texrender.ErrRasterizerFailed) {
		return ExitTool
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteHTML) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrFlagParse) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigPath) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidDelimiter) ||
		errors.Is(err, config.ErrInvalidDvipngArgs) ||
		errors.Is(err, config.ErrInvalidCachePath) ||
		errors.Is(err, mdtex.ErrEmptyMarkdown) ||
		errors.Is(err, mdtex.ErrInvalidDelimiter) ||
		errors.Is(err, mdtex.ErrInvalidDvipngArgs) ||
		errors.Is(err, mdtex.ErrInvalidCachePath) ||
		errors.Is(err, mdtex.ErrInvalidStyle) ||
		errors.Is(err, mdtex.ErrStyleNotFound) ||
		errors.Is(err, mdtex.ErrInvalidAssetPath) ||
		errors.Is(err, mdtex.ErrInvalidSignatureDate) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint line for err, or the empty string.
// Hints are appended to the error message at print time so the error
// values themselves stay clean for errors.Is chains.
func hintFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound()
	case errors.Is(err, mdtex.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.NewEmbeddedLoader().StyleNames())
	case errors.Is(err, mdtex.ErrCacheSave):
		return hints.ForCacheWrite()
	case errors.Is(err, ErrWriteHTML):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}
