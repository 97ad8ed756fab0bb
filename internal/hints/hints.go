// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"runtime"
	"strings"
)

// ForMissingTool returns install hints for a missing external tool
// (latex or dvipng). Both ship with the common TeX distributions, so the
// suggestion is per-platform rather than per-tool.
func ForMissingTool(tool string) string {
	switch runtime.GOOS {
	case "darwin":
		return format("install " + tool + " via MacTeX or BasicTeX (brew install --cask basictex)")
	case "windows":
		return format("install " + tool + " via MiKTeX (https://miktex.org), then restart the shell so PATH updates")
	default:
		return format("install " + tool + " via TeX Live (e.g. apt install texlive dvipng)")
	}
}

// ForConfigNotFound returns hints for an explicit --config path that does
// not exist. Without the flag, discovery falls back to defaults silently,
// so this only fires on user-provided paths.
func ForConfigNotFound() string {
	return format("check the --config path, or drop the flag to use ./.go-mdtex.yaml or built-in defaults")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForCacheWrite returns hints for cache persistence failures.
func ForCacheWrite() string {
	return format("pass --cache to point at a writable location")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
