// Package config loads and validates mdtex configuration files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/alnah/go-mdtex/internal/fileutil"
	"github.com/alnah/go-mdtex/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrEmptyConfigPath   = errors.New("config path cannot be empty")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrInvalidDelimiter  = errors.New("invalid delimiter")
	ErrInvalidDvipngArgs = errors.New("invalid dvipng arguments")
	ErrInvalidCachePath  = errors.New("invalid cache path")
	ErrFieldTooLong      = errors.New("field exceeds maximum length")
)

// Field length limits keep hostile config files from ballooning memory.
const (
	MaxDelimiterLength  = 8    // Bytes; delimiters are short sigils like "%" or "$$"
	MaxPreambleLength   = 8192 // Room for many \usepackage lines
	MaxDvipngArgsLength = 512  // A flag string, not a script
	MaxCachePathLength  = 4096 // PATH_MAX on common systems
	MaxStyleLength      = 1024 // Style name or CSS file path
	MaxDateLength       = 64   // Preset name or explicit format string
)

// Default values applied when a field is absent from the config file.
const (
	DefaultTextDelimiter     = "%"
	DefaultMathDelimiter     = "£"
	DefaultPreambleDelimiter = "%%"
	DefaultDvipngArgs        = "-q -T tight -bg Transparent -z 9 -D 106"
	DefaultCachePath         = "latex.cache"
	DefaultStyle             = "default"
	DefaultSignatureDate     = "auto"
)

// localConfigName is the dotfile searched in the working directory,
// before the extension.
const localConfigName = ".go-mdtex"

// Config holds all configuration for markdown-to-HTML conversion.
type Config struct {
	TextDelimiter     string `yaml:"text_delimiter"`     // Marks text-mode LaTeX regions
	MathDelimiter     string `yaml:"math_delimiter"`     // Marks math-mode LaTeX regions
	PreambleDelimiter string `yaml:"preamble_delimiter"` // Fences preamble fragments
	ExtraPreamble     string `yaml:"extra_preamble"`     // Appended to every compiled document
	DvipngArgs        string `yaml:"dvipng_args"`        // Flags passed to the DVI-to-PNG rasterizer
	CachePath         string `yaml:"cache_path"`         // Rendered-image cache file location
	Style             string `yaml:"style"`              // Embedded style name or CSS file path (empty = no page CSS)
	Standalone        bool   `yaml:"standalone"`         // Wrap output in a full HTML document
	Signature         bool   `yaml:"signature"`          // Dated footer in standalone output
	SignatureDate     string `yaml:"signature_date"`     // "auto", "auto:FORMAT", or literal text
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		TextDelimiter:     DefaultTextDelimiter,
		MathDelimiter:     DefaultMathDelimiter,
		PreambleDelimiter: DefaultPreambleDelimiter,
		ExtraPreamble:     "",
		DvipngArgs:        DefaultDvipngArgs,
		CachePath:         DefaultCachePath,
		Style:             DefaultStyle,
		Standalone:        false,
		Signature:         true,
		SignatureDate:     DefaultSignatureDate,
	}
}

// Validate checks delimiter and field constraints.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateDelimiter("text_delimiter", c.TextDelimiter); err != nil {
		return err
	}
	if err := validateDelimiter("math_delimiter", c.MathDelimiter); err != nil {
		return err
	}
	if err := validateDelimiter("preamble_delimiter", c.PreambleDelimiter); err != nil {
		return err
	}
	if c.TextDelimiter == c.MathDelimiter ||
		c.TextDelimiter == c.PreambleDelimiter ||
		c.MathDelimiter == c.PreambleDelimiter {
		return fmt.Errorf("%w: delimiters must be pairwise distinct (text %q, math %q, preamble %q)",
			ErrInvalidDelimiter, c.TextDelimiter, c.MathDelimiter, c.PreambleDelimiter)
	}

	if strings.TrimSpace(c.DvipngArgs) == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidDvipngArgs)
	}
	if err := validateFieldLength("dvipng_args", c.DvipngArgs, MaxDvipngArgsLength); err != nil {
		return err
	}

	if c.CachePath == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidCachePath)
	}
	if strings.HasSuffix(c.CachePath, "/") || strings.HasSuffix(c.CachePath, string(os.PathSeparator)) {
		return fmt.Errorf("%w: %q is a directory path", ErrInvalidCachePath, c.CachePath)
	}
	if err := validateFieldLength("cache_path", c.CachePath, MaxCachePathLength); err != nil {
		return err
	}

	if err := validateFieldLength("extra_preamble", c.ExtraPreamble, MaxPreambleLength); err != nil {
		return err
	}
	if err := validateFieldLength("style", c.Style, MaxStyleLength); err != nil {
		return err
	}
	if err := validateFieldLength("signature_date", c.SignatureDate, MaxDateLength); err != nil {
		return err
	}

	return nil
}

// validateDelimiter rejects delimiters the scanner cannot handle: empty
// strings match everywhere, whitespace collides with token boundaries, and
// backslashes collide with the escape prefix.
func validateDelimiter(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidDelimiter, fieldName)
	}
	if len(value) > MaxDelimiterLength {
		return fmt.Errorf("%w: %s %q exceeds %d bytes", ErrInvalidDelimiter, fieldName, value, MaxDelimiterLength)
	}
	if strings.ContainsFunc(value, unicode.IsSpace) {
		return fmt.Errorf("%w: %s %q contains whitespace", ErrInvalidDelimiter, fieldName, value)
	}
	if strings.Contains(value, `\`) {
		return fmt.Errorf("%w: %s %q contains a backslash", ErrInvalidDelimiter, fieldName, value)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig reads and validates the config file at path. Fields absent
// from the file keep their defaults; an empty file yields DefaultConfig.
// Returns ErrConfigNotFound if the file does not exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyConfigPath
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Discover returns the path of the first config file found in the standard
// locations: ./.go-mdtex.yaml, ./.go-mdtex.yml, then
// <user config dir>/go-mdtex/config.yaml and .yml.
// Absence is not an error; callers fall back to DefaultConfig.
func Discover() (string, bool) {
	extensions := []string{".yaml", ".yml"}

	for _, ext := range extensions {
		local := localConfigName + ext
		if fileutil.FileExists(local) {
			return local, true
		}
	}

	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	for _, ext := range extensions {
		userPath := filepath.Join(userConfigDir, "go-mdtex", "config"+ext)
		if fileutil.FileExists(userPath) {
			return userPath, true
		}
	}

	return "", false
}
