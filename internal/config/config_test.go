package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TextDelimiter != "%" {
		t.Errorf("TextDelimiter = %q, want %q", cfg.TextDelimiter, "%")
	}
	if cfg.MathDelimiter != "£" {
		t.Errorf("MathDelimiter = %q, want %q", cfg.MathDelimiter, "£")
	}
	if cfg.PreambleDelimiter != "%%" {
		t.Errorf("PreambleDelimiter = %q, want %q", cfg.PreambleDelimiter, "%%")
	}
	if cfg.ExtraPreamble != "" {
		t.Errorf("ExtraPreamble = %q, want empty", cfg.ExtraPreamble)
	}
	if cfg.DvipngArgs != "-q -T tight -bg Transparent -z 9 -D 106" {
		t.Errorf("DvipngArgs = %q, want default flag set", cfg.DvipngArgs)
	}
	if cfg.CachePath != "latex.cache" {
		t.Errorf("CachePath = %q, want %q", cfg.CachePath, "latex.cache")
	}
	if cfg.Style != "default" {
		t.Errorf("Style = %q, want %q", cfg.Style, "default")
	}
	if cfg.Standalone {
		t.Error("Standalone = true, want false")
	}
	if !cfg.Signature {
		t.Error("Signature = false, want true")
	}
	if cfg.SignatureDate != "auto" {
		t.Errorf("SignatureDate = %q, want %q", cfg.SignatureDate, "auto")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		maxLength int
		wantErr   bool
	}{
		{
			name:      "empty value is valid",
			fieldName: "test",
			value:     "",
			maxLength: 10,
			wantErr:   false,
		},
		{
			name:      "value at limit is valid",
			fieldName: "test",
			value:     "1234567890",
			maxLength: 10,
			wantErr:   false,
		},
		{
			name:      "value over limit returns error",
			fieldName: "test.field",
			value:     "12345678901",
			maxLength: 10,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength(tt.fieldName, tt.value, tt.maxLength)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name: "multi-byte delimiters are valid",
			mutate: func(c *Config) {
				c.TextDelimiter = "$$"
				c.MathDelimiter = "§"
				c.PreambleDelimiter = "@@@"
			},
		},
		{
			name:   "empty style is valid",
			mutate: func(c *Config) { c.Style = "" },
		},
		{
			name:   "cache path with directories is valid",
			mutate: func(c *Config) { c.CachePath = "out/tex.cache" },
		},
		{
			name:    "empty text delimiter",
			mutate:  func(c *Config) { c.TextDelimiter = "" },
			wantErr: ErrInvalidDelimiter,
		},
		{
			name:    "empty math delimiter",
			mutate:  func(c *Config) { c.MathDelimiter = "" },
			wantErr: ErrInvalidDelimiter,
		},
		{
			name:    "empty preamble delimiter",
			mutate:  func(c *Config) { c.PreambleDelimiter = "" },
			wantErr: ErrInvalidDelimiter,
		},
		{
			name:    "delimiter with space",
			mutate:  func(c *Config) { c.TextDelimiter = "a b" },
			wantErr: ErrInvalidDelimiter,
		},
		{
			name:    "delimiter with tab",
			mutate:  func(c *Config) { c.MathDelimiter = "\t" },
			wantErr: ErrInvalidDelimiter,
		},
		{
			name:    "delimiter with non-breaking space",
			mutate:  func(c *Config) { c.TextDelimiter = " %" },
			wantErr: ErrInvalidDelimiter,
		},
		{
			name:    "delimiter with backslash",
			mutate:  func(c *Config) { c.TextDelimiter = `\%` },
			wantErr: ErrInvalidDelimiter,
		},
		{
			name:    "delimiter over byte limit",
			mutate:  func(c *Config) { c.PreambleDelimiter = strings.Repeat("$", MaxDelimiterLength+1) },
			wantErr: ErrInvalidDelimiter,
		},
		{
			name: "text equals math",
			mutate: func(c *Config) {
				c.TextDelimiter = "$"
				c.MathDelimiter = "$"
			},
			wantErr: ErrInvalidDelimiter,
		},
		{
			name:    "text equals preamble",
			mutate:  func(c *Config) { c.PreambleDelimiter = c.TextDelimiter },
			wantErr: ErrInvalidDelimiter,
		},
		{
			name:    "math equals preamble",
			mutate:  func(c *Config) { c.PreambleDelimiter = c.MathDelimiter },
			wantErr: ErrInvalidDelimiter,
		},
		{
			name:    "empty dvipng args",
			mutate:  func(c *Config) { c.DvipngArgs = "" },
			wantErr: ErrInvalidDvipngArgs,
		},
		{
			name:    "blank dvipng args",
			mutate:  func(c *Config) { c.DvipngArgs = "   " },
			wantErr: ErrInvalidDvipngArgs,
		},
		{
			name:    "dvipng args over limit",
			mutate:  func(c *Config) { c.DvipngArgs = "-D " + strings.Repeat("9", MaxDvipngArgsLength) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "empty cache path",
			mutate:  func(c *Config) { c.CachePath = "" },
			wantErr: ErrInvalidCachePath,
		},
		{
			name:    "cache path with trailing slash",
			mutate:  func(c *Config) { c.CachePath = "cache/" },
			wantErr: ErrInvalidCachePath,
		},
		{
			name:    "cache path over limit",
			mutate:  func(c *Config) { c.CachePath = strings.Repeat("x", MaxCachePathLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "extra preamble over limit",
			mutate:  func(c *Config) { c.ExtraPreamble = strings.Repeat("x", MaxPreambleLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "style over limit",
			mutate:  func(c *Config) { c.Style = strings.Repeat("x", MaxStyleLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "signature date over limit",
			mutate:  func(c *Config) { c.SignatureDate = strings.Repeat("x", MaxDateLength+1) },
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		return path
	}

	t.Run("empty path returns ErrEmptyConfigPath", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigPath) {
			t.Errorf("error = %v, want ErrEmptyConfigPath", err)
		}
	})

	t.Run("nonexistent file returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("loads every field", func(t *testing.T) {
		path := writeConfig(t, `text_delimiter: "@"
math_delimiter: "$"
preamble_delimiter: "@@"
extra_preamble: '\usepackage{xcolor}'
dvipng_args: "-q -D 300"
cache_path: "out/tex.cache"
style: "dark"
standalone: true
signature: false
signature_date: "2025-01-01"
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.TextDelimiter != "@" {
			t.Errorf("TextDelimiter = %q, want %q", cfg.TextDelimiter, "@")
		}
		if cfg.MathDelimiter != "$" {
			t.Errorf("MathDelimiter = %q, want %q", cfg.MathDelimiter, "$")
		}
		if cfg.PreambleDelimiter != "@@" {
			t.Errorf("PreambleDelimiter = %q, want %q", cfg.PreambleDelimiter, "@@")
		}
		if cfg.ExtraPreamble != `\usepackage{xcolor}` {
			t.Errorf("ExtraPreamble = %q, want %q", cfg.ExtraPreamble, `\usepackage{xcolor}`)
		}
		if cfg.DvipngArgs != "-q -D 300" {
			t.Errorf("DvipngArgs = %q, want %q", cfg.DvipngArgs, "-q -D 300")
		}
		if cfg.CachePath != "out/tex.cache" {
			t.Errorf("CachePath = %q, want %q", cfg.CachePath, "out/tex.cache")
		}
		if cfg.Style != "dark" {
			t.Errorf("Style = %q, want %q", cfg.Style, "dark")
		}
		if !cfg.Standalone {
			t.Error("Standalone = false, want true")
		}
		if cfg.Signature {
			t.Error("Signature = true, want false")
		}
		if cfg.SignatureDate != "2025-01-01" {
			t.Errorf("SignatureDate = %q, want %q", cfg.SignatureDate, "2025-01-01")
		}
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		path := writeConfig(t, "style: \"plain\"\n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Style != "plain" {
			t.Errorf("Style = %q, want %q", cfg.Style, "plain")
		}
		if cfg.TextDelimiter != "%" {
			t.Errorf("TextDelimiter = %q, want default %q", cfg.TextDelimiter, "%")
		}
		if cfg.CachePath != "latex.cache" {
			t.Errorf("CachePath = %q, want default %q", cfg.CachePath, "latex.cache")
		}
		if !cfg.Signature {
			t.Error("Signature = false, want default true")
		}
	})

	t.Run("explicit false overrides default true", func(t *testing.T) {
		path := writeConfig(t, "signature: false\n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Signature {
			t.Error("Signature = true, want false")
		}
	})

	t.Run("empty file yields defaults", func(t *testing.T) {
		path := writeConfig(t, "")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.TextDelimiter != "%" || !cfg.Signature {
			t.Errorf("empty file config = %+v, want defaults", cfg)
		}
	})

	t.Run("whitespace-only file yields defaults", func(t *testing.T) {
		path := writeConfig(t, "\n\n  \n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.CachePath != "latex.cache" {
			t.Errorf("CachePath = %q, want default", cfg.CachePath)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		path := writeConfig(t, "style: [unclosed")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		path := writeConfig(t, "style: \"default\"\nunknown_field: \"should fail\"\n")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("duplicate key returns ErrConfigParse in strict mode", func(t *testing.T) {
		path := writeConfig(t, "style: \"default\"\nstyle: \"dark\"\n")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid delimiter in file surfaces ErrInvalidDelimiter", func(t *testing.T) {
		path := writeConfig(t, "text_delimiter: \"a b\"\n")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidDelimiter) {
			t.Errorf("error = %v, want ErrInvalidDelimiter", err)
		}
	})

	t.Run("field too long returns ErrFieldTooLong", func(t *testing.T) {
		path := writeConfig(t, "style: \""+strings.Repeat("x", MaxStyleLength+1)+"\"\n")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrFieldTooLong) {
			t.Errorf("error = %v, want ErrFieldTooLong", err)
		}
	})

	t.Run("unreadable file returns read error not ErrConfigNotFound", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("running as root; permission bits not enforced")
		}
		path := writeConfig(t, "style: test\n")
		if err := os.Chmod(path, 0000); err != nil {
			t.Fatalf("setup chmod: %v", err)
		}
		defer os.Chmod(path, 0600) //nolint:errcheck

		_, err := LoadConfig(path)
		if err == nil {
			t.Fatal("expected error for unreadable file")
		}
		if errors.Is(err, ErrConfigNotFound) {
			t.Error("error should not be ErrConfigNotFound for permission error")
		}
	})
}

// isolateUserConfigDir points os.UserConfigDir at a fresh temp dir so
// Discover cannot see real user config files. Linux-only: other platforms
// ignore XDG_CONFIG_HOME.
func isolateUserConfigDir(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("cannot redirect user config dir on this platform")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestDiscover(t *testing.T) {
	t.Run("nothing found", func(t *testing.T) {
		isolateUserConfigDir(t)
		t.Chdir(t.TempDir())

		path, found := Discover()
		if found {
			t.Errorf("Discover() = %q, true; want not found", path)
		}
	})

	t.Run("finds local yaml dotfile", func(t *testing.T) {
		isolateUserConfigDir(t)
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".go-mdtex.yaml"), []byte("style: local\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		t.Chdir(dir)

		path, found := Discover()
		if !found {
			t.Fatal("Discover() found = false, want true")
		}
		if path != ".go-mdtex.yaml" {
			t.Errorf("Discover() = %q, want %q", path, ".go-mdtex.yaml")
		}
	})

	t.Run("finds local yml when yaml absent", func(t *testing.T) {
		isolateUserConfigDir(t)
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".go-mdtex.yml"), []byte("style: local\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}
		t.Chdir(dir)

		path, found := Discover()
		if !found {
			t.Fatal("Discover() found = false, want true")
		}
		if path != ".go-mdtex.yml" {
			t.Errorf("Discover() = %q, want %q", path, ".go-mdtex.yml")
		}
	})

	t.Run("prefers yaml over yml", func(t *testing.T) {
		isolateUserConfigDir(t)
		dir := t.TempDir()
		for _, name := range []string{".go-mdtex.yaml", ".go-mdtex.yml"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("style: local\n"), 0600); err != nil {
				t.Fatalf("setup %s: %v", name, err)
			}
		}
		t.Chdir(dir)

		path, found := Discover()
		if !found {
			t.Fatal("Discover() found = false, want true")
		}
		if path != ".go-mdtex.yaml" {
			t.Errorf("Discover() = %q, want %q (should prefer .yaml)", path, ".go-mdtex.yaml")
		}
	})

	t.Run("falls back to user config directory", func(t *testing.T) {
		configHome := isolateUserConfigDir(t)
		appDir := filepath.Join(configHome, "go-mdtex")
		if err := os.MkdirAll(appDir, 0750); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		userPath := filepath.Join(appDir, "config.yaml")
		if err := os.WriteFile(userPath, []byte("style: userdir\n"), 0600); err != nil {
			t.Fatalf("setup write: %v", err)
		}
		t.Chdir(t.TempDir())

		path, found := Discover()
		if !found {
			t.Fatal("Discover() found = false, want true")
		}
		if path != userPath {
			t.Errorf("Discover() = %q, want %q", path, userPath)
		}
	})

	t.Run("local dotfile wins over user config directory", func(t *testing.T) {
		configHome := isolateUserConfigDir(t)
		appDir := filepath.Join(configHome, "go-mdtex")
		if err := os.MkdirAll(appDir, 0750); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(appDir, "config.yaml"), []byte("style: userdir\n"), 0600); err != nil {
			t.Fatalf("setup write: %v", err)
		}
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".go-mdtex.yaml"), []byte("style: local\n"), 0600); err != nil {
			t.Fatalf("setup local: %v", err)
		}
		t.Chdir(dir)

		path, found := Discover()
		if !found {
			t.Fatal("Discover() found = false, want true")
		}
		if path != ".go-mdtex.yaml" {
			t.Errorf("Discover() = %q, want local dotfile", path)
		}
	})
}

func TestDiscoveredConfigLoads(t *testing.T) {
	isolateUserConfigDir(t)
	dir := t.TempDir()
	content := "math_delimiter: \"$\"\nstandalone: true\n"
	if err := os.WriteFile(filepath.Join(dir, ".go-mdtex.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Chdir(dir)

	path, found := Discover()
	if !found {
		t.Fatal("Discover() found = false, want true")
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(%q) error = %v", path, err)
	}
	if cfg.MathDelimiter != "$" {
		t.Errorf("MathDelimiter = %q, want %q", cfg.MathDelimiter, "$")
	}
	if !cfg.Standalone {
		t.Error("Standalone = false, want true")
	}
	if cfg.TextDelimiter != "%" {
		t.Errorf("TextDelimiter = %q, want default %q", cfg.TextDelimiter, "%")
	}
}
