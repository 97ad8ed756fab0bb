package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	mdtex "github.com/alnah/go-mdtex"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToRender represents a single file to process.
type FileToRender struct {
	InputPath  string
	OutputPath string
}

// looksLikeMarkdown reports whether path carries a markdown extension.
func looksLikeMarkdown(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".md" || ext == ".markdown"
}

// discoverInputs expands the positional arguments into the files to
// render. A file argument must carry a markdown extension. A directory
// argument yields its top-level markdown files, or the whole subtree
// with recursive.
func discoverInputs(inputs []string, output string, recursive bool) ([]FileToRender, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	var files []FileToRender
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("reading input %s: %w", input, err)
		}

		if !info.IsDir() {
			if err := validateMarkdownExtension(input); err != nil {
				return nil, err
			}
			files = append(files, FileToRender{
				InputPath:  input,
				OutputPath: resolveOutputPath(input, output, ""),
			})
			continue
		}

		found, err := discoverDir(input, output, recursive)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	return files, nil
}

// discoverDir collects the markdown files under dir.
func discoverDir(dir, output string, recursive bool) ([]FileToRender, error) {
	var files []FileToRender

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading input %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !looksLikeMarkdown(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			files = append(files, FileToRender{
				InputPath:  path,
				OutputPath: resolveOutputPath(path, output, dir),
			})
		}
		return files, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !looksLikeMarkdown(path) {
			return nil
		}
		files = append(files, FileToRender{
			InputPath:  path,
			OutputPath: resolveOutputPath(path, output, dir),
		})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the HTML output path for a markdown file.
// Without --output the HTML lands next to the input. An --output ending
// in .html names the file directly; anything else is treated as a
// directory, preserving the input's layout relative to baseInputDir.
func resolveOutputPath(inputPath, output, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if output == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".html")
	}

	if strings.HasSuffix(output, ".html") {
		return output
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(output, relDir, base+".html")
		}
	}

	return filepath.Join(output, base+".html")
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !looksLikeMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > mdtex.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, mdtex.MaxPoolSize)
	}
	return nil
}
