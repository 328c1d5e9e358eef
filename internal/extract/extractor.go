// Package extract turns content files into plain text for chunking.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupported is returned for file types the extractor does not handle.
var ErrUnsupported = errors.New("unsupported file type")

type extractFunc func([]byte) (string, error)

var formats = map[string]extractFunc{
	".txt":      extractPlain,
	".md":       extractPlain,
	".markdown": extractPlain,
	".rst":      extractPlain,
	".pdf":      extractPDF,
	".docx":     extractDOCX,
	".xlsx":     extractExcel,
}

// Extractor extracts text from the file types it is configured for.
type Extractor struct {
	enabled map[string]extractFunc
}

// NewExtractor returns an Extractor limited to the given extensions (".md", "pdf", ...).
// With no extensions every built-in format is enabled. Extensions without a built-in
// reader are ignored.
func NewExtractor(extensions ...string) *Extractor {
	e := &Extractor{enabled: make(map[string]extractFunc)}
	if len(extensions) == 0 {
		for ext, fn := range formats {
			e.enabled[ext] = fn
		}
		return e
	}
	for _, ext := range extensions {
		ext = normalizeExt(ext)
		if fn, ok := formats[ext]; ok {
			e.enabled[ext] = fn
		}
	}
	return e
}

// Extensions returns the enabled extensions in sorted order.
func (e *Extractor) Extensions() []string {
	out := make([]string, 0, len(e.enabled))
	for ext := range e.enabled {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether path has an enabled extension.
func (e *Extractor) Supports(path string) bool {
	_, ok := e.enabled[normalizeExt(filepath.Ext(path))]
	return ok
}

// Extract reads the file at path and returns its text.
func (e *Extractor) Extract(path string) (string, error) {
	ext := normalizeExt(filepath.Ext(path))
	if _, ok := e.enabled[ext]; !ok {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content according to ext.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	fn, ok := e.enabled[normalizeExt(ext)]
	if !ok {
		return "", fmt.Errorf("%q: %w", ext, ErrUnsupported)
	}
	return fn(content)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
