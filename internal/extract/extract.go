// Package extract turns uploaded files into plain text for chunking.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ragh/internal/domain"
)

// binaryExtensions are formats we recognize but cannot pull text out of.
var binaryExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".ppt":  {},
	".pptx": {},
	".xls":  {},
	".xlsx": {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".mp3":  {},
	".mp4":  {},
	".wav":  {},
	".zip":  {},
	".gz":   {},
	".tar":  {},
	".exe":  {},
	".bin":  {},
}

// PlainText extracts text from .txt and .md files, and from any other file
// whose bytes decode as UTF-8. Known binary formats fail with
// domain.ErrExtractionFailure.
type PlainText struct{}

// NewPlainText creates a plain-text extractor.
func NewPlainText() *PlainText { return &PlainText{} }

// Extract returns the textual content of the named file contents.
func (e *PlainText) Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := binaryExtensions[ext]; ok {
		return "", fmt.Errorf("%s: unsupported format %q: %w", filename, ext, domain.ErrExtractionFailure)
	}
	switch ext {
	case ".txt", ".md", ".markdown", ".text", ".log", ".rst":
		return string(data), nil
	}
	// Unknown extension: accept only if the bytes are valid UTF-8 and
	// contain no NUL, otherwise treat the file as binary.
	if !utf8.Valid(data) || strings.ContainsRune(string(data), 0) {
		return "", fmt.Errorf("%s: not a text file: %w", filename, domain.ErrExtractionFailure)
	}
	return string(data), nil
}
