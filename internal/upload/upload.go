// Package upload turns uploaded text and PDF documents into session documents.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ledongthuc/pdf"

	"github.com/elilinden/Support-bot/internal/redact"
)

const (
	DefaultMaxChars = 50000
	// TruncationMarker is appended to text cut at the character limit.
	TruncationMarker = "\n\n[... truncated]"
	// MaxBytes bounds the size of a single upload.
	MaxBytes = 10 << 20
)

// DefaultAllowedPatterns are the filename globs accepted out of the box.
var DefaultAllowedPatterns = []string{"*.txt", "*.md", "*.markdown", "*.csv", "*.pdf"}

var knownTypes = map[string]bool{
	"text/plain":      true,
	"text/csv":        true,
	"text/markdown":   true,
	"application/pdf": true,
}

var (
	ErrUnsupportedType = errors.New("unsupported file type, please upload a text, markdown, CSV or PDF file")
	ErrUnreadablePDF   = errors.New("could not read this PDF, please paste the text or upload a .txt file")
	ErrNoPDFText       = errors.New("this PDF has no selectable text (it may be a scan), please paste the text instead")
	ErrNotText         = errors.New("file is not valid UTF-8 text")
	ErrEmpty           = errors.New("file is empty")
	ErrTooLarge        = fmt.Errorf("file is larger than %d MiB", MaxBytes>>20)
)

// Options configures an Extractor.
type Options struct {
	MaxChars        int
	AllowedPatterns []string
}

// Result is the text extracted from one upload.
type Result struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	ExtractedText string `json:"extractedText"`
	CharCount     int    `json:"charCount"`
	Truncated     bool   `json:"truncated"`
	// Warning is set when the text looks like it holds sensitive identifiers.
	Warning string `json:"warning,omitempty"`
}

// Extractor validates uploads and extracts their text.
type Extractor struct {
	maxChars int
	patterns []string
}

// New creates an Extractor. Invalid glob patterns are reported here rather
// than on every upload.
func New(opts Options) (*Extractor, error) {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if len(opts.AllowedPatterns) == 0 {
		opts.AllowedPatterns = DefaultAllowedPatterns
	}
	patterns := make([]string, 0, len(opts.AllowedPatterns))
	for _, p := range opts.AllowedPatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid upload pattern %q", p)
		}
		patterns = append(patterns, p)
	}
	return &Extractor{maxChars: opts.MaxChars, patterns: patterns}, nil
}

// Allowed reports whether a file with this name and content type may be
// uploaded. Either a matching filename or a known content type is enough.
func (e *Extractor) Allowed(name, contentType string) bool {
	if knownTypes[baseType(contentType)] {
		return true
	}
	base := strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	for _, p := range e.patterns {
		if ok, err := doublestar.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}

// Extract reads r and returns its text, truncated to the character limit.
// PDFs are reduced to their text layer.
func (e *Extractor) Extract(name, contentType string, r io.Reader) (*Result, error) {
	if !e.Allowed(name, contentType) {
		return nil, ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	var raw string
	if isPDF(name, contentType) {
		if raw, err = pdfText(data); err != nil {
			return nil, err
		}
	} else {
		if !utf8.Valid(data) {
			return nil, ErrNotText
		}
		raw = string(data)
	}

	text, truncated := Truncate(raw, e.maxChars)
	res := &Result{
		Name:          name,
		Type:          contentType,
		ExtractedText: text,
		CharCount:     utf8.RuneCountInString(text),
		Truncated:     truncated,
	}
	if findings := redact.Scan(text); len(findings) > 0 {
		res.Warning = redact.Warning(findings)
	}
	return res, nil
}

// Truncate cuts text to max characters and appends TruncationMarker when
// anything was cut.
func Truncate(text string, max int) (string, bool) {
	if utf8.RuneCountInString(text) <= max {
		return text, false
	}
	return string([]rune(text)[:max]) + TruncationMarker, true
}

// pdfText extracts the plain text of every page. The parser panics on some
// malformed files, so panics are reported as ErrUnreadablePDF.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrUnreadablePDF, r)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	text = strings.ToValidUTF8(strings.TrimSpace(string(out)), "")
	if text == "" {
		return "", ErrNoPDFText
	}
	return text, nil
}

func isPDF(name, contentType string) bool {
	return baseType(contentType) == "application/pdf" ||
		strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func baseType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
