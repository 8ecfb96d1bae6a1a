// Package extract pulls plain text out of uploaded resume documents.
package extract

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFile indicates an upload whose extension is neither .pdf nor .docx.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrExtraction indicates the document could not be read or held no text.
	ErrExtraction = errors.New("text extraction failed")
)

// Format names a supported document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Extractor returns the plain text of a document.
type Extractor interface {
	Extract(r io.ReaderAt, size int64) (string, error)
}

// ForFilename picks an extractor by the file extension, case-insensitively.
func ForFilename(name string) (Extractor, Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return PDF{}, FormatPDF, nil
	case ".docx":
		return DOCX{}, FormatDOCX, nil
	default:
		return nil, "", fmt.Errorf("%w (got %q)", ErrUnsupportedFile, filepath.Ext(name))
	}
}

// File extracts the text of a named upload. Whitespace-only results are
// reported as ErrExtraction.
func File(name string, r io.ReaderAt, size int64) (string, Format, error) {
	ex, format, err := ForFilename(name)
	if err != nil {
		return "", "", err
	}
	text, err := ex.Extract(r, size)
	if err != nil {
		return "", format, err
	}
	if strings.TrimSpace(text) == "" {
		return "", format, fmt.Errorf("%w: document contains no text", ErrExtraction)
	}
	return text, format, nil
}
