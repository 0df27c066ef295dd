package document

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Parser converts one document format into retrievable plain text.
type Parser interface {
	// Parse reads the file at filePath and returns its text content.
	Parse(filePath string) (string, error)

	// ParseReader parses content from r; filename determines the format.
	ParseReader(r io.Reader, filename string) (string, error)
}

// ContentType identifies a supported document format.
type ContentType string

const (
	// PDF documents, text extracted page by page.
	PDF ContentType = "pdf"
	// Markdown documents.
	Markdown ContentType = "markdown"
	// PlainText documents.
	PlainText ContentType = "plaintext"
	// Tabular documents (CSV), rendered row by row.
	Tabular ContentType = "tabular"
	// Structured documents (JSON), flattened to path/value lines.
	Structured ContentType = "structured"
	// Unknown format.
	Unknown ContentType = "unknown"
)

// ErrUnsupportedType is returned for file extensions no parser handles.
var ErrUnsupportedType = errors.New("unsupported document type")

// ParserFactory returns the parser matching the file's extension.
func ParserFactory(filePath string) (Parser, error) {
	switch DetectContentType(filePath) {
	case PDF:
		return NewPDFParser(), nil
	case Markdown:
		return NewMarkdownParser(), nil
	case PlainText:
		return NewPlainTextParser(), nil
	case Tabular:
		return NewTabularParser(), nil
	case Structured:
		return NewStructuredParser(), nil
	default:
		return nil, ErrUnsupportedType
	}
}

// DetectContentType maps a file extension to its content type.
func DetectContentType(filePath string) ContentType {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".pdf":
		return PDF
	case ".md", ".markdown":
		return Markdown
	case ".txt":
		return PlainText
	case ".csv":
		return Tabular
	case ".json":
		return Structured
	default:
		return Unknown
	}
}

// Content is one text fragment produced by a splitter.
type Content struct {
	Text  string // fragment text
	Index int    // position within the source document
}

// Splitter divides parsed text into retrieval-sized fragments.
type Splitter interface {
	Split(text string) ([]Content, error)
}
