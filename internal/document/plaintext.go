package document

import (
	"fmt"
	"io"
	"os"
)

// PlainTextParser reads .txt files verbatim.
type PlainTextParser struct{}

// NewPlainTextParser creates a plain text parser.
func NewPlainTextParser() Parser {
	return &PlainTextParser{}
}

// Parse reads the whole text file.
func (p *PlainTextParser) Parse(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %v", err)
	}
	return string(content), nil
}

// ParseReader reads the whole text content from r.
func (p *PlainTextParser) ParseReader(r io.Reader, filename string) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read text content: %v", err)
	}
	return string(content), nil
}
