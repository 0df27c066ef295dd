package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser extracts text content from PDF files.
type PDFParser struct{}

// NewPDFParser creates a PDF parser.
func NewPDFParser() Parser {
	return &PDFParser{}
}

// Parse extracts the text of every page, joined in page order.
func (p *PDFParser) Parse(filePath string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "pdf_extract_")
	if err != nil {
		return "", fmt.Errorf("cannot create extraction dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(filePath, tmpDir, nil, conf); err != nil {
		return "", fmt.Errorf("pdf content extraction failed: %w", err)
	}

	pages, err := pageFiles(tmpDir)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, page := range pages {
		data, err := os.ReadFile(page)
		if err != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.Write(data)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return text, nil
}

// ParseReader writes r to a temp file and parses it; pdfcpu needs a
// seekable file.
func (p *PDFParser) ParseReader(r io.Reader, filename string) (string, error) {
	tmpFile, err := os.CreateTemp("", "pdf_upload_*.pdf")
	if err != nil {
		return "", fmt.Errorf("cannot create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("cannot buffer pdf content: %w", err)
	}
	tmpFile.Close()

	return p.Parse(tmpFile.Name())
}

// pageFiles lists the extracted per-page text files sorted by page
// number. Lexicographic order would put page 10 before page 2.
func pageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read extraction dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := pageNumber(names[i]), pageNumber(names[j])
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// pageNumber pulls the trailing page index out of an extracted file
// name such as "doc_Content_page_12.txt".
func pageNumber(name string) int {
	base := strings.TrimSuffix(name, ".txt")
	idx := strings.LastIndexByte(base, '_')
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
