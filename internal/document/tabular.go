package document

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TabularParser renders CSV files as one retrievable line per row.
// Each row becomes "Sheet <name>, Row <n>: <cell>, <cell>, ..." so the
// sheet and row context survives chunking and stays searchable.
type TabularParser struct{}

// NewTabularParser creates a tabular parser.
func NewTabularParser() Parser {
	return &TabularParser{}
}

// Parse reads a CSV file and renders its rows.
func (p *TabularParser) Parse(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open tabular file: %v", err)
	}
	defer file.Close()

	return p.ParseReader(file, filePath)
}

// ParseReader renders CSV content from r. The sheet name is derived
// from the filename.
func (p *TabularParser) ParseReader(r io.Reader, filename string) (string, error) {
	sheet := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var lines []string
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse tabular content: %v", err)
		}
		rowNum++

		cells := make([]string, 0, len(record))
		for _, cell := range record {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) == 0 {
			continue
		}

		lines = append(lines, fmt.Sprintf("Sheet %s, Row %d: %s", sheet, rowNum, strings.Join(cells, ", ")))
	}

	if len(lines) == 0 {
		return "", fmt.Errorf("no data rows found in tabular file")
	}
	return strings.Join(lines, "\n"), nil
}
