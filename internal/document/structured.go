package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// StructuredParser flattens JSON documents into one "path: value" line
// per scalar leaf, depth first. Array elements get an "[i]" path
// segment, and the document's base filename becomes the root path so
// values stay attributable after chunking.
type StructuredParser struct{}

// NewStructuredParser creates a structured parser.
func NewStructuredParser() Parser {
	return &StructuredParser{}
}

// Parse reads and flattens a JSON file.
func (p *StructuredParser) Parse(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open structured file: %v", err)
	}
	defer file.Close()

	return p.ParseReader(file, filePath)
}

// ParseReader flattens JSON content from r.
func (p *StructuredParser) ParseReader(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read structured content: %v", err)
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return "", fmt.Errorf("failed to parse structured content: %v", err)
	}

	rootPath := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var lines []string
	flattenValue(rootPath, root, &lines)
	if len(lines) == 0 {
		return "", fmt.Errorf("no scalar values found in structured file")
	}
	return strings.Join(lines, "\n"), nil
}

// flattenValue walks v depth first and appends a line per scalar leaf.
func flattenValue(path string, v any, lines *[]string) {
	switch val := v.(type) {
	case map[string]any:
		// deterministic output regardless of map iteration order
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenValue(path+"."+k, val[k], lines)
		}
	case []any:
		for i, item := range val {
			flattenValue(fmt.Sprintf("%s[%d]", path, i), item, lines)
		}
	case nil:
		// null leaves carry no retrievable text
	case string:
		if val = strings.TrimSpace(val); val != "" {
			*lines = append(*lines, fmt.Sprintf("%s: %s", path, val))
		}
	case bool:
		*lines = append(*lines, fmt.Sprintf("%s: %t", path, val))
	case float64:
		*lines = append(*lines, fmt.Sprintf("%s: %s", path, formatNumber(val)))
	default:
		*lines = append(*lines, fmt.Sprintf("%s: %v", path, val))
	}
}

// formatNumber renders integers without a trailing ".0".
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
