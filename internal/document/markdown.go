package document

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownParser converts .md files to plain text by walking the
// markdown tree and collecting its text leaves.
type MarkdownParser struct{}

// NewMarkdownParser creates a markdown parser.
func NewMarkdownParser() Parser {
	return &MarkdownParser{}
}

// Parse parses a markdown file and extracts its text content.
func (p *MarkdownParser) Parse(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("cannot open markdown file: %w", err)
	}
	defer file.Close()

	return p.ParseReader(file, filePath)
}

// ParseReader parses markdown content from r.
func (p *MarkdownParser) ParseReader(r io.Reader, filename string) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("cannot read markdown content: %w", err)
	}

	md := parser.NewWithExtensions(parser.CommonExtensions)
	return plainText(md.Parse(content)), nil
}

// plainText flattens a markdown tree, keeping block boundaries as line
// breaks and dropping all markup.
func plainText(doc ast.Node) string {
	var sb strings.Builder

	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.Text:
			if entering {
				sb.Write(n.Literal)
			}
		case *ast.Code:
			if entering {
				sb.Write(n.Literal)
			}
		case *ast.CodeBlock:
			if entering {
				sb.Write(n.Literal)
				sb.WriteByte('\n')
			}
		case *ast.Softbreak, *ast.Hardbreak:
			if entering {
				sb.WriteByte(' ')
			}
		case *ast.TableCell:
			if !entering {
				sb.WriteString(", ")
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.TableRow, *ast.BlockQuote:
			if !entering {
				sb.WriteByte('\n')
			}
		}
		return ast.GoToNext
	})

	lines := strings.Split(sb.String(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ","))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
