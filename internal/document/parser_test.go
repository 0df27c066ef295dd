package document

import (
	"os"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

func createTempFile(t *testing.T, content, ext string) string {
	tmpFile, err := os.CreateTemp("", "assistant-test-*"+ext)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func createTempPDF(t *testing.T, text string) string {
	tmpFile, err := os.CreateTemp("", "assistant-test-*.pdf")
	if err != nil {
		t.Fatalf("Failed to create temp PDF file: %v", err)
	}
	defer tmpFile.Close()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 10, text, "", "", false)
	if err := pdf.Output(tmpFile); err != nil {
		t.Fatalf("Failed to write PDF: %v", err)
	}
	return tmpFile.Name()
}

func TestPlainTextParser(t *testing.T) {
	content := "Dharma means righteous duty.\nKarma is the law of action."
	file := createTempFile(t, content, ".txt")
	defer os.Remove(file)

	parser := NewPlainTextParser()
	text, err := parser.Parse(file)
	if err != nil {
		t.Fatalf("PlainTextParser.Parse failed: %v", err)
	}
	if !strings.Contains(text, "righteous duty") {
		t.Errorf("Expected content not found in parsed text: %s", text)
	}
}

func TestMarkdownParser(t *testing.T) {
	content := "# Festivals\n\nDiwali is the **festival of lights**.\n\n- Day 1: Dhanteras\n- Day 3: Lakshmi Puja"
	file := createTempFile(t, content, ".md")
	defer os.Remove(file)

	parser := NewMarkdownParser()
	text, err := parser.Parse(file)
	if err != nil {
		t.Fatalf("MarkdownParser.Parse failed: %v", err)
	}
	if !strings.Contains(text, "festival of lights") {
		t.Errorf("Expected content not found in parsed text: %s", text)
	}
	if strings.Contains(text, "**") || strings.Contains(text, "<") {
		t.Errorf("Markup not stripped from parsed text: %s", text)
	}
}

func TestPDFParser(t *testing.T) {
	file := createTempPDF(t, "Ekadashi is observed on the eleventh lunar day.")
	defer os.Remove(file)

	parser := NewPDFParser()
	text, err := parser.Parse(file)
	if err != nil {
		t.Fatalf("PDFParser.Parse failed: %v", err)
	}
	if !strings.Contains(text, "Ekadashi") {
		t.Errorf("Expected content not found in parsed text: %s", text)
	}
}

func TestTabularParser(t *testing.T) {
	content := "Festival,Month,Deity\nDiwali,Kartik,Lakshmi\nHoli,Phalgun,\n,,\n"
	file := createTempFile(t, content, ".csv")
	defer os.Remove(file)

	parser := NewTabularParser()
	text, err := parser.Parse(file)
	if err != nil {
		t.Fatalf("TabularParser.Parse failed: %v", err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 rendered rows (blank row dropped), got %d: %q", len(lines), text)
	}
	if !strings.Contains(lines[1], "Row 2: Diwali, Kartik, Lakshmi") {
		t.Errorf("Unexpected row rendering: %s", lines[1])
	}
	if !strings.Contains(lines[2], "Row 3: Holi, Phalgun") || strings.HasSuffix(lines[2], ",") {
		t.Errorf("Empty cell not dropped: %s", lines[2])
	}
	if !strings.HasPrefix(lines[0], "Sheet ") {
		t.Errorf("Sheet prefix missing: %s", lines[0])
	}
}

func TestStructuredParser(t *testing.T) {
	content := `{"festival": {"name": "Diwali", "days": 5, "regional": true}, "deities": ["Lakshmi", "Ganesha"], "notes": null}`
	file := createTempFile(t, content, ".json")
	defer os.Remove(file)

	parser := NewStructuredParser()
	text, err := parser.Parse(file)
	if err != nil {
		t.Fatalf("StructuredParser.Parse failed: %v", err)
	}

	base := strings.TrimSuffix(file[strings.LastIndex(file, "/")+1:], ".json")
	expected := []string{
		base + ".deities[0]: Lakshmi",
		base + ".deities[1]: Ganesha",
		base + ".festival.days: 5",
		base + ".festival.name: Diwali",
		base + ".festival.regional: true",
	}
	if text != strings.Join(expected, "\n") {
		t.Errorf("Unexpected flattened output:\ngot:  %q\nwant: %q", text, strings.Join(expected, "\n"))
	}
}

func TestParserFactory(t *testing.T) {
	cases := []struct {
		filename string
		wantErr  bool
	}{
		{"notes.txt", false},
		{"guide.md", false},
		{"scripture.pdf", false},
		{"calendar.csv", false},
		{"config.json", false},
		{"image.png", true},
	}
	for _, c := range cases {
		_, err := ParserFactory(c.filename)
		if (err != nil) != c.wantErr {
			t.Errorf("ParserFactory(%s): unexpected error state: %v", c.filename, err)
		}
	}
}

func TestSentenceSplitter(t *testing.T) {
	splitter := NewSentenceSplitter(DefaultSplitterConfig())

	t.Run("empty text", func(t *testing.T) {
		contents, err := splitter.Split("")
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if len(contents) != 0 {
			t.Errorf("Expected no fragments, got %d", len(contents))
		}
	})

	t.Run("short text stays in one fragment", func(t *testing.T) {
		contents, err := splitter.Split("Dharma is duty. Karma is action! What is moksha?")
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if len(contents) != 1 {
			t.Fatalf("Expected 1 fragment, got %d", len(contents))
		}
		if !strings.Contains(contents[0].Text, "Dharma is duty") {
			t.Errorf("Fragment missing sentence: %s", contents[0].Text)
		}
	})

	t.Run("devanagari danda ends a sentence", func(t *testing.T) {
		contents, err := splitter.Split("धर्म कर्तव्य है। कर्म क्रिया है।")
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if len(contents) != 1 {
			t.Fatalf("Expected 1 fragment, got %d", len(contents))
		}
		if strings.Contains(contents[0].Text, "।") {
			t.Errorf("Danda should be replaced by the joining delimiter: %s", contents[0].Text)
		}
	})

	t.Run("fragments never exceed chunk size", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 50; i++ {
			b.WriteString("This sentence describes one aspect of the daily ritual practice. ")
		}
		contents, err := splitter.Split(b.String())
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if len(contents) < 2 {
			t.Fatalf("Expected multiple fragments, got %d", len(contents))
		}
		for _, c := range contents {
			if len(c.Text) > 500 {
				t.Errorf("Fragment %d exceeds chunk size: %d chars", c.Index, len(c.Text))
			}
		}
		for i, c := range contents {
			if c.Index != i {
				t.Errorf("Fragment index mismatch: got %d at position %d", c.Index, i)
			}
		}
	})

	t.Run("oversized sentence stays whole", func(t *testing.T) {
		long := strings.Repeat("word ", 150) // ~750 chars, no delimiter
		contents, err := splitter.Split(long)
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		if len(contents) != 1 {
			t.Fatalf("Oversized sentence must not be cut, got %d fragments", len(contents))
		}
	})
}
