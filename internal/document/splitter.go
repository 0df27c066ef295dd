package document

import "strings"

// SplitterConfig configures the sentence splitter.
type SplitterConfig struct {
	ChunkSize int // maximum fragment size in characters
	MaxChunks int // maximum fragment count, 0 for unlimited
}

// DefaultSplitterConfig returns the standard splitter settings.
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		ChunkSize: 500,
		MaxChunks: 0,
	}
}

// sentenceDelimiters end a sentence. The danda terminates sentences in
// Devanagari text.
var sentenceDelimiters = map[rune]struct{}{
	'.': {}, '!': {}, '?': {}, '।': {},
}

// SentenceSplitter packs whole sentences into fragments of at most
// ChunkSize characters. A single sentence longer than ChunkSize becomes
// its own fragment rather than being cut mid-sentence.
type SentenceSplitter struct {
	config SplitterConfig
}

// NewSentenceSplitter creates a sentence splitter.
func NewSentenceSplitter(config SplitterConfig) *SentenceSplitter {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultSplitterConfig().ChunkSize
	}
	return &SentenceSplitter{config: config}
}

// Split divides text into sentence-packed fragments.
func (s *SentenceSplitter) Split(text string) ([]Content, error) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return []Content{}, nil
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence)+2 > s.config.ChunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteString(". ")
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	if s.config.MaxChunks > 0 && len(chunks) > s.config.MaxChunks {
		chunks = chunks[:s.config.MaxChunks]
	}

	contents := make([]Content, 0, len(chunks))
	for i, chunk := range chunks {
		contents = append(contents, Content{Text: chunk, Index: i})
	}
	return contents, nil
}

// splitSentences breaks text at sentence delimiters, dropping the
// delimiters and empty pieces.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		if _, ok := sentenceDelimiters[r]; ok {
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()

	return sentences
}
