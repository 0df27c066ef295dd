package corpus

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/savitara/dharma-assistant/internal/locale"
)

// Scoring weights. The scorer is a heuristic bag-of-words ranker;
// corpora are small single-user uploads, not a search index.
const (
	// exactPhraseBonus applies when the fragment contains the whole
	// query as a substring.
	exactPhraseBonus = 10
	// wholeWordBonus applies once per query word found at word
	// boundaries.
	wholeWordBonus = 2
	// keyMatchBonus applies per query word found on the left-hand side
	// of a "key: value" line, rewarding structured-record provenance.
	keyMatchBonus = 5
	// tabularAdjacencyBonus applies per query word adjacent to pipe or
	// colon cell delimiters, rewarding tabular provenance.
	tabularAdjacencyBonus = 4
	// domainTermBonus applies per occurrence of a domain vocabulary
	// term, regardless of query overlap.
	domainTermBonus = 3
)

// DefaultTopK bounds how many fragments Rank returns.
const DefaultTopK = 5

// Scorer ranks corpus fragments against a query by lexical overlap.
type Scorer struct {
	domainTerms []string
	topK        int
}

// NewScorer creates a scorer. domainTerms must already be normalized;
// topK <= 0 selects the default.
func NewScorer(domainTerms []string, topK int) *Scorer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Scorer{
		domainTerms: domainTerms,
		topK:        topK,
	}
}

// Rank scores every fragment against the query and returns the top-K
// with score > 0, ordered by descending score. Ties keep ingestion
// order.
func (s *Scorer) Rank(query string, fragments []Fragment) []ScoredFragment {
	normQuery := locale.Normalize(query)
	words := Tokenize(normQuery)

	scored := make([]ScoredFragment, 0, len(fragments))
	for _, f := range fragments {
		text := locale.Normalize(f.Text)
		score := 0

		if normQuery != "" && strings.Contains(text, normQuery) {
			score += exactPhraseBonus
		}

		keys := keyNames(text)
		for _, w := range words {
			if containsWholeWord(text, w) {
				score += wholeWordBonus
			}
			for _, k := range keys {
				if strings.Contains(k, w) {
					score += keyMatchBonus
					break
				}
			}
			if hasTabularAdjacency(text, w) {
				score += tabularAdjacencyBonus
			}
		}

		for _, term := range s.domainTerms {
			score += domainTermBonus * strings.Count(text, term)
		}

		if score > 0 {
			scored = append(scored, ScoredFragment{Fragment: f, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > s.topK {
		scored = scored[:s.topK]
	}
	return scored
}

// Tokenize splits normalized text into words longer than two runes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if utf8.RuneCountInString(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// keyNames collects the left-hand sides of "key: value" lines.
func keyNames(text string) []string {
	var keys []string
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key != "" && strings.TrimSpace(parts[1]) != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// containsWholeWord reports whether word occurs in text with non-word
// runes (or text edges) on both sides. A manual scan is used because
// regex \b boundaries only understand ASCII word characters and would
// miss Indic scripts.
func containsWholeWord(text, word string) bool {
	if word == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start

		ok := true
		if i > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:i]); isWordRune(r) {
				ok = false
			}
		}
		end := i + len(word)
		if ok && end < len(text) {
			if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
				ok = false
			}
		}
		if ok {
			return true
		}
		start = i + len(word)
	}
}

// hasTabularAdjacency reports whether any occurrence of word sits next
// to a pipe cell delimiter or is directly colon-suffixed.
func hasTabularAdjacency(text, word string) bool {
	if word == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)

		// pipe before the word
		if before := strings.TrimRight(text[:i], " \t"); strings.HasSuffix(before, "|") {
			return true
		}
		// pipe or colon after the word
		after := strings.TrimLeft(text[end:], " \t")
		if strings.HasPrefix(after, "|") || strings.HasPrefix(after, ":") {
			return true
		}

		start = end
	}
}
