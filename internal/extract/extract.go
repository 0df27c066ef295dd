// Package extract pulls one literal answer string out of ranked
// fragments, or reports that no confident answer exists.
package extract

import (
	"strings"

	"github.com/savitara/dharma-assistant/internal/corpus"
	"github.com/savitara/dharma-assistant/internal/locale"
)

const (
	// minAnswerLength is the floor below which an extracted value is
	// not confident enough to return on its own.
	minAnswerLength = 12
	// minSentenceLength filters noise sentences before scoring.
	minSentenceLength = 10
	// minBestSentenceLength is the floor for a winning sentence.
	minBestSentenceLength = 20
	// pairSimilarityThreshold gates paired question/answer matching.
	pairSimilarityThreshold = 0.3
)

// Extractor runs the ordered extraction passes over ranked fragments.
type Extractor struct {
	bundle *locale.Bundle
}

// NewExtractor creates an extractor using the bundle's interrogative
// word list.
func NewExtractor(bundle *locale.Bundle) *Extractor {
	return &Extractor{bundle: bundle}
}

// Extract tries paired question/answer matching first, then key/value
// extraction, then sentence matching. The first confident result wins.
func (e *Extractor) Extract(query string, fragments []corpus.ScoredFragment) (string, bool) {
	if answer, ok := e.extractPaired(query, fragments); ok {
		return answer, true
	}
	if answer, ok := e.extractKeyValue(query, fragments); ok {
		return answer, true
	}
	return e.extractSentence(query, fragments)
}

// qaPair is one stored question with the answer that follows it.
type qaPair struct {
	question string
	answer   string
}

// extractPaired matches the query against stored "Question:" lines and
// returns the answer paired with the best-matching question. The
// answer always comes from that question's own block, never from a
// different block with better keyword overlap.
func (e *Extractor) extractPaired(query string, fragments []corpus.ScoredFragment) (string, bool) {
	queryWords := corpus.Tokenize(locale.Normalize(query))
	if len(queryWords) == 0 {
		return "", false
	}

	var best qaPair
	bestSim := 0.0

	for _, f := range fragments {
		for _, pair := range parseQAPairs(f.Text) {
			sim := questionSimilarity(queryWords, pair.question)
			if sim > bestSim {
				bestSim = sim
				best = pair
			}
		}
	}

	if bestSim < pairSimilarityThreshold {
		return "", false
	}
	answer := cleanAnswer(best.answer)
	if len(answer) < minAnswerLength {
		return "", false
	}
	return answer, true
}

// qaMarker locates one "Question:" or "Answer:" label in a fragment.
type qaMarker struct {
	start      int // label start
	contentPos int // first byte after the label
	isQuestion bool
}

// parseQAPairs scans a fragment for Question/Answer labels, which may
// share a line, and pairs each question with the answer that follows
// it before the next question begins.
func parseQAPairs(text string) []qaPair {
	lower := strings.ToLower(text)

	var markers []qaMarker
	for pos := 0; pos < len(lower); {
		qi := strings.Index(lower[pos:], "question:")
		ai := strings.Index(lower[pos:], "answer:")
		if qi < 0 && ai < 0 {
			break
		}
		if ai < 0 || (qi >= 0 && qi < ai) {
			markers = append(markers, qaMarker{
				start:      pos + qi,
				contentPos: pos + qi + len("question:"),
				isQuestion: true,
			})
			pos += qi + len("question:")
		} else {
			markers = append(markers, qaMarker{
				start:      pos + ai,
				contentPos: pos + ai + len("answer:"),
			})
			pos += ai + len("answer:")
		}
	}

	var pairs []qaPair
	for i, m := range markers {
		if !m.isQuestion {
			continue
		}
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		question := strings.TrimSpace(text[m.contentPos:end])

		// the answer must belong to this question's block
		if i+1 >= len(markers) || markers[i+1].isQuestion {
			continue
		}
		next := markers[i+1]
		answerEnd := len(text)
		if i+2 < len(markers) {
			answerEnd = markers[i+2].start
		}
		answer := strings.TrimSpace(text[next.contentPos:answerEnd])
		if question != "" && answer != "" {
			pairs = append(pairs, qaPair{question: question, answer: answer})
		}
	}
	return pairs
}

// questionSimilarity computes the word-overlap ratio between the query
// and a stored question: 2 points per exact word match, 1 point per
// substring containment, normalized by the larger word count times 2.
func questionSimilarity(queryWords []string, question string) float64 {
	questionWords := corpus.Tokenize(locale.Normalize(question))
	if len(questionWords) == 0 {
		return 0
	}

	points := 0
	for _, qw := range queryWords {
		exact := false
		partial := false
		for _, sw := range questionWords {
			if qw == sw {
				exact = true
				break
			}
			if strings.Contains(sw, qw) || strings.Contains(qw, sw) {
				partial = true
			}
		}
		switch {
		case exact:
			points += 2
		case partial:
			points++
		}
	}

	denom := len(queryWords)
	if len(questionWords) > denom {
		denom = len(questionWords)
	}
	return float64(points) / float64(denom*2)
}

// kvCandidate is one scored key/value pair under consideration.
type kvCandidate struct {
	value    string
	fullLine string // fallback when the value alone is too short
	score    int
}

// extractKeyValue splits fragment lines on their first colon and picks
// the value whose key best overlaps the query. Stored questions are
// never returned: lines keyed "question" and values that start with an
// interrogative word are skipped outright.
func (e *Extractor) extractKeyValue(query string, fragments []corpus.ScoredFragment) (string, bool) {
	queryWords := corpus.Tokenize(locale.Normalize(query))
	if len(queryWords) == 0 {
		return "", false
	}

	var best kvCandidate
	for _, f := range fragments {
		if !strings.Contains(f.Text, ":") {
			continue
		}
		for _, line := range strings.Split(f.Text, "\n") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if key == "" || value == "" {
				continue
			}
			if strings.Contains(strings.ToLower(key), "question") {
				continue
			}
			if e.startsInterrogative(value) {
				continue
			}

			if score := keyOverlap(queryWords, key); score > best.score {
				best = kvCandidate{value: value, fullLine: value, score: score}
			}

			// tabular rows keep their label in the value: treat the
			// first cell as a key for the remaining cells
			cells := strings.Split(value, ",")
			if len(cells) >= 2 {
				cellKey := strings.TrimSpace(cells[0])
				rest := strings.TrimSpace(strings.Join(cells[1:], ","))
				if cellKey != "" && rest != "" && !e.startsInterrogative(rest) {
					if score := keyOverlap(queryWords, cellKey); score > best.score {
						best = kvCandidate{value: rest, fullLine: value, score: score}
					}
				}
			}
		}
	}

	if best.score == 0 {
		return "", false
	}
	answer := cleanAnswer(best.value)
	if len(answer) < minAnswerLength {
		// too short on its own, return the whole row for context
		answer = cleanAnswer(best.fullLine)
	}
	if len(answer) < minAnswerLength {
		return "", false
	}
	return answer, true
}

// keyOverlap counts query words contained in or stem-sharing with key.
func keyOverlap(queryWords []string, key string) int {
	normKey := locale.Normalize(key)
	keyWords := corpus.Tokenize(normKey)

	score := 0
	for _, qw := range queryWords {
		if strings.Contains(normKey, qw) {
			score++
			continue
		}
		for _, kw := range keyWords {
			if sharesStem(qw, kw) {
				score++
				break
			}
		}
	}
	return score
}

// sharesStem reports whether one word is a prefix extension of the
// other, with at least four shared leading characters.
func sharesStem(a, b string) bool {
	if len(a) < 4 || len(b) < 4 {
		return false
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return strings.HasPrefix(b, a)
}

// extractSentence scores non-question sentences by query word count
// and returns the best one when it is long enough to stand alone.
func (e *Extractor) extractSentence(query string, fragments []corpus.ScoredFragment) (string, bool) {
	queryWords := corpus.Tokenize(locale.Normalize(query))
	if len(queryWords) == 0 {
		return "", false
	}

	bestScore := 0
	bestSentence := ""

	for _, f := range fragments {
		for _, sentence := range splitSentences(f.Text) {
			if len(sentence) <= minSentenceLength {
				continue
			}
			if e.looksLikeQuestion(sentence) {
				continue
			}

			normalized := locale.Normalize(sentence)
			score := 0
			for _, qw := range queryWords {
				if strings.Contains(normalized, qw) {
					score++
				}
			}
			if score > bestScore && len(sentence) > minBestSentenceLength {
				bestScore = score
				bestSentence = sentence
			}
		}
	}

	if bestScore == 0 {
		return "", false
	}
	return cleanAnswer(bestSentence), true
}

// looksLikeQuestion flags stored questions so they are never returned
// as answers.
func (e *Extractor) looksLikeQuestion(sentence string) bool {
	if strings.Contains(sentence, "?") {
		return true
	}
	trimmed := strings.TrimSpace(strings.ToLower(sentence))
	if strings.HasPrefix(trimmed, "question:") {
		return true
	}
	return e.startsInterrogative(trimmed)
}

// startsInterrogative reports whether text begins with a question word.
func (e *Extractor) startsInterrogative(text string) bool {
	words := corpus.Tokenize(locale.Normalize(text))
	return len(words) > 0 && e.bundle.IsInterrogative(words[0])
}

// splitSentences breaks text at sentence delimiters and newlines.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '!', '?', '।', '\n':
			return true
		}
		return false
	})

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// CleanText strips bracket and quote punctuation from fragment text
// before it is shown to the user.
func CleanText(text string) string {
	return cleanAnswer(text)
}

// cleanAnswer strips bracket and quote punctuation from an extracted
// value.
func cleanAnswer(answer string) string {
	answer = strings.NewReplacer(
		"[", "", "]", "",
		"{", "", "}", "",
		"(", "", ")", "",
		`"`, "", "'", "",
	).Replace(answer)
	return strings.TrimSpace(answer)
}
