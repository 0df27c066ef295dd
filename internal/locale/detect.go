package locale

import "unicode"

var scriptLanguages = []struct {
	ranges   *unicode.RangeTable
	language string
}{
	{unicode.Devanagari, "hindi"},
	{unicode.Telugu, "telugu"},
	{unicode.Kannada, "kannada"},
	{unicode.Tamil, "tamil"},
	{unicode.Malayalam, "malayalam"},
	{unicode.Bengali, "bengali"},
	{unicode.Gujarati, "gujarati"},
	{unicode.Gurmukhi, "punjabi"},
}

// DetectLanguage guesses the query language from the dominant Indic
// script, defaulting to english for Latin or mixed input.
func DetectLanguage(text string) string {
	counts := make(map[string]int, len(scriptLanguages))
	best, bestCount := DefaultLanguage, 0

	for _, r := range text {
		for _, s := range scriptLanguages {
			if unicode.Is(s.ranges, r) {
				counts[s.language]++
				if counts[s.language] > bestCount {
					best, bestCount = s.language, counts[s.language]
				}
				break
			}
		}
	}

	return best
}
