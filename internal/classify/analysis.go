package classify

import (
	"strings"

	"github.com/savitara/dharma-assistant/internal/corpus"
	"github.com/savitara/dharma-assistant/internal/locale"
)

// Question types derived from the query's interrogative shape.
const (
	TypeDefinition  = "definition"
	TypeProcess     = "process"
	TypeExplanation = "explanation"
	TypeTiming      = "timing"
	TypeLocation    = "location"
	TypeGeneral     = "general"
)

// Intents derived from the query's subject matter.
const (
	IntentInformation = "information-seeking"
	IntentGuidance    = "guidance-seeking"
	IntentRitual      = "ritual-inquiry"
	IntentScriptural  = "scriptural-inquiry"
	IntentCalendar    = "calendar-inquiry"
	IntentGeneral     = "general-inquiry"
)

// Sentiment labels.
const (
	SentimentInquisitive = "inquisitive"
	SentimentNeutral     = "neutral"
	SentimentPositive    = "positive"
	SentimentNegative    = "negative"
)

// QueryAnalysis is the per-request classification of one query. It is
// computed fresh per request and never stored.
type QueryAnalysis struct {
	QuestionType string
	Intent       string
	Topics       []string
	Entities     []string
	Sentiment    string
	Language     string
}

// questionTypeMarkers map interrogative phrasings to a question type,
// in English and Devanagari.
var questionTypeMarkers = []struct {
	qtype   string
	markers []string
}{
	{TypeDefinition, []string{"what is", "what are", "क्या है", "क्या हैं", "meaning of", "का अर्थ"}},
	{TypeProcess, []string{"how to", "how do", "how can", "कैसे", "विधि"}},
	{TypeExplanation, []string{"why", "क्यों", "reason", "कारण"}},
	{TypeTiming, []string{"when", "कब", "what time", "which day", "किस दिन"}},
	{TypeLocation, []string{"where", "कहाँ", "कहां", "which place"}},
}

// intentMarkers map subject vocabulary to an intent, checked in order
// so the more specific inquiries win over plain information seeking.
var intentMarkers = []struct {
	intent  string
	markers []string
}{
	{IntentCalendar, []string{"tithi", "panchang", "nakshatra", "ekadashi", "amavasya", "purnima", "muhurat", "तिथि", "पंचांग", "एकादशी"}},
	{IntentRitual, []string{"puja", "ritual", "vrat", "yajna", "ceremony", "aarti", "fast", "पूजा", "व्रत", "अनुष्ठान", "आरती"}},
	{IntentScriptural, []string{"gita", "veda", "upanishad", "purana", "ramayana", "mahabharata", "shloka", "mantra", "गीता", "वेद", "श्लोक", "मंत्र"}},
	{IntentGuidance, []string{"should i", "how to", "guide", "advice", "मार्गदर्शन", "सलाह"}},
}

// topicTags name the canonical topic labels assigned when any of their
// triggers appear in the query.
var topicTags = []struct {
	tag      string
	triggers []string
}{
	{"festival", []string{"diwali", "holi", "navratri", "dussehra", "janmashtami", "shivaratri", "festival", "त्योहार"}},
	{"ritual", []string{"puja", "vrat", "yajna", "ritual", "ceremony", "पूजा", "व्रत"}},
	{"scripture", []string{"gita", "veda", "upanishad", "purana", "ramayana", "mahabharata", "गीता", "वेद"}},
	{"philosophy", []string{"dharma", "karma", "moksha", "atman", "brahman", "धर्म", "कर्म", "मोक्ष"}},
	{"calendar", []string{"tithi", "panchang", "nakshatra", "ekadashi", "तिथि", "पंचांग"}},
	{"deity", []string{"krishna", "rama", "shiva", "vishnu", "ganesha", "hanuman", "lakshmi", "durga", "कृष्ण", "राम", "शिव"}},
}

// negativeMarkers flag distress or dissatisfaction in the query.
var negativeMarkers = []string{"problem", "wrong", "bad", "trouble", "समस्या", "गलत"}

// positiveMarkers flag appreciative phrasing.
var positiveMarkers = []string{"thank", "great", "wonderful", "beautiful", "धन्यवाद", "सुंदर"}

// Analyze classifies one query's shape, intent, topics and entities.
// Entities are the bundle keywords found in the query, in bundle order.
func Analyze(query string, bundle *locale.Bundle) QueryAnalysis {
	normalized := locale.Normalize(query)

	analysis := QueryAnalysis{
		QuestionType: TypeGeneral,
		Intent:       IntentGeneral,
		Sentiment:    SentimentNeutral,
		Language:     locale.DetectLanguage(query),
	}

	for _, qt := range questionTypeMarkers {
		if containsAny(normalized, qt.markers) {
			analysis.QuestionType = qt.qtype
			break
		}
	}

	for _, im := range intentMarkers {
		if containsAny(normalized, im.markers) {
			analysis.Intent = im.intent
			break
		}
	}
	if analysis.Intent == IntentGeneral && isQuestion(normalized, bundle) {
		analysis.Intent = IntentInformation
	}

	for _, tt := range topicTags {
		if containsAny(normalized, tt.triggers) {
			analysis.Topics = append(analysis.Topics, tt.tag)
		}
	}

	for _, kw := range bundle.Keywords() {
		if strings.Contains(normalized, kw) {
			analysis.Entities = append(analysis.Entities, kw)
		}
	}

	switch {
	case containsAny(normalized, negativeMarkers):
		analysis.Sentiment = SentimentNegative
	case containsAny(normalized, positiveMarkers):
		analysis.Sentiment = SentimentPositive
	case isQuestion(normalized, bundle):
		analysis.Sentiment = SentimentInquisitive
	}

	return analysis
}

// PrimaryTopic returns the first extracted topic, or the first entity,
// or a generic fallback, for template substitution.
func (a QueryAnalysis) PrimaryTopic() string {
	if len(a.Topics) > 0 {
		return a.Topics[0]
	}
	if len(a.Entities) > 0 {
		return a.Entities[0]
	}
	return "dharma"
}

// TemplateCategory maps the analysis onto a response template category.
func (a QueryAnalysis) TemplateCategory() string {
	switch a.Intent {
	case IntentRitual:
		return "ritual"
	case IntentScriptural:
		return "scriptural"
	}
	switch a.QuestionType {
	case TypeExplanation, TypeProcess:
		return "explanation"
	}
	return "general"
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// isQuestion reports whether the query reads as a question.
func isQuestion(normalized string, bundle *locale.Bundle) bool {
	if strings.Contains(normalized, "?") {
		return true
	}
	words := corpus.Tokenize(normalized)
	if len(words) == 0 {
		return false
	}
	return bundle.IsInterrogative(words[0])
}
