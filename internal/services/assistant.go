package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/savitara/dharma-assistant/internal/cache"
	"github.com/savitara/dharma-assistant/internal/classify"
	"github.com/savitara/dharma-assistant/internal/corpus"
	"github.com/savitara/dharma-assistant/internal/extract"
	"github.com/savitara/dharma-assistant/internal/knowledge"
	"github.com/savitara/dharma-assistant/internal/locale"
	"github.com/sirupsen/logrus"
)

// Kind names the fallback stage that produced an answer.
type Kind string

const (
	KindGreeting    Kind = "greeting"    // greeting or thanks response
	KindRejected    Kind = "rejected"    // query outside the domain
	KindDirect      Kind = "direct"      // extracted from an uploaded document
	KindSynthesized Kind = "synthesized" // combined top fragments
	KindExternal    Kind = "external"    // external knowledge lookup
	KindTemplate    Kind = "template"    // topic-substituted canned answer
	KindNotFound    Kind = "notfound"    // nothing usable anywhere
	KindError       Kind = "error"       // external lookup failed
)

// Answer is one resolved query.
type Answer struct {
	Query    string   `json:"query"`
	Answer   string   `json:"answer"`
	Kind     Kind     `json:"kind"`
	Language string   `json:"language"`
	Sources  []string `json:"sources,omitempty"`
}

// AssistantService resolves queries against the corpus with a fixed
// fallback chain: greeting, domain gate, document extraction,
// fragment synthesis, external lookup, canned template.
type AssistantService struct {
	corpus     *corpus.Corpus
	bundle     *locale.Bundle
	scorer     *corpus.Scorer
	extractor  *extract.Extractor
	classifier *classify.Classifier
	knowledge  knowledge.Client // optional, nil disables external lookup
	cache      cache.Cache
	cacheTTL   time.Duration
	// synthesized passages below this length count as no-answer
	minPassageLength int
	// how many top fragments a synthesized passage combines
	passageFragments int
	logger           *logrus.Logger
}

// AssistantOption configures the assistant service.
type AssistantOption func(*AssistantService)

// NewAssistantService creates the assistant service.
func NewAssistantService(
	corp *corpus.Corpus,
	bundle *locale.Bundle,
	answerCache cache.Cache,
	opts ...AssistantOption,
) *AssistantService {
	srv := &AssistantService{
		corpus:           corp,
		bundle:           bundle,
		scorer:           corpus.NewScorer(bundle.DomainTerms(), corpus.DefaultTopK),
		extractor:        extract.NewExtractor(bundle),
		classifier:       classify.NewClassifier(bundle),
		cache:            answerCache,
		cacheTTL:         24 * time.Hour,
		minPassageLength: 50,
		passageFragments: 3,
		logger:           logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// WithKnowledgeClient sets the external knowledge lookup client.
func WithKnowledgeClient(client knowledge.Client) AssistantOption {
	return func(s *AssistantService) {
		s.knowledge = client
	}
}

// WithTopK sets how many ranked fragments retrieval keeps.
func WithTopK(k int) AssistantOption {
	return func(s *AssistantService) {
		if k > 0 {
			s.scorer = corpus.NewScorer(s.bundle.DomainTerms(), k)
		}
	}
}

// WithCacheTTL sets how long resolved answers stay cached.
func WithCacheTTL(ttl time.Duration) AssistantOption {
	return func(s *AssistantService) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMinPassageLength sets the minimum synthesized passage length.
func WithMinPassageLength(length int) AssistantOption {
	return func(s *AssistantService) {
		if length > 0 {
			s.minPassageLength = length
		}
	}
}

// WithPassageFragments sets how many fragments a synthesized passage
// combines.
func WithPassageFragments(count int) AssistantOption {
	return func(s *AssistantService) {
		if count > 0 {
			s.passageFragments = count
		}
	}
}

// WithAssistantLogger sets the logger.
func WithAssistantLogger(logger *logrus.Logger) AssistantOption {
	return func(s *AssistantService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Respond resolves one query. Every query that reaches the pipeline
// terminates in exactly one answer kind.
func (s *AssistantService) Respond(ctx context.Context, userID, query, language string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	language = s.resolveLanguage(query, language)

	// Greetings answer before anything else, thanks before hello so
	// "thank you, namaste" is acknowledged as thanks.
	if kind := s.classifier.DetectGreeting(query); kind != "" {
		return &Answer{
			Query:    query,
			Answer:   s.bundle.Message(language, kind),
			Kind:     KindGreeting,
			Language: language,
		}, nil
	}

	decision := s.classifier.Classify(query)
	if !decision.InDomain {
		return &Answer{
			Query:    query,
			Answer:   s.bundle.Message(language, "off_topic"),
			Kind:     KindRejected,
			Language: language,
		}, nil
	}

	cacheKey := cache.AnswerKey(userID, language, query)
	if cached := s.cachedAnswer(cacheKey); cached != nil {
		return cached, nil
	}

	answer := s.resolve(ctx, query, language)
	s.storeAnswer(cacheKey, answer)
	return answer, nil
}

// resolve walks the retrieval fallback chain for an in-domain query.
func (s *AssistantService) resolve(ctx context.Context, query, language string) *Answer {
	fragments := s.corpus.Snapshot()
	if len(fragments) == 0 {
		return s.lookupOrTemplate(ctx, query, language)
	}

	scored := s.scorer.Rank(query, fragments)
	if len(scored) == 0 {
		return s.lookupOrTemplate(ctx, query, language)
	}

	if extracted, ok := s.extractor.Extract(query, scored); ok {
		return &Answer{
			Query:    query,
			Answer:   s.bundle.Message(language, "from_documents") + " " + extracted,
			Kind:     KindDirect,
			Language: language,
			Sources:  sourceFiles(scored),
		}
	}

	if passage, ok := s.synthesize(scored); ok {
		return &Answer{
			Query:    query,
			Answer:   s.bundle.Message(language, "available_information") + " " + passage,
			Kind:     KindSynthesized,
			Language: language,
			Sources:  sourceFiles(scored),
		}
	}

	return s.lookupOrTemplate(ctx, query, language)
}

// synthesize combines the cleaned text of the top fragments into one
// passage. Too-short passages count as no-answer.
func (s *AssistantService) synthesize(scored []corpus.ScoredFragment) (string, bool) {
	limit := s.passageFragments
	if limit > len(scored) {
		limit = len(scored)
	}

	parts := make([]string, 0, limit)
	for _, fragment := range scored[:limit] {
		if cleaned := extract.CleanText(fragment.Text); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}

	passage := strings.Join(parts, " ")
	if len(passage) < s.minPassageLength {
		return "", false
	}
	return passage, true
}

// lookupOrTemplate tries the external knowledge service, then falls
// back to canned templates when no client is configured. Lookup
// failure is surfaced as a canned technical error, never the upstream
// detail.
func (s *AssistantService) lookupOrTemplate(ctx context.Context, query, language string) *Answer {
	if s.knowledge != nil {
		answer, err := s.knowledge.Lookup(ctx, query, language)
		if err != nil {
			s.logger.WithField("client", s.knowledge.Name()).WithError(err).Error("external lookup failed")
			return &Answer{
				Query:    query,
				Answer:   s.bundle.Message(language, "technical_error"),
				Kind:     KindError,
				Language: language,
			}
		}
		return &Answer{
			Query:    query,
			Answer:   answer,
			Kind:     KindExternal,
			Language: language,
		}
	}

	if answer, ok := s.templateAnswer(query, language); ok {
		return &Answer{
			Query:    query,
			Answer:   answer,
			Kind:     KindTemplate,
			Language: language,
		}
	}

	return &Answer{
		Query:    query,
		Answer:   s.bundle.Message(language, "not_found"),
		Kind:     KindNotFound,
		Language: language,
	}
}

// templateAnswer picks a canned sentence matching the query's intent
// and substitutes its primary topic. Selection keys off the query so
// the same question always gets the same template.
func (s *AssistantService) templateAnswer(query, language string) (string, bool) {
	analysis := classify.Analyze(query, s.bundle)
	templates := s.bundle.Templates(language, analysis.TemplateCategory())
	if len(templates) == 0 {
		return "", false
	}

	template := templates[len(query)%len(templates)]
	return strings.ReplaceAll(template, "{topic}", analysis.PrimaryTopic()), true
}

// resolveLanguage fills a missing language from the query's script and
// falls back to the default for unsupported languages.
func (s *AssistantService) resolveLanguage(query, language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		language = locale.DetectLanguage(query)
	}
	if !s.bundle.HasLanguage(language) {
		language = locale.DefaultLanguage
	}
	return language
}

// cachedAnswer returns a previously resolved answer, or nil.
func (s *AssistantService) cachedAnswer(key string) *Answer {
	raw, found, err := s.cache.Get(key)
	if err != nil || !found {
		return nil
	}

	var answer Answer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		s.logger.WithError(err).Warn("discarding unreadable cached answer")
		return nil
	}
	return &answer
}

// storeAnswer caches document-grounded and external answers. Error and
// not-found outcomes stay uncached so a later upload or recovered
// backend can improve them.
func (s *AssistantService) storeAnswer(key string, answer *Answer) {
	switch answer.Kind {
	case KindDirect, KindSynthesized, KindExternal:
	default:
		return
	}

	data, err := json.Marshal(answer)
	if err != nil {
		return
	}
	if err := s.cache.Set(key, string(data), s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("failed to cache answer")
	}
}

// sourceFiles lists the distinct source files of scored fragments in
// rank order.
func sourceFiles(scored []corpus.ScoredFragment) []string {
	seen := make(map[string]struct{}, len(scored))
	files := make([]string, 0, len(scored))
	for _, fragment := range scored {
		if _, ok := seen[fragment.SourceFile]; ok {
			continue
		}
		seen[fragment.SourceFile] = struct{}{}
		files = append(files, fragment.SourceFile)
	}
	return files
}
