package locale

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed assets/default.yaml
var defaultAssets embed.FS

// DefaultLanguage is the fallback for message and template lookups.
const DefaultLanguage = "english"

// assetFile is the on-disk schema of a language asset file.
type assetFile struct {
	DomainTerms      []string                       `yaml:"domain_terms"`
	Keywords         []string                       `yaml:"keywords"`
	Patterns         []string                       `yaml:"patterns"`
	GreetingPatterns map[string][]string            `yaml:"greeting_patterns"`
	Interrogatives   []string                       `yaml:"interrogatives"`
	Messages         map[string]map[string]string   `yaml:"messages"`
	Templates        map[string]map[string][]string `yaml:"templates"`
}

// Bundle holds the compiled language assets shared by the classifier,
// the relevance scorer and the response builders.
type Bundle struct {
	domainTerms    []string
	keywords       []string
	patterns       []*regexp.Regexp
	greetings      map[string][]*regexp.Regexp
	interrogatives map[string]struct{}
	messages       map[string]map[string]string
	templates      map[string]map[string][]string
}

// Load builds a bundle from the embedded defaults, then merges every
// *.yaml file found under overrideDir on top. An empty overrideDir loads
// the defaults only.
func Load(overrideDir string) (*Bundle, error) {
	data, err := defaultAssets.ReadFile("assets/default.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded assets: %w", err)
	}

	var merged assetFile
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return nil, fmt.Errorf("failed to parse embedded assets: %w", err)
	}

	if overrideDir != "" {
		entries, err := os.ReadDir(overrideDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale directory %s: %w", overrideDir, err)
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)

		for _, name := range names {
			raw, err := os.ReadFile(filepath.Join(overrideDir, name))
			if err != nil {
				return nil, fmt.Errorf("failed to read locale file %s: %w", name, err)
			}

			var override assetFile
			if err := yaml.Unmarshal(raw, &override); err != nil {
				return nil, fmt.Errorf("failed to parse locale file %s: %w", name, err)
			}

			merged.merge(&override)
		}
	}

	return compile(&merged)
}

// merge overlays non-empty override sections onto f.
func (f *assetFile) merge(override *assetFile) {
	if len(override.DomainTerms) > 0 {
		f.DomainTerms = override.DomainTerms
	}
	if len(override.Keywords) > 0 {
		f.Keywords = append(f.Keywords, override.Keywords...)
	}
	if len(override.Patterns) > 0 {
		f.Patterns = append(f.Patterns, override.Patterns...)
	}
	for kind, pats := range override.GreetingPatterns {
		if f.GreetingPatterns == nil {
			f.GreetingPatterns = make(map[string][]string)
		}
		f.GreetingPatterns[kind] = append(f.GreetingPatterns[kind], pats...)
	}
	if len(override.Interrogatives) > 0 {
		f.Interrogatives = append(f.Interrogatives, override.Interrogatives...)
	}
	for lang, msgs := range override.Messages {
		if f.Messages == nil {
			f.Messages = make(map[string]map[string]string)
		}
		if f.Messages[lang] == nil {
			f.Messages[lang] = make(map[string]string)
		}
		for key, text := range msgs {
			f.Messages[lang][key] = text
		}
	}
	for lang, cats := range override.Templates {
		if f.Templates == nil {
			f.Templates = make(map[string]map[string][]string)
		}
		if f.Templates[lang] == nil {
			f.Templates[lang] = make(map[string][]string)
		}
		for cat, list := range cats {
			f.Templates[lang][cat] = list
		}
	}
}

func compile(f *assetFile) (*Bundle, error) {
	b := &Bundle{
		domainTerms:    normalizeAll(f.DomainTerms),
		keywords:       normalizeAll(f.Keywords),
		greetings:      make(map[string][]*regexp.Regexp),
		interrogatives: make(map[string]struct{}),
		messages:       f.Messages,
		templates:      f.Templates,
	}

	for _, expr := range f.Patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid domain pattern %q: %w", expr, err)
		}
		b.patterns = append(b.patterns, re)
	}

	for kind, exprs := range f.GreetingPatterns {
		for _, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("invalid greeting pattern %q: %w", expr, err)
			}
			b.greetings[kind] = append(b.greetings[kind], re)
		}
	}

	for _, word := range f.Interrogatives {
		b.interrogatives[Normalize(word)] = struct{}{}
	}

	return b, nil
}

// Normalize lowercases and NFC-normalizes text so that keyword matching
// behaves consistently across composed and decomposed Indic input.
func Normalize(text string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(text)))
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := Normalize(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// DomainTerms returns the normalized relevance-boost vocabulary.
func (b *Bundle) DomainTerms() []string { return b.domainTerms }

// Keywords returns the normalized domain-gate keyword list.
func (b *Bundle) Keywords() []string { return b.keywords }

// Patterns returns the compiled cultural-context regexes.
func (b *Bundle) Patterns() []*regexp.Regexp { return b.patterns }

// GreetingPatterns returns the compiled patterns for a greeting kind
// such as "greeting" or "thanks".
func (b *Bundle) GreetingPatterns(kind string) []*regexp.Regexp { return b.greetings[kind] }

// IsInterrogative reports whether word is a known question word.
func (b *Bundle) IsInterrogative(word string) bool {
	_, ok := b.interrogatives[Normalize(word)]
	return ok
}

// Message returns the text for key in the given language, falling back
// to the default language when the language or key is missing.
func (b *Bundle) Message(language, key string) string {
	if msgs, ok := b.messages[language]; ok {
		if text, ok := msgs[key]; ok {
			return text
		}
	}
	if language != DefaultLanguage {
		return b.Message(DefaultLanguage, key)
	}
	return ""
}

// Templates returns the response templates for a language and category.
// Missing categories fall back to "general", missing languages to the
// default language.
func (b *Bundle) Templates(language, category string) []string {
	if cats, ok := b.templates[language]; ok {
		if list, ok := cats[category]; ok && len(list) > 0 {
			return list
		}
		if list, ok := cats["general"]; ok && len(list) > 0 {
			return list
		}
	}
	if language != DefaultLanguage {
		return b.Templates(DefaultLanguage, category)
	}
	return nil
}

// HasLanguage reports whether message assets exist for language.
func (b *Bundle) HasLanguage(language string) bool {
	_, ok := b.messages[language]
	return ok
}
