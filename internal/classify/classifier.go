// Package classify decides whether a query is in scope before any
// retrieval runs, and derives the query analysis used for template
// selection.
package classify

import (
	"strings"

	"github.com/savitara/dharma-assistant/internal/locale"
)

// Greeting kinds recognized by the detector.
const (
	GreetingNone   = ""
	GreetingHello  = "greeting"
	GreetingThanks = "thanks"
)

// Decision is the outcome of classifying one query.
type Decision struct {
	// InDomain is true when the query may proceed to retrieval, or is
	// a greeting.
	InDomain bool
	// Greeting names the matched greeting kind, empty for regular
	// queries. Greetings always pass regardless of keyword content.
	Greeting string
}

// Classifier gates queries on the domain vocabulary. Classification is
// pure over the loaded assets, so the same query always yields the
// same decision.
type Classifier struct {
	bundle *locale.Bundle
}

// NewClassifier creates a classifier over the given language assets.
func NewClassifier(bundle *locale.Bundle) *Classifier {
	return &Classifier{bundle: bundle}
}

// Classify runs the greeting detector first, then the keyword and
// pattern gates. The query is accepted when either gate passes.
func (c *Classifier) Classify(query string) Decision {
	if kind := c.DetectGreeting(query); kind != GreetingNone {
		return Decision{InDomain: true, Greeting: kind}
	}

	if c.matchesKeyword(query) || c.matchesPattern(query) {
		return Decision{InDomain: true}
	}
	return Decision{}
}

// DetectGreeting returns the greeting kind the query matches, if any.
// Gratitude is checked first so "thank you" never reads as a plain
// greeting.
func (c *Classifier) DetectGreeting(query string) string {
	normalized := locale.Normalize(query)

	for _, kind := range []string{GreetingThanks, GreetingHello} {
		for _, re := range c.bundle.GreetingPatterns(kind) {
			if re.MatchString(normalized) || re.MatchString(query) {
				return kind
			}
		}
	}
	return GreetingNone
}

// matchesKeyword checks the normalized query for any domain keyword.
func (c *Classifier) matchesKeyword(query string) bool {
	normalized := locale.Normalize(query)
	for _, kw := range c.bundle.Keywords() {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

// matchesPattern checks the raw query against the cultural-context
// regexes.
func (c *Classifier) matchesPattern(query string) bool {
	for _, re := range c.bundle.Patterns() {
		if re.MatchString(query) {
			return true
		}
	}
	return false
}
