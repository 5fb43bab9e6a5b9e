// Package rules implements the keyword-driven parts of the companion:
// the intercept classifier that redirects off-topic or at-risk messages
// before they reach the AI backend, and the suggestion engine that turns
// conversational content into actionable follow-up cards.
//
// Matching is deliberately substring-based, not tokenized. A longer word
// containing a keyword as an infix also matches; this over-match
// tolerance is kept for compatibility with the original behavior and is
// documented in the tests rather than silently fixed.
package rules

import "strings"

// Intercept is a rule match: a canned response that bypasses the remote
// backend entirely.
type Intercept struct {
	Category Category
	Response string
}

// Classifier tests messages against an ordered intercept rule table.
// It is pure and safe for concurrent use; the table is read-only after
// construction.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier over the supplied rules, evaluated
// in slice order. Pass DefaultRules() for the standard table.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify lower-cases the message once and returns the first matching
// rule's intercept. Categories are mutually exclusive: a message holding
// both a distress phrase and a technical term classifies as distress.
// The second return is false when no rule matches, signaling that the
// message should defer to the AI backend.
func (c *Classifier) Classify(userText string) (Intercept, bool) {
	lowered := strings.ToLower(userText)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowered, kw) {
				return Intercept{Category: rule.Category, Response: rule.Response}, true
			}
		}
	}
	return Intercept{}, false
}
