// Package extract reads profile data out of a rendered page using
// prioritized per-field fallback chains.
package extract

import (
	"context"

	"go.uber.org/zap"
)

// Evaluator abstracts DOM reads so field chains are testable without a
// live page.
type Evaluator interface {
	// Text returns the trimmed text content of the first node matching
	// the selector, or "" when nothing matches.
	Text(ctx context.Context, selector string) (string, error)
	// Texts returns the trimmed text content of every node matching the
	// selector.
	Texts(ctx context.Context, selector string) ([]string, error)
	// Attr returns the given attribute of the first matching node.
	Attr(ctx context.Context, selector, attr string) (string, error)
	// URL returns the page's current location.
	URL(ctx context.Context) (string, error)
	// Run executes a script on the page and decodes its result into out.
	Run(ctx context.Context, script string, out any) error
}

// Strategy is one way of resolving a field's value. Strategies are tried
// in order; the first plausible, non-empty result wins.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, dom Evaluator) (string, error)
}

// Chain is the ordered fallback list for one field, with the field's
// plausibility predicate applied to every candidate.
type Chain struct {
	Field      string
	Strategies []Strategy
	Plausible  func(string) bool
}

// Resolve evaluates strategies in order and returns the first plausible
// match. Strategy failures are logged and skipped; a chain that resolves
// nothing returns ("", false) rather than an error, since absence of any
// single field is not a failure.
func (c Chain) Resolve(ctx context.Context, dom Evaluator) (string, bool) {
	for _, s := range c.Strategies {
		val, err := s.Run(ctx, dom)
		if err != nil {
			zap.L().Debug("extract: strategy failed, trying next",
				zap.String("field", c.Field),
				zap.String("strategy", s.Name),
				zap.Error(err),
			)
			continue
		}
		if val == "" {
			continue
		}
		if c.Plausible != nil && !c.Plausible(val) {
			zap.L().Debug("extract: candidate rejected as implausible",
				zap.String("field", c.Field),
				zap.String("strategy", s.Name),
			)
			continue
		}
		return val, true
	}
	return "", false
}

// selectorStrategy builds a Strategy that reads the text of a selector.
func selectorStrategy(selector string) Strategy {
	return Strategy{
		Name: "css:" + selector,
		Run: func(ctx context.Context, dom Evaluator) (string, error) {
			return dom.Text(ctx, selector)
		},
	}
}
