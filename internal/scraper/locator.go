package scraper

import (
	"fmt"
	"regexp"
)

// Strategy identifies how a selector string is interpreted by the browser.
type Strategy int

const (
	XPath Strategy = iota
	CSS
)

// String returns the strategy name
func (s Strategy) String() string {
	switch s {
	case XPath:
		return "xpath"
	case CSS:
		return "css"
	default:
		return "unknown"
	}
}

// Locator is a fully-built element address: a selector plus the strategy
// needed to resolve it.
type Locator struct {
	Strategy Strategy
	Selector string
}

// XPathLocator builds an XPath locator
func XPathLocator(selector string) Locator {
	return Locator{Strategy: XPath, Selector: selector}
}

// CSSLocator builds a CSS locator
func CSSLocator(selector string) Locator {
	return Locator{Strategy: CSS, Selector: selector}
}

// TemplateLocator is a parameterized selector. Concrete locators are built
// through At so interpolation stays in one audited place instead of ad-hoc
// string concatenation at call sites.
type TemplateLocator struct {
	strategy Strategy
	format   string
}

// Template builds a template locator from a fmt-style format string
func Template(strategy Strategy, format string) TemplateLocator {
	return TemplateLocator{strategy: strategy, format: format}
}

// At interpolates the arguments into the template
func (t TemplateLocator) At(args ...interface{}) Locator {
	return Locator{
		Strategy: t.strategy,
		Selector: fmt.Sprintf(t.format, args...),
	}
}

// rowFieldPattern bounds the characters a result-row field class may
// contain before it is interpolated into an XPath predicate.
var rowFieldPattern = regexp.MustCompile(`^[a-z][a-z0-9 -]*$`)

// Row builds the locator for one field of the x-th result row. The row
// index is 1-based to match XPath positional predicates; out-of-bounds
// indexes and field classes that could break out of the predicate are
// rejected.
func Row(x int, field string) (Locator, error) {
	if x < 1 {
		return Locator{}, fmt.Errorf("row index must be >= 1, got %d", x)
	}
	if !rowFieldPattern.MatchString(field) {
		return Locator{}, fmt.Errorf("invalid row field class %q", field)
	}
	return rowFieldTemplate.At(x, field), nil
}
