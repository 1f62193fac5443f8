package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
)

// element resolves a locator on the page, waiting up to timeout for it to
// appear.
func element(page *rod.Page, loc Locator, timeout time.Duration) (*rod.Element, error) {
	var el *rod.Element
	err := rod.Try(func() {
		p := page.Timeout(timeout)
		switch loc.Strategy {
		case XPath:
			el = p.MustElementX(loc.Selector)
		default:
			el = p.MustElement(loc.Selector)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("element %s %q not found within %s: %w",
			loc.Strategy, loc.Selector, timeout, err)
	}
	return el, nil
}

// elements resolves all matches for a locator. An empty slice means no
// matches appeared within the timeout; that is not an error.
func elements(page *rod.Page, loc Locator, timeout time.Duration) []*rod.Element {
	var els rod.Elements
	_ = rod.Try(func() {
		p := page.Timeout(timeout)
		switch loc.Strategy {
		case XPath:
			p.MustElementX(loc.Selector)
			els = p.MustElementsX(loc.Selector)
		default:
			p.MustElement(loc.Selector)
			els = p.MustElements(loc.Selector)
		}
	})
	return els
}

// Text reads the visible text of the first match. The boolean reports
// whether the element appeared within the timeout; absence is an expected
// outcome, never an error.
func Text(page *rod.Page, loc Locator, timeout time.Duration) (string, bool) {
	el, err := element(page, loc, timeout)
	if err != nil {
		return "", false
	}
	var text string
	if err := rod.Try(func() { text = el.MustText() }); err != nil {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// Texts reads the visible text of every match, in document order.
func Texts(page *rod.Page, loc Locator, timeout time.Duration) []string {
	els := elements(page, loc, timeout)
	out := make([]string, 0, len(els))
	for _, el := range els {
		var text string
		if err := rod.Try(func() { text = el.MustText() }); err != nil {
			continue
		}
		out = append(out, strings.TrimSpace(text))
	}
	return out
}

// Has reports whether the locator resolves within the timeout.
func Has(page *rod.Page, loc Locator, timeout time.Duration) bool {
	_, err := element(page, loc, timeout)
	return err == nil
}

// Click waits for the element, scrolls it into view and clicks it.
func Click(page *rod.Page, loc Locator, timeout time.Duration) error {
	el, err := element(page, loc, timeout)
	if err != nil {
		return err
	}
	if err := rod.Try(func() {
		el.MustScrollIntoView()
		el.MustWaitVisible()
		el.MustClick()
	}); err != nil {
		return fmt.Errorf("click %s %q: %w", loc.Strategy, loc.Selector, err)
	}
	return nil
}

// ScrollInto brings the first match into view.
func ScrollInto(page *rod.Page, loc Locator, timeout time.Duration) error {
	el, err := element(page, loc, timeout)
	if err != nil {
		return err
	}
	if err := rod.Try(func() { el.MustScrollIntoView() }); err != nil {
		return fmt.Errorf("scroll to %s %q: %w", loc.Strategy, loc.Selector, err)
	}
	return nil
}

// clickElement scrolls an already-resolved element into view and clicks it.
func clickElement(el *rod.Element) error {
	return rod.Try(func() {
		el.MustScrollIntoView()
		el.MustWaitVisible()
		el.MustClick()
	})
}
