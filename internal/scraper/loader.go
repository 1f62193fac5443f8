package scraper

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

const disableAnimationsJS = `() => {
	var style = document.createElement('style');
	style.innerHTML = '* { transition: none !important; animation: none !important; }';
	document.head.appendChild(style);
}`

const liftHeightXPathJS = `(xp) => {
	var list = document.evaluate(xp, document, null,
		XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (list) {
		list.style.height = 'auto';
		list.style.maxHeight = 'none';
	}
}`

const liftHeightCSSJS = `(sel) => {
	var list = document.querySelector(sel);
	if (list) {
		list.style.height = 'auto';
		list.style.maxHeight = 'none';
	}
}`

// converge drives scroll/poll cycles until two consecutive polls report the
// same height, sleeping delay between polls to let asynchronous content
// land. Exceeding maxPolls returns ErrListNotConverged.
func converge(poll func() (int, error), scroll func() error, delay time.Duration, maxPolls int) error {
	previous, err := poll()
	if err != nil {
		return fmt.Errorf("initial height poll: %w", err)
	}

	for i := 0; i < maxPolls; i++ {
		if err := scroll(); err != nil {
			return fmt.Errorf("scroll to bottom: %w", err)
		}
		time.Sleep(delay)

		height, err := poll()
		if err != nil {
			return fmt.Errorf("height poll: %w", err)
		}
		if height == previous {
			return nil
		}
		previous = height
	}
	return ErrListNotConverged
}

// materializeList forces a lazily-rendered list to fully load: wait for the
// container, kill CSS animations, lift the container's height constraints,
// then scroll until the document height reaches a fixed point.
func (s *Session) materializeList(page *rod.Page, container Locator) error {
	if _, err := element(page, container, s.cfg.Scraper.ElementTimeout); err != nil {
		return err
	}

	if err := rod.Try(func() { page.MustEval(disableAnimationsJS) }); err != nil {
		s.logger.Debug("Failed to disable animations", map[string]interface{}{
			"error": err.Error(),
		})
	}

	liftJS := liftHeightXPathJS
	if container.Strategy == CSS {
		liftJS = liftHeightCSSJS
	}
	if err := rod.Try(func() { page.MustEval(liftJS, container.Selector) }); err != nil {
		s.logger.Debug("Failed to lift list height constraints", map[string]interface{}{
			"error": err.Error(),
		})
	}

	poll := func() (int, error) {
		var height int
		err := rod.Try(func() {
			height = page.MustEval(`() => document.body.scrollHeight`).Int()
		})
		return height, err
	}
	scroll := func() error {
		return rod.Try(func() {
			page.MustEval(`() => window.scrollTo(0, document.body.scrollHeight)`)
		})
	}

	err := converge(poll, scroll, s.cfg.Scraper.ScrollDelay, s.cfg.Scraper.MaxScrollPolls)
	if errors.Is(err, ErrListNotConverged) {
		s.logger.Warn("List did not converge, extracting what loaded", map[string]interface{}{
			"selector": container.Selector,
			"polls":    s.cfg.Scraper.MaxScrollPolls,
		})
	}
	return err
}
