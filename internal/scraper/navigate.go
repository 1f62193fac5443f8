package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"

	"busboard/pkg/models"
)

// windowSet is the route-window lifecycle a traversal needs: open a route
// in a fresh window, close it again. Session implements it against a real
// browser.
type windowSet interface {
	OpenRoute(url string) error
	CloseRoute() error
}

// routeFailure records one route that could not be scraped.
type routeFailure struct {
	Route string
	Err   error
}

// visitRoutes opens each route in its own window, runs visit against it and
// always closes the window before moving to the next route, whether the
// visit succeeded or not. A failing route never stops the traversal.
func visitRoutes(ws windowSet, links []models.RouteLink, visit func(models.RouteLink) ([]models.BusRecord, error)) ([]models.BusRecord, []routeFailure) {
	var records []models.BusRecord
	var failures []routeFailure

	for _, link := range links {
		if err := ws.OpenRoute(link.URL); err != nil {
			failures = append(failures, routeFailure{Route: link.Name, Err: err})
			continue
		}

		rows, err := visit(link)
		if closeErr := ws.CloseRoute(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			failures = append(failures, routeFailure{Route: link.Name, Err: err})
			continue
		}
		records = append(records, rows...)
	}
	return records, failures
}

// catalogOps is the catalog stage of the traversal: select a service card,
// fully materialize the route list it renders, read the links out of it.
type catalogOps interface {
	SelectCard() error
	Materialize() error
	Links() ([]models.RouteLink, error)
}

// loadCatalog drives the catalog stage in order. The list must be fully
// materialized before the links are read, otherwise a lazily-rendered
// catalog exposes only its first screen of routes. A non-converged list is
// read anyway.
func loadCatalog(ops catalogOps) ([]models.RouteLink, error) {
	if err := ops.SelectCard(); err != nil {
		return nil, err
	}
	if err := ops.Materialize(); err != nil && !errors.Is(err, ErrListNotConverged) {
		return nil, err
	}
	return ops.Links()
}

// catalogStage implements catalogOps against the session's origin page.
type catalogStage struct {
	s     *Session
	index int
}

func (c *catalogStage) SelectCard() error {
	card := serviceCardTemplate.At(c.index)
	if err := Click(c.s.origin, card, c.s.cfg.Scraper.ElementTimeout); err != nil {
		return fmt.Errorf("select service card %d: %w", c.index, err)
	}
	return nil
}

func (c *catalogStage) Materialize() error {
	return c.s.materializeList(c.s.origin, catalogList)
}

func (c *catalogStage) Links() ([]models.RouteLink, error) {
	_ = ScrollInto(c.s.origin, firstRouteLink, c.s.cfg.Scraper.FieldTimeout)
	return c.s.routeLinks()
}

// ScrapeService runs the full traversal for one service card: select the
// card, materialize and collect the route links from the rendered catalog,
// then visit each route in an isolated window and extract its result rows
// for the target date.
func (s *Session) ScrapeService(ctx context.Context, target models.ScrapeTarget) ([]models.BusRecord, error) {
	links, err := loadCatalog(&catalogStage{s: s, index: target.ServiceIndex})
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		s.logger.Warn("No route links found for service", map[string]interface{}{
			"service_index": target.ServiceIndex,
		})
		return nil, nil
	}

	s.logger.Info("Scraping routes for service", map[string]interface{}{
		"service_index": target.ServiceIndex,
		"route_count":   len(links),
		"date":          target.Date.Format("2006-01-02"),
	})

	records, failures := visitRoutes(s, links, func(link models.RouteLink) ([]models.BusRecord, error) {
		return s.scrapeRoute(ctx, link, target.Date)
	})

	for _, f := range failures {
		if errors.Is(f.Err, ErrNoBuses) || errors.Is(f.Err, ErrDateUnavailable) {
			s.logger.Info("Route skipped", map[string]interface{}{
				"route":  f.Route,
				"reason": f.Err.Error(),
			})
			continue
		}
		s.logger.Warn("Route failed", map[string]interface{}{
			"route": f.Route,
			"error": f.Err.Error(),
		})
	}

	return records, nil
}

// routeLinks parses the rendered catalog HTML and returns every route name
// and absolute URL, before any route window is opened.
func (s *Session) routeLinks() ([]models.RouteLink, error) {
	var html string
	if err := rod.Try(func() { html = s.origin.MustHTML() }); err != nil {
		return nil, fmt.Errorf("failed to read catalog HTML: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog HTML: %w", err)
	}

	base, err := url.Parse(s.cfg.Scraper.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	var links []models.RouteLink
	doc.Find(routeLinksSel.Selector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, models.RouteLink{
			Name: strings.TrimSpace(sel.Text()),
			URL:  base.ResolveReference(ref).String(),
		})
	})
	return links, nil
}

// resultOps is the result stage of one open route window: materialize the
// bus list, adjust the date, check for the no-buses marker, then extract
// the single or segmented result set.
type resultOps interface {
	Materialize() error
	AdjustDate(date time.Time) error
	NoBuses() bool
	SegmentCount() int
	OpenSegment(i int) error
	ExpandGroups()
	Extract() ([]models.BusRecord, error)
}

// collectResults drives the result stage in order. The list is materialized
// once on arrival and again after the date search reloads it, so extraction
// always runs against a fully-rendered list. A non-converged list is
// extracted anyway; a failing segment is skipped, not fatal.
func collectResults(ops resultOps, date time.Time) ([]models.BusRecord, error) {
	if err := ops.Materialize(); err != nil && !errors.Is(err, ErrListNotConverged) {
		return nil, fmt.Errorf("materialize route list: %w", err)
	}

	if err := ops.AdjustDate(date); err != nil {
		return nil, err
	}
	if err := ops.Materialize(); err != nil && !errors.Is(err, ErrListNotConverged) {
		return nil, fmt.Errorf("materialize results: %w", err)
	}

	if ops.NoBuses() {
		return nil, ErrNoBuses
	}

	count := ops.SegmentCount()
	if count == 0 {
		ops.ExpandGroups()
		return ops.Extract()
	}

	var records []models.BusRecord
	for i := 0; i < count; i++ {
		if err := ops.OpenSegment(i); err != nil {
			continue
		}
		if err := ops.Materialize(); err != nil && !errors.Is(err, ErrListNotConverged) {
			return records, fmt.Errorf("materialize segment %d: %w", i+1, err)
		}
		ops.ExpandGroups()

		rows, err := ops.Extract()
		if err != nil {
			return records, err
		}
		records = append(records, rows...)
	}
	return records, nil
}

// routeResults implements resultOps against an open route window.
type routeResults struct {
	s        *Session
	page     *rod.Page
	link     models.RouteLink
	segments []*rod.Element
}

func (r *routeResults) Materialize() error {
	return r.s.materializeList(r.page, busListTemplate.At(1))
}

func (r *routeResults) AdjustDate(date time.Time) error {
	return r.s.adjustDate(r.page, date)
}

func (r *routeResults) NoBuses() bool {
	return Has(r.page, noBusesMarker, r.s.cfg.Scraper.ElementTimeout)
}

func (r *routeResults) SegmentCount() int {
	r.segments = elements(r.page, paginationCells, r.s.cfg.Scraper.ElementTimeout)
	return len(r.segments)
}

func (r *routeResults) OpenSegment(i int) error {
	if err := clickElement(r.segments[i]); err != nil {
		r.s.logger.Warn("Failed to select result segment", map[string]interface{}{
			"route":   r.link.Name,
			"segment": i + 1,
			"error":   err.Error(),
		})
		return err
	}
	return nil
}

func (r *routeResults) ExpandGroups() {
	r.s.expandOperatorGroups(r.page)
}

func (r *routeResults) Extract() ([]models.BusRecord, error) {
	return r.s.extractRows(r.page, r.link)
}

// scrapeRoute drives one open route window through the result stage.
func (s *Session) scrapeRoute(ctx context.Context, link models.RouteLink, date time.Time) ([]models.BusRecord, error) {
	page := s.route
	if page == nil {
		return nil, fmt.Errorf("no route window open for %s", link.Name)
	}
	return collectResults(&routeResults{s: s, page: page, link: link}, date)
}

// adjustDate runs the date-change sub-protocol: open the date control, open
// the picker, click the day cell (leading zero stripped to match the
// rendered label), submit the search. A day cell missing from the current
// calendar view yields ErrDateUnavailable; month rollover is not attempted.
func (s *Session) adjustDate(page *rod.Page, date time.Time) error {
	if err := Click(page, dateEditControl, s.cfg.Scraper.ElementTimeout); err != nil {
		return fmt.Errorf("open date control: %w", err)
	}
	if err := Click(page, datePickerControl, s.cfg.Scraper.ElementTimeout); err != nil {
		return fmt.Errorf("open date picker: %w", err)
	}

	day := strconv.Itoa(date.Day())
	cell := calendarDayTemplate.At(day)
	if err := Click(page, cell, s.cfg.Scraper.ElementTimeout); err != nil {
		return fmt.Errorf("day %s of %s: %w", day, date.Format("Jan 2006"), ErrDateUnavailable)
	}

	if err := Click(page, searchButton, s.cfg.Scraper.ElementTimeout); err != nil {
		return fmt.Errorf("submit date search: %w", err)
	}
	return nil
}

// expandOperatorGroups clicks through collapsed "View Buses" groups so
// their nested lists render before extraction. Absence of the control means
// the page has no collapsed groups.
func (s *Session) expandOperatorGroups(page *rod.Page) {
	if !Has(page, viewBusesFirst, s.cfg.Scraper.FieldTimeout) {
		return
	}

	groups := len(elements(page, viewBusesAll, s.cfg.Scraper.FieldTimeout))
	for i := 0; i < groups; i++ {
		// The first collapsed control is always clicked; expanding it
		// reflows the remaining ones.
		if err := Click(page, viewBusesFirst, s.cfg.Scraper.FieldTimeout); err != nil {
			s.logger.Debug("Failed to expand operator group", map[string]interface{}{
				"group": i + 1,
				"error": err.Error(),
			})
			return
		}
		if err := s.materializeList(page, busListTemplate.At(i+1)); err != nil && !errors.Is(err, ErrListNotConverged) {
			s.logger.Debug("Failed to materialize operator group list", map[string]interface{}{
				"group": i + 1,
				"error": err.Error(),
			})
			return
		}
	}
}
