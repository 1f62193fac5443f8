package scraper

import "errors"

var (
	// ErrNoBuses indicates a route rendered its "no buses found" marker.
	// Callers treat this as a valid zero-row outcome, not a failure.
	ErrNoBuses = errors.New("no buses found for route")

	// ErrDateUnavailable indicates the requested day is not rendered in the
	// currently displayed calendar view.
	ErrDateUnavailable = errors.New("requested date not available in calendar")

	// ErrListNotConverged indicates the scroll loop hit its poll cap before
	// the document height stabilized. Extraction proceeds with whatever
	// loaded.
	ErrListNotConverged = errors.New("list height did not converge within poll cap")
)
