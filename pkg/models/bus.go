package models

import "time"

// ScrapeTarget identifies one unit of scraping work: a 1-based position in
// the site's top-level service catalog plus the travel date to scrape.
// Targets are immutable and consumed by exactly one session.
type ScrapeTarget struct {
	ServiceIndex int
	Date         time.Time
}

// RouteLink is an origin-destination pairing exposed as a link inside a
// service's catalog page. The full set is captured before any route window
// is opened, since opening windows invalidates live element handles.
type RouteLink struct {
	Name string
	URL  string
}

// BusRecord is one scraped result row. Fields that the site renders
// inconsistently (rating, fare, seats) are pointers: nil means the value was
// absent or unparseable, which is distinct from zero.
type BusRecord struct {
	Route          string   `json:"route"`
	URL            string   `json:"url"`
	BusName        string   `json:"bus_id"`
	BusType        string   `json:"bus_type"`
	DepartureTime  string   `json:"departure_time"` // HH:MM:SS
	Duration       string   `json:"duration"`
	ArrivalTime    string   `json:"arrival_time"` // HH:MM:SS
	Rating         *float64 `json:"rating"`
	Price          *string  `json:"price"` // canonical 2-decimal form
	SeatsAvailable *int     `json:"seats_available"`
}

// JobFailure records a scraping job that did not complete. Failures are
// reported alongside the successful records, never in place of them.
type JobFailure struct {
	ServiceIndex int           `json:"service_index"`
	Error        string        `json:"error"`
	Duration     time.Duration `json:"duration"`
}

// ScrapeSummary is the aggregate outcome of one batch run.
type ScrapeSummary struct {
	Records   []BusRecord   `json:"records"`
	Failures  []JobFailure  `json:"failures"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}
