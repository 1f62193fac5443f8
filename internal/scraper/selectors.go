package scraper

// Site selectors, all in one place so a markup change is a one-file fix.
var (
	// Landing page: the Nth government-operator service card.
	serviceCardTemplate = Template(XPath, "(//div[@class='rtcCards'])[%d]")

	// Operator catalog: the lazily-rendered route list, its links and the
	// first-link scroll anchor.
	catalogList    = CSSLocator(".route_details")
	routeLinksSel  = CSSLocator(".route_details a")
	firstRouteLink = XPathLocator("(//div[@class='route_details']/a)[1]")

	// Route results page: the Nth lazily-rendered bus list.
	busListTemplate = Template(XPath, "(//ul[@class='bus-items'])[%d]")

	// Collapsed operator groups that must be expanded before extraction.
	viewBusesFirst = XPathLocator("(//div[text()='View Buses'])[1]")
	viewBusesAll   = XPathLocator("//div[text()='View Buses']")

	// Segment selector cells rendered when results span multiple pages.
	paginationCells = CSSLocator(".DC_117_paginationTable div")

	// Date-change sub-protocol controls.
	dateEditControl     = CSSLocator(".dateText")
	datePickerControl   = CSSLocator(".dateWrapper")
	calendarDayTemplate = Template(XPath, "//td[contains(@class,'day')][normalize-space(text())='%s']")
	searchButton        = XPathLocator("//button[normalize-space(text())='SEARCH']")

	// Rendered when a route has no services on the selected date.
	noBusesMarker = XPathLocator("//*[contains(text(),'Oops! No buses found')]")

	// Result rows: one operator-name cell per row, plus the shared
	// per-row per-field template.
	operatorCells    = CSSLocator(".travels")
	rowFieldTemplate = Template(XPath,
		"(//li[contains(@class,'row-sec clearfix')])[%d]/descendant::div[contains(@class,'%s')]")
)

// Field classes accepted by the row template.
const (
	fieldOperator  = "travels"
	fieldBusType   = "bus-type"
	fieldDeparture = "dp-time"
	fieldDuration  = "dur"
	fieldArrival   = "bp-time"
	fieldRating    = "rating-sec"
	fieldFare      = "fare d-block"
	fieldSeats     = "seat-left"
)
