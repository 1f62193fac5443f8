package scraper

import (
	"github.com/go-rod/rod"

	"busboard/pkg/models"
	"busboard/pkg/normalize"
)

// extractRows reads every result row on the page into typed records. The
// row count is the number of operator-name cells; a missing or malformed
// field yields a nil/empty field, never an aborted row.
func (s *Session) extractRows(page *rod.Page, link models.RouteLink) ([]models.BusRecord, error) {
	names := Texts(page, operatorCells, s.cfg.Scraper.ElementTimeout)
	if len(names) == 0 {
		return nil, nil
	}

	if loc, err := Row(1, fieldOperator); err == nil {
		_ = ScrollInto(page, loc, s.cfg.Scraper.FieldTimeout)
	}

	records := make([]models.BusRecord, 0, len(names))
	for x := 1; x <= len(names); x++ {
		rec := models.BusRecord{
			Route: link.Name,
			URL:   link.URL,
		}

		if v, ok := s.rowField(page, x, fieldOperator); ok {
			rec.BusName = v
		}
		if v, ok := s.rowField(page, x, fieldBusType); ok {
			rec.BusType = v
		}
		if v, ok := s.rowField(page, x, fieldDeparture); ok {
			rec.DepartureTime = normalize.FullTime(v)
		}
		if v, ok := s.rowField(page, x, fieldDuration); ok {
			rec.Duration = v
		}
		if v, ok := s.rowField(page, x, fieldArrival); ok {
			rec.ArrivalTime = normalize.FullTime(v)
		}
		if v, ok := s.rowField(page, x, fieldRating); ok {
			rec.Rating = normalize.Rating(v)
		}
		if v, ok := s.rowField(page, x, fieldFare); ok {
			rec.Price = normalize.Price(v)
		}
		if v, ok := s.rowField(page, x, fieldSeats); ok {
			rec.SeatsAvailable = normalize.Seats(v)
		}

		records = append(records, rec)
	}

	s.logger.Debug("Extracted result rows", map[string]interface{}{
		"route": link.Name,
		"rows":  len(records),
	})
	return records, nil
}

// rowField reads one field of the x-th row within the short field timeout.
func (s *Session) rowField(page *rod.Page, x int, field string) (string, bool) {
	loc, err := Row(x, field)
	if err != nil {
		return "", false
	}
	return Text(page, loc, s.cfg.Scraper.FieldTimeout)
}
