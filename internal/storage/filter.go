package storage

import (
	"regexp"
	"strconv"
	"strings"

	"busboard/pkg/models"
	"busboard/pkg/normalize"
)

// AC-type classification over the free-form bus-type string. A bus is
// NON AC when the string says "non" outright or never mentions an AC
// variant; it is AC when an AC variant appears and "non" does not.
var (
	nonPattern = regexp.MustCompile(`(?i)\bnon\b`)
	acPattern  = regexp.MustCompile(`(?i)\b(?:AC|A/C|HVAC)\b`)
)

const (
	ACTypeAC    = "AC"
	ACTypeNonAC = "NON AC"
)

// Filter narrows records by the original app's filter semantics: route
// equality, seat-type substring, AC classification, minimum rating, a
// wrap-around departure time range and a fare ceiling. Filters combine with
// AND; records with a nil field never satisfy a positive constraint on it.
func Filter(records []models.BusRecord, req models.BusFilterRequest) []models.BusRecord {
	out := make([]models.BusRecord, 0, len(records))
	for _, rec := range records {
		if !matches(rec, req) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matches(rec models.BusRecord, req models.BusFilterRequest) bool {
	if req.Route != "" && rec.Route != req.Route {
		return false
	}
	if req.SeatType != "" && !strings.Contains(strings.ToLower(rec.BusType), strings.ToLower(req.SeatType)) {
		return false
	}
	if req.ACType != "" && classifyAC(rec.BusType) != req.ACType {
		return false
	}
	if req.MinRating > 0 {
		if rec.Rating == nil || *rec.Rating < req.MinRating {
			return false
		}
	}
	if req.TimeRange != "" && !inTimeRange(rec.DepartureTime, req.TimeRange) {
		return false
	}
	if req.MaxFare > 0 {
		if rec.Price == nil {
			return false
		}
		fare, err := strconv.ParseFloat(*rec.Price, 64)
		if err != nil || fare > req.MaxFare {
			return false
		}
	}
	return true
}

// classifyAC buckets a bus-type string as AC or NON AC. RE2 has no
// lookahead, so the original single-pattern rule is expressed as two
// matches.
func classifyAC(busType string) string {
	if nonPattern.MatchString(busType) || !acPattern.MatchString(busType) {
		return ACTypeNonAC
	}
	return ACTypeAC
}

// inTimeRange checks a "HH:MM:SS" departure against a "HH:MM-HH:MM" range.
// A start at or after the end wraps past midnight: the range covers
// [start, 24:00) plus [00:00, end].
func inTimeRange(departure, timeRange string) bool {
	parts := strings.SplitN(timeRange, "-", 2)
	if len(parts) != 2 {
		return false
	}

	dep := normalize.ParseClock(departure)
	start := normalize.ParseClock(normalize.FullTime(strings.TrimSpace(parts[0])))
	end := normalize.ParseClock(normalize.FullTime(strings.TrimSpace(parts[1])))
	if dep < 0 || start < 0 || end < 0 {
		return false
	}

	if start < end {
		return dep >= start && dep < end
	}
	return dep >= start || dep <= end
}
