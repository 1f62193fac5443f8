package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"busboard/pkg/models"
)

func ptrF(v float64) *float64 { return &v }
func ptrS(v string) *string   { return &v }

func record(busType, departure string, rating *float64, price *string) models.BusRecord {
	return models.BusRecord{
		Route:         "Chennai to Coimbatore",
		BusType:       busType,
		DepartureTime: departure,
		Rating:        rating,
		Price:         price,
	}
}

func TestClassifyAC(t *testing.T) {
	tests := []struct {
		busType string
		want    string
	}{
		{"A/C Sleeper (2+1)", ACTypeAC},
		{"Volvo AC Seater", ACTypeAC},
		{"HVAC Semi Sleeper", ACTypeAC},
		{"NON AC Sleeper", ACTypeNonAC},
		{"Non A/C Seater (2+2)", ACTypeNonAC},
		{"Express", ACTypeNonAC},
		{"Ordinary Seater", ACTypeNonAC},
	}
	for _, tt := range tests {
		t.Run(tt.busType, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyAC(tt.busType))
		})
	}
}

func TestTimeRangeWrapAround(t *testing.T) {
	tests := []struct {
		name      string
		departure string
		timeRange string
		want      bool
	}{
		{"late evening inside wrap", "23:30:00", "18:00-00:00", true},
		{"midnight inside wrap", "00:00:00", "18:00-00:00", true},
		{"noon outside wrap", "12:00:00", "18:00-00:00", false},
		{"start boundary inside", "18:00:00", "18:00-00:00", true},
		{"plain range start inclusive", "06:00:00", "06:00-12:00", true},
		{"plain range end exclusive", "12:00:00", "06:00-12:00", false},
		{"plain range inside", "09:15:00", "06:00-12:00", true},
		{"overnight range early morning", "04:59:00", "22:00-05:00", true},
		{"overnight range mid morning", "08:00:00", "22:00-05:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inTimeRange(tt.departure, tt.timeRange))
		})
	}
}

func TestFilterCombines(t *testing.T) {
	records := []models.BusRecord{
		record("A/C Sleeper (2+1)", "23:30:00", ptrF(4.5), ptrS("850.00")),
		record("NON AC Seater", "23:45:00", ptrF(4.8), ptrS("350.00")),
		record("A/C Sleeper (2+1)", "12:00:00", ptrF(4.6), ptrS("900.00")),
		record("A/C Sleeper (2+1)", "22:15:00", ptrF(3.2), ptrS("700.00")),
		record("A/C Sleeper (2+1)", "23:00:00", nil, ptrS("800.00")),
	}

	got := Filter(records, models.BusFilterRequest{
		SeatType:  "sleeper",
		ACType:    ACTypeAC,
		MinRating: 4.0,
		TimeRange: "18:00-00:00",
	})

	assert.Len(t, got, 1)
	assert.Equal(t, "23:30:00", got[0].DepartureTime)
}

func TestFilterNilFieldsNeverMatchPositiveConstraints(t *testing.T) {
	records := []models.BusRecord{
		record("AC Seater", "10:00:00", nil, nil),
	}

	assert.Empty(t, Filter(records, models.BusFilterRequest{MinRating: 1.0}))
	assert.Empty(t, Filter(records, models.BusFilterRequest{MaxFare: 10000}))
	assert.Len(t, Filter(records, models.BusFilterRequest{}), 1, "no constraints keeps the record")
}

func TestFilterRouteEquality(t *testing.T) {
	records := []models.BusRecord{
		record("AC Seater", "10:00:00", ptrF(4.0), ptrS("500.00")),
	}

	assert.Len(t, Filter(records, models.BusFilterRequest{Route: "Chennai to Coimbatore"}), 1)
	assert.Empty(t, Filter(records, models.BusFilterRequest{Route: "Chennai"}), "route filter is equality, not substring")
}

func TestFilterMaxFare(t *testing.T) {
	records := []models.BusRecord{
		record("AC Seater", "10:00:00", ptrF(4.0), ptrS("500.00")),
		record("AC Seater", "11:00:00", ptrF(4.0), ptrS("1500.00")),
	}

	got := Filter(records, models.BusFilterRequest{MaxFare: 1000})
	assert.Len(t, got, 1)
	assert.Equal(t, "500.00", *got[0].Price)
}
