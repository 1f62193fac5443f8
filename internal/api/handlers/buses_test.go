package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busboard/pkg/models"
)

type staticSource struct {
	records []models.BusRecord
	err     error
}

func (s *staticSource) Records(ctx context.Context, table string) ([]models.BusRecord, error) {
	return s.records, s.err
}

func serveBuses(t *testing.T, source RecordSource, query string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/buses"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := BusesHandler(source, "bus_routes")(c)
	require.NoError(t, err)
	return rec
}

func rating(v float64) *float64 { return &v }

func TestBusesHandlerFiltersByQuery(t *testing.T) {
	source := &staticSource{records: []models.BusRecord{
		{Route: "Chennai to Madurai", BusType: "A/C Sleeper (2+1)", DepartureTime: "22:00:00", Rating: rating(4.5)},
		{Route: "Chennai to Madurai", BusType: "NON AC Seater", DepartureTime: "09:00:00", Rating: rating(4.0)},
		{Route: "Chennai to Salem", BusType: "A/C Seater", DepartureTime: "10:00:00", Rating: rating(3.0)},
	}}

	rec := serveBuses(t, source, "?route=Chennai+to+Madurai&ac_type=AC")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.BusListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Buses, 1)
	assert.Equal(t, "22:00:00", resp.Buses[0].DepartureTime)
	assert.NotEmpty(t, resp.RequestID)
}

func TestBusesHandlerTimeRangeValidation(t *testing.T) {
	source := &staticSource{records: []models.BusRecord{
		{Route: "r", BusType: "AC Seater", DepartureTime: "09:30:00", Rating: rating(4.0)},
	}}

	tests := []struct {
		name      string
		timeRange string
		status    int
	}{
		{"canonical range", "06:00-12:00", http.StatusOK},
		{"wrap-around range", "18:00-00:00", http.StatusOK},
		{"leading zero dropped", "6:00-12:00", http.StatusOK},
		{"out-of-range clock", "99:99-00:00", http.StatusBadRequest},
		{"letters", "aa:bb-cc:dd", http.StatusBadRequest},
		{"missing separator", "06:00", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveBuses(t, source, "?time_range="+tt.timeRange)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestBusesHandlerRejectsInvalidACType(t *testing.T) {
	rec := serveBuses(t, &staticSource{}, "?ac_type=sometimes")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_failed", resp.Error)
}

func TestBusesHandlerStorageError(t *testing.T) {
	rec := serveBuses(t, &staticSource{err: errors.New("db gone")}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBusesHandlerEmptyTable(t *testing.T) {
	rec := serveBuses(t, &staticSource{}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.BusListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 0, resp.Count)
}
