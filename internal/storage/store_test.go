package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"busboard/pkg/models"
)

func memoryStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStoreWithDB(db)
}

func TestReplaceAndRecordsRoundTrip(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	records := []models.BusRecord{
		{
			Route:          "Chennai to Madurai",
			URL:            "https://example.test/chennai-madurai",
			BusName:        "SETC Ultra Deluxe",
			BusType:        "NON AC Seater (2+3)",
			DepartureTime:  "22:30:00",
			Duration:       "07h 15m",
			ArrivalTime:    "05:45:00",
			Rating:         ptrF(4.2),
			Price:          ptrS("420.00"),
			SeatsAvailable: ptrI(17),
		},
		{
			Route:   "Chennai to Madurai",
			URL:     "https://example.test/chennai-madurai",
			BusName: "Private Travels",
			BusType: "A/C Sleeper (2+1)",
			// Missing time, rating, price and seats stay null.
		},
	}

	require.NoError(t, store.Replace(ctx, "bus_routes", records))

	got, err := store.Records(ctx, "bus_routes")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, records[0], got[0])
	assert.Nil(t, got[1].Rating)
	assert.Nil(t, got[1].Price)
	assert.Nil(t, got[1].SeatsAvailable)
	assert.Empty(t, got[1].DepartureTime)
}

func TestReplacePreservesCanonicalPrice(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	records := []models.BusRecord{
		{Route: "r", BusName: "b", Price: ptrS("420.00")},
		{Route: "r", BusName: "b", Price: ptrS("1234.50")},
	}
	require.NoError(t, store.Replace(ctx, "bus_routes", records))

	got, err := store.Records(ctx, "bus_routes")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "420.00", *got[0].Price, "trailing zeros must survive the round trip")
	assert.Equal(t, "1234.50", *got[1].Price)
}

func TestReplaceOverwritesPreviousSnapshot(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	first := []models.BusRecord{{Route: "old", BusName: "old bus"}}
	require.NoError(t, store.Replace(ctx, "bus_routes", first))

	second := []models.BusRecord{{Route: "new", BusName: "new bus"}}
	require.NoError(t, store.Replace(ctx, "bus_routes", second))

	got, err := store.Records(ctx, "bus_routes")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Route)
}

func TestReplaceEmptyBatchLeavesEmptyTable(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, "bus_routes", nil))

	got, err := store.Records(ctx, "bus_routes")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInvalidTableNameRejected(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	err := store.Replace(ctx, "bus_routes; DROP TABLE users", nil)
	assert.Error(t, err)

	_, err = store.Records(ctx, "1bad")
	assert.Error(t, err)
}

func ptrI(v int) *int { return &v }
