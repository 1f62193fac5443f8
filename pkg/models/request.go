package models

// BusFilterRequest carries the query parameters accepted by the bus listing
// endpoint. All filters are optional and combine with AND semantics.
type BusFilterRequest struct {
	Route     string  `query:"route"`
	SeatType  string  `query:"seat_type"`
	ACType    string  `query:"ac_type" validate:"omitempty,oneof=AC 'NON AC'"`
	MinRating float64 `query:"min_rating" validate:"omitempty,gte=0,lte=5"`
	TimeRange string  `query:"time_range" validate:"omitempty,clockrange"`
	MaxFare   float64 `query:"max_fare" validate:"omitempty,gte=0"`
}
