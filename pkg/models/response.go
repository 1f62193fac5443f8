package models

import "time"

// BusListResponse is the envelope for the bus query endpoint.
type BusListResponse struct {
	Success   bool        `json:"success"`
	Count     int         `json:"count"`
	Buses     []BusRecord `json:"buses"`
	RequestID string      `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
