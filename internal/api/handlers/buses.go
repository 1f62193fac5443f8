package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"busboard/internal/logging"
	"busboard/internal/storage"
	"busboard/pkg/models"
	"busboard/pkg/utils"
)

var validate = validator.New()

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

func init() {
	_ = validate.RegisterValidation("clockrange", isClockRange)
}

// isClockRange accepts "HH:MM-HH:MM" where both sides are valid clock
// values. Hours may drop the leading zero.
func isClockRange(fl validator.FieldLevel) bool {
	parts := strings.SplitN(fl.Field().String(), "-", 2)
	if len(parts) != 2 {
		return false
	}
	return isClock(parts[0]) && isClock(parts[1])
}

func isClock(s string) bool {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return hour < 24 && minute < 60
}

// RecordSource reads all persisted bus records for a table.
type RecordSource interface {
	Records(ctx context.Context, table string) ([]models.BusRecord, error)
}

// BusesHandler returns the bus listing endpoint: bind and validate the
// filter query, load the persisted snapshot and apply the filters in
// memory.
func BusesHandler(source RecordSource, table string) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()

		var req models.BusFilterRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "malformed query parameters",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}
		if err := validate.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		records, err := source.Records(c.Request().Context(), table)
		if err != nil {
			logger.Error("Failed to load bus records", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "storage_error",
				Message:   "failed to load bus records",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		filtered := storage.Filter(records, req)

		logger.Debug("Bus query served", map[string]interface{}{
			"request_id": requestID,
			"total":      len(records),
			"matched":    len(filtered),
		})

		return c.JSON(http.StatusOK, models.BusListResponse{
			Success:   true,
			Count:     len(filtered),
			Buses:     filtered,
			RequestID: requestID,
		})
	}
}
