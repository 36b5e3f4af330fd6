package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rental/internal/repository"
	"rental/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidRequesterID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidPaymentReference),
		errors.Is(err, service.ErrInvalidVehicleName),
		errors.Is(err, service.ErrInvalidVehicleCategory),
		errors.Is(err, service.ErrInvalidPrice):
		return http.StatusBadRequest

	// Conflict errors - expected contention and business-rule outcomes
	case errors.Is(err, service.ErrDateConflict),
		errors.Is(err, service.ErrVehicleUnavailable),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrCheckoutAlreadyStarted):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Consistency errors signal corruption, not a caller mistake
	case errors.Is(err, service.ErrInconsistentState):
		return http.StatusInternalServerError

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
