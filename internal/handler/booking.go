package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rental/internal/domain"
	"rental/internal/service"
)

const dateLayout = "2006-01-02"

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// RequestBookingRequest is the HTTP request body for requesting a booking.
type RequestBookingRequest struct {
	VehicleID   string `json:"vehicle_id"`
	RequesterID string `json:"requester_id"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // YYYY-MM-DD
}

// CancelBookingRequest is the HTTP request body for cancelling a booking.
type CancelBookingRequest struct {
	RequesterID string `json:"requester_id"`
}

// UpdateBookingStatusRequest is the HTTP request body for the admin
// status endpoint.
type UpdateBookingStatusRequest struct {
	Status string `json:"status"` // CONFIRMED, CANCELLED or COMPLETED
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID          string `json:"id"`
	VehicleID   string `json:"vehicle_id"`
	RequesterID string `json:"requester_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	TotalPrice  string `json:"total_price"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		VehicleID:   b.VehicleID,
		RequesterID: b.RequesterID,
		StartDate:   b.StartDate.Format(dateLayout),
		EndDate:     b.EndDate.Format(dateLayout),
		TotalPrice:  b.TotalPrice.StringFixed(2),
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
}

// RequestBooking handles POST /v1/bookings
func (h *BookingHandler) RequestBooking(c *gin.Context) {
	var req RequestBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "end_date must be YYYY-MM-DD"})
		return
	}

	result, err := h.bookingService.RequestBooking(c.Request.Context(), service.RequestBookingRequest{
		VehicleID:   req.VehicleID,
		RequesterID: req.RequesterID,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(result.Booking))
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// ListBookings handles GET /v1/bookings?requester_id=...
func (h *BookingHandler) ListBookings(c *gin.Context) {
	requesterID := c.Query("requester_id")

	bookings, err := h.bookingService.ListBookingsFor(c.Request.Context(), requesterID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b))
	}

	respondJSON(c, http.StatusOK, response)
}

// CancelBooking handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("id"), req.RequesterID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// UpdateStatus handles POST /v1/admin/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingService.AdminUpdateStatus(c.Request.Context(), c.Param("id"), domain.BookingStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}
