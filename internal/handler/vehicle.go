package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rental/internal/domain"
	"rental/internal/service"
)

// VehicleHandler handles HTTP requests for the vehicle catalog.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// AddVehicleRequest is the HTTP request body for adding a vehicle.
type AddVehicleRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`      // CAR or BIKE
	PricePerDay string `json:"price_per_day"` // Decimal string, e.g. "50.00"
	Deposit     string `json:"deposit"`
}

// SetActiveRequest is the HTTP request body for flipping the active flag.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// VehicleResponse is the HTTP representation of a vehicle.
type VehicleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	PricePerDay string `json:"price_per_day"`
	Deposit     string `json:"deposit"`
	Active      bool   `json:"active"`
}

func toVehicleResponse(v *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:          v.ID,
		Name:        v.Name,
		Category:    string(v.Category),
		PricePerDay: v.PricePerDay.StringFixed(2),
		Deposit:     v.Deposit.StringFixed(2),
		Active:      v.Active,
	}
}

// AddVehicle handles POST /v1/vehicles
func (h *VehicleHandler) AddVehicle(c *gin.Context) {
	var req AddVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	pricePerDay, err := decimal.NewFromString(req.PricePerDay)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "price_per_day must be a decimal string"})
		return
	}
	deposit, err := decimal.NewFromString(req.Deposit)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "deposit must be a decimal string"})
		return
	}

	vehicle, err := h.vehicleService.AddVehicle(c.Request.Context(), service.AddVehicleRequest{
		Name:        req.Name,
		Category:    domain.VehicleCategory(req.Category),
		PricePerDay: pricePerDay,
		Deposit:     deposit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toVehicleResponse(vehicle))
}

// GetVehicle handles GET /v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

// ListVehicles handles GET /v1/vehicles
// By default only active vehicles are listed; ?all=true includes inactive.
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	activeOnly := c.Query("all") != "true"

	vehicles, err := h.vehicleService.ListVehicles(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		response = append(response, toVehicleResponse(v))
	}

	respondJSON(c, http.StatusOK, response)
}

// SetActive handles POST /v1/vehicles/:id/active
func (h *VehicleHandler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.vehicleService.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		respondError(c, err)
		return
	}

	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}
