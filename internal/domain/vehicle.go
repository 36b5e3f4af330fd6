package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VehicleCategory represents the category of a rentable vehicle.
type VehicleCategory string

const (
	VehicleCategoryCar  VehicleCategory = "CAR"
	VehicleCategoryBike VehicleCategory = "BIKE"
)

// Vehicle represents a rentable vehicle in the catalog.
type Vehicle struct {
	ID          string
	Name        string
	Category    VehicleCategory
	PricePerDay decimal.Decimal // Price per rental day
	Deposit     decimal.Decimal // Flat deposit added to every booking
	Active      bool            // Only active vehicles are bookable
	CreatedAt   time.Time
}
