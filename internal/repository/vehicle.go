package repository

import (
	"context"

	"rental/internal/domain"
)

// VehicleRepository defines the persistence operations for the vehicle catalog.
type VehicleRepository interface {
	// Create adds a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetAll retrieves all vehicles. If activeOnly is true, inactive
	// vehicles are filtered out.
	GetAll(ctx context.Context, activeOnly bool) ([]*domain.Vehicle, error)

	// SetActive updates the active flag of a vehicle.
	SetActive(ctx context.Context, id string, active bool) error
}
