package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rental/internal/domain"
	"rental/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

// Create adds a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, name, category, price_per_day, deposit, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.Name,
		vehicle.Category,
		vehicle.PricePerDay,
		vehicle.Deposit,
		vehicle.Active,
		vehicle.CreatedAt,
	)

	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `
		SELECT id, name, category, price_per_day, deposit, active, created_at
		FROM vehicles WHERE id = $1
	`

	var vehicle domain.Vehicle
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID,
		&vehicle.Name,
		&vehicle.Category,
		&vehicle.PricePerDay,
		&vehicle.Deposit,
		&vehicle.Active,
		&vehicle.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &vehicle, nil
}

// GetAll retrieves all vehicles, optionally restricted to active ones.
func (r *VehicleRepository) GetAll(ctx context.Context, activeOnly bool) ([]*domain.Vehicle, error) {
	query := `
		SELECT id, name, category, price_per_day, deposit, active, created_at
		FROM vehicles
	`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY created_at`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		var vehicle domain.Vehicle
		if err := rows.Scan(
			&vehicle.ID,
			&vehicle.Name,
			&vehicle.Category,
			&vehicle.PricePerDay,
			&vehicle.Deposit,
			&vehicle.Active,
			&vehicle.CreatedAt,
		); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &vehicle)
	}
	return vehicles, rows.Err()
}

// SetActive updates the active flag of a vehicle.
func (r *VehicleRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE vehicles SET active = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, active, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
