package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rental/internal/domain"
	"rental/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, vehicle_id, requester_id, start_date, end_date, total_price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.VehicleID,
		booking.RequesterID,
		booking.StartDate,
		booking.EndDate,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
	)

	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT id, vehicle_id, requester_id, start_date, end_date, total_price, status, created_at
		FROM bookings WHERE id = $1
	`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

// FindOverlapping returns active-status bookings for a vehicle whose inclusive
// range intersects [start, end]. The predicate mirrors the domain overlap
// rule: s1 <= e2 AND s2 <= e1.
func (r *BookingRepository) FindOverlapping(ctx context.Context, vehicleID string, start, end time.Time) ([]*domain.Booking, error) {
	query := `
		SELECT id, vehicle_id, requester_id, start_date, end_date, total_price, status, created_at
		FROM bookings
		WHERE vehicle_id = $1
		  AND status IN ($2, $3)
		  AND start_date <= $4
		  AND $5 <= end_date
		ORDER BY start_date
	`

	rows, err := r.q.QueryContext(ctx, query,
		vehicleID,
		domain.BookingStatusPending,
		domain.BookingStatusConfirmed,
		end,
		start,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListByRequester retrieves all bookings of a requester in creation order.
func (r *BookingRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domain.Booking, error) {
	query := `
		SELECT id, vehicle_id, requester_id, start_date, end_date, total_price, status, created_at
		FROM bookings
		WHERE requester_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// UpdateStatus swaps the status of a booking with a compare-and-set on the
// expected current status, so a stale writer cannot overwrite a transition
// that already happened.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) error {
	query := `UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, to, id, from)
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

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (*domain.Booking, error) {
	var booking domain.Booking
	err := s.Scan(
		&booking.ID,
		&booking.VehicleID,
		&booking.RequesterID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// DATE columns come back at midnight in the session zone; pin to UTC
	// so the domain overlap rule compares calendar dates only.
	booking.StartDate = domain.NormalizeDate(booking.StartDate)
	booking.EndDate = domain.NormalizeDate(booking.EndDate)

	return &booking, nil
}

func collectBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
