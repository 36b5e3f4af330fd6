package repository

import (
	"context"
	"time"

	"rental/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// FindOverlapping returns the bookings for a vehicle whose inclusive
	// date range intersects [start, end], restricted to the active
	// statuses PENDING and CONFIRMED.
	FindOverlapping(ctx context.Context, vehicleID string, start, end time.Time) ([]*domain.Booking, error)

	// ListByRequester retrieves all bookings of a requester in creation order.
	ListByRequester(ctx context.Context, requesterID string) ([]*domain.Booking, error)

	// UpdateStatus moves a booking from one status to another as a single
	// compare-and-set. ErrNotFound is returned when the booking does not
	// exist or its status no longer matches from. Transition legality is
	// the caller's responsibility; the repository only guards the swap.
	UpdateStatus(ctx context.Context, id string, from, to domain.BookingStatus) error
}
