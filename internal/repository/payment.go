package repository

import (
	"context"
	"time"

	"rental/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByReference retrieves a payment by its provider reference.
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)

	// GetByBookingID retrieves the payment for a booking.
	// Returns nil if no checkout was initiated for the booking.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error)

	// MarkPaid sets paid=true and the paid timestamp. The paid flag is
	// monotonic; marking an already paid payment again is a no-op.
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
}
