package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rental/internal/domain"
	"rental/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, reference, amount, paid, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var paidAt sql.NullTime
	if !payment.PaidAt.IsZero() {
		paidAt = sql.NullTime{Time: payment.PaidAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.Reference,
		payment.Amount,
		payment.Paid,
		paidAt,
		payment.CreatedAt,
	)

	return err
}

// GetByReference retrieves a payment by its provider reference.
func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	return r.getWhere(ctx, "reference = $1", reference)
}

// GetByBookingID retrieves the payment for a booking.
// Returns nil if no checkout was initiated for the booking.
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error) {
	payment, err := r.getWhere(ctx, "booking_id = $1", bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return payment, err
}

// MarkPaid sets paid=true and the paid timestamp. The WHERE clause keeps the
// flag monotonic: an already-paid row is untouched, which is not an error.
func (r *PaymentRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	query := `UPDATE payments SET paid = TRUE, paid_at = $1 WHERE id = $2 AND paid = FALSE`

	_, err := r.q.ExecContext(ctx, query, paidAt, id)
	return err
}

func (r *PaymentRepository) getWhere(ctx context.Context, where string, arg any) (*domain.Payment, error) {
	query := `
		SELECT id, booking_id, reference, amount, paid, paid_at, created_at
		FROM payments WHERE ` + where

	var payment domain.Payment
	var paidAt sql.NullTime

	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Reference,
		&payment.Amount,
		&payment.Paid,
		&paidAt,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if paidAt.Valid {
		payment.PaidAt = paidAt.Time
	}

	return &payment, nil
}
