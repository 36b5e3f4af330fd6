package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"

	"rental/internal/domain"
	"rental/internal/repository"
)

// CheckoutSession is what the external checkout provider hands back when a
// session is created.
type CheckoutSession struct {
	Reference   string // Carried back by the completion webhook
	RedirectURL string // Where the user completes payment
}

// CheckoutProvider is the interface for the external checkout service.
// Only session creation is modelled; the provider's own lifecycle stays
// outside this service.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, booking *domain.Booking) (*CheckoutSession, error)
}

// MockCheckoutProvider is a mock implementation of CheckoutProvider.
type MockCheckoutProvider struct{}

// NewMockCheckoutProvider creates a new mock checkout provider.
func NewMockCheckoutProvider() *MockCheckoutProvider {
	return &MockCheckoutProvider{}
}

// CreateSession returns a synthetic session. Always succeeds.
func (p *MockCheckoutProvider) CreateSession(ctx context.Context, booking *domain.Booking) (*CheckoutSession, error) {
	ref := uuid.New().String()
	return &CheckoutSession{
		Reference:   ref,
		RedirectURL: fmt.Sprintf("https://checkout.example.com/session/%s", ref),
	}, nil
}

// PaymentService handles checkout initiation and payment confirmation.
type PaymentService struct {
	paymentRepo    repository.PaymentRepository
	bookingService *BookingService
	provider       CheckoutProvider
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingService *BookingService,
	provider CheckoutProvider,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		bookingService: bookingService,
		provider:       provider,
	}
}

// CheckoutResponse contains the result of initiating a checkout.
type CheckoutResponse struct {
	Payment     *domain.Payment
	RedirectURL string
}

// CreateCheckout opens a checkout session for a PENDING booking and records
// the payment as unpaid. Calling it again for the same booking returns the
// existing payment instead of opening a second session.
func (s *PaymentService) CreateCheckout(ctx context.Context, bookingID string) (*CheckoutResponse, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingService.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusPending {
		return nil, ErrInvalidTransition
	}

	existing, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CheckoutResponse{Payment: existing}, nil
	}

	session, err := s.provider.CreateSession(ctx, booking)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:        uuid.New().String(),
		BookingID: booking.ID,
		Reference: session.Reference,
		Amount:    booking.TotalPrice,
		Paid:      false,
		CreatedAt: time.Now(),
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &CheckoutResponse{
		Payment:     payment,
		RedirectURL: session.RedirectURL,
	}, nil
}

// ConfirmPayment applies a completed-payment signal from the provider.
// Delivery is at-least-once, so the whole path is idempotent: the paid flag
// only moves false to true, and re-confirming a booking that is already
// CONFIRMED, or has since moved on to COMPLETED, is a success no-op. A
// completed payment against a cancelled or missing booking is an upstream
// invariant violation and is surfaced loudly.
func (s *PaymentService) ConfirmPayment(ctx context.Context, reference string) (*domain.Payment, error) {
	if reference == "" {
		return nil, ErrInvalidPaymentReference
	}

	payment, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if !payment.Paid {
		now := time.Now()
		if err := s.paymentRepo.MarkPaid(ctx, payment.ID, now); err != nil {
			return nil, err
		}
		payment.Paid = true
		payment.PaidAt = now
	}

	// Run the booking transition even on redelivery: it recovers a crash
	// between marking the payment and confirming the booking.
	_, err = s.bookingService.ConfirmBooking(ctx, payment.BookingID)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			// A booking that has run through to COMPLETED already got
			// its paid confirmation; redelivery stays a success no-op.
			// Any other refused transition means the dates are gone.
			booking, lookupErr := s.bookingService.GetBooking(ctx, payment.BookingID)
			if lookupErr == nil && booking.Status == domain.BookingStatusCompleted {
				return payment, nil
			}
			s.reportInconsistency(ctx, payment, err)
			return nil, ErrInconsistentState
		}
		if errors.Is(err, repository.ErrNotFound) {
			s.reportInconsistency(ctx, payment, err)
			return nil, ErrInconsistentState
		}
		return nil, err
	}

	return payment, nil
}

// GetPaymentByReference retrieves a payment by its provider reference.
func (s *PaymentService) GetPaymentByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	if reference == "" {
		return nil, ErrInvalidPaymentReference
	}

	return s.paymentRepo.GetByReference(ctx, reference)
}

// reportInconsistency flags a paid checkout that cannot confirm its booking.
// This means money moved for a booking that no longer holds its dates, which
// needs operator attention, not silent acceptance.
func (s *PaymentService) reportInconsistency(ctx context.Context, payment *domain.Payment, cause error) {
	log.Printf("INCONSISTENT STATE: payment %s (reference %s) completed for booking %s: %v",
		payment.ID, payment.Reference, payment.BookingID, cause)

	if txn := newrelic.FromContext(ctx); txn != nil {
		txn.NoticeError(fmt.Errorf("payment %s confirmed against unusable booking %s: %w",
			payment.ID, payment.BookingID, cause))
	}
}
