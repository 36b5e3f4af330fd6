package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rental/internal/domain"
	"rental/internal/repository"
	"rental/internal/service"
)

// newPaymentStack wires a payment service over a booking engine with one
// active vehicle and returns both plus the payment repository.
func newPaymentStack(t *testing.T) (*service.PaymentService, *service.BookingService, *MockPaymentRepository) {
	t.Helper()

	engine, _ := newEngine(newTestVehicle("veh-1", "50.00", "20.00", true))
	paymentRepo := NewMockPaymentRepository()
	paymentService := service.NewPaymentService(paymentRepo, engine, service.NewMockCheckoutProvider())

	return paymentService, engine, paymentRepo
}

func mustBook(t *testing.T, engine *service.BookingService, requesterID string) *domain.Booking {
	t.Helper()

	resp, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
		VehicleID:   "veh-1",
		RequesterID: requesterID,
		StartDate:   date(2025, time.November, 1),
		EndDate:     date(2025, time.November, 4),
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	return resp.Booking
}

// ──────────────────────────────────────────────
// 1. CHECKOUT
// ──────────────────────────────────────────────

func TestCreateCheckout_CreatesUnpaidPayment(t *testing.T) {
	t.Parallel()

	paymentService, engine, paymentRepo := newPaymentStack(t)
	booking := mustBook(t, engine, "user-1")

	result, err := paymentService.CreateCheckout(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Payment.Paid {
		t.Error("expected payment to start unpaid")
	}
	if result.Payment.Reference == "" {
		t.Error("expected provider reference to be set")
	}
	if result.RedirectURL == "" {
		t.Error("expected redirect URL for the checkout session")
	}
	if !result.Payment.Amount.Equal(booking.TotalPrice) {
		t.Errorf("expected amount %s, got %s", booking.TotalPrice, result.Payment.Amount)
	}
	if paymentRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 payment created, got %d", paymentRepo.CreateCallCount)
	}
}

func TestCreateCheckout_SecondCall_ReturnsExistingPayment(t *testing.T) {
	t.Parallel()

	paymentService, engine, paymentRepo := newPaymentStack(t)
	booking := mustBook(t, engine, "user-1")

	first, err := paymentService.CreateCheckout(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}

	second, err := paymentService.CreateCheckout(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("second checkout failed: %v", err)
	}

	if second.Payment.ID != first.Payment.ID {
		t.Errorf("expected same payment, got %s and %s", first.Payment.ID, second.Payment.ID)
	}
	if paymentRepo.CreateCallCount != 1 {
		t.Errorf("expected no duplicate payment, create called %d times", paymentRepo.CreateCallCount)
	}
}

func TestCreateCheckout_CancelledBooking_Rejected(t *testing.T) {
	t.Parallel()

	paymentService, engine, _ := newPaymentStack(t)
	booking := mustBook(t, engine, "user-1")

	if _, err := engine.CancelBooking(context.Background(), booking.ID, "user-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err := paymentService.CreateCheckout(context.Background(), booking.ID)
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. CONFIRMATION (IDEMPOTENT WEBHOOK)
// ──────────────────────────────────────────────

func TestConfirmPayment_MarksPaidAndConfirmsBooking(t *testing.T) {
	t.Parallel()

	paymentService, engine, paymentRepo := newPaymentStack(t)
	booking := mustBook(t, engine, "user-1")

	result, err := paymentService.CreateCheckout(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	payment, err := paymentService.ConfirmPayment(context.Background(), result.Payment.Reference)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !payment.Paid {
		t.Error("expected payment to be paid")
	}
	if payment.PaidAt.IsZero() {
		t.Error("expected paid timestamp to be set")
	}
	stored := paymentRepo.GetPayment(payment.ID)
	if !stored.Paid {
		t.Error("expected persisted payment to be paid")
	}

	confirmed, err := engine.GetBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get booking failed: %v", err)
	}
	if confirmed.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected booking CONFIRMED, got %s", confirmed.Status)
	}
}

func TestConfirmPayment_Redelivery_IsNoOpSuccess(t *testing.T) {
	t.Parallel()

	paymentService, engine, _ := newPaymentStack(t)
	booking := mustBook(t, engine, "user-1")

	result, err := paymentService.CreateCheckout(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	first, err := paymentService.ConfirmPayment(context.Background(), result.Payment.Reference)
	if err != nil {
		t.Fatalf("first confirmation failed: %v", err)
	}

	second, err := paymentService.ConfirmPayment(context.Background(), result.Payment.Reference)
	if err != nil {
		t.Fatalf("expected redelivery to succeed, got: %v", err)
	}

	if !second.Paid {
		t.Error("expected payment to remain paid")
	}
	if !second.PaidAt.Equal(first.PaidAt) {
		t.Errorf("expected paid timestamp to be stable, got %v then %v", first.PaidAt, second.PaidAt)
	}

	confirmed, err := engine.GetBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get booking failed: %v", err)
	}
	if confirmed.Status != domain.BookingStatusConfirmed {
		t.Errorf("expected booking to remain CONFIRMED, got %s", confirmed.Status)
	}
}

func TestConfirmPayment_RedeliveryAfterCompletion_IsNoOpSuccess(t *testing.T) {
	t.Parallel()

	paymentService, engine, _ := newPaymentStack(t)
	booking := mustBook(t, engine, "user-1")

	result, err := paymentService.CreateCheckout(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if _, err := paymentService.ConfirmPayment(context.Background(), result.Payment.Reference); err != nil {
		t.Fatalf("first confirmation failed: %v", err)
	}

	// The booking legitimately runs to completion before the provider
	// redelivers the same event.
	if _, err := engine.AdminUpdateStatus(context.Background(), booking.ID, domain.BookingStatusCompleted); err != nil {
		t.Fatalf("completion failed: %v", err)
	}

	redelivered, err := paymentService.ConfirmPayment(context.Background(), result.Payment.Reference)
	if err != nil {
		t.Fatalf("expected redelivery after completion to succeed, got: %v", err)
	}
	if !redelivered.Paid {
		t.Error("expected payment to remain paid")
	}

	final, err := engine.GetBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get booking failed: %v", err)
	}
	if final.Status != domain.BookingStatusCompleted {
		t.Errorf("expected booking to remain COMPLETED, got %s", final.Status)
	}
}

func TestConfirmPayment_UnknownReference_NotFound(t *testing.T) {
	t.Parallel()

	paymentService, _, _ := newPaymentStack(t)

	_, err := paymentService.ConfirmPayment(context.Background(), "no-such-reference")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestConfirmPayment_CancelledBooking_InconsistentState(t *testing.T) {
	t.Parallel()

	paymentService, engine, _ := newPaymentStack(t)
	booking := mustBook(t, engine, "user-1")

	result, err := paymentService.CreateCheckout(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := engine.CancelBooking(context.Background(), booking.ID, "user-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err = paymentService.ConfirmPayment(context.Background(), result.Payment.Reference)
	if !errors.Is(err, service.ErrInconsistentState) {
		t.Fatalf("expected ErrInconsistentState, got: %v", err)
	}

	cancelled, err := engine.GetBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get booking failed: %v", err)
	}
	if cancelled.Status != domain.BookingStatusCancelled {
		t.Errorf("expected booking to stay CANCELLED, got %s", cancelled.Status)
	}
}

func TestConfirmPayment_EmptyReference_Rejected(t *testing.T) {
	t.Parallel()

	paymentService, _, _ := newPaymentStack(t)

	_, err := paymentService.ConfirmPayment(context.Background(), "")
	if !errors.Is(err, service.ErrInvalidPaymentReference) {
		t.Fatalf("expected ErrInvalidPaymentReference, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. CONFIRMATION VS CANCELLATION RACE
// ──────────────────────────────────────────────

func TestConfirmAndCancel_Race_OneDeterministicOutcome(t *testing.T) {
	t.Parallel()

	paymentService, engine, _ := newPaymentStack(t)
	booking := mustBook(t, engine, "user-1")

	result, err := paymentService.CreateCheckout(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	var wg sync.WaitGroup
	var confirmErr, cancelErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, confirmErr = paymentService.ConfirmPayment(context.Background(), result.Payment.Reference)
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = engine.CancelBooking(context.Background(), booking.ID, "user-1")
	}()
	wg.Wait()

	final, err := engine.GetBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("get booking failed: %v", err)
	}

	switch final.Status {
	case domain.BookingStatusCancelled:
		// Cancellation won. If it won before confirmation ran, the
		// confirmation must have reported the inconsistency; if the
		// confirmation ran first, cancelling a CONFIRMED booking is
		// legal, so both calls may have succeeded.
		if cancelErr != nil {
			t.Errorf("cancellation reached terminal state but reported: %v", cancelErr)
		}
		if confirmErr != nil && !errors.Is(confirmErr, service.ErrInconsistentState) {
			t.Errorf("expected ErrInconsistentState from losing confirmation, got: %v", confirmErr)
		}
	case domain.BookingStatusConfirmed:
		// Confirmation won and cancellation lost outright.
		if confirmErr != nil {
			t.Errorf("confirmation reached terminal state but reported: %v", confirmErr)
		}
		if cancelErr == nil {
			t.Error("expected losing cancellation to report an error")
		}
	default:
		t.Errorf("unexpected final status %s", final.Status)
	}
}
