package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"rental/internal/domain"
	"rental/internal/redis"
	"rental/internal/repository"
)

const (
	// vehicleLockTTL bounds a distributed vehicle lock so a crashed
	// instance cannot block a vehicle forever.
	vehicleLockTTL = 10 * time.Second

	// lockRetryDelay is the poll interval while waiting on a distributed
	// vehicle lock held by another instance.
	lockRetryDelay = 25 * time.Millisecond
)

// VehicleCatalog is the catalog lookup the availability engine consumes.
// Implemented by VehicleService; mocked in tests.
type VehicleCatalog interface {
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
}

// BookingService is the availability and pricing engine. It is the only
// writer of booking records and the single owner of the non-overlap
// invariant: for any vehicle, PENDING and CONFIRMED bookings are pairwise
// non-overlapping in their inclusive date ranges.
type BookingService struct {
	bookingRepo repository.BookingRepository
	catalog     VehicleCatalog
	locks       *VehicleLocks
	lockStore   redis.VehicleLockStoreInterface // Optional: cross-instance locking
}

// NewBookingService creates a new BookingService. lockStore may be nil when
// a single instance owns the database.
func NewBookingService(
	bookingRepo repository.BookingRepository,
	catalog VehicleCatalog,
	locks *VehicleLocks,
	lockStore redis.VehicleLockStoreInterface,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		catalog:     catalog,
		locks:       locks,
		lockStore:   lockStore,
	}
}

// RequestBookingRequest contains the parameters for requesting a booking.
type RequestBookingRequest struct {
	VehicleID   string
	RequesterID string
	StartDate   time.Time
	EndDate     time.Time
}

// RequestBookingResponse contains the result of an admitted booking.
type RequestBookingResponse struct {
	Booking *domain.Booking
	Days    int
}

// RequestBooking decides admission for a date range and, on success, persists
// the booking as PENDING with its computed price. Checks run in order:
// vehicle active, valid range, no overlap. The overlap check and the insert
// execute under the vehicle's lock so two racing overlapping requests admit
// at most one.
func (s *BookingService) RequestBooking(ctx context.Context, req RequestBookingRequest) (*RequestBookingResponse, error) {
	if req.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	if req.RequesterID == "" {
		return nil, ErrInvalidRequesterID
	}

	vehicle, err := s.catalog.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVehicleUnavailable
		}
		return nil, err
	}
	if !vehicle.Active {
		return nil, ErrVehicleUnavailable
	}

	start := domain.NormalizeDate(req.StartDate)
	end := domain.NormalizeDate(req.EndDate)
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	unlock, err := s.lockVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	overlapping, err := s.bookingRepo.FindOverlapping(ctx, req.VehicleID, start, end)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, ErrDateConflict
	}

	quote := QuotePrice(vehicle, start, end)

	booking := &domain.Booking{
		ID:          uuid.New().String(),
		VehicleID:   req.VehicleID,
		RequesterID: req.RequesterID,
		StartDate:   start,
		EndDate:     end,
		TotalPrice:  quote.Total,
		Status:      domain.BookingStatusPending,
		CreatedAt:   time.Now(),
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	return &RequestBookingResponse{
		Booking: booking,
		Days:    quote.Days,
	}, nil
}

// CancelBooking cancels a booking on behalf of its requester and frees the
// date range immediately. Only PENDING and CONFIRMED bookings can be
// cancelled.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, requesterID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if requesterID == "" {
		return nil, ErrInvalidRequesterID
	}

	return s.transition(ctx, bookingID, domain.BookingStatusCancelled, requesterID)
}

// ConfirmBooking moves a booking from PENDING to CONFIRMED on payment
// completion. Confirming an already CONFIRMED booking is a no-op success;
// any other current status is an invalid transition.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	return s.transition(ctx, bookingID, domain.BookingStatusConfirmed, "")
}

// AdminUpdateStatus applies an administrative status change (cancel a
// booking, mark it completed after the travel dates pass). It runs through
// the same transition table as every other path; there is exactly one
// state machine.
func (s *BookingService) AdminUpdateStatus(ctx context.Context, bookingID string, status domain.BookingStatus) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	switch status {
	case domain.BookingStatusConfirmed, domain.BookingStatusCancelled, domain.BookingStatusCompleted:
	default:
		return nil, ErrInvalidTransition
	}

	return s.transition(ctx, bookingID, status, "")
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	return s.bookingRepo.GetByID(ctx, bookingID)
}

// ListBookingsFor retrieves a requester's bookings in creation order.
func (s *BookingService) ListBookingsFor(ctx context.Context, requesterID string) ([]*domain.Booking, error) {
	if requesterID == "" {
		return nil, ErrInvalidRequesterID
	}

	return s.bookingRepo.ListByRequester(ctx, requesterID)
}

// transition applies one status change under the booking's vehicle lock so
// racing transitions (a cancellation against a payment confirmation) settle
// on exactly one winner. A non-empty requesterID enforces ownership.
func (s *BookingService) transition(ctx context.Context, bookingID string, target domain.BookingStatus, requesterID string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockVehicle(ctx, booking.VehicleID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock; a racing transition may have won.
	booking, err = s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if requesterID != "" && booking.RequesterID != requesterID {
		return nil, ErrForbidden
	}

	if booking.Status == target {
		// Idempotent no-op (e.g. re-confirming on webhook redelivery).
		return booking, nil
	}

	if !booking.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, booking.Status, target); err != nil {
		return nil, err
	}

	booking.Status = target
	return booking, nil
}

// lockVehicle serializes the caller on the vehicle. The in-process mutex is
// authoritative within one instance; when a distributed lock store is
// configured it is acquired on top, polling until free or the context ends.
// No external I/O beyond the ledger runs while the lock is held.
func (s *BookingService) lockVehicle(ctx context.Context, vehicleID string) (func(), error) {
	s.locks.Lock(vehicleID)

	if s.lockStore == nil {
		return func() { s.locks.Unlock(vehicleID) }, nil
	}

	for {
		ok, err := s.lockStore.AcquireVehicleLock(ctx, vehicleID, vehicleLockTTL)
		if err != nil {
			s.locks.Unlock(vehicleID)
			return nil, err
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			s.locks.Unlock(vehicleID)
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return func() {
		// The caller's context may be done by release time; the DEL must
		// still go out or the vehicle stays locked until the TTL expires.
		_ = s.lockStore.ReleaseVehicleLock(context.WithoutCancel(ctx), vehicleID)
		s.locks.Unlock(vehicleID)
	}, nil
}
