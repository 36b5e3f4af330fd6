package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rental/internal/domain"
	"rental/internal/service"
)

// ──────────────────────────────────────────────
// SHARED TEST HELPERS
// ──────────────────────────────────────────────

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestVehicle(id, pricePerDay, deposit string, active bool) *domain.Vehicle {
	return &domain.Vehicle{
		ID:          id,
		Name:        "test vehicle " + id,
		Category:    domain.VehicleCategoryCar,
		PricePerDay: decimal.RequireFromString(pricePerDay),
		Deposit:     decimal.RequireFromString(deposit),
		Active:      active,
		CreatedAt:   time.Now(),
	}
}

// newEngine wires a booking engine over mock storage with the given vehicles.
func newEngine(vehicles ...*domain.Vehicle) (*service.BookingService, *MockBookingRepository) {
	vehicleRepo := NewMockVehicleRepository()
	for _, v := range vehicles {
		vehicleRepo.AddVehicle(v)
	}

	bookingRepo := NewMockBookingRepository()
	catalog := service.NewVehicleService(vehicleRepo, nil)

	return service.NewBookingService(bookingRepo, catalog, service.NewVehicleLocks(), nil), bookingRepo
}

// ──────────────────────────────────────────────
// 1. BOOKING ADMISSION
// ──────────────────────────────────────────────

func TestRequestBooking_ValidRange_AdmittedAsPending(t *testing.T) {
	t.Parallel()

	engine, bookingRepo := newEngine(newTestVehicle("veh-1", "50.00", "20.00", true))

	resp, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
		VehicleID:   "veh-1",
		RequesterID: "user-1",
		StartDate:   date(2025, time.December, 1),
		EndDate:     date(2025, time.December, 3),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if resp == nil || resp.Booking == nil {
		t.Fatal("expected booking to be created")
	}
	if resp.Booking.ID == "" {
		t.Error("expected booking ID to be set")
	}
	if resp.Booking.Status != domain.BookingStatusPending {
		t.Errorf("expected status PENDING, got %s", resp.Booking.Status)
	}
	if bookingRepo.CountBookings() != 1 {
		t.Errorf("expected 1 stored booking, got %d", bookingRepo.CountBookings())
	}
}

func TestRequestBooking_PriceIsExact(t *testing.T) {
	t.Parallel()

	// 3 inclusive days * 50.00 + 20.00 deposit = 170.00
	engine, _ := newEngine(newTestVehicle("veh-1", "50.00", "20.00", true))

	resp, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
		VehicleID:   "veh-1",
		RequesterID: "user-1",
		StartDate:   date(2025, time.December, 1),
		EndDate:     date(2025, time.December, 3),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if resp.Days != 3 {
		t.Errorf("expected 3 rental days, got %d", resp.Days)
	}
	want := decimal.RequireFromString("170.00")
	if !resp.Booking.TotalPrice.Equal(want) {
		t.Errorf("expected total price 170.00, got %s", resp.Booking.TotalPrice)
	}
}

func TestRequestBooking_SameDay_CountsOneDay(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(newTestVehicle("veh-1", "45.50", "10.00", true))

	resp, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
		VehicleID:   "veh-1",
		RequesterID: "user-1",
		StartDate:   date(2025, time.July, 4),
		EndDate:     date(2025, time.July, 4),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if resp.Days != 1 {
		t.Errorf("expected 1 rental day, got %d", resp.Days)
	}
	want := decimal.RequireFromString("55.50")
	if !resp.Booking.TotalPrice.Equal(want) {
		t.Errorf("expected total price 55.50, got %s", resp.Booking.TotalPrice)
	}
}

func TestRequestBooking_InvalidRange_RejectedWithoutRecord(t *testing.T) {
	t.Parallel()

	engine, bookingRepo := newEngine(newTestVehicle("veh-1", "50.00", "20.00", true))

	_, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
		VehicleID:   "veh-1",
		RequesterID: "user-1",
		StartDate:   date(2025, time.March, 5),
		EndDate:     date(2025, time.March, 1),
	})
	if !errors.Is(err, service.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got: %v", err)
	}

	if bookingRepo.CountBookings() != 0 {
		t.Errorf("expected no booking created, got %d", bookingRepo.CountBookings())
	}
}

func TestRequestBooking_InactiveVehicle_Rejected(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(newTestVehicle("veh-1", "50.00", "20.00", false))

	_, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
		VehicleID:   "veh-1",
		RequesterID: "user-1",
		StartDate:   date(2025, time.May, 1),
		EndDate:     date(2025, time.May, 2),
	})
	if !errors.Is(err, service.ErrVehicleUnavailable) {
		t.Fatalf("expected ErrVehicleUnavailable, got: %v", err)
	}
}

func TestRequestBooking_UnknownVehicle_Rejected(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine()

	_, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
		VehicleID:   "veh-missing",
		RequesterID: "user-1",
		StartDate:   date(2025, time.May, 1),
		EndDate:     date(2025, time.May, 2),
	})
	if !errors.Is(err, service.ErrVehicleUnavailable) {
		t.Fatalf("expected ErrVehicleUnavailable, got: %v", err)
	}
}

func TestRequestBooking_VehicleCheckPrecedesRangeCheck(t *testing.T) {
	t.Parallel()

	// An inverted range on an unknown vehicle reports the vehicle problem:
	// precondition order is vehicle, range, overlap.
	engine, _ := newEngine()

	_, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
		VehicleID:   "veh-missing",
		RequesterID: "user-1",
		StartDate:   date(2025, time.May, 9),
		EndDate:     date(2025, time.May, 1),
	})
	if !errors.Is(err, service.ErrVehicleUnavailable) {
		t.Fatalf("expected ErrVehicleUnavailable, got: %v", err)
	}
}

func TestRequestBooking_MissingIDs_Rejected(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(newTestVehicle("veh-1", "50.00", "20.00", true))

	_, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
		VehicleID:   "",
		RequesterID: "user-1",
		StartDate:   date(2025, time.May, 1),
		EndDate:     date(2025, time.May, 2),
	})
	if !errors.Is(err, service.ErrInvalidVehicleID) {
		t.Fatalf("expected ErrInvalidVehicleID, got: %v", err)
	}

	_, err = engine.RequestBooking(context.Background(), service.RequestBookingRequest{
		VehicleID:   "veh-1",
		RequesterID: "",
		StartDate:   date(2025, time.May, 1),
		EndDate:     date(2025, time.May, 2),
	})
	if !errors.Is(err, service.ErrInvalidRequesterID) {
		t.Fatalf("expected ErrInvalidRequesterID, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. OVERLAP SEMANTICS (END-INCLUSIVE)
// ──────────────────────────────────────────────

func TestRequestBooking_OverlapCases(t *testing.T) {
	t.Parallel()

	// Existing booking holds [2025-01-10, 2025-01-15].
	testCases := []struct {
		name       string
		start, end time.Time
		admitted   bool
	}{
		{"identical range", date(2025, time.January, 10), date(2025, time.January, 15), false},
		{"contained range", date(2025, time.January, 12), date(2025, time.January, 13), false},
		{"overlaps tail", date(2025, time.January, 14), date(2025, time.January, 20), false},
		{"overlaps head", date(2025, time.January, 5), date(2025, time.January, 10), false},
		{"single day on end boundary", date(2025, time.January, 15), date(2025, time.January, 15), false},
		{"starts day after end", date(2025, time.January, 16), date(2025, time.January, 18), true},
		{"ends day before start", date(2025, time.January, 7), date(2025, time.January, 9), true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			engine, _ := newEngine(newTestVehicle("veh-1", "30.00", "0", true))

			_, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
				VehicleID:   "veh-1",
				RequesterID: "user-1",
				StartDate:   date(2025, time.January, 10),
				EndDate:     date(2025, time.January, 15),
			})
			if err != nil {
				t.Fatalf("seed booking failed: %v", err)
			}

			_, err = engine.RequestBooking(context.Background(), service.RequestBookingRequest{
				VehicleID:   "veh-1",
				RequesterID: "user-2",
				StartDate:   tc.start,
				EndDate:     tc.end,
			})

			if tc.admitted && err != nil {
				t.Errorf("expected admission, got: %v", err)
			}
			if !tc.admitted && !errors.Is(err, service.ErrDateConflict) {
				t.Errorf("expected ErrDateConflict, got: %v", err)
			}
		})
	}
}

func TestRequestBooking_OtherVehicleUnaffected(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(
		newTestVehicle("veh-1", "30.00", "0", true),
		newTestVehicle("veh-2", "30.00", "0", true),
	)

	for _, vehicleID := range []string{"veh-1", "veh-2"} {
		_, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
			VehicleID:   vehicleID,
			RequesterID: "user-1",
			StartDate:   date(2025, time.June, 1),
			EndDate:     date(2025, time.June, 5),
		})
		if err != nil {
			t.Fatalf("expected admission on %s, got: %v", vehicleID, err)
		}
	}
}

func TestRequestBooking_DecisionIsDeterministic(t *testing.T) {
	t.Parallel()

	// Identical arguments against identical state produce identical
	// decisions and identical prices.
	req := service.RequestBookingRequest{
		VehicleID:   "veh-1",
		RequesterID: "user-1",
		StartDate:   date(2025, time.August, 10),
		EndDate:     date(2025, time.August, 14),
	}

	engineA, _ := newEngine(newTestVehicle("veh-1", "33.33", "15.01", true))
	engineB, _ := newEngine(newTestVehicle("veh-1", "33.33", "15.01", true))

	respA, errA := engineA.RequestBooking(context.Background(), req)
	respB, errB := engineB.RequestBooking(context.Background(), req)

	if errA != nil || errB != nil {
		t.Fatalf("expected both admitted, got: %v / %v", errA, errB)
	}
	if !respA.Booking.TotalPrice.Equal(respB.Booking.TotalPrice) {
		t.Errorf("expected identical prices, got %s and %s",
			respA.Booking.TotalPrice, respB.Booking.TotalPrice)
	}

	// After admission the same request is deterministically rejected.
	_, err := engineA.RequestBooking(context.Background(), req)
	if !errors.Is(err, service.ErrDateConflict) {
		t.Errorf("expected ErrDateConflict on repeat, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. NON-OVERLAP INVARIANT
// ──────────────────────────────────────────────

func TestRequestBooking_ActiveBookingsNeverOverlap(t *testing.T) {
	t.Parallel()

	engine, bookingRepo := newEngine(newTestVehicle("veh-1", "10.00", "0", true))

	// Fire a mix of conflicting and free ranges; whatever was admitted
	// must end up pairwise non-overlapping.
	ranges := [][2]time.Time{
		{date(2025, time.April, 1), date(2025, time.April, 5)},
		{date(2025, time.April, 4), date(2025, time.April, 8)},
		{date(2025, time.April, 6), date(2025, time.April, 9)},
		{date(2025, time.April, 10), date(2025, time.April, 10)},
		{date(2025, time.April, 5), date(2025, time.April, 12)},
	}
	for _, r := range ranges {
		_, _ = engine.RequestBooking(context.Background(), service.RequestBookingRequest{
			VehicleID:   "veh-1",
			RequesterID: "user-1",
			StartDate:   r[0],
			EndDate:     r[1],
		})
	}

	bookings, err := bookingRepo.ListByRequester(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	for i := range bookings {
		for j := i + 1; j < len(bookings); j++ {
			a, b := bookings[i], bookings[j]
			if a.IsActive() && b.IsActive() && a.Overlaps(b.StartDate, b.EndDate) {
				t.Errorf("bookings %s and %s overlap: [%s,%s] vs [%s,%s]",
					a.ID, b.ID, a.StartDate, a.EndDate, b.StartDate, b.EndDate)
			}
		}
	}
}

// ──────────────────────────────────────────────
// 4. LISTING
// ──────────────────────────────────────────────

func TestListBookingsFor_ReturnsCreationOrder(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine(newTestVehicle("veh-1", "10.00", "0", true))

	var ids []string
	for month := time.March; month <= time.May; month++ {
		resp, err := engine.RequestBooking(context.Background(), service.RequestBookingRequest{
			VehicleID:   "veh-1",
			RequesterID: "user-1",
			StartDate:   date(2025, month, 1),
			EndDate:     date(2025, month, 3),
		})
		if err != nil {
			t.Fatalf("booking failed: %v", err)
		}
		ids = append(ids, resp.Booking.ID)
	}

	bookings, err := engine.ListBookingsFor(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(bookings) != len(ids) {
		t.Fatalf("expected %d bookings, got %d", len(ids), len(bookings))
	}
	for i, b := range bookings {
		if b.ID != ids[i] {
			t.Errorf("position %d: expected booking %s, got %s", i, ids[i], b.ID)
		}
	}
}

func TestListBookingsFor_EmptyRequesterID_Rejected(t *testing.T) {
	t.Parallel()

	engine, _ := newEngine()

	_, err := engine.ListBookingsFor(context.Background(), "")
	if !errors.Is(err, service.ErrInvalidRequesterID) {
		t.Fatalf("expected ErrInvalidRequesterID, got: %v", err)
	}
}
