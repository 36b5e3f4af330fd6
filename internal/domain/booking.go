package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Booking represents a reservation of one vehicle for an inclusive date range.
// Vehicle, dates and price are immutable after creation; only the status moves,
// and only along the transitions allowed by CanTransitionTo.
type Booking struct {
	ID          string
	VehicleID   string
	RequesterID string // Opaque pre-authenticated identity token
	StartDate   time.Time
	EndDate     time.Time // Inclusive: the vehicle is out through this day
	TotalPrice  decimal.Decimal
	Status      BookingStatus
	CreatedAt   time.Time
}

// CanTransitionTo reports whether a booking may move from its current status
// to the target status. CANCELLED and COMPLETED are terminal.
func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	switch b.Status {
	case BookingStatusPending:
		return target == BookingStatusConfirmed ||
			target == BookingStatusCancelled ||
			target == BookingStatusCompleted // admin override
	case BookingStatusConfirmed:
		return target == BookingStatusCancelled ||
			target == BookingStatusCompleted
	default:
		return false
	}
}

// IsActive reports whether the booking still holds its date range.
// Only PENDING and CONFIRMED bookings count for overlap checks.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// Overlaps reports whether the booking's inclusive date range intersects
// [start, end]. Two ranges conflict iff neither starts after the other ends,
// so a booking ending on day D blocks another starting on day D.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !b.StartDate.After(end) && !start.After(b.EndDate)
}

// NormalizeDate truncates t to midnight UTC. Booking dates are calendar
// dates; time-of-day and zone must never influence overlap or pricing.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RentalDays returns the inclusive day count of [start, end].
// A same-day booking counts as one day. Both arguments must be normalized.
func RentalDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
