package service

import "errors"

var (
	// ErrVehicleUnavailable is returned when the requested vehicle does not
	// exist or is not active.
	ErrVehicleUnavailable = errors.New("vehicle unavailable")

	// ErrInvalidDateRange is returned when the start date is after the end date.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrDateConflict is returned when an active booking already holds part
	// of the requested date range.
	ErrDateConflict = errors.New("date range conflicts with an existing booking")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the booking's current status.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrForbidden is returned when a requester acts on a booking they do not own.
	ErrForbidden = errors.New("requester does not own this booking")

	// ErrInconsistentState is returned when a completed payment references a
	// cancelled or missing booking. This signals data corruption upstream,
	// not a normal business outcome.
	ErrInconsistentState = errors.New("payment references a booking in an inconsistent state")

	// ErrInvalidVehicleID is returned when vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidRequesterID is returned when requester ID is empty.
	ErrInvalidRequesterID = errors.New("invalid requester id")

	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidPaymentReference is returned when the payment reference is empty.
	ErrInvalidPaymentReference = errors.New("invalid payment reference")

	// ErrInvalidVehicleName is returned when the vehicle name is empty.
	ErrInvalidVehicleName = errors.New("invalid vehicle name")

	// ErrInvalidVehicleCategory is returned when the category is not CAR or BIKE.
	ErrInvalidVehicleCategory = errors.New("invalid vehicle category")

	// ErrInvalidPrice is returned when price per day or deposit is negative.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrCheckoutAlreadyStarted is returned when a checkout session already
	// exists for the booking.
	ErrCheckoutAlreadyStarted = errors.New("checkout already started for this booking")
)
