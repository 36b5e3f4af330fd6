package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents the checkout record for one booking (one-to-one).
// Paid is monotonic: it flips false to true exactly once and never back.
type Payment struct {
	ID        string
	BookingID string
	Reference string // Provider-issued reference carried by the webhook
	Amount    decimal.Decimal
	Paid      bool
	PaidAt    time.Time
	CreatedAt time.Time
}
