package service

import (
	"time"

	"github.com/shopspring/decimal"

	"rental/internal/domain"
)

// PriceQuote is the deterministic price of one inclusive date range.
type PriceQuote struct {
	Days  int
	Total decimal.Decimal
}

// QuotePrice computes the booking price for [start, end] on a vehicle:
// days * price_per_day + deposit, with an inclusive day count (a same-day
// booking is one day). Pure; the same inputs always produce the same quote.
// Arithmetic is exact decimal throughout, never binary floating point.
func QuotePrice(vehicle *domain.Vehicle, start, end time.Time) PriceQuote {
	days := domain.RentalDays(start, end)
	total := decimal.NewFromInt(int64(days)).Mul(vehicle.PricePerDay).Add(vehicle.Deposit)

	return PriceQuote{
		Days:  days,
		Total: total,
	}
}
