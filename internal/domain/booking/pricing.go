package booking

import "time"

// Quote is the server-side price computed for a booking. Amounts are in
// cents; total days count both endpoints of the inclusive range.
type Quote struct {
	TotalDays   int64 `json:"total_days"`
	RateCents   int64 `json:"rate_cents"`
	AmountCents int64 `json:"amount_cents"`
}

// PriceFor computes the settlement quote for an inclusive date range at the
// given daily rate. A single-day booking (start == end) counts as one day.
func PriceFor(startDate, endDate time.Time, rateCents int64) Quote {
	start := NormalizeDate(startDate)
	end := NormalizeDate(endDate)
	days := int64(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return Quote{
		TotalDays:   days,
		RateCents:   rateCents,
		AmountCents: days * rateCents,
	}
}

// PriceOf computes the quote for an existing booking.
func PriceOf(b *Booking, rateCents int64) Quote {
	return PriceFor(b.StartDate(), b.EndDate(), rateCents)
}
