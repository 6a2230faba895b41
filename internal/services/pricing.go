package services

import (
	"github.com/joshua-takyi/tripbay/internal/models"
)

// ComputePrice derives the payable breakdown from the draft. It is pure and
// recomputed on every read; nothing here is cached or stored. All arithmetic
// stays in minor units. The final amount is clamped at zero so a coupon
// discount can never make the booking payable amount negative.
func ComputePrice(draft *models.BookingDraft) models.PriceBreakdown {
	nights := Nights(draft.CheckIn, draft.CheckOut)
	base := draft.Hotel.PricePerNight.MulNights(nights)

	var discount models.Money
	if draft.Coupon != nil {
		discount = draft.Coupon.DiscountAmount
	}
	if discount < 0 {
		discount = 0
	}

	return models.PriceBreakdown{
		Nights:      nights,
		BaseAmount:  base,
		Discount:    discount,
		FinalAmount: base.Sub(discount).ClampZero(),
	}
}
