package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joshua-takyi/tripbay/internal/models"
)

func draftForPricing(pricePerNight models.Money, nights int) *models.BookingDraft {
	checkIn := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, nights)
	return &models.BookingDraft{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Hotel: models.HotelSummary{
			ID:            uuid.New(),
			Name:          "Seaside Grand",
			PricePerNight: pricePerNight,
		},
		CheckIn:  &checkIn,
		CheckOut: &checkOut,
	}
}

func TestComputePrice(t *testing.T) {
	t.Run("base price is rate times nights", func(t *testing.T) {
		draft := draftForPricing(200000, 2) // 2000.00 a night, 2 nights

		got := ComputePrice(draft)
		if got.Nights != 2 {
			t.Errorf("Nights = %d, want 2", got.Nights)
		}
		if got.BaseAmount != 400000 {
			t.Errorf("BaseAmount = %d, want 400000", got.BaseAmount)
		}
		if got.Discount != 0 {
			t.Errorf("Discount = %d, want 0", got.Discount)
		}
		if got.FinalAmount != 400000 {
			t.Errorf("FinalAmount = %d, want 400000", got.FinalAmount)
		}
	})

	t.Run("coupon discount reduces the final amount", func(t *testing.T) {
		draft := draftForPricing(200000, 2)
		draft.Coupon = &models.AppliedCoupon{
			Code:           "SAVE500",
			DiscountAmount: 50000,
		}

		got := ComputePrice(draft)
		if got.BaseAmount != 400000 {
			t.Errorf("BaseAmount = %d, want 400000", got.BaseAmount)
		}
		if got.Discount != 50000 {
			t.Errorf("Discount = %d, want 50000", got.Discount)
		}
		if got.FinalAmount != 350000 {
			t.Errorf("FinalAmount = %d, want 350000", got.FinalAmount)
		}
	})

	t.Run("discount larger than base clamps at zero", func(t *testing.T) {
		draft := draftForPricing(50000, 1)
		draft.Coupon = &models.AppliedCoupon{
			Code:           "BIGSAVE",
			DiscountAmount: 80000,
		}

		got := ComputePrice(draft)
		if got.FinalAmount != 0 {
			t.Errorf("FinalAmount = %d, want 0", got.FinalAmount)
		}
	})

	t.Run("negative discount is ignored", func(t *testing.T) {
		draft := draftForPricing(100000, 1)
		draft.Coupon = &models.AppliedCoupon{
			Code:           "WEIRD",
			DiscountAmount: -10000,
		}

		got := ComputePrice(draft)
		if got.Discount != 0 {
			t.Errorf("Discount = %d, want 0", got.Discount)
		}
		if got.FinalAmount != 100000 {
			t.Errorf("FinalAmount = %d, want 100000", got.FinalAmount)
		}
	})

	t.Run("no dates means zero nights and zero base", func(t *testing.T) {
		draft := draftForPricing(200000, 1)
		draft.CheckIn = nil
		draft.CheckOut = nil

		got := ComputePrice(draft)
		if got.Nights != 0 || got.BaseAmount != 0 || got.FinalAmount != 0 {
			t.Errorf("breakdown = %+v, want all zero", got)
		}
	})
}
