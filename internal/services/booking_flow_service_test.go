package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/store"
)

type fakeHotelRepo struct {
	hotel *models.Hotel
	err   error
}

func (f *fakeHotelRepo) ListHotels(ctx context.Context, filter models.HotelFilter, offset, limit int) ([]*models.Hotel, int, error) {
	return []*models.Hotel{f.hotel}, 1, f.err
}

func (f *fakeHotelRepo) GetHotel(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hotel, nil
}

func (f *fakeHotelRepo) CreateHotel(ctx context.Context, hotel *models.Hotel, accessToken string) (*models.Hotel, error) {
	return hotel, f.err
}

func (f *fakeHotelRepo) UpdateHotel(ctx context.Context, fields map[string]interface{}, id uuid.UUID, accessToken string) (*models.Hotel, error) {
	return f.hotel, f.err
}

type fakeCouponRepo struct {
	row      *models.CouponValidationRow
	err      error
	lastCode string
	lastAmt  int64
}

func (f *fakeCouponRepo) ValidateCoupon(ctx context.Context, code string, bookingAmount int64) (*models.CouponValidationRow, error) {
	f.lastCode = code
	f.lastAmt = bookingAmount
	if f.err != nil {
		return nil, f.err
	}
	return f.row, nil
}

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func testHotel() *models.Hotel {
	return &models.Hotel{
		ID:             uuid.New(),
		Name:           "Seaside Grand",
		City:           "Goa",
		PricePerNight:  200000,
		AvailableRooms: 5,
		Status:         models.HotelStatusActive,
	}
}

func newTestFlow(t *testing.T, hotels models.HotelRepo, coupons models.CouponRepo) *BookingFlowService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bf := NewBookingFlowService(store.NewDraftStore(client, time.Minute), hotels, coupons, logger)
	bf.now = func() time.Time { return testNow }
	return bf
}

// openTestDraft opens a draft and walks it to a valid stay.
func openTestDraft(t *testing.T, bf *BookingFlowService, hotel *models.Hotel) (uuid.UUID, *models.BookingDraft) {
	t.Helper()
	ctx := context.Background()
	userID := uuid.New()

	draft, err := bf.OpenDraft(ctx, userID, hotel.ID)
	if err != nil {
		t.Fatal(err)
	}

	checkIn := testNow.AddDate(0, 0, 1)
	checkOut := testNow.AddDate(0, 0, 3)
	draft, err = bf.UpdateStay(ctx, userID, draft.ID, &checkIn, &checkOut, 2)
	if err != nil {
		t.Fatal(err)
	}
	return userID, draft
}

func TestOpenDraft(t *testing.T) {
	hotel := testHotel()
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, &fakeCouponRepo{})
	ctx := context.Background()

	draft, err := bf.OpenDraft(ctx, uuid.New(), hotel.ID)
	if err != nil {
		t.Fatal(err)
	}

	if draft.Step != models.StepBooking {
		t.Errorf("step = %s, want booking", draft.Step)
	}
	if draft.GuestCount != 1 {
		t.Errorf("guest count = %d, want 1", draft.GuestCount)
	}
	if len(draft.Guests) != 1 {
		t.Fatalf("roster size = %d, want 1", len(draft.Guests))
	}
	if draft.Guests[0].Title != "Mr" || draft.Guests[0].Gender != "male" {
		t.Errorf("guest defaults = %+v", draft.Guests[0])
	}
	if draft.Hotel.ID != hotel.ID || draft.Hotel.PricePerNight != 200000 {
		t.Errorf("hotel summary = %+v", draft.Hotel)
	}

	if _, err := bf.OpenDraft(ctx, uuid.Nil, hotel.ID); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("anonymous open = %v, want ErrNotAuthenticated", err)
	}
}

func TestGetDraftOwnership(t *testing.T) {
	hotel := testHotel()
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, &fakeCouponRepo{})
	ctx := context.Background()
	userID, draft := openTestDraft(t, bf, hotel)

	if _, _, err := bf.GetDraft(ctx, uuid.New(), draft.ID); !errors.Is(err, ErrNotDraftOwner) {
		t.Errorf("foreign read = %v, want ErrNotDraftOwner", err)
	}
	if _, _, err := bf.GetDraft(ctx, userID, uuid.New()); !errors.Is(err, store.ErrDraftNotFound) {
		t.Errorf("unknown draft = %v, want ErrDraftNotFound", err)
	}
}

func TestUpdateStayKeepsInvalidValues(t *testing.T) {
	hotel := testHotel()
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, &fakeCouponRepo{})
	ctx := context.Background()
	userID, draft := openTestDraft(t, bf, hotel)

	past := testNow.AddDate(0, 0, -2)
	out := testNow.AddDate(0, 0, 2)
	updated, err := bf.UpdateStay(ctx, userID, draft.ID, &past, &out, 2)

	var stayErr *StayError
	if !errors.As(err, &stayErr) || stayErr.Reason != StayPastCheckIn {
		t.Fatalf("err = %v, want PastCheckIn", err)
	}
	if updated == nil || updated.CheckIn == nil || !updated.CheckIn.Equal(past) {
		t.Error("invalid dates were not kept on the draft")
	}

	// the bad values persisted so the user can correct them in place
	reloaded, _, err := bf.GetDraft(ctx, userID, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.CheckIn == nil || !reloaded.CheckIn.Equal(past) {
		t.Error("invalid check-in not persisted")
	}
}

func TestUpdateStayOnlyAtBookingStep(t *testing.T) {
	hotel := testHotel()
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, &fakeCouponRepo{})
	ctx := context.Background()
	userID, draft := openTestDraft(t, bf, hotel)

	if _, err := bf.Advance(ctx, userID, draft.ID); err != nil {
		t.Fatal(err)
	}

	in := testNow.AddDate(0, 0, 5)
	out := testNow.AddDate(0, 0, 6)
	if _, err := bf.UpdateStay(ctx, userID, draft.ID, &in, &out, 2); !errors.Is(err, ErrWrongStep) {
		t.Errorf("stay edit past booking step = %v, want ErrWrongStep", err)
	}
}

func TestApplyCoupon(t *testing.T) {
	hotel := testHotel()

	t.Run("normalizes and applies", func(t *testing.T) {
		coupons := &fakeCouponRepo{row: &models.CouponValidationRow{
			Valid:          true,
			DiscountAmount: 50000,
			CouponID:       "c-1",
		}}
		bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, coupons)
		ctx := context.Background()
		userID, draft := openTestDraft(t, bf, hotel)

		updated, err := bf.ApplyCoupon(ctx, userID, draft.ID, "  save500 ")
		if err != nil {
			t.Fatal(err)
		}
		if coupons.lastCode != "SAVE500" {
			t.Errorf("code sent = %q, want SAVE500", coupons.lastCode)
		}
		if coupons.lastAmt != 400000 {
			t.Errorf("amount sent = %d, want 400000", coupons.lastAmt)
		}
		if updated.Coupon == nil || updated.Coupon.DiscountAmount != 50000 {
			t.Errorf("coupon = %+v", updated.Coupon)
		}
	})

	t.Run("empty code", func(t *testing.T) {
		bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, &fakeCouponRepo{})
		ctx := context.Background()
		userID, draft := openTestDraft(t, bf, hotel)

		if _, err := bf.ApplyCoupon(ctx, userID, draft.ID, "   "); !errors.Is(err, ErrEmptyCouponCode) {
			t.Errorf("blank code = %v, want ErrEmptyCouponCode", err)
		}
	})

	t.Run("rejection carries the server message", func(t *testing.T) {
		coupons := &fakeCouponRepo{row: &models.CouponValidationRow{
			Valid:   false,
			Message: "coupon expired",
		}}
		bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, coupons)
		ctx := context.Background()
		userID, draft := openTestDraft(t, bf, hotel)

		_, err := bf.ApplyCoupon(ctx, userID, draft.ID, "OLD")
		var rejected *CouponRejectedError
		if !errors.As(err, &rejected) {
			t.Fatalf("err = %v, want CouponRejectedError", err)
		}
		if rejected.Message != "coupon expired" {
			t.Errorf("message = %q", rejected.Message)
		}
	})

	t.Run("transport failure leaves the applied coupon alone", func(t *testing.T) {
		coupons := &fakeCouponRepo{row: &models.CouponValidationRow{
			Valid:          true,
			DiscountAmount: 50000,
			CouponID:       "c-1",
		}}
		bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, coupons)
		ctx := context.Background()
		userID, draft := openTestDraft(t, bf, hotel)

		if _, err := bf.ApplyCoupon(ctx, userID, draft.ID, "SAVE500"); err != nil {
			t.Fatal(err)
		}

		coupons.err = errors.New("rpc unreachable")
		if _, err := bf.ApplyCoupon(ctx, userID, draft.ID, "OTHER"); !errors.Is(err, ErrCouponValidation) {
			t.Fatalf("transport failure = %v, want ErrCouponValidation", err)
		}

		reloaded, _, err := bf.GetDraft(ctx, userID, draft.ID)
		if err != nil {
			t.Fatal(err)
		}
		if reloaded.Coupon == nil || reloaded.Coupon.Code != "SAVE500" {
			t.Errorf("coupon after failed re-apply = %+v, want SAVE500 kept", reloaded.Coupon)
		}
	})

	t.Run("re-apply replaces wholesale", func(t *testing.T) {
		coupons := &fakeCouponRepo{row: &models.CouponValidationRow{
			Valid:          true,
			DiscountAmount: 50000,
			CouponID:       "c-1",
		}}
		bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, coupons)
		ctx := context.Background()
		userID, draft := openTestDraft(t, bf, hotel)

		if _, err := bf.ApplyCoupon(ctx, userID, draft.ID, "SAVE500"); err != nil {
			t.Fatal(err)
		}

		coupons.row = &models.CouponValidationRow{Valid: true, DiscountAmount: 80000, CouponID: "c-2"}
		updated, err := bf.ApplyCoupon(ctx, userID, draft.ID, "SAVE800")
		if err != nil {
			t.Fatal(err)
		}
		if updated.Coupon.Code != "SAVE800" || updated.Coupon.DiscountAmount != 80000 {
			t.Errorf("coupon = %+v, want replaced", updated.Coupon)
		}
	})
}

func TestRemoveCoupon(t *testing.T) {
	hotel := testHotel()
	coupons := &fakeCouponRepo{row: &models.CouponValidationRow{Valid: true, DiscountAmount: 50000}}
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, coupons)
	ctx := context.Background()
	userID, draft := openTestDraft(t, bf, hotel)

	if _, err := bf.ApplyCoupon(ctx, userID, draft.ID, "SAVE500"); err != nil {
		t.Fatal(err)
	}
	updated, err := bf.RemoveCoupon(ctx, userID, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Coupon != nil {
		t.Error("coupon survived removal")
	}

	breakdown := ComputePrice(updated)
	if breakdown.FinalAmount != breakdown.BaseAmount {
		t.Errorf("final = %d after removal, want base %d", breakdown.FinalAmount, breakdown.BaseAmount)
	}
}

// completeRoster fills the draft's roster for its guest count.
func completeRoster(t *testing.T, bf *BookingFlowService, userID, draftID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	draft, _, err := bf.GetDraft(ctx, userID, draftID)
	if err != nil {
		t.Fatal(err)
	}
	for len(draft.Guests) < draft.GuestCount {
		if draft, err = bf.AddGuest(ctx, userID, draftID); err != nil {
			t.Fatal(err)
		}
	}
	for i, g := range draft.Guests {
		for field, value := range map[string]string{
			"first_name": "Guest",
			"last_name":  "Number" + string(rune('A'+i)),
			"age":        "30",
		} {
			if _, err := bf.UpdateGuest(ctx, userID, draftID, g.ID, field, value); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestAdvanceGates(t *testing.T) {
	hotel := testHotel()
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, &fakeCouponRepo{})
	ctx := context.Background()
	userID, draft := openTestDraft(t, bf, hotel)

	// booking -> guest-details passes once the stay is valid
	advanced, err := bf.Advance(ctx, userID, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if advanced.Step != models.StepGuestDetails {
		t.Fatalf("step = %s, want guest-details", advanced.Step)
	}

	// terms gate
	if _, err := bf.Advance(ctx, userID, draft.ID); !errors.Is(err, ErrTermsNotAgreed) {
		t.Fatalf("advance without terms = %v, want ErrTermsNotAgreed", err)
	}
	if _, err := bf.SetTermsAgreed(ctx, userID, draft.ID, true); err != nil {
		t.Fatal(err)
	}

	// roster size gate
	if _, err := bf.Advance(ctx, userID, draft.ID); !errors.Is(err, ErrRosterIncomplete) {
		t.Fatalf("advance with short roster = %v, want ErrRosterIncomplete", err)
	}
	if _, err := bf.AddGuest(ctx, userID, draft.ID); err != nil {
		t.Fatal(err)
	}

	// roster validity gate: names and ages still blank
	if _, err := bf.Advance(ctx, userID, draft.ID); !errors.Is(err, ErrRosterInvalid) {
		t.Fatalf("advance with blank roster = %v, want ErrRosterInvalid", err)
	}
	reloaded, _, err := bf.GetDraft(ctx, userID, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.GuestErrors) == 0 {
		t.Error("validation messages not persisted on the draft")
	}

	completeRoster(t, bf, userID, draft.ID)
	advanced, err = bf.Advance(ctx, userID, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if advanced.Step != models.StepPaymentMethod {
		t.Fatalf("step = %s, want payment-method", advanced.Step)
	}

	// there is no step past payment-method
	if _, err := bf.Advance(ctx, userID, draft.ID); !errors.Is(err, ErrWrongStep) {
		t.Errorf("advance at payment step = %v, want ErrWrongStep", err)
	}
}

func TestAdvanceBlockedByStaleStay(t *testing.T) {
	hotel := testHotel()
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, &fakeCouponRepo{})
	ctx := context.Background()
	userID, draft := openTestDraft(t, bf, hotel)

	past := testNow.AddDate(0, 0, -1)
	out := testNow.AddDate(0, 0, 2)
	bf.UpdateStay(ctx, userID, draft.ID, &past, &out, 2)

	_, err := bf.Advance(ctx, userID, draft.ID)
	var stayErr *StayError
	if !errors.As(err, &stayErr) {
		t.Fatalf("advance with bad stay = %v, want StayError", err)
	}
}

func TestBack(t *testing.T) {
	hotel := testHotel()
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, &fakeCouponRepo{})
	ctx := context.Background()
	userID, draft := openTestDraft(t, bf, hotel)

	if _, err := bf.Advance(ctx, userID, draft.ID); err != nil {
		t.Fatal(err)
	}
	moved, err := bf.Back(ctx, userID, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if moved.Step != models.StepBooking {
		t.Errorf("step = %s, want booking", moved.Step)
	}

	// back at the first step stays put
	moved, err = bf.Back(ctx, userID, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if moved.Step != models.StepBooking {
		t.Errorf("step = %s, want booking", moved.Step)
	}
}

func TestBeginPayment(t *testing.T) {
	hotel := testHotel()
	coupons := &fakeCouponRepo{row: &models.CouponValidationRow{Valid: true, DiscountAmount: 50000}}
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, coupons)
	ctx := context.Background()
	userID, draft := openTestDraft(t, bf, hotel)

	// not at the payment step yet
	if _, _, err := bf.BeginPayment(ctx, userID, draft.ID, models.StrategyGateway); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("early payment = %v, want ErrWrongStep", err)
	}

	if _, err := bf.ApplyCoupon(ctx, userID, draft.ID, "SAVE500"); err != nil {
		t.Fatal(err)
	}
	if _, err := bf.Advance(ctx, userID, draft.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := bf.SetTermsAgreed(ctx, userID, draft.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := bf.AddGuest(ctx, userID, draft.ID); err != nil {
		t.Fatal(err)
	}
	completeRoster(t, bf, userID, draft.ID)
	if _, err := bf.Advance(ctx, userID, draft.ID); err != nil {
		t.Fatal(err)
	}

	_, attempt, err := bf.BeginPayment(ctx, userID, draft.ID, models.StrategyGateway)
	if err != nil {
		t.Fatal(err)
	}
	if attempt.Amount != 350000 {
		t.Errorf("attempt amount = %d, want 350000 (discounted total)", attempt.Amount)
	}
	if attempt.Currency != "INR" {
		t.Errorf("currency = %q", attempt.Currency)
	}

	// the attempt rides on the draft for the verification callback
	reloaded, _, err := bf.GetDraft(ctx, userID, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Attempt == nil || reloaded.Attempt.ID != attempt.ID {
		t.Error("attempt not persisted on the draft")
	}

	// a second begin supersedes the first
	_, second, err := bf.BeginPayment(ctx, userID, draft.ID, models.StrategyDemo)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID == attempt.ID {
		t.Error("fresh attempt reused the old id")
	}

	if _, _, err := bf.BeginPayment(ctx, userID, draft.ID, models.PaymentStrategy("bitcoin")); err == nil {
		t.Error("unknown strategy accepted")
	}
}

func TestCloseDraft(t *testing.T) {
	hotel := testHotel()
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, &fakeCouponRepo{})
	ctx := context.Background()
	userID, draft := openTestDraft(t, bf, hotel)

	if err := bf.CloseDraft(ctx, userID, draft.ID); err != nil {
		t.Fatal(err)
	}

	// late callbacks find nothing
	if _, _, err := bf.GetDraft(ctx, userID, draft.ID); !errors.Is(err, store.ErrDraftNotFound) {
		t.Errorf("read after close = %v, want ErrDraftNotFound", err)
	}
	if _, err := bf.ApplyCoupon(ctx, userID, draft.ID, "SAVE500"); !errors.Is(err, store.ErrDraftNotFound) {
		t.Errorf("coupon after close = %v, want ErrDraftNotFound", err)
	}
}

func TestSetContactValidation(t *testing.T) {
	hotel := testHotel()
	bf := newTestFlow(t, &fakeHotelRepo{hotel: hotel}, &fakeCouponRepo{})
	ctx := context.Background()
	userID, draft := openTestDraft(t, bf, hotel)

	if _, err := bf.SetContact(ctx, userID, draft.ID, models.GuestDetails{
		Email: "not-an-email",
		Phone: "9876543210",
	}); err == nil {
		t.Error("bad email accepted")
	}

	if _, err := bf.SetContact(ctx, userID, draft.ID, models.GuestDetails{
		Email: "a@example.com",
		Phone: "123",
	}); err == nil {
		t.Error("short phone accepted")
	}

	updated, err := bf.SetContact(ctx, userID, draft.ID, models.GuestDetails{
		FirstName:   "Asha",
		LastName:    "Rao",
		Email:       "a@example.com",
		Phone:       "9876543210",
		CountryCode: "+91",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Contact.Email != "a@example.com" {
		t.Errorf("contact = %+v", updated.Contact)
	}
}
