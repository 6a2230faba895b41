package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/store"
)

// BookingFlowService owns the booking wizard state machine. Every operation
// reloads the draft from the store, applies one mutation, and saves; once a
// draft has been closed or paid, the store returns ErrDraftNotFound and late
// callers get a clean failure instead of touching discarded state.
type BookingFlowService struct {
	drafts  *store.DraftStore
	hotels  models.HotelRepo
	coupons models.CouponRepo
	logger  *slog.Logger
	now     func() time.Time
}

func NewBookingFlowService(drafts *store.DraftStore, hotels models.HotelRepo, coupons models.CouponRepo, logger *slog.Logger) *BookingFlowService {
	return &BookingFlowService{
		drafts:  drafts,
		hotels:  hotels,
		coupons: coupons,
		logger:  logger,
		now:     time.Now,
	}
}

// OpenDraft starts a fresh booking attempt for the hotel. Reopening after a
// close always starts from the booking step with nothing carried over.
func (bf *BookingFlowService) OpenDraft(ctx context.Context, userID, hotelID uuid.UUID) (*models.BookingDraft, error) {
	if userID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}

	hotel, err := bf.hotels.GetHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel: %v", err)
	}

	draft := &models.BookingDraft{
		ID:         uuid.New(),
		UserID:     userID,
		Hotel:      hotel.Summary(),
		GuestCount: 1,
		Guests:     []models.GuestRecord{},
		Step:       models.StepBooking,
		CreatedAt:  bf.now(),
	}
	AddGuest(draft)

	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (bf *BookingFlowService) GetDraft(ctx context.Context, userID, draftID uuid.UUID) (*models.BookingDraft, models.PriceBreakdown, error) {
	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, models.PriceBreakdown{}, err
	}
	return draft, ComputePrice(draft), nil
}

// UpdateStay records the requested dates and guest count. The values are
// kept even when invalid so the user can correct them in place; the stay
// error is returned for surfacing and blocks the advance gate later.
func (bf *BookingFlowService) UpdateStay(ctx context.Context, userID, draftID uuid.UUID, checkIn, checkOut *time.Time, guestCount int) (*models.BookingDraft, error) {
	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Step != models.StepBooking {
		return nil, ErrWrongStep
	}

	draft.CheckIn = checkIn
	draft.CheckOut = checkOut
	draft.GuestCount = guestCount

	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}

	if stayErr := ResolveStay(bf.now(), checkIn, checkOut, guestCount, draft.Hotel.AvailableRooms*2); stayErr != nil {
		return draft, stayErr
	}
	return draft, nil
}

// ApplyCoupon normalizes the code, validates it remotely against the current
// base amount and replaces any applied coupon wholesale. A rejection carries
// the server message; a transport failure leaves the applied coupon as it
// was.
func (bf *BookingFlowService) ApplyCoupon(ctx context.Context, userID, draftID uuid.UUID, code string) (*models.BookingDraft, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, ErrEmptyCouponCode
	}

	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}

	breakdown := ComputePrice(draft)
	row, err := bf.coupons.ValidateCoupon(ctx, normalized, int64(breakdown.BaseAmount))
	if err != nil {
		bf.logger.Error("coupon validation failed", "draft_id", draftID, "code", normalized, "error", err)
		return nil, ErrCouponValidation
	}
	if !row.Valid {
		return nil, &CouponRejectedError{Message: row.Message}
	}

	draft.Coupon = &models.AppliedCoupon{
		Code:           normalized,
		CouponID:       row.CouponID,
		DiscountAmount: models.Money(row.DiscountAmount),
	}

	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// RemoveCoupon is client-local, no remote call.
func (bf *BookingFlowService) RemoveCoupon(ctx context.Context, userID, draftID uuid.UUID) (*models.BookingDraft, error) {
	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	draft.Coupon = nil
	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (bf *BookingFlowService) AddGuest(ctx context.Context, userID, draftID uuid.UUID) (*models.BookingDraft, error) {
	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	AddGuest(draft)
	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (bf *BookingFlowService) RemoveGuest(ctx context.Context, userID, draftID, guestID uuid.UUID) (*models.BookingDraft, error) {
	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	RemoveGuest(draft, guestID)
	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (bf *BookingFlowService) UpdateGuest(ctx context.Context, userID, draftID, guestID uuid.UUID, field, value string) (*models.BookingDraft, error) {
	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	if err := UpdateGuest(draft, guestID, field, value); err != nil {
		return nil, err
	}
	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (bf *BookingFlowService) SetContact(ctx context.Context, userID, draftID uuid.UUID, contact models.GuestDetails) (*models.BookingDraft, error) {
	if err := models.Validate.Var(contact.Email, "required,email"); err != nil {
		return nil, fmt.Errorf("invalid contact email")
	}
	if err := models.Validate.Var(contact.Phone, "required,min=7"); err != nil {
		return nil, fmt.Errorf("invalid contact phone")
	}

	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	draft.Contact = contact
	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (bf *BookingFlowService) SetTermsAgreed(ctx context.Context, userID, draftID uuid.UUID, agreed bool) (*models.BookingDraft, error) {
	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	draft.TermsAgreed = agreed
	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Advance moves the wizard forward one step, gated per the current step. On
// a failed guard the draft stays where it is and the guard error is
// returned for surfacing.
func (bf *BookingFlowService) Advance(ctx context.Context, userID, draftID uuid.UUID) (*models.BookingDraft, error) {
	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}

	switch draft.Step {
	case models.StepBooking:
		if userID == uuid.Nil {
			return nil, ErrNotAuthenticated
		}
		if stayErr := ResolveStay(bf.now(), draft.CheckIn, draft.CheckOut, draft.GuestCount, draft.Hotel.AvailableRooms*2); stayErr != nil {
			return nil, stayErr
		}
		draft.Step = models.StepGuestDetails

	case models.StepGuestDetails:
		if !draft.TermsAgreed {
			return nil, ErrTermsNotAgreed
		}
		if len(draft.Guests) != draft.GuestCount {
			return nil, ErrRosterIncomplete
		}
		valid := ValidateRoster(draft)
		if saveErr := bf.drafts.Save(ctx, draft); saveErr != nil {
			return nil, saveErr
		}
		if !valid {
			return draft, ErrRosterInvalid
		}
		draft.Step = models.StepPaymentMethod

	case models.StepPaymentMethod:
		return nil, ErrWrongStep
	}

	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Back is unconditional; there is nothing to guard on the way back.
func (bf *BookingFlowService) Back(ctx context.Context, userID, draftID uuid.UUID) (*models.BookingDraft, error) {
	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}

	switch draft.Step {
	case models.StepPaymentMethod:
		draft.Step = models.StepGuestDetails
	case models.StepGuestDetails:
		draft.Step = models.StepBooking
	}

	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// BeginPayment builds the ephemeral attempt handed to the payment
// dispatcher. Only valid at the payment-method step.
func (bf *BookingFlowService) BeginPayment(ctx context.Context, userID, draftID uuid.UUID, strategy models.PaymentStrategy) (*models.BookingDraft, *models.PaymentAttempt, error) {
	draft, err := bf.load(ctx, userID, draftID)
	if err != nil {
		return nil, nil, err
	}
	if draft.Step != models.StepPaymentMethod {
		return nil, nil, ErrWrongStep
	}
	if strategy != models.StrategyGateway && strategy != models.StrategyDemo {
		return nil, nil, fmt.Errorf("unknown payment strategy: %s", strategy)
	}

	breakdown := ComputePrice(draft)
	attempt := &models.PaymentAttempt{
		ID:        uuid.New(),
		DraftID:   draft.ID,
		Strategy:  strategy,
		Amount:    breakdown.FinalAmount,
		Currency:  "INR",
		Contact:   draft.Contact,
		CreatedAt: bf.now(),
	}

	// a fresh attempt supersedes any earlier one; a failed verification
	// means retrying the whole payment step
	draft.Attempt = attempt
	if err := bf.drafts.Save(ctx, draft); err != nil {
		return nil, nil, err
	}
	return draft, attempt, nil
}

// CloseDraft discards all wizard state. In-flight remote calls resolving
// afterwards find no draft to update.
func (bf *BookingFlowService) CloseDraft(ctx context.Context, userID, draftID uuid.UUID) error {
	if _, err := bf.load(ctx, userID, draftID); err != nil {
		return err
	}
	return bf.drafts.Delete(ctx, draftID)
}

func (bf *BookingFlowService) load(ctx context.Context, userID, draftID uuid.UUID) (*models.BookingDraft, error) {
	draft, err := bf.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.UserID != userID {
		return nil, ErrNotDraftOwner
	}
	return draft, nil
}
