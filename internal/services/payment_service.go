package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/observability"
	"github.com/joshua-takyi/tripbay/internal/store"
)

// GatewayOrder is the hosted-checkout handle returned to the client, which
// opens the payment widget with it.
type GatewayOrder struct {
	KeyID    string `json:"key_id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// GatewayVerification is what the widget's completion callback posts back
// for server-side signature verification.
type GatewayVerification struct {
	OrderID           string `json:"order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// PaymentService is the payment dispatcher. The gateway strategy rides the
// hosted checkout: order creation and signature verification both happen in
// remote functions. The demo strategy persists a pre-paid booking directly
// and fires best-effort notifications.
type PaymentService struct {
	edge     EdgeInvoker
	bookings models.BookingRepo
	reports  models.ReportRepo
	drafts   *store.DraftStore
	notifier *NotificationService
	logger   *slog.Logger
}

func NewPaymentService(edge EdgeInvoker, bookings models.BookingRepo, reports models.ReportRepo, drafts *store.DraftStore, notifier *NotificationService, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		edge:     edge,
		bookings: bookings,
		reports:  reports,
		drafts:   drafts,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateGatewayOrder asks the payment function for a hosted-checkout order
// covering the attempt's final amount.
func (ps *PaymentService) CreateGatewayOrder(ctx context.Context, draft *models.BookingDraft, attempt *models.PaymentAttempt) (*GatewayOrder, error) {
	payload := map[string]interface{}{
		"hotel_id":     draft.Hotel.ID.String(),
		"hotel_name":   draft.Hotel.Name,
		"guests":       draft.Guests,
		"contact_info": draft.Contact,
		"total_amount": int64(attempt.Amount),
		"currency":     attempt.Currency,
		"receipt":      attempt.ID.String(),
	}

	var order GatewayOrder
	if err := ps.edge.Invoke(ctx, "create-payment-order", payload, &order); err != nil {
		ps.logger.Error("payment order creation failed", "draft_id", draft.ID, "error", err)
		return nil, fmt.Errorf("failed to create payment order: %v", err)
	}
	if order.OrderID == "" || order.KeyID == "" {
		return nil, fmt.Errorf("payment order response was incomplete")
	}

	return &order, nil
}

// VerifyGatewayPayment runs the server-side signature check and, when it
// passes, persists the confirmed booking. Verification failure is fatal to
// this attempt but not to the draft; the user may retry the payment step.
func (ps *PaymentService) VerifyGatewayPayment(ctx context.Context, draft *models.BookingDraft, attempt *models.PaymentAttempt, verification GatewayVerification, accessToken string) (*models.Booking, error) {
	consumed, err := ps.drafts.ConsumeAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrAttemptConsumed
	}

	payload := map[string]interface{}{
		"order_id":            verification.OrderID,
		"razorpay_payment_id": verification.RazorpayPaymentID,
		"razorpay_order_id":   verification.RazorpayOrderID,
		"razorpay_signature":  verification.RazorpaySignature,
		"hotel_id":            draft.Hotel.ID.String(),
		"total_amount":        int64(attempt.Amount),
	}

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := ps.edge.Invoke(ctx, "verify-payment", payload, &result); err != nil {
		observability.PaymentOutcomes.WithLabelValues(string(models.StrategyGateway), "failure").Inc()
		ps.logger.Error("payment verification call failed", "draft_id", draft.ID, "error", err)
		return nil, ErrPaymentFailed
	}
	if !result.Success {
		observability.PaymentOutcomes.WithLabelValues(string(models.StrategyGateway), "failure").Inc()
		ps.logger.Warn("payment signature rejected", "draft_id", draft.ID, "order_id", verification.OrderID)
		return nil, ErrPaymentFailed
	}

	booking := ps.buildBooking(draft, attempt)
	booking.RazorpayPaymentID = verification.RazorpayPaymentID

	return ps.confirm(ctx, draft, attempt, booking, accessToken)
}

// PayDemo is the simulated success path: the booking is inserted directly,
// marked pre-paid, and both notifications go out best-effort.
func (ps *PaymentService) PayDemo(ctx context.Context, draft *models.BookingDraft, attempt *models.PaymentAttempt, accessToken string) (*models.Booking, error) {
	consumed, err := ps.drafts.ConsumeAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrAttemptConsumed
	}

	booking := ps.buildBooking(draft, attempt)
	booking.RazorpayPaymentID = fmt.Sprintf("DEMO-%d", time.Now().Unix())

	return ps.confirm(ctx, draft, attempt, booking, accessToken)
}

// RecordCancellation counts a user-dismissed checkout widget. Dismissal is a
// cancellation, not a failure; the draft stays open for a retry.
func (ps *PaymentService) RecordCancellation(strategy models.PaymentStrategy) {
	observability.PaymentOutcomes.WithLabelValues(string(strategy), "cancelled").Inc()
}

func (ps *PaymentService) buildBooking(draft *models.BookingDraft, attempt *models.PaymentAttempt) *models.Booking {
	breakdown := ComputePrice(draft)
	now := time.Now()

	booking := &models.Booking{
		ID:             uuid.New(),
		UserID:         draft.UserID,
		HotelID:        draft.Hotel.ID,
		HotelName:      draft.Hotel.Name,
		Guests:         draft.GuestCount,
		GuestName:      draft.Contact.FullName(),
		GuestPhone:     draft.Contact.CountryCode + draft.Contact.Phone,
		GuestEmail:     draft.Contact.Email,
		TotalAmount:    int64(attempt.Amount),
		DiscountAmount: int64(breakdown.Discount),
		Status:         "confirmed",
		PaymentStatus:  "paid",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if draft.CheckIn != nil {
		booking.CheckInDate = *draft.CheckIn
	}
	if draft.CheckOut != nil {
		booking.CheckOutDate = *draft.CheckOut
	}
	return booking
}

// confirm persists the booking, discards the draft, records the analytics
// event and enqueues notifications. Everything after the insert is
// best-effort: the booking exists once the insert succeeds.
func (ps *PaymentService) confirm(ctx context.Context, draft *models.BookingDraft, attempt *models.PaymentAttempt, booking *models.Booking, accessToken string) (*models.Booking, error) {
	created, err := ps.bookings.InsertBooking(ctx, booking, accessToken)
	if err != nil {
		observability.PaymentOutcomes.WithLabelValues(string(attempt.Strategy), "failure").Inc()
		return nil, fmt.Errorf("failed to persist booking: %v", err)
	}

	observability.PaymentOutcomes.WithLabelValues(string(attempt.Strategy), "success").Inc()
	observability.BookingsCreated.WithLabelValues(string(attempt.Strategy)).Inc()

	if err := ps.drafts.Delete(ctx, draft.ID); err != nil {
		ps.logger.Warn("failed to discard draft after payment", "draft_id", draft.ID, "error", err)
	}

	if err := ps.reports.RecordBookingEvent(ctx, &models.BookingEvent{
		BookingID: created.ID,
		UserID:    created.UserID,
		HotelID:   created.HotelID,
		Strategy:  string(attempt.Strategy),
		Status:    created.Status,
		Amount:    created.TotalAmount,
		Currency:  attempt.Currency,
		CreatedAt: created.CreatedAt,
	}); err != nil {
		ps.logger.Warn("failed to record booking event", "booking_id", created.ID, "error", err)
	}

	ps.notifier.Enqueue(NotificationIntent{
		Channel:   ChannelSMS,
		BookingID: created.ID,
		Phone:     created.GuestPhone,
	})
	ps.notifier.Enqueue(NotificationIntent{
		Channel:   ChannelEmail,
		BookingID: created.ID,
		Email:     created.GuestEmail,
		GuestName: created.GuestName,
	})

	ps.logger.Info("booking confirmed",
		"booking_id", created.ID,
		"strategy", attempt.Strategy,
		"amount", created.TotalAmount,
	)
	return created, nil
}
