package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/store"
)

// fakeEdge scripts responses per function name and records every call.
type fakeEdge struct {
	mu        sync.Mutex
	calls     []string
	payloads  map[string]interface{}
	responses map[string]interface{}
	errs      map[string]error
}

func newFakeEdge() *fakeEdge {
	return &fakeEdge{
		payloads:  map[string]interface{}{},
		responses: map[string]interface{}{},
		errs:      map[string]error{},
	}
}

func (f *fakeEdge) Invoke(ctx context.Context, name string, payload any, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.payloads[name] = payload
	resp, hasResp := f.responses[name]
	err := f.errs[name]
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if out != nil && hasResp {
		b, merr := json.Marshal(resp)
		if merr != nil {
			return merr
		}
		return json.Unmarshal(b, out)
	}
	return nil
}

func (f *fakeEdge) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	inserted []*models.Booking
	err      error
}

func (f *fakeBookingRepo) InsertBooking(ctx context.Context, booking *models.Booking, accessToken string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.inserted = append(f.inserted, booking)
	return booking, nil
}

func (f *fakeBookingRepo) ListBookingsByUser(ctx context.Context, userID uuid.UUID, accessToken string) ([]*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserted, nil
}

func (f *fakeBookingRepo) GetBooking(ctx context.Context, id uuid.UUID, accessToken string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.inserted {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, errors.New("booking not found")
}

type fakeReportRepo struct {
	mu     sync.Mutex
	events []*models.BookingEvent
	err    error
}

func (f *fakeReportRepo) RecordBookingEvent(ctx context.Context, event *models.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeReportRepo) DailySummary(ctx context.Context, from, to time.Time) ([]models.DailyBookingStat, error) {
	return nil, nil
}

func (f *fakeReportRepo) TotalsByStatus(ctx context.Context) ([]models.StatusTotal, error) {
	return nil, nil
}

type paymentFixture struct {
	ps       *PaymentService
	edge     *fakeEdge
	bookings *fakeBookingRepo
	reports  *fakeReportRepo
	drafts   *store.DraftStore
	notifier *NotificationService
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	edge := newFakeEdge()
	bookings := &fakeBookingRepo{}
	reports := &fakeReportRepo{}
	drafts := store.NewDraftStore(client, time.Minute)
	notifier := NewNotificationService(edge, logger, 8)
	t.Cleanup(notifier.Close)

	return &paymentFixture{
		ps:       NewPaymentService(edge, bookings, reports, drafts, notifier, logger),
		edge:     edge,
		bookings: bookings,
		reports:  reports,
		drafts:   drafts,
		notifier: notifier,
	}
}

func paidDraft() (*models.BookingDraft, *models.PaymentAttempt) {
	checkIn := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 2)

	draft := &models.BookingDraft{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Hotel: models.HotelSummary{
			ID:            uuid.New(),
			Name:          "Seaside Grand",
			PricePerNight: 200000,
		},
		CheckIn:    &checkIn,
		CheckOut:   &checkOut,
		GuestCount: 2,
		Coupon:     &models.AppliedCoupon{Code: "SAVE500", DiscountAmount: 50000},
		Contact: models.GuestDetails{
			FirstName:   "Asha",
			LastName:    "Rao",
			Email:       "a@example.com",
			Phone:       "9876543210",
			CountryCode: "+91",
		},
		Step: models.StepPaymentMethod,
	}
	attempt := &models.PaymentAttempt{
		ID:       uuid.New(),
		DraftID:  draft.ID,
		Strategy: models.StrategyDemo,
		Amount:   350000,
		Currency: "INR",
		Contact:  draft.Contact,
	}
	draft.Attempt = attempt
	return draft, attempt
}

func TestCreateGatewayOrder(t *testing.T) {
	fx := newPaymentFixture(t)
	draft, attempt := paidDraft()
	attempt.Strategy = models.StrategyGateway
	ctx := context.Background()

	fx.edge.responses["create-payment-order"] = map[string]interface{}{
		"key_id":   "rzp_test_abc",
		"order_id": "order_123",
		"amount":   350000,
		"currency": "INR",
	}

	order, err := fx.ps.CreateGatewayOrder(ctx, draft, attempt)
	if err != nil {
		t.Fatal(err)
	}
	if order.OrderID != "order_123" || order.KeyID != "rzp_test_abc" {
		t.Errorf("order = %+v", order)
	}

	payload := fx.edge.payloads["create-payment-order"].(map[string]interface{})
	if payload["total_amount"] != int64(350000) {
		t.Errorf("total_amount = %v", payload["total_amount"])
	}
	if payload["receipt"] != attempt.ID.String() {
		t.Errorf("receipt = %v, want attempt id", payload["receipt"])
	}

	t.Run("incomplete response is an error", func(t *testing.T) {
		fx.edge.responses["create-payment-order"] = map[string]interface{}{"order_id": ""}
		if _, err := fx.ps.CreateGatewayOrder(ctx, draft, attempt); err == nil {
			t.Error("incomplete order accepted")
		}
	})
}

func TestVerifyGatewayPayment(t *testing.T) {
	verification := GatewayVerification{
		OrderID:           "order_123",
		RazorpayPaymentID: "pay_456",
		RazorpayOrderID:   "order_123",
		RazorpaySignature: "sig",
	}

	t.Run("success confirms the booking", func(t *testing.T) {
		fx := newPaymentFixture(t)
		draft, attempt := paidDraft()
		attempt.Strategy = models.StrategyGateway
		ctx := context.Background()
		fx.drafts.Save(ctx, draft)

		fx.edge.responses["verify-payment"] = map[string]interface{}{"success": true}

		booking, err := fx.ps.VerifyGatewayPayment(ctx, draft, attempt, verification, "token")
		if err != nil {
			t.Fatal(err)
		}
		if booking.RazorpayPaymentID != "pay_456" {
			t.Errorf("payment id = %q", booking.RazorpayPaymentID)
		}
		if booking.Status != "confirmed" || booking.PaymentStatus != "paid" {
			t.Errorf("status = %s/%s", booking.Status, booking.PaymentStatus)
		}
		if booking.TotalAmount != 350000 || booking.DiscountAmount != 50000 {
			t.Errorf("amounts = %d/%d", booking.TotalAmount, booking.DiscountAmount)
		}

		// draft is gone once the booking exists
		if _, err := fx.drafts.Get(ctx, draft.ID); !errors.Is(err, store.ErrDraftNotFound) {
			t.Errorf("draft after confirm = %v, want ErrDraftNotFound", err)
		}

		fx.reports.mu.Lock()
		events := len(fx.reports.events)
		fx.reports.mu.Unlock()
		if events != 1 {
			t.Errorf("booking events = %d, want 1", events)
		}
	})

	t.Run("rejected signature fails the attempt", func(t *testing.T) {
		fx := newPaymentFixture(t)
		draft, attempt := paidDraft()
		attempt.Strategy = models.StrategyGateway
		ctx := context.Background()
		fx.drafts.Save(ctx, draft)

		fx.edge.responses["verify-payment"] = map[string]interface{}{"success": false, "error": "bad signature"}

		if _, err := fx.ps.VerifyGatewayPayment(ctx, draft, attempt, verification, "token"); !errors.Is(err, ErrPaymentFailed) {
			t.Fatalf("err = %v, want ErrPaymentFailed", err)
		}
		if len(fx.bookings.inserted) != 0 {
			t.Error("booking inserted despite failed verification")
		}
	})

	t.Run("replayed attempt is rejected", func(t *testing.T) {
		fx := newPaymentFixture(t)
		draft, attempt := paidDraft()
		attempt.Strategy = models.StrategyGateway
		ctx := context.Background()
		fx.drafts.Save(ctx, draft)

		fx.edge.responses["verify-payment"] = map[string]interface{}{"success": true}

		if _, err := fx.ps.VerifyGatewayPayment(ctx, draft, attempt, verification, "token"); err != nil {
			t.Fatal(err)
		}
		if _, err := fx.ps.VerifyGatewayPayment(ctx, draft, attempt, verification, "token"); !errors.Is(err, ErrAttemptConsumed) {
			t.Fatalf("replay = %v, want ErrAttemptConsumed", err)
		}
		if len(fx.bookings.inserted) != 1 {
			t.Errorf("bookings = %d, want exactly 1", len(fx.bookings.inserted))
		}
	})
}

func TestPayDemo(t *testing.T) {
	fx := newPaymentFixture(t)
	draft, attempt := paidDraft()
	ctx := context.Background()
	fx.drafts.Save(ctx, draft)

	booking, err := fx.ps.PayDemo(ctx, draft, attempt, "token")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(booking.RazorpayPaymentID, "DEMO-") {
		t.Errorf("payment id = %q, want DEMO- prefix", booking.RazorpayPaymentID)
	}
	if booking.PaymentStatus != "paid" {
		t.Errorf("payment status = %q, want paid", booking.PaymentStatus)
	}
	if booking.GuestName != "Asha Rao" {
		t.Errorf("guest name = %q", booking.GuestName)
	}
	if booking.GuestPhone != "+919876543210" {
		t.Errorf("guest phone = %q", booking.GuestPhone)
	}

	if _, err := fx.ps.PayDemo(ctx, draft, attempt, "token"); !errors.Is(err, ErrAttemptConsumed) {
		t.Errorf("replayed demo = %v, want ErrAttemptConsumed", err)
	}
}

func TestConfirmNotificationsAreBestEffort(t *testing.T) {
	fx := newPaymentFixture(t)
	draft, attempt := paidDraft()
	ctx := context.Background()
	fx.drafts.Save(ctx, draft)

	// the SMS function is down; confirmation must not care
	fx.edge.errs["send-sms"] = errors.New("sms gateway unreachable")

	booking, err := fx.ps.PayDemo(ctx, draft, attempt, "token")
	if err != nil {
		t.Fatalf("booking failed because of a notification: %v", err)
	}
	if booking == nil {
		t.Fatal("no booking returned")
	}

	fx.notifier.Close()
	if fx.edge.called("send-sms") != 1 {
		t.Errorf("send-sms calls = %d, want 1", fx.edge.called("send-sms"))
	}
	if fx.edge.called("send-booking-email") != 1 {
		t.Errorf("send-booking-email calls = %d, want 1", fx.edge.called("send-booking-email"))
	}
}

func TestConfirmInsertFailure(t *testing.T) {
	fx := newPaymentFixture(t)
	draft, attempt := paidDraft()
	ctx := context.Background()
	fx.drafts.Save(ctx, draft)

	fx.bookings.err = errors.New("insert rejected")

	if _, err := fx.ps.PayDemo(ctx, draft, attempt, "token"); err == nil {
		t.Fatal("insert failure swallowed")
	}

	// the draft survives a failed persist so the user can retry
	if _, err := fx.drafts.Get(ctx, draft.ID); err != nil {
		t.Errorf("draft after failed insert = %v, want present", err)
	}
}
