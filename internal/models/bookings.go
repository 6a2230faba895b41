package models

import (
	"time"

	"github.com/google/uuid"
)

// Step is the booking wizard position. The sequence is linear:
// booking -> guest-details -> payment-method.
type Step string

const (
	StepBooking       Step = "booking"
	StepGuestDetails  Step = "guest-details"
	StepPaymentMethod Step = "payment-method"
)

type PaymentStrategy string

const (
	StrategyGateway PaymentStrategy = "gateway"
	StrategyDemo    PaymentStrategy = "demo"
)

type GuestRecord struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       string    `json:"age"`
	Gender    string    `json:"gender"`
}

// GuestDetails is the primary contact for a booking, collected once and
// distinct from the per-guest roster.
type GuestDetails struct {
	Title       string `json:"title"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
}

func (g GuestDetails) FullName() string {
	return g.FirstName + " " + g.LastName
}

// AppliedCoupon holds the result of a successful remote coupon validation.
// It is replaced wholesale on re-apply and cleared on removal.
type AppliedCoupon struct {
	Code           string `json:"code"`
	CouponID       string `json:"coupon_id"`
	DiscountAmount Money  `json:"discount_amount"`
}

// BookingDraft is the state of one in-progress reservation attempt. It is
// created when the wizard opens, owned by the flow service for the lifetime
// of that attempt, and discarded on close or success.
type BookingDraft struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Hotel       HotelSummary   `json:"hotel"`
	CheckIn     *time.Time     `json:"check_in,omitempty"`
	CheckOut    *time.Time     `json:"check_out,omitempty"`
	GuestCount  int            `json:"guest_count"`
	Coupon      *AppliedCoupon `json:"coupon,omitempty"`
	Guests      []GuestRecord  `json:"guests"`
	GuestErrors GuestErrorMap  `json:"guest_errors,omitempty"`
	Contact     GuestDetails   `json:"contact"`
	TermsAgreed bool           `json:"terms_agreed"`
	Step        Step           `json:"step"`
	// Attempt is the current payment attempt, if the draft has entered the
	// payment step. Discarded with the draft.
	Attempt   *PaymentAttempt `json:"attempt,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// GuestErrorMap is per-guest, per-field validation messages.
type GuestErrorMap map[uuid.UUID]map[string]string

func (m GuestErrorMap) Set(guestID uuid.UUID, field, msg string) {
	if m[guestID] == nil {
		m[guestID] = map[string]string{}
	}
	m[guestID][field] = msg
}

func (m GuestErrorMap) Clear(guestID uuid.UUID, field string) {
	if fields, ok := m[guestID]; ok {
		delete(fields, field)
		if len(fields) == 0 {
			delete(m, guestID)
		}
	}
}

// PriceBreakdown is derived state, recomputed from the draft on every read.
type PriceBreakdown struct {
	Nights      int   `json:"nights"`
	BaseAmount  Money `json:"base_amount"`
	Discount    Money `json:"discount"`
	FinalAmount Money `json:"final_amount"`
}

// PaymentAttempt is created when the draft enters the payment step and
// discarded on success or close. The ID doubles as the idempotency receipt:
// the dispatcher consumes it before inserting a booking, so a replayed
// attempt cannot confirm twice.
type PaymentAttempt struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draft_id"`
	Strategy  PaymentStrategy `json:"strategy"`
	Amount    Money           `json:"amount"`
	Currency  string          `json:"currency"`
	Contact   GuestDetails    `json:"contact"`
	CreatedAt time.Time       `json:"created_at"`
}

// Booking is the confirmed record persisted to the bookings table. The
// remote backend is the system of record; this struct mirrors its row shape.
type Booking struct {
	ID                uuid.UUID `db:"id" json:"id"`
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	HotelID           uuid.UUID `db:"hotel_id" json:"hotel_id"`
	HotelName         string    `db:"hotel_name" json:"hotel_name"`
	CheckInDate       time.Time `db:"check_in_date" json:"check_in_date"`
	CheckOutDate      time.Time `db:"check_out_date" json:"check_out_date"`
	Guests            int       `db:"guests" json:"guests"`
	GuestName         string    `db:"guest_name" json:"guest_name"`
	GuestPhone        string    `db:"guest_phone" json:"guest_phone"`
	GuestEmail        string    `db:"guest_email" json:"guest_email"`
	TotalAmount       int64     `db:"total_amount" json:"total_amount"`
	DiscountAmount    int64     `db:"discount_amount" json:"discount_amount"`
	Status            string    `db:"status" json:"status"`
	PaymentStatus     string    `db:"payment_status" json:"payment_status"`
	RazorpayPaymentID string    `db:"razorpay_payment_id" json:"razorpay_payment_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// BookingEvent is the analytics record appended to Mongo when a booking is
// confirmed; the admin dashboard aggregates over these.
type BookingEvent struct {
	BookingID uuid.UUID `bson:"booking_id"`
	UserID    uuid.UUID `bson:"user_id"`
	HotelID   uuid.UUID `bson:"hotel_id"`
	Strategy  string    `bson:"strategy"`
	Status    string    `bson:"status"`
	Amount    int64     `bson:"amount"`
	Currency  string    `bson:"currency"`
	CreatedAt time.Time `bson:"created_at"`
}

type DailyBookingStat struct {
	Day     string `bson:"_id" json:"day"`
	Count   int    `bson:"count" json:"count"`
	Revenue int64  `bson:"revenue" json:"revenue"`
}

type StatusTotal struct {
	Status string `bson:"_id" json:"status"`
	Count  int    `bson:"count" json:"count"`
}
