package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type BookingRepo interface {
	InsertBooking(ctx context.Context, booking *Booking, accessToken string) (*Booking, error)
	ListBookingsByUser(ctx context.Context, userID uuid.UUID, accessToken string) ([]*Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID, accessToken string) (*Booking, error)
}

func (su *SupabaseRepo) InsertBooking(ctx context.Context, booking *Booking, accessToken string) (*Booking, error) {
	if booking.UserID == uuid.Nil || booking.HotelID == uuid.Nil {
		return nil, fmt.Errorf("booking is missing user or hotel reference")
	}

	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, _, err := client.From(BookingsTable).
		Insert(booking, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %v", err)
	}

	var created []Booking
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal created booking: %v", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("no booking data returned after insert")
	}

	return &created[0], nil
}

func (su *SupabaseRepo) ListBookingsByUser(ctx context.Context, userID uuid.UUID, accessToken string) ([]*Booking, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}

	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, _, err := client.From(BookingsTable).
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %v", err)
	}

	var bookings []*Booking
	if err := json.Unmarshal(raw, &bookings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking rows: %v", err)
	}

	return bookings, nil
}

func (su *SupabaseRepo) GetBooking(ctx context.Context, id uuid.UUID, accessToken string) (*Booking, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}

	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, status, err := client.From(BookingsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get booking by ID: %v", err)
	}

	var bookings []Booking
	if err := json.Unmarshal(raw, &bookings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking rows: %v", err)
	}
	if len(bookings) == 0 {
		return nil, fmt.Errorf("booking not found")
	}

	return &bookings[0], nil
}
