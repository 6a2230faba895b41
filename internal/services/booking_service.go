package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/joshua-takyi/tripbay/internal/models"
)

// BookingService reads confirmed bookings back from the system of record.
type BookingService struct {
	bookingRepo models.BookingRepo
}

func NewBookingService(bookingRepo models.BookingRepo) *BookingService {
	return &BookingService{bookingRepo: bookingRepo}
}

func (bs *BookingService) ListForUser(ctx context.Context, userID uuid.UUID, accessToken string) ([]*models.Booking, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	return bs.bookingRepo.ListBookingsByUser(ctx, userID, accessToken)
}

// GetForUser loads a booking and refuses to return one owned by someone
// else.
func (bs *BookingService) GetForUser(ctx context.Context, bookingID, userID uuid.UUID, accessToken string) (*models.Booking, error) {
	booking, err := bs.bookingRepo.GetBooking(ctx, bookingID, accessToken)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("booking not found")
	}
	return booking, nil
}
