package models

import (
	"time"

	"github.com/google/uuid"
)

type HotelStatus string

const (
	HotelStatusPending  HotelStatus = "pending"
	HotelStatusActive   HotelStatus = "active"
	HotelStatusInactive HotelStatus = "inactive"
)

type Hotel struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	Name           string      `db:"name" json:"name" validate:"required"`
	Slug           string      `db:"slug" json:"slug"`
	City           string      `db:"city" json:"city" validate:"required"`
	Address        string      `db:"address" json:"address"`
	Description    string      `db:"description" json:"description"`
	PricePerNight  int64       `db:"price_per_night" json:"price_per_night" validate:"required,gt=0"`
	AvailableRooms int         `db:"available_rooms" json:"available_rooms" validate:"required,gt=0"`
	Facilities     []string    `db:"facilities" json:"facilities"`
	Images         []string    `db:"images" json:"images"`
	Rating         float64     `db:"rating" json:"rating"`
	Status         HotelStatus `db:"status" json:"status"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// NightlyRate exposes the stored minor-unit price as Money for the pricing
// path.
func (h *Hotel) NightlyRate() Money {
	return Money(h.PricePerNight)
}

// MaxGuests is the booking-time guest cap: two guests per available room.
func (h *Hotel) MaxGuests() int {
	return h.AvailableRooms * 2
}

// HotelSummary is the read-only slice of a hotel the booking draft carries.
type HotelSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	City           string    `json:"city"`
	PricePerNight  Money     `json:"price_per_night"`
	AvailableRooms int       `json:"available_rooms"`
	Facilities     []string  `json:"facilities"`
}

func (h *Hotel) Summary() HotelSummary {
	return HotelSummary{
		ID:             h.ID,
		Name:           h.Name,
		City:           h.City,
		PricePerNight:  Money(h.PricePerNight),
		AvailableRooms: h.AvailableRooms,
		Facilities:     h.Facilities,
	}
}

// HotelFilter narrows a hotel listing query.
type HotelFilter struct {
	City     string `form:"city"`
	MaxPrice int64  `form:"max_price"`
	Query    string `form:"q"`
}
