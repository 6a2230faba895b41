package services

import (
	"math"
	"time"
)

// StayInvalidReason identifies which stay rule failed. Rules run in a fixed
// order and short-circuit on the first failure.
type StayInvalidReason string

const (
	StayMissingField         StayInvalidReason = "MissingField"
	StayPastCheckIn          StayInvalidReason = "PastCheckIn"
	StayInvertedRange        StayInvalidReason = "InvertedRange"
	StayGuestCountOutOfRange StayInvalidReason = "GuestCountOutOfRange"
)

type StayError struct {
	Reason StayInvalidReason
}

func (e *StayError) Error() string {
	switch e.Reason {
	case StayMissingField:
		return "check-in, check-out and guest count are required"
	case StayPastCheckIn:
		return "check-in date cannot be in the past"
	case StayInvertedRange:
		return "check-out must be after check-in"
	case StayGuestCountOutOfRange:
		return "guest count exceeds what this hotel can accommodate"
	}
	return "invalid stay parameters"
}

// ResolveStay validates the stay parameters against the hotel's capacity.
// maxGuests is availableRooms * 2. Pure; now supplies "today".
func ResolveStay(now time.Time, checkIn, checkOut *time.Time, guestCount, maxGuests int) error {
	if checkIn == nil || checkOut == nil || guestCount == 0 {
		return &StayError{Reason: StayMissingField}
	}

	// date-only comparison, time truncated to midnight
	today := truncateToDay(now)
	if truncateToDay(*checkIn).Before(today) {
		return &StayError{Reason: StayPastCheckIn}
	}

	if !checkIn.Before(*checkOut) {
		return &StayError{Reason: StayInvertedRange}
	}

	if guestCount < 1 || guestCount > maxGuests {
		return &StayError{Reason: StayGuestCountOutOfRange}
	}

	return nil
}

// Nights is ceil((checkOut - checkIn) in days), floored at 0.
func Nights(checkIn, checkOut *time.Time) int {
	if checkIn == nil || checkOut == nil {
		return 0
	}
	days := math.Ceil(checkOut.Sub(*checkIn).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
