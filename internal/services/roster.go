package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/joshua-takyi/tripbay/internal/models"
)

const (
	defaultGuestTitle  = "Mr"
	defaultGuestGender = "male"

	minGuestAge = 1
	maxGuestAge = 120
)

// AddGuest appends a blank guest record. No-op once the roster has reached
// the draft's guest count.
func AddGuest(draft *models.BookingDraft) *models.GuestRecord {
	if len(draft.Guests) >= draft.GuestCount {
		return nil
	}
	guest := models.GuestRecord{
		ID:     uuid.New(),
		Title:  defaultGuestTitle,
		Gender: defaultGuestGender,
	}
	draft.Guests = append(draft.Guests, guest)
	return &draft.Guests[len(draft.Guests)-1]
}

// RemoveGuest drops the guest with the given id and clears its stored
// errors. No-op when the roster is down to one guest: a booking always keeps
// at least one.
func RemoveGuest(draft *models.BookingDraft, guestID uuid.UUID) bool {
	if len(draft.Guests) <= 1 {
		return false
	}
	for i, g := range draft.Guests {
		if g.ID == guestID {
			draft.Guests = append(draft.Guests[:i], draft.Guests[i+1:]...)
			delete(draft.GuestErrors, guestID)
			return true
		}
	}
	return false
}

// UpdateGuest mutates one field in place and optimistically clears that
// field's error; re-validation happens only when the user tries to advance.
func UpdateGuest(draft *models.BookingDraft, guestID uuid.UUID, field, value string) error {
	for i := range draft.Guests {
		if draft.Guests[i].ID != guestID {
			continue
		}
		switch field {
		case "title":
			draft.Guests[i].Title = value
		case "first_name":
			draft.Guests[i].FirstName = value
		case "last_name":
			draft.Guests[i].LastName = value
		case "age":
			draft.Guests[i].Age = value
		case "gender":
			draft.Guests[i].Gender = value
		default:
			return fmt.Errorf("unknown guest field: %s", field)
		}
		draft.GuestErrors.Clear(guestID, field)
		return nil
	}
	return fmt.Errorf("guest not found")
}

// ValidateRoster checks every guest and records per-guest, per-field
// messages on the draft. Returns overall validity.
func ValidateRoster(draft *models.BookingDraft) bool {
	errors := models.GuestErrorMap{}
	for _, g := range draft.Guests {
		if strings.TrimSpace(g.FirstName) == "" {
			errors.Set(g.ID, "first_name", "first name is required")
		}
		if strings.TrimSpace(g.LastName) == "" {
			errors.Set(g.ID, "last_name", "last name is required")
		}
		if msg := ageError(g.Age); msg != "" {
			errors.Set(g.ID, "age", msg)
		}
	}
	draft.GuestErrors = errors
	return len(errors) == 0
}

// GuestComplete mirrors the validation rules as a per-guest boolean for
// progress display.
func GuestComplete(g models.GuestRecord) bool {
	return strings.TrimSpace(g.FirstName) != "" &&
		strings.TrimSpace(g.LastName) != "" &&
		ageError(g.Age) == ""
}

func ageError(age string) string {
	trimmed := strings.TrimSpace(age)
	if trimmed == "" {
		return "age is required"
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return "age must be a number"
	}
	if n < minGuestAge || n > maxGuestAge {
		return fmt.Sprintf("age must be between %d and %d", minGuestAge, maxGuestAge)
	}
	return ""
}
