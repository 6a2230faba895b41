package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

type HotelRepo interface {
	ListHotels(ctx context.Context, filter HotelFilter, offset, limit int) ([]*Hotel, int, error)
	GetHotel(ctx context.Context, id uuid.UUID) (*Hotel, error)
	CreateHotel(ctx context.Context, hotel *Hotel, accessToken string) (*Hotel, error)
	UpdateHotel(ctx context.Context, fields map[string]interface{}, id uuid.UUID, accessToken string) (*Hotel, error)
}

func (su *SupabaseRepo) ListHotels(ctx context.Context, filter HotelFilter, offset, limit int) ([]*Hotel, int, error) {
	query := su.supabaseClient.From(HotelsTable).
		Select("*", "exact", false).
		Eq("status", string(HotelStatusActive))

	if filter.City != "" {
		query = query.Eq("city", filter.City)
	}
	if filter.MaxPrice > 0 {
		query = query.Lte("price_per_night", strconv.FormatInt(filter.MaxPrice, 10))
	}
	if filter.Query != "" {
		query = query.Ilike("name", "%"+filter.Query+"%")
	}

	raw, count, err := query.Range(offset, offset+limit-1, "").Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list hotels: %v", err)
	}

	var hotels []*Hotel
	if err := json.Unmarshal(raw, &hotels); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal hotel rows: %v", err)
	}

	return hotels, int(count), nil
}

func (su *SupabaseRepo) GetHotel(ctx context.Context, id uuid.UUID) (*Hotel, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}

	raw, status, err := su.supabaseClient.From(HotelsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get hotel by ID: %v", err)
	}

	// Supabase returns an array even for single results
	var hotels []Hotel
	if err := json.Unmarshal(raw, &hotels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hotel rows: %v", err)
	}

	if len(hotels) == 0 {
		return nil, fmt.Errorf("hotel not found")
	}

	return &hotels[0], nil
}

func (su *SupabaseRepo) CreateHotel(ctx context.Context, hotel *Hotel, accessToken string) (*Hotel, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, _, err := client.From(HotelsTable).
		Insert(hotel, false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to create hotel: %v", err)
	}

	var created []Hotel
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal created hotel: %v", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("no hotel data returned after insert")
	}

	return &created[0], nil
}

func (su *SupabaseRepo) UpdateHotel(ctx context.Context, fields map[string]interface{}, id uuid.UUID, accessToken string) (*Hotel, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %v", err)
	}

	raw, count, err := client.From(HotelsTable).
		Update(fields, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update hotel: %v", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no hotel found to update")
	}

	var updated []Hotel
	if err := json.Unmarshal(raw, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated hotel: %v", err)
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("no hotel data returned after update")
	}

	return &updated[0], nil
}
