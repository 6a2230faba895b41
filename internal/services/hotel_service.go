package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joshua-takyi/tripbay/internal/connect"
	"github.com/joshua-takyi/tripbay/internal/helpers"
	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/store"
)

const hotelListCacheTTLSec = 120

type HotelService struct {
	hotelRepo models.HotelRepo
	cache     *store.Cache
	logger    *slog.Logger
}

func NewHotelService(hotelRepo models.HotelRepo, cache *store.Cache, logger *slog.Logger) *HotelService {
	return &HotelService{
		hotelRepo: hotelRepo,
		cache:     cache,
		logger:    logger,
	}
}

type hotelPage struct {
	Hotels []*models.Hotel `json:"hotels"`
	Total  int             `json:"total"`
}

func (hs *HotelService) ListHotels(ctx context.Context, filter models.HotelFilter, offset, limit int) ([]*models.Hotel, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit")
	}

	key := fmt.Sprintf("hotels:%s:%d:%s:%d:%d", filter.City, filter.MaxPrice, filter.Query, offset, limit)
	if hs.cache != nil {
		var page hotelPage
		if hit, err := hs.cache.Get(ctx, key, &page); err == nil && hit {
			return page.Hotels, page.Total, nil
		}
	}

	hotels, total, err := hs.hotelRepo.ListHotels(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	if hs.cache != nil {
		if err := hs.cache.Set(ctx, key, hotelPage{Hotels: hotels, Total: total}, hotelListCacheTTLSec); err != nil {
			hs.logger.Warn("failed to cache hotel listing", "error", err)
		}
	}

	return hotels, total, nil
}

func (hs *HotelService) GetHotel(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid hotel ID")
	}
	return hs.hotelRepo.GetHotel(ctx, id)
}

// CreateHotel uploads any provided images first, then persists the hotel.
// Only admins reach this path (enforced at the handler).
func (hs *HotelService) CreateHotel(ctx context.Context, hotel *models.Hotel, accessToken string) (*models.Hotel, error) {
	if err := models.Validate.Struct(hotel); err != nil {
		return nil, fmt.Errorf("invalid hotel data provided: %v", err)
	}

	hotel.Slug = helpers.GenerateSlug(hotel.Name, hotel.City)
	if hotel.ID == uuid.Nil {
		hotel.ID = uuid.New()
	}
	now := time.Now()
	hotel.CreatedAt = now
	hotel.UpdatedAt = now
	hotel.Status = models.HotelStatusPending

	if len(hotel.Images) > 0 {
		uploadChan := make(chan []string, 1)
		errorChan := make(chan error, 1)

		go func() {
			urls, uploadErr := helpers.UploadImages(ctx, connect.Cld, hotel.Images, helpers.HotelFolder)
			if uploadErr != nil {
				errorChan <- uploadErr
				return
			}
			uploadChan <- urls
		}()

		select {
		case urls := <-uploadChan:
			hotel.Images = urls
		case uploadErr := <-errorChan:
			return nil, fmt.Errorf("failed to upload images: %v", uploadErr)
		case <-time.After(30 * time.Second):
			return nil, fmt.Errorf("image upload timeout")
		}
	}

	return hs.hotelRepo.CreateHotel(ctx, hotel, accessToken)
}

func (hs *HotelService) UpdateHotel(ctx context.Context, fields map[string]interface{}, id uuid.UUID, accessToken string) (*models.Hotel, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid hotel ID")
	}
	fields["updated_at"] = time.Now()
	return hs.hotelRepo.UpdateHotel(ctx, fields, id, accessToken)
}
