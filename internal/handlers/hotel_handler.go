package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/services"
)

func ListHotels(hs *services.HotelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := c.DefaultQuery("limit", "10")
		offset := c.DefaultQuery("offset", "0")
		limitInt, err := strconv.Atoi(limit)
		if err != nil || limitInt <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid limit parameter"))
			return
		}
		offsetInt, err := strconv.Atoi(offset)
		if err != nil || offsetInt < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid offset parameter"))
			return
		}

		var filter models.HotelFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid filter parameters"))
			return
		}

		hotels, total, err := hs.ListHotels(c.Request.Context(), filter, offsetInt, limitInt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		page := (offsetInt / limitInt) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(hotels, page, limitInt, total))
	}
}

func GetHotel(hs *services.HotelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		hotelID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		hotel, err := hs.GetHotel(c.Request.Context(), hotelID)
		if err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse("hotel not found"))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(hotel, ""))
	}
}

func CreateHotel(hs *services.HotelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := currentUser(c); !ok {
			return
		}

		var hotel models.Hotel
		if err := c.ShouldBindJSON(&hotel); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := hs.CreateHotel(c.Request.Context(), &hotel, accessToken(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Hotel created successfully"))
	}
}

func UpdateHotel(hs *services.HotelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := currentUser(c); !ok {
			return
		}
		hotelID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var fields map[string]interface{}
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := hs.UpdateHotel(c.Request.Context(), fields, hotelID, accessToken(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Hotel updated successfully"))
	}
}
