package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/services"
	"github.com/joshua-takyi/tripbay/internal/store"
)

const dateLayout = "2006-01-02"

func OpenDraft(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}

		var req struct {
			HotelID string `json:"hotel_id" binding:"required,uuid"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		hotelID, ok := parseID(c, req.HotelID, "hotel_id")
		if !ok {
			return
		}

		draft, err := bf.OpenDraft(c.Request.Context(), userID, hotelID)
		if err != nil {
			respondFlowError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(draftView(draft), "Booking draft opened"))
	}
}

func GetDraft(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		draft, _, err := bf.GetDraft(c.Request.Context(), userID, draftID)
		if err != nil {
			respondFlowError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), ""))
	}
}

func UpdateStay(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req struct {
			CheckIn    string `json:"check_in"`
			CheckOut   string `json:"check_out"`
			GuestCount int    `json:"guest_count"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		checkIn, ok := parseDate(c, req.CheckIn, "check_in")
		if !ok {
			return
		}
		checkOut, ok := parseDate(c, req.CheckOut, "check_out")
		if !ok {
			return
		}

		draft, err := bf.UpdateStay(c.Request.Context(), userID, draftID, checkIn, checkOut, req.GuestCount)
		if err != nil {
			var stayErr *services.StayError
			if errors.As(err, &stayErr) && draft != nil {
				// values are kept; the reason is surfaced inline
				c.JSON(http.StatusUnprocessableEntity,
					models.RejectionResponse(string(stayErr.Reason), stayErr.Error(), draftView(draft)))
				return
			}
			respondFlowError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), ""))
	}
}

func ApplyCoupon(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req struct {
			Code string `json:"code"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		draft, err := bf.ApplyCoupon(c.Request.Context(), userID, draftID, req.Code)
		if err != nil {
			var rejected *services.CouponRejectedError
			if errors.As(err, &rejected) {
				c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse(rejected.Message))
				return
			}
			respondFlowError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), "Coupon applied"))
	}
}

func RemoveCoupon(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		draft, err := bf.RemoveCoupon(c.Request.Context(), userID, draftID)
		if err != nil {
			respondFlowError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), "Coupon removed"))
	}
}

func AddGuest(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		draft, err := bf.AddGuest(c.Request.Context(), userID, draftID)
		if err != nil {
			respondFlowError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), ""))
	}
}

func RemoveGuest(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		guestID, ok := parseIDParam(c, "guest_id")
		if !ok {
			return
		}

		draft, err := bf.RemoveGuest(c.Request.Context(), userID, draftID, guestID)
		if err != nil {
			respondFlowError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), ""))
	}
}

func UpdateGuest(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		guestID, ok := parseIDParam(c, "guest_id")
		if !ok {
			return
		}

		var req struct {
			Field string `json:"field" binding:"required"`
			Value string `json:"value"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		draft, err := bf.UpdateGuest(c.Request.Context(), userID, draftID, guestID, req.Field, req.Value)
		if err != nil {
			respondFlowError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), ""))
	}
}

func SetContact(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var contact models.GuestDetails
		if err := c.ShouldBindJSON(&contact); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		draft, err := bf.SetContact(c.Request.Context(), userID, draftID, contact)
		if err != nil {
			respondFlowError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), ""))
	}
}

func SetTerms(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req struct {
			Agreed bool `json:"agreed"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		draft, err := bf.SetTermsAgreed(c.Request.Context(), userID, draftID, req.Agreed)
		if err != nil {
			respondFlowError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), ""))
	}
}

func AdvanceStep(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		draft, err := bf.Advance(c.Request.Context(), userID, draftID)
		if err != nil {
			var stayErr *services.StayError
			if errors.As(err, &stayErr) {
				c.JSON(http.StatusUnprocessableEntity,
					models.RejectionResponse(string(stayErr.Reason), stayErr.Error(), nil))
				return
			}
			if errors.Is(err, services.ErrRosterInvalid) && draft != nil {
				c.JSON(http.StatusUnprocessableEntity,
					models.RejectionResponse("RosterInvalid", err.Error(), gin.H{"guest_errors": draft.GuestErrors}))
				return
			}
			respondFlowError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), ""))
	}
}

func BackStep(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		draft, err := bf.Back(c.Request.Context(), userID, draftID)
		if err != nil {
			respondFlowError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(draftView(draft), ""))
	}
}

func CloseDraft(bf *services.BookingFlowService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		if err := bf.CloseDraft(c.Request.Context(), userID, draftID); err != nil {
			respondFlowError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Booking draft discarded"))
	}
}

// draftView decorates the raw draft with its derived price breakdown and
// per-guest completeness flags.
func draftView(draft *models.BookingDraft) gin.H {
	completeness := make(map[string]bool, len(draft.Guests))
	for _, g := range draft.Guests {
		completeness[g.ID.String()] = services.GuestComplete(g)
	}
	return gin.H{
		"draft":          draft,
		"price":          services.ComputePrice(draft),
		"guest_complete": completeness,
	}
}

func respondFlowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse(err.Error()))
	case errors.Is(err, services.ErrNotDraftOwner), errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusForbidden, models.ErrorResponse(err.Error()))
	case errors.Is(err, services.ErrTermsNotAgreed),
		errors.Is(err, services.ErrRosterIncomplete),
		errors.Is(err, services.ErrRosterInvalid),
		errors.Is(err, services.ErrWrongStep),
		errors.Is(err, services.ErrEmptyCouponCode):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse(err.Error()))
	case errors.Is(err, services.ErrCouponValidation):
		c.JSON(http.StatusBadGateway, models.ErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
	}
}

func parseDate(c *gin.Context, value, name string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid "+name+" date, expected YYYY-MM-DD"))
		return nil, false
	}
	return &t, true
}

func parseID(c *gin.Context, value, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
