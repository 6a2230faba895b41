package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/tripbay/internal/models"
	"github.com/joshua-takyi/tripbay/internal/services"
)

// CreatePaymentOrder opens a gateway payment attempt and returns the hosted
// checkout order for the client widget.
func CreatePaymentOrder(bf *services.BookingFlowService, ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		draft, attempt, err := bf.BeginPayment(c.Request.Context(), userID, draftID, models.StrategyGateway)
		if err != nil {
			respondFlowError(c, err)
			return
		}

		order, err := ps.CreateGatewayOrder(c.Request.Context(), draft, attempt)
		if err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"order":      order,
			"attempt_id": attempt.ID,
		}, "Payment order created"))
	}
}

// VerifyPayment completes the gateway strategy after the checkout widget
// reports success.
func VerifyPayment(bf *services.BookingFlowService, ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var verification services.GatewayVerification
		if err := c.ShouldBindJSON(&verification); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		draft, _, err := bf.GetDraft(c.Request.Context(), userID, draftID)
		if err != nil {
			respondFlowError(c, err)
			return
		}
		if draft.Attempt == nil || draft.Attempt.Strategy != models.StrategyGateway {
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse("no gateway payment in progress"))
			return
		}

		booking, err := ps.VerifyGatewayPayment(c.Request.Context(), draft, draft.Attempt, verification, accessToken(c))
		if err != nil {
			respondPaymentError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking confirmed"))
	}
}

// CancelPayment records a dismissed checkout widget. Not a failure; the
// draft stays open.
func CancelPayment(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := currentUser(c); !ok {
			return
		}
		ps.RecordCancellation(models.StrategyGateway)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Payment cancelled"))
	}
}

// PayDemo runs the simulated payment path end to end.
func PayDemo(bf *services.BookingFlowService, ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		draftID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		draft, attempt, err := bf.BeginPayment(c.Request.Context(), userID, draftID, models.StrategyDemo)
		if err != nil {
			respondFlowError(c, err)
			return
		}

		booking, err := ps.PayDemo(c.Request.Context(), draft, attempt, accessToken(c))
		if err != nil {
			respondPaymentError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Booking confirmed"))
	}
}

func ListMyBookings(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}

		bookings, err := bs.ListForUser(c.Request.Context(), userID, accessToken(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(bookings, ""))
	}
}

func DownloadVoucher(bs *services.BookingService, vs *services.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, userID, ok := currentUser(c)
		if !ok {
			return
		}
		bookingID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		booking, err := bs.GetForUser(c.Request.Context(), bookingID, userID, accessToken(c))
		if err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse("booking not found"))
			return
		}

		pdf, filename, err := vs.GenerateVoucher(booking)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse(err.Error()))
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}

func respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAttemptConsumed):
		c.JSON(http.StatusConflict, models.ErrorResponse(err.Error()))
	case errors.Is(err, services.ErrPaymentFailed):
		c.JSON(http.StatusPaymentRequired, models.ErrorResponse(err.Error()))
	default:
		respondFlowError(c, err)
	}
}
